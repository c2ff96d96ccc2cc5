package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"

	"github.com/rameshmuthu-dev/mobilemania-backend/middleware"
	"github.com/rameshmuthu-dev/mobilemania-backend/models"
	"github.com/rameshmuthu-dev/mobilemania-backend/pkg/aws"
	"github.com/rameshmuthu-dev/mobilemania-backend/services"
)

const maxWebhookBodyBytes = 65536

// PaymentController handles checkout session creation and the payment
// provider webhook.
type PaymentController struct {
	checkoutService *services.CheckoutService
	orderService    *services.OrderService
	invoiceService  *services.InvoiceService
	authService     *services.AuthService
	emailSender     services.EmailSender
	publisher       aws.SNSPublisher
	topicARN        string
	logger          *zap.Logger
}

func NewPaymentController(
	checkoutService *services.CheckoutService,
	orderService *services.OrderService,
	invoiceService *services.InvoiceService,
	authService *services.AuthService,
	emailSender services.EmailSender,
	publisher aws.SNSPublisher,
	topicARN string,
	logger *zap.Logger,
) *PaymentController {
	return &PaymentController{
		checkoutService: checkoutService,
		orderService:    orderService,
		invoiceService:  invoiceService,
		authService:     authService,
		emailSender:     emailSender,
		publisher:       publisher,
		topicARN:        topicARN,
		logger:          logger,
	}
}

// CreateCheckoutSession handles POST /api/orders/:id/checkout.
func (pc *PaymentController) CreateCheckoutSession(ctx *gin.Context) {
	resp, svcErr := pc.checkoutService.CreateCheckoutSession(ctx.Request.Context(), middleware.GetUserID(ctx), ctx.Param("id"))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// StripeWebhook handles POST /api/payments/webhook. The raw body is needed
// for signature verification, so this route must not sit behind any
// body-consuming middleware. Once the signature checks out, processing
// failures are logged and acknowledged with 200 so the provider does not
// retry forever; the payment itself already happened.
func (pc *PaymentController) StripeWebhook(ctx *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	event, err := pc.checkoutService.VerifyWebhook(payload, ctx.GetHeader("Stripe-Signature"))
	if err != nil {
		pc.logger.Warn("Webhook signature verification failed", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		pc.handleCheckoutCompleted(ctx, event)
	default:
		pc.logger.Debug("Ignoring webhook event", zap.String("event_type", string(event.Type)))
	}

	ctx.JSON(http.StatusOK, gin.H{"received": true})
}

func (pc *PaymentController) handleCheckoutCompleted(ctx *gin.Context, event stripe.Event) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		pc.logger.Error("Failed to parse checkout session payload", zap.String("event_id", event.ID), zap.Error(err))
		return
	}

	orderID := session.Metadata["order_id"]
	if orderID == "" {
		pc.logger.Error("Checkout session is missing the order_id metadata", zap.String("session_id", session.ID))
		return
	}

	order, alreadyPaid, svcErr := pc.orderService.MarkPaid(ctx.Request.Context(), orderID)
	if svcErr != nil {
		pc.logger.Error("Failed to mark order paid from webhook",
			zap.String("order_id", orderID),
			zap.String("session_id", session.ID),
			zap.String("reason", svcErr.Message))
		return
	}
	if alreadyPaid {
		pc.logger.Info("Order already paid, resending invoice", zap.String("order_id", orderID))
	}

	user, svcErr := pc.authService.GetUser(ctx.Request.Context(), order.User.Hex())
	if svcErr != nil {
		pc.logger.Error("Failed to load order owner for invoice",
			zap.String("order_id", orderID),
			zap.String("reason", svcErr.Message))
		return
	}

	// Invoice and email are delivery conveniences. The order stays paid even
	// when they fail.
	invoice, err := pc.invoiceService.RenderInvoice(order, user)
	if err == nil {
		subject := "Your MobileMania invoice for order " + orderID
		if _, err := pc.emailSender.SendEmail(ctx.Request.Context(), user.Email, subject, string(invoice)); err != nil {
			pc.logger.Error("Failed to email invoice", zap.String("order_id", orderID), zap.Error(err))
		}
	}

	pc.publishOrderPaid(ctx, order)
}

func (pc *PaymentController) publishOrderPaid(ctx *gin.Context, order *models.Order) {
	if pc.publisher == nil || pc.topicARN == "" {
		return
	}

	payload, err := json.Marshal(models.OrderEvent{
		Type:      models.EventOrderPaid,
		OrderID:   order.ID.Hex(),
		UserID:    order.User.Hex(),
		Amount:    order.TotalPrice,
		Currency:  "INR",
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		pc.logger.Error("Failed to marshal order event", zap.String("order_id", order.ID.Hex()), zap.Error(err))
		return
	}

	if err := pc.publisher.Publish(ctx.Request.Context(), pc.topicARN, payload); err != nil {
		pc.logger.Error("Failed to publish order event", zap.String("order_id", order.ID.Hex()), zap.Error(err))
	}
}
