package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/webhook"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/rameshmuthu-dev/mobilemania-backend/repository"
)

const checkoutCurrency = "inr"

type CheckoutSessionResponse struct {
	ID             string `json:"id"`
	CheckoutURL    string `json:"checkoutUrl"`
	PublishableKey string `json:"publishableKey"`
}

// CheckoutService brokers hosted Stripe checkout sessions for unpaid orders.
type CheckoutService struct {
	orderRepo      repository.OrderRepository
	productRepo    repository.ProductRepository
	webhookSecret  string
	publishableKey string
	frontendURL    string
	logger         *zap.Logger
}

func NewCheckoutService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, secretKey, webhookSecret, publishableKey, frontendURL string, logger *zap.Logger) *CheckoutService {
	stripe.Key = secretKey
	return &CheckoutService{
		orderRepo:      orderRepo,
		productRepo:    productRepo,
		webhookSecret:  webhookSecret,
		publishableKey: publishableKey,
		frontendURL:    frontendURL,
		logger:         logger,
	}
}

// CreateCheckoutSession builds one price entry per line item from the live
// catalog and submits a single hosted-payment-session request. The session
// carries the order id as metadata so the webhook can resolve it back, and an
// idempotency key derived from the order id so client retries return the same
// session instead of minting duplicates.
func (s *CheckoutService) CreateCheckoutSession(ctx context.Context, userID, orderID string) (*CheckoutSessionResponse, *ServiceError) {
	orderOID, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, NewValidationError("Invalid order ID format")
	}

	order, err := s.orderRepo.FindByID(ctx, orderOID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, NewNotFoundError("Order not found")
		}
		s.logger.Error("Failed to fetch order for checkout", zap.String("order_id", orderID), zap.Error(err))
		return nil, NewInternalError("Failed to create checkout session")
	}
	if order.User.Hex() != userID {
		return nil, NewUnauthorizedError("You do not have access to this order")
	}
	if order.IsPaid {
		return nil, NewValidationError("Order is already paid")
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(order.OrderItems))
	for _, item := range order.OrderItems {
		product, err := s.productRepo.FindByID(ctx, item.Product)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, NewValidationError(fmt.Sprintf("Product %s is no longer available", item.Name))
			}
			s.logger.Error("Failed to resolve checkout product", zap.String("product_id", item.Product.Hex()), zap.Error(err))
			return nil, NewInternalError("Failed to create checkout session")
		}

		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(product.Name),
		}
		if product.Description != "" {
			productData.Description = stripe.String(product.Description)
		}
		if len(product.Images) > 0 {
			productData.Images = stripe.StringSlice(product.Images)
		}

		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(checkoutCurrency),
				UnitAmount:  stripe.Int64(toMinorUnits(item.Price)),
				ProductData: productData,
			},
			Quantity: stripe.Int64(int64(item.Qty)),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(fmt.Sprintf("%s/order/%s?payment=success", s.frontendURL, orderID)),
		CancelURL:  stripe.String(fmt.Sprintf("%s/order/%s?payment=cancelled", s.frontendURL, orderID)),
		LineItems:  lineItems,
	}
	params.AddMetadata("order_id", orderID)
	params.SetIdempotencyKey("checkout-session-" + orderID)

	sess, err := session.New(params)
	if err != nil {
		s.logger.Error("Stripe checkout session creation failed", zap.String("order_id", orderID), zap.Error(err))
		return nil, NewPaymentProviderError("Payment provider rejected the checkout session")
	}

	if err := s.orderRepo.SetCheckoutSession(ctx, order.ID, sess.ID); err != nil {
		// The session exists either way; the stored id is only a convenience.
		s.logger.Warn("Failed to store checkout session id", zap.String("order_id", orderID), zap.Error(err))
	}

	s.logger.Info("Checkout session created",
		zap.String("order_id", orderID),
		zap.String("session_id", sess.ID),
	)
	return &CheckoutSessionResponse{
		ID:             sess.ID,
		CheckoutURL:    sess.URL,
		PublishableKey: s.publishableKey,
	}, nil
}

// VerifyWebhook checks the provider signature over the raw payload and
// returns the parsed event. Verification failure is the caller's cue to
// reject with 400.
func (s *CheckoutService) VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, s.webhookSecret)
}

func toMinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}
