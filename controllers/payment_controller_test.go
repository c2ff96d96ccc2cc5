package controllers_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v80"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/rameshmuthu-dev/mobilemania-backend/controllers"
	"github.com/rameshmuthu-dev/mobilemania-backend/models"
	"github.com/rameshmuthu-dev/mobilemania-backend/repository"
	"github.com/rameshmuthu-dev/mobilemania-backend/services"
)

const webhookSecret = "whsec_testsecret"

func init() {
	gin.SetMode(gin.TestMode)
}

// --- Minimal in-memory repos for the webhook path ---

type stubOrderRepo struct {
	mu     sync.Mutex
	orders map[primitive.ObjectID]*models.Order
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[primitive.ObjectID]*models.Order)}
}

func (r *stubOrderRepo) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	r.orders[order.ID] = order
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	clone := *o
	return &clone, nil
}

func (r *stubOrderRepo) FindByUserID(_ context.Context, _ primitive.ObjectID, _, _ int) ([]models.Order, int64, error) {
	return nil, 0, nil
}

func (r *stubOrderRepo) FindAll(_ context.Context, _, _ int) ([]models.Order, int64, error) {
	return nil, 0, nil
}

func (r *stubOrderRepo) SetPaid(_ context.Context, id primitive.ObjectID, paidAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	o.IsPaid = true
	o.PaidAt = &paidAt
	return nil
}

func (r *stubOrderRepo) SetDelivered(_ context.Context, id primitive.ObjectID, deliveredAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	o.IsDelivered = true
	o.DeliveredAt = &deliveredAt
	return nil
}

func (r *stubOrderRepo) SetCheckoutSession(_ context.Context, id primitive.ObjectID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	o.CheckoutSessionID = sessionID
	return nil
}

func (r *stubOrderRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.orders, id)
	return nil
}

func (r *stubOrderRepo) Totals(_ context.Context) (*repository.OrderTotals, error) {
	return &repository.OrderTotals{}, nil
}

type stubProductRepo struct{}

func (stubProductRepo) FindByID(_ context.Context, _ primitive.ObjectID) (*models.Product, error) {
	return nil, mongo.ErrNoDocuments
}
func (stubProductRepo) FindByName(_ context.Context, _ string) (*models.Product, error) {
	return nil, mongo.ErrNoDocuments
}
func (stubProductRepo) Find(_ context.Context, _ bson.M, _, _ int) ([]models.Product, int64, error) {
	return nil, 0, nil
}
func (stubProductRepo) Create(_ context.Context, _ *models.Product) error { return nil }
func (stubProductRepo) Update(_ context.Context, _ primitive.ObjectID, _ bson.M) error {
	return nil
}
func (stubProductRepo) Delete(_ context.Context, _ primitive.ObjectID) error { return nil }
func (stubProductRepo) SetRating(_ context.Context, _ primitive.ObjectID, _ float64, _ int) error {
	return nil
}
func (stubProductRepo) Count(_ context.Context) (int64, error) { return 0, nil }
func (stubProductRepo) EnsureIndexes(_ context.Context) error  { return nil }

type stubUserRepo struct {
	user *models.User
}

func (r *stubUserRepo) Create(_ context.Context, _ *models.User) error { return nil }
func (r *stubUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if r.user != nil && r.user.ID == id {
		clone := *r.user
		return &clone, nil
	}
	return nil, mongo.ErrNoDocuments
}
func (r *stubUserRepo) FindByEmail(_ context.Context, _ string) (*models.User, error) {
	return nil, mongo.ErrNoDocuments
}
func (r *stubUserRepo) SetVerified(_ context.Context, _ primitive.ObjectID) error { return nil }
func (r *stubUserRepo) SetPassword(_ context.Context, _ primitive.ObjectID, _ string) error {
	return nil
}
func (r *stubUserRepo) AddToWishlist(_ context.Context, _, _ primitive.ObjectID) error { return nil }
func (r *stubUserRepo) RemoveFromWishlist(_ context.Context, _, _ primitive.ObjectID) error {
	return nil
}
func (r *stubUserRepo) Count(_ context.Context) (int64, error) { return 0, nil }
func (r *stubUserRepo) EnsureIndexes(_ context.Context) error  { return nil }

type stubOTPStore struct{}

func (stubOTPStore) Set(_ context.Context, _, _, _ string, _ time.Duration) error { return nil }
func (stubOTPStore) Get(_ context.Context, _, _ string) (string, error)           { return "", nil }
func (stubOTPStore) Delete(_ context.Context, _, _ string) error                  { return nil }

type recordingSender struct {
	mu   sync.Mutex
	sent []string
}

func (s *recordingSender) SendEmail(_ context.Context, to, _ string, _ string) (services.SendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, to)
	return services.SendResult{MessageID: "m-1", SentAt: time.Now()}, nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

// --- Fixture ---

type webhookFixture struct {
	router    *gin.Engine
	orderRepo *stubOrderRepo
	sender    *recordingSender
	user      *models.User
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()
	log := zap.NewNop()

	orderRepo := newStubOrderRepo()
	user := &models.User{
		ID:         primitive.NewObjectID(),
		Name:       "Ramesh Kumar",
		Email:      "ramesh@example.com",
		Role:       models.RoleUser,
		IsVerified: true,
	}
	userRepo := &stubUserRepo{user: user}
	sender := &recordingSender{}

	orderService := services.NewOrderService(orderRepo, stubProductRepo{}, services.PricePolicy{ShippingFlatFee: 50, FreeShippingAbove: 10000, TaxRate: 0.05}, log)
	checkoutService := services.NewCheckoutService(orderRepo, stubProductRepo{}, "sk_test_dummy", webhookSecret, "pk_test_dummy", "http://localhost:3000", log)
	invoiceService := services.NewInvoiceService(log)
	authService := services.NewAuthService(userRepo, stubOTPStore{}, sender, "test-secret", log)

	pc := controllers.NewPaymentController(checkoutService, orderService, invoiceService, authService, sender, nil, "", log)

	router := gin.New()
	router.POST("/api/payments/webhook", pc.StripeWebhook)

	return &webhookFixture{router: router, orderRepo: orderRepo, sender: sender, user: user}
}

func (f *webhookFixture) addOrder(t *testing.T) *models.Order {
	t.Helper()
	order := &models.Order{
		User: f.user.ID,
		OrderItems: []models.OrderItem{
			{Product: primitive.NewObjectID(), Name: "Galaxy A55", Qty: 2, Price: 1000},
		},
		ShippingAddress: models.ShippingAddress{FullName: "Ramesh Kumar", Address: "12 MG Road", City: "Chennai", State: "TN", PostalCode: "600001", Country: "India"},
		ItemsPrice:      2000,
		ShippingPrice:   50,
		TaxPrice:        100,
		TotalPrice:      2150,
	}
	require.NoError(t, f.orderRepo.Create(context.Background(), order))
	return order
}

func checkoutCompletedPayload(orderID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_test_1",
		"api_version": %q,
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_test_1",
				"metadata": {"order_id": %q}
			}
		}
	}`, stripe.APIVersion, orderID))
}

func signPayload(payload []byte, secret string, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func (f *webhookFixture) post(payload []byte, signature string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// --- Tests ---

func TestWebhook_InvalidSignatureRejected(t *testing.T) {
	f := newWebhookFixture(t)
	order := f.addOrder(t)

	payload := checkoutCompletedPayload(order.ID.Hex())

	w := f.post(payload, "t=123,v1=deadbeef")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.post(payload, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The order must be untouched.
	stored, err := f.orderRepo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsPaid)
	assert.Equal(t, 0, f.sender.count())
}

func TestWebhook_MarksOrderPaidAndEmailsInvoice(t *testing.T) {
	f := newWebhookFixture(t)
	order := f.addOrder(t)

	payload := checkoutCompletedPayload(order.ID.Hex())
	w := f.post(payload, signPayload(payload, webhookSecret, time.Now()))
	assert.Equal(t, http.StatusOK, w.Code)

	stored, err := f.orderRepo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsPaid)
	require.NotNil(t, stored.PaidAt)
	assert.Equal(t, 1, f.sender.count())
}

func TestWebhook_DuplicateDeliveryKeepsPaidAtAndResendsInvoice(t *testing.T) {
	f := newWebhookFixture(t)
	order := f.addOrder(t)

	payload := checkoutCompletedPayload(order.ID.Hex())
	w := f.post(payload, signPayload(payload, webhookSecret, time.Now()))
	require.Equal(t, http.StatusOK, w.Code)

	first, err := f.orderRepo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, first.PaidAt)
	firstPaidAt := *first.PaidAt

	w = f.post(payload, signPayload(payload, webhookSecret, time.Now()))
	assert.Equal(t, http.StatusOK, w.Code)

	second, err := f.orderRepo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, firstPaidAt, *second.PaidAt)
	assert.Equal(t, 2, f.sender.count())
}

func TestWebhook_UnknownOrderAcknowledged(t *testing.T) {
	f := newWebhookFixture(t)

	payload := checkoutCompletedPayload(primitive.NewObjectID().Hex())
	w := f.post(payload, signPayload(payload, webhookSecret, time.Now()))

	// Logged and acknowledged; retrying will not help the provider.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, f.sender.count())
}

func TestWebhook_UnrelatedEventIgnored(t *testing.T) {
	f := newWebhookFixture(t)
	order := f.addOrder(t)

	payload := []byte(fmt.Sprintf(`{
		"id": "evt_test_2",
		"api_version": %q,
		"type": "payment_intent.created",
		"data": {"object": {"id": "pi_test_1"}}
	}`, stripe.APIVersion))

	w := f.post(payload, signPayload(payload, webhookSecret, time.Now()))
	assert.Equal(t, http.StatusOK, w.Code)

	stored, err := f.orderRepo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsPaid)
}
