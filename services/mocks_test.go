package services_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rameshmuthu-dev/mobilemania-backend/models"
	"github.com/rameshmuthu-dev/mobilemania-backend/repository"
	"github.com/rameshmuthu-dev/mobilemania-backend/services"
)

// --- In-memory ProductRepository ---

type memProductRepo struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]*models.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[primitive.ObjectID]*models.Product)}
}

func (r *memProductRepo) add(p *models.Product) *models.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	r.products[p.ID] = p
	return p
}

func (r *memProductRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	clone := *p
	return &clone, nil
}

func (r *memProductRepo) FindByName(_ context.Context, name string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Name == name {
			clone := *p
			return &clone, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *memProductRepo) Find(_ context.Context, filter bson.M, page, limit int) ([]models.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Product
	for _, p := range r.products {
		if matchProduct(p, filter) {
			out = append(out, *p)
		}
	}
	total := int64(len(out))
	start := (page - 1) * limit
	if start > len(out) {
		start = len(out)
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func matchProduct(p *models.Product, filter bson.M) bool {
	if v, ok := filter["category"]; ok && p.Category != v {
		return false
	}
	if v, ok := filter["subCategory"]; ok && p.SubCategory != v {
		return false
	}
	if v, ok := filter["brand"]; ok && p.Brand != v {
		return false
	}
	if v, ok := filter["name"]; ok {
		re := v.(bson.M)["$regex"].(string)
		if !strings.Contains(strings.ToLower(p.Name), strings.ToLower(re)) {
			return false
		}
	}
	if v, ok := filter["price"]; ok {
		bounds := v.(bson.M)
		if min, ok := bounds["$gte"]; ok && p.Price < min.(float64) {
			return false
		}
		if max, ok := bounds["$lte"]; ok && p.Price > max.(float64) {
			return false
		}
	}
	return true
}

func (r *memProductRepo) Create(_ context.Context, product *models.Product) error {
	r.add(product)
	return nil
}

func (r *memProductRepo) Update(_ context.Context, id primitive.ObjectID, updates bson.M) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if v, ok := updates["name"]; ok {
		p.Name = v.(string)
	}
	if v, ok := updates["price"]; ok {
		p.Price = v.(float64)
	}
	if v, ok := updates["countInStock"]; ok {
		p.CountInStock = v.(int)
	}
	return nil
}

func (r *memProductRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(r.products, id)
	return nil
}

func (r *memProductRepo) SetRating(_ context.Context, id primitive.ObjectID, rating float64, numReviews int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	p.Rating = rating
	p.NumReviews = numReviews
	return nil
}

func (r *memProductRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.products)), nil
}

func (r *memProductRepo) EnsureIndexes(_ context.Context) error { return nil }

// --- In-memory OrderRepository ---

type memOrderRepo struct {
	mu     sync.Mutex
	orders map[primitive.ObjectID]*models.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[primitive.ObjectID]*models.Order)}
}

func (r *memOrderRepo) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order.ID = primitive.NewObjectID()
	order.CreatedAt = time.Now().UTC()
	order.UpdatedAt = order.CreatedAt
	r.orders[order.ID] = order
	return nil
}

func (r *memOrderRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	clone := *o
	return &clone, nil
}

func (r *memOrderRepo) FindByUserID(_ context.Context, userID primitive.ObjectID, page, limit int) ([]models.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, o := range r.orders {
		if o.User == userID {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memOrderRepo) FindAll(_ context.Context, page, limit int) ([]models.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, o := range r.orders {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *memOrderRepo) SetPaid(_ context.Context, id primitive.ObjectID, paidAt time.Time) error {
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

func (r *memOrderRepo) SetDelivered(_ context.Context, id primitive.ObjectID, deliveredAt time.Time) error {
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

func (r *memOrderRepo) SetCheckoutSession(_ context.Context, id primitive.ObjectID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	o.CheckoutSessionID = sessionID
	return nil
}

func (r *memOrderRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(r.orders, id)
	return nil
}

func (r *memOrderRepo) Totals(_ context.Context) (*repository.OrderTotals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	totals := &repository.OrderTotals{TotalOrders: int64(len(r.orders))}
	for _, o := range r.orders {
		if o.IsPaid {
			totals.PaidOrders++
			totals.GrossSales += o.TotalPrice
		}
	}
	return totals, nil
}

// --- In-memory ReviewRepository ---

type memReviewRepo struct {
	mu      sync.Mutex
	reviews map[primitive.ObjectID]*models.Review
}

func newMemReviewRepo() *memReviewRepo {
	return &memReviewRepo{reviews: make(map[primitive.ObjectID]*models.Review)}
}

func (r *memReviewRepo) Create(_ context.Context, review *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reviews {
		if existing.Product == review.Product && existing.User == review.User {
			return mongo.CommandError{Code: 11000, Message: "duplicate key"}
		}
	}
	review.ID = primitive.NewObjectID()
	review.CreatedAt = time.Now().UTC()
	review.UpdatedAt = review.CreatedAt
	r.reviews[review.ID] = review
	return nil
}

func (r *memReviewRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rev, ok := r.reviews[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	clone := *rev
	return &clone, nil
}

func (r *memReviewRepo) FindByProduct(_ context.Context, productID primitive.ObjectID) ([]models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Review
	for _, rev := range r.reviews {
		if rev.Product == productID {
			out = append(out, *rev)
		}
	}
	return out, nil
}

func (r *memReviewRepo) FindByProductAndUser(_ context.Context, productID, userID primitive.ObjectID) (*models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rev := range r.reviews {
		if rev.Product == productID && rev.User == userID {
			clone := *rev
			return &clone, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *memReviewRepo) Update(_ context.Context, id primitive.ObjectID, updates bson.M) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rev, ok := r.reviews[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if v, ok := updates["rating"]; ok {
		rev.Rating = v.(float64)
	}
	if v, ok := updates["comment"]; ok {
		rev.Comment = v.(string)
	}
	return nil
}

func (r *memReviewRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(r.reviews, id)
	return nil
}

func (r *memReviewRepo) EnsureIndexes(_ context.Context) error { return nil }

// --- In-memory UserRepository ---

type memUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *memUserRepo) add(u *models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	r.users[u.ID] = u
	return u
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return mongo.CommandError{Code: 11000, Message: "duplicate key"}
		}
	}
	user.ID = primitive.NewObjectID()
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	clone := *u
	return &clone, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *memUserRepo) SetVerified(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	u.IsVerified = true
	return nil
}

func (r *memUserRepo) SetPassword(_ context.Context, id primitive.ObjectID, hashed string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	u.Password = hashed
	return nil
}

func (r *memUserRepo) AddToWishlist(_ context.Context, userID, productID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	for _, id := range u.Wishlist {
		if id == productID {
			return nil
		}
	}
	u.Wishlist = append(u.Wishlist, productID)
	return nil
}

func (r *memUserRepo) RemoveFromWishlist(_ context.Context, userID, productID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	kept := u.Wishlist[:0]
	for _, id := range u.Wishlist {
		if id != productID {
			kept = append(kept, id)
		}
	}
	u.Wishlist = kept
	return nil
}

func (r *memUserRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *memUserRepo) EnsureIndexes(_ context.Context) error { return nil }

// --- In-memory OTPStore ---

type memOTPStore struct {
	mu    sync.Mutex
	codes map[string]string
}

func newMemOTPStore() *memOTPStore {
	return &memOTPStore{codes: make(map[string]string)}
}

func (s *memOTPStore) Set(_ context.Context, purpose, email, code string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[purpose+":"+email] = code
	return nil
}

func (s *memOTPStore) Get(_ context.Context, purpose, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[purpose+":"+email], nil
}

func (s *memOTPStore) Delete(_ context.Context, purpose, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, purpose+":"+email)
	return nil
}

// --- Fake email sender ---

type fakeSender struct {
	mu   sync.Mutex
	sent []sentEmail
}

type sentEmail struct {
	To      string
	Subject string
	Body    string
}

func (f *fakeSender) SendEmail(_ context.Context, to, subject, htmlBody string) (services.SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentEmail{To: to, Subject: subject, Body: htmlBody})
	return services.SendResult{MessageID: "test-message", SentAt: time.Now()}, nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}
