package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agrobridge/tradeapi/internal/clock"
	"github.com/agrobridge/tradeapi/internal/domain"
	"github.com/agrobridge/tradeapi/internal/repository"
	"github.com/agrobridge/tradeapi/pkg/errors"
)

// In-memory repositories backing the service tests. UpdateStatus keeps the
// conditional-write contract of the real implementations: a mismatch between
// the expected and stored status reports ErrConflict.

type fakeOfferRepo struct {
	mu     sync.Mutex
	offers map[uuid.UUID]*domain.Offer
}

func newFakeOfferRepo() *fakeOfferRepo {
	return &fakeOfferRepo{offers: make(map[uuid.UUID]*domain.Offer)}
}

func copyOffer(o *domain.Offer) *domain.Offer {
	c := *o
	c.History = append([]domain.HistoryEntry(nil), o.History...)
	return &c
}

func (r *fakeOfferRepo) Create(ctx context.Context, offer *domain.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offers[offer.ID] = copyOffer(offer)
	return nil
}

func (r *fakeOfferRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	offer, ok := r.offers[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "offer", ID: id.String()}
	}
	return copyOffer(offer), nil
}

func (r *fakeOfferRepo) UpdateTerms(ctx context.Context, offer *domain.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.offers[offer.ID]
	if !ok {
		return &errors.ErrNotFound{Resource: "offer", ID: offer.ID.String()}
	}
	if !stored.IsEditable() {
		return &errors.ErrConflict{Resource: "offer", ID: offer.ID.String()}
	}
	updated := copyOffer(offer)
	updated.Status = stored.Status
	updated.History = stored.History
	r.offers[offer.ID] = updated
	return nil
}

func (r *fakeOfferRepo) UpdateStatus(ctx context.Context, id uuid.UUID, expected, next domain.OfferStatus, patch repository.OfferStatusPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.offers[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "offer", ID: id.String()}
	}
	if stored.Status != expected {
		return &errors.ErrConflict{Resource: "offer", ID: id.String()}
	}
	stored.Status = next
	if patch.ReviewedBy != nil {
		stored.ReviewedBy = patch.ReviewedBy
	}
	if patch.ReviewedAt != nil {
		stored.ReviewedAt = patch.ReviewedAt
	}
	if patch.RejectionReason != nil {
		stored.RejectionReason = patch.RejectionReason
	}
	return nil
}

func (r *fakeOfferRepo) AppendHistory(ctx context.Context, id uuid.UUID, entry domain.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.offers[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "offer", ID: id.String()}
	}
	stored.History = append(stored.History, entry)
	return nil
}

func (r *fakeOfferRepo) List(ctx context.Context, filter repository.OfferFilter) ([]*domain.Offer, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Offer
	for _, offer := range r.offers {
		if filter.SupplierID != nil && offer.SupplierID != *filter.SupplierID {
			continue
		}
		if filter.ProductID != nil && offer.ProductID != *filter.ProductID {
			continue
		}
		if filter.Status != nil && offer.Status != *filter.Status {
			continue
		}
		out = append(out, copyOffer(offer))
	}
	return out, len(out), nil
}

func (r *fakeOfferRepo) ListExpirable(ctx context.Context, now time.Time) ([]*domain.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Offer
	for _, offer := range r.offers {
		if !offer.Status.IsTerminal() && now.After(offer.ExpiresAt) {
			out = append(out, copyOffer(offer))
		}
	}
	return out, nil
}

func (r *fakeOfferRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.offers[id]; !ok {
		return &errors.ErrNotFound{Resource: "offer", ID: id.String()}
	}
	delete(r.offers, id)
	return nil
}

type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    map[uuid.UUID]*domain.Order
	sequences map[string]int64
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:    make(map[uuid.UUID]*domain.Order),
		sequences: make(map[string]int64),
	}
}

func copyOrder(o *domain.Order) *domain.Order {
	c := *o
	c.Items = append([]domain.OrderItem(nil), o.Items...)
	c.Documents = append([]domain.Document(nil), o.Documents...)
	c.History = append([]domain.HistoryEntry(nil), o.History...)
	return &c
}

func (r *fakeOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = copyOrder(order)
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	return copyOrder(order), nil
}

func (r *fakeOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, expected, next domain.OrderStatus, patch repository.OrderStatusPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	if stored.Status != expected {
		return &errors.ErrConflict{Resource: "order", ID: id.String()}
	}
	stored.Status = next
	stored.UpdatedBy = patch.UpdatedBy
	if patch.ActualDeliveryDate != nil {
		stored.DeliveryDetails.ActualDeliveryDate = patch.ActualDeliveryDate
	}
	if patch.PaymentStatus != nil {
		stored.PaymentDetails.Status = *patch.PaymentStatus
	}
	if patch.PaidAt != nil {
		stored.PaymentDetails.PaidAt = patch.PaidAt
	}
	return nil
}

func (r *fakeOrderRepo) UpdateDetails(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[order.ID]
	if !ok {
		return &errors.ErrNotFound{Resource: "order", ID: order.ID.String()}
	}
	if !stored.IsDetailUpdatable() {
		return &errors.ErrConflict{Resource: "order", ID: order.ID.String()}
	}
	stored.DeliveryDetails = order.DeliveryDetails
	stored.PaymentDetails = order.PaymentDetails
	stored.Notes = order.Notes
	stored.UpdatedBy = order.UpdatedBy
	return nil
}

func (r *fakeOrderRepo) AppendHistory(ctx context.Context, id uuid.UUID, entry domain.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	stored.History = append(stored.History, entry)
	return nil
}

func (r *fakeOrderRepo) AddDocument(ctx context.Context, doc *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[doc.OrderID]
	if !ok {
		return &errors.ErrNotFound{Resource: "order", ID: doc.OrderID.String()}
	}
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	stored.Documents = append(stored.Documents, *doc)
	return nil
}

func (r *fakeOrderRepo) NextOrderNumber(ctx context.Context, period string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sequences[period]++
	return r.sequences[period], nil
}

func (r *fakeOrderRepo) List(ctx context.Context, filter repository.OrderFilter) ([]*domain.Order, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, order := range r.orders {
		if filter.SupplierID != nil && order.SupplierID != *filter.SupplierID {
			continue
		}
		if filter.CustomerID != nil && order.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		out = append(out, copyOrder(order))
	}
	return out, len(out), nil
}

type fakeProductRepo struct {
	products map[uuid.UUID]*domain.Product
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	return product, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "user", ID: id.String()}
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "user"}
}

func (r *fakeUserRepo) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	var out []*domain.User
	for _, user := range r.users {
		if user.Role == role && user.IsActive {
			out = append(out, user)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.users[user.ID] = user
	return nil
}

type fakeActivityRepo struct {
	mu         sync.Mutex
	activities []*domain.Activity
	failWith   error
}

func (r *fakeActivityRepo) Create(ctx context.Context, activity *domain.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	r.activities = append(r.activities, activity)
	return nil
}

func (r *fakeActivityRepo) List(ctx context.Context, filter repository.ActivityFilter) ([]*domain.Activity, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Activity
	for _, a := range r.activities {
		if filter.UserID != nil && a.UserID != *filter.UserID {
			continue
		}
		if filter.Type != nil && a.Type != *filter.Type {
			continue
		}
		if filter.RelatedKind != nil && a.RelatedKind != *filter.RelatedKind {
			continue
		}
		if filter.RelatedID != nil && a.RelatedID != *filter.RelatedID {
			continue
		}
		out = append(out, a)
	}
	return out, len(out), nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []*domain.Notification
	lastListOpts  repository.ListOptions
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.ExpiresAt.IsZero() {
		n.ExpiresAt = time.Now().Add(domain.DefaultNotificationTTL)
	}
	r.notifications = append(r.notifications, n)
	return nil
}

func (r *fakeNotificationRepo) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, opts repository.ListOptions) ([]*domain.Notification, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastListOpts = opts
	var out []*domain.Notification
	for _, n := range r.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, len(out), nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return &errors.ErrNotFound{Resource: "notification", ID: id.String()}
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) forUser(userID uuid.UUID) []*domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// fixture wires the services over in-memory repositories with a frozen clock
type fixture struct {
	offers        *fakeOfferRepo
	orders        *fakeOrderRepo
	products      *fakeProductRepo
	users         *fakeUserRepo
	activities    *fakeActivityRepo
	notifications *fakeNotificationRepo
	services      *Services
	now           time.Time

	supplier domain.Actor
	manager  domain.Actor
	admin    domain.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	now := time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)
	f := &fixture{
		offers:        newFakeOfferRepo(),
		orders:        newFakeOrderRepo(),
		products:      &fakeProductRepo{products: make(map[uuid.UUID]*domain.Product)},
		users:         &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)},
		activities:    &fakeActivityRepo{},
		notifications: &fakeNotificationRepo{},
		now:           now,
	}

	repos := &repository.Repositories{
		Offer:        f.offers,
		Order:        f.orders,
		Product:      f.products,
		User:         f.users,
		Activity:     f.activities,
		Notification: f.notifications,
	}
	f.services = New(repos, clock.Fixed(now), zap.NewNop())

	f.supplier = f.seedUser("Farm Co", domain.RoleSupplier)
	f.manager = f.seedUser("Ops Manager", domain.RoleManager)
	f.admin = f.seedUser("Admin", domain.RoleAdmin)
	return f
}

func (f *fixture) seedUser(name string, role domain.Role) domain.Actor {
	user := &domain.User{
		ID:       uuid.New(),
		Name:     name,
		Email:    uuid.NewString() + "@example.com",
		Role:     role,
		IsActive: true,
	}
	f.users.users[user.ID] = user
	return domain.Actor{ID: user.ID, Role: role}
}

func (f *fixture) seedProduct(name string) *domain.Product {
	product := &domain.Product{
		ID:       uuid.New(),
		Name:     name,
		Code:     "P-" + uuid.NewString()[:8],
		IsActive: true,
	}
	f.products.products[product.ID] = product
	return product
}

func (f *fixture) seedOffer(supplier domain.Actor, status domain.OfferStatus) *domain.Offer {
	product := f.seedProduct("Red Apples")
	offer := &domain.Offer{
		ID:         uuid.New(),
		ProductID:  product.ID,
		SupplierID: supplier.ID,
		Price:      domain.Price{Value: 2.5, Currency: domain.CurrencyUSD},
		Quantity:   1000,
		Unit:       domain.UnitKg,
		Status:     status,
		ExpiresAt:  f.now.Add(domain.DefaultOfferTTL),
		DeliveryTerms: domain.DeliveryTerms{
			Region:         "Ganja",
			EstimatedDays:  5,
			ShippingMethod: "truck",
			Incoterm:       "FCA",
		},
		PaymentTerms: domain.PaymentTerms{Method: "bank_transfer", DaysToPayment: 14},
		History: []domain.HistoryEntry{{
			Status:    string(status),
			UpdatedBy: supplier.ID,
			UpdatedAt: f.now.Add(-time.Hour),
			Note:      "Offer created",
		}},
		CreatedAt: f.now.Add(-time.Hour),
		UpdatedAt: f.now.Add(-time.Hour),
	}
	f.offers.offers[offer.ID] = offer
	return offer
}

func (f *fixture) seedOrder(supplier, customer domain.Actor, status domain.OrderStatus, paymentMethod string) *domain.Order {
	product := f.seedProduct("Red Apples")
	order := &domain.Order{
		ID:          uuid.New(),
		OrderNumber: "ORD-2503-000099",
		SupplierID:  supplier.ID,
		CustomerID:  customer.ID,
		OfferID:     uuid.New(),
		Items: []domain.OrderItem{{
			ID:        uuid.New(),
			ProductID: product.ID,
			Quantity:  1000,
			Price:     2.5,
			Unit:      domain.UnitKg,
			Subtotal:  2500,
		}},
		TotalAmount: 2500,
		Currency:    domain.CurrencyUSD,
		Status:      status,
		DeliveryDetails: domain.DeliveryDetails{
			Address:               "12 Harbor St",
			City:                  "Baku",
			Country:               "Azerbaijan",
			ContactPerson:         "R. Aliyev",
			ContactPhone:          "+994501234567",
			EstimatedDeliveryDate: f.now.Add(5 * 24 * time.Hour),
			ShippingMethod:        "truck",
		},
		PaymentDetails: domain.PaymentDetails{
			Method:  paymentMethod,
			Status:  domain.PaymentStatusPending,
			DueDate: f.now.Add(14 * 24 * time.Hour),
		},
		History: []domain.HistoryEntry{{
			Status:    string(status),
			UpdatedBy: customer.ID,
			UpdatedAt: f.now.Add(-time.Hour),
			Note:      "Order created",
		}},
		CreatedBy: customer.ID,
		UpdatedBy: customer.ID,
		CreatedAt: f.now.Add(-time.Hour),
		UpdatedAt: f.now.Add(-time.Hour),
	}
	f.orders.orders[order.ID] = order
	return order
}

// staleOfferReads makes every read report an out-of-date status, reproducing
// a writer whose entity changed between its permission check and the
// conditional write.
type staleOfferReads struct {
	repository.OfferRepository
	status domain.OfferStatus
}

func (r *staleOfferReads) GetByID(ctx context.Context, id uuid.UUID) (*domain.Offer, error) {
	offer, err := r.OfferRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	offer.Status = r.status
	return offer, nil
}

type staleOrderReads struct {
	repository.OrderRepository
	status domain.OrderStatus
}

func (r *staleOrderReads) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := r.OrderRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Status = r.status
	return order, nil
}

func (f *fixture) withStaleOfferReads(status domain.OfferStatus) *Services {
	repos := &repository.Repositories{
		Offer:        &staleOfferReads{OfferRepository: f.offers, status: status},
		Order:        f.orders,
		Product:      f.products,
		User:         f.users,
		Activity:     f.activities,
		Notification: f.notifications,
	}
	return New(repos, clock.Fixed(f.now), zap.NewNop())
}

func (f *fixture) withStaleOrderReads(status domain.OrderStatus) *Services {
	repos := &repository.Repositories{
		Offer:        f.offers,
		Order:        &staleOrderReads{OrderRepository: f.orders, status: status},
		Product:      f.products,
		User:         f.users,
		Activity:     f.activities,
		Notification: f.notifications,
	}
	return New(repos, clock.Fixed(f.now), zap.NewNop())
}

func offerTermsRequest(productID uuid.UUID) OfferTermsRequest {
	return OfferTermsRequest{
		ProductID:  productID.String(),
		PriceValue: 2.5,
		Currency:   "USD",
		Quantity:   1000,
		Unit:       "kg",
		Delivery: DeliveryTermsInput{
			Region:         "Ganja",
			EstimatedDays:  5,
			ShippingMethod: "truck",
			Incoterm:       "FCA",
		},
		Payment: PaymentTermsInput{Method: "bank_transfer", DaysToPayment: 14},
		Notes:   "first harvest",
	}
}

func createOrderRequest(offerID uuid.UUID, paymentMethod string, now time.Time) CreateOrderRequest {
	return CreateOrderRequest{
		OfferID: offerID.String(),
		Delivery: DeliveryDetailsInput{
			Address:               "12 Harbor St",
			City:                  "Baku",
			Country:               "Azerbaijan",
			ContactPerson:         "R. Aliyev",
			ContactPhone:          "+994501234567",
			EstimatedDeliveryDate: now.Add(5 * 24 * time.Hour),
			ShippingMethod:        "truck",
		},
		Payment: PaymentDetailsInput{
			Method:  paymentMethod,
			DueDate: now.Add(14 * 24 * time.Hour),
		},
	}
}
