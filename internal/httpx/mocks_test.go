package httpx

import (
	"context"
	"time"

	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/auth"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/bookings"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/catalog"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/checkout"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/orders"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/payments"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/reconcile"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/redisx"
	"github.com/stretchr/testify/mock"
)

type mockCatalog struct{ mock.Mock }

func (m *mockCatalog) CreatePackage(ctx context.Context, in catalog.PackageInput) (catalog.Package, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(catalog.Package), args.Error(1)
}

func (m *mockCatalog) UpdatePackage(ctx context.Context, id string, in catalog.PackageInput) (catalog.Package, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(catalog.Package), args.Error(1)
}

func (m *mockCatalog) DeletePackage(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCatalog) GetPackage(ctx context.Context, id string) (catalog.Package, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(catalog.Package), args.Error(1)
}

func (m *mockCatalog) GetPackageBySlug(ctx context.Context, slug string, activeOnly bool) (catalog.Package, error) {
	args := m.Called(ctx, slug, activeOnly)
	return args.Get(0).(catalog.Package), args.Error(1)
}

func (m *mockCatalog) ListPackages(ctx context.Context, activeOnly bool) ([]catalog.Package, error) {
	args := m.Called(ctx, activeOnly)
	return args.Get(0).([]catalog.Package), args.Error(1)
}

func (m *mockCatalog) ListFAQs(ctx context.Context, activeOnly bool) ([]catalog.FAQ, error) {
	args := m.Called(ctx, activeOnly)
	return args.Get(0).([]catalog.FAQ), args.Error(1)
}

func (m *mockCatalog) CreateFAQ(ctx context.Context, in catalog.FAQInput) (catalog.FAQ, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(catalog.FAQ), args.Error(1)
}

func (m *mockCatalog) UpdateFAQ(ctx context.Context, id string, in catalog.FAQInput) (catalog.FAQ, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(catalog.FAQ), args.Error(1)
}

func (m *mockCatalog) DeleteFAQ(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCatalog) GetContent(ctx context.Context, section string) (catalog.Content, error) {
	args := m.Called(ctx, section)
	return args.Get(0).(catalog.Content), args.Error(1)
}

func (m *mockCatalog) ListContent(ctx context.Context) ([]catalog.Content, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.Content), args.Error(1)
}

func (m *mockCatalog) UpsertContent(ctx context.Context, c catalog.Content) (catalog.Content, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(catalog.Content), args.Error(1)
}

type mockCheckout struct{ mock.Mock }

func (m *mockCheckout) CreateBooking(ctx context.Context, req checkout.BookingRequest) (bookings.Booking, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(bookings.Booking), args.Error(1)
}

func (m *mockCheckout) OpenPayment(ctx context.Context, req checkout.PaymentRequest) (checkout.PaymentResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(checkout.PaymentResult), args.Error(1)
}

type mockBookingStore struct{ mock.Mock }

func (m *mockBookingStore) Get(ctx context.Context, id string) (bookings.Booking, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(bookings.Booking), args.Error(1)
}

func (m *mockBookingStore) UpdateStatus(ctx context.Context, id string, u bookings.StatusUpdate) (bookings.Booking, error) {
	args := m.Called(ctx, id, u)
	return args.Get(0).(bookings.Booking), args.Error(1)
}

func (m *mockBookingStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockBookingStore) List(ctx context.Context, f bookings.Filter) ([]bookings.Booking, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]bookings.Booking), args.Error(1)
}

type mockReconciler struct{ mock.Mock }

func (m *mockReconciler) HandleEvent(ctx context.Context, ev payments.Event) (reconcile.Outcome, error) {
	args := m.Called(ctx, ev)
	return args.Get(0).(reconcile.Outcome), args.Error(1)
}

func (m *mockReconciler) Confirm(ctx context.Context, orderID, intentID string) (orders.Order, error) {
	args := m.Called(ctx, orderID, intentID)
	return args.Get(0).(orders.Order), args.Error(1)
}

func (m *mockReconciler) Sweep(ctx context.Context, cutoff time.Time) (reconcile.SweepReport, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(reconcile.SweepReport), args.Error(1)
}

type mockEvents struct{ mock.Mock }

func (m *mockEvents) ParseEvent(payload []byte, header string) (payments.Event, error) {
	args := m.Called(payload, header)
	return args.Get(0).(payments.Event), args.Error(1)
}

type mockOrders struct{ mock.Mock }

func (m *mockOrders) Get(ctx context.Context, id string) (orders.Order, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(orders.Order), args.Error(1)
}

func (m *mockOrders) List(ctx context.Context, f orders.Filter) ([]orders.OrderWithBooking, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]orders.OrderWithBooking), args.Error(1)
}

type mockAuth struct{ mock.Mock }

func (m *mockAuth) Login(ctx context.Context, email, password string) (auth.Token, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(auth.Token), args.Error(1)
}

type memCache struct{ views map[string]orders.StatusView }

func (c *memCache) Get(_ context.Context, id string) (orders.StatusView, bool, error) {
	v, ok := c.views[id]
	return v, ok, nil
}

func (c *memCache) PutIfAbsent(_ context.Context, v orders.StatusView) (bool, error) {
	if _, ok := c.views[v.OrderID]; ok {
		return false, nil
	}
	c.views[v.OrderID] = v
	return true, nil
}

type denyAll struct{}

func (denyAll) Allow(context.Context, string) (redisx.Decision, error) {
	return redisx.Decision{Allowed: false, Limit: 20, RetryAfter: 2500 * time.Millisecond}, nil
}
