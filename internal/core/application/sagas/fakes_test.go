package sagas_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/core/domain/model/restaurant"
	"ordering/internal/core/domain/services"
	"ordering/internal/core/ports"
	"ordering/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memOrderRepository stores copies so that only Update makes changes visible,
// and enforces the version check like the real repository.
type memOrderRepository struct {
	mu     sync.Mutex
	orders map[kernel.UUID]*order.Order
}

func newMemOrderRepository() *memOrderRepository {
	return &memOrderRepository{orders: make(map[kernel.UUID]*order.Order)}
}

func copyOrder(o *order.Order, version int64) *order.Order {
	c, err := order.RestoreOrder(order.RestoreParams{
		ID:              o.ID(),
		CustomerID:      o.CustomerID(),
		RestaurantID:    o.RestaurantID(),
		DeliveryAddress: o.DeliveryAddress(),
		Price:           o.Price(),
		Items:           o.Items(),
		TrackingID:      o.TrackingID(),
		SagaID:          o.SagaID(),
		Status:          o.Status(),
		FailureMessages: o.FailureMessages(),
		Version:         version,
	})
	if err != nil {
		panic(err)
	}
	return c
}

func (r *memOrderRepository) Add(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID()] = copyOrder(o, 0)
	return nil
}

func (r *memOrderRepository) Update(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[o.ID()]
	if !ok {
		return errs.NewObjectNotFoundError("order", o.ID().String())
	}
	if stored.Version() != o.Version() {
		return errs.NewConcurrencyConflictError("order", o.ID().String(), o.Version())
	}
	r.orders[o.ID()] = copyOrder(o, o.Version()+1)
	return nil
}

func (r *memOrderRepository) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return copyOrder(stored, stored.Version()), nil
}

func (r *memOrderRepository) GetByTrackingID(_ context.Context, trackingID kernel.UUID) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.TrackingID().IsEqual(trackingID) {
			return copyOrder(o, o.Version()), nil
		}
	}
	return nil, errs.NewObjectNotFoundError("order", trackingID.String())
}

// bumpVersion simulates a concurrent writer.
func (r *memOrderRepository) bumpVersion(id kernel.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := r.orders[id]
	r.orders[id] = copyOrder(o, o.Version()+1)
}

type fakeUoW struct {
	repo      ports.OrderRepository
	beginErr  error
	committed int
}

func (u *fakeUoW) Begin(_ context.Context) error          { return u.beginErr }
func (u *fakeUoW) Commit(_ context.Context) error         { u.committed++; return nil }
func (u *fakeUoW) Rollback(_ context.Context) error       { return nil }
func (u *fakeUoW) OrderRepository() ports.OrderRepository { return u.repo }

type fakeUoWFactory struct {
	uow *fakeUoW
}

func (f *fakeUoWFactory) Create() ports.OrderUnitOfWork { return f.uow }

type MockRestaurantPublisher struct{ mock.Mock }

func (m *MockRestaurantPublisher) Publish(ctx context.Context, event order.OrderPaidEvent) {
	m.Called(ctx, event)
}

type MockPaymentCancelPublisher struct{ mock.Mock }

func (m *MockPaymentCancelPublisher) Publish(ctx context.Context, event order.OrderCancelledEvent) {
	m.Called(ctx, event)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newStoredPendingOrder creates the 25.00 two item order (10.00 + 15.00),
// initiates it and stores it.
func newStoredPendingOrder(t *testing.T, repo *memOrderRepository) *order.Order {
	t.Helper()

	burgerID, saladID := kernel.NewUUID(), kernel.NewUUID()
	burger, err := restaurant.NewProduct(burgerID, "burger", kernel.NewMoneyFromFloat(10), true)
	require.NoError(t, err)
	salad, err := restaurant.NewProduct(saladID, "salad", kernel.NewMoneyFromFloat(15), true)
	require.NoError(t, err)
	r, err := restaurant.NewRestaurant(kernel.NewUUID(), true, []restaurant.Product{burger, salad})
	require.NoError(t, err)

	items := make([]*order.OrderItem, 0, 2)
	for id, price := range map[kernel.UUID]float64{burgerID: 10, saladID: 15} {
		ref, refErr := order.NewProductReference(id)
		require.NoError(t, refErr)
		item, itemErr := order.NewOrderItem(ref, 1, kernel.NewMoneyFromFloat(price), kernel.NewMoneyFromFloat(price))
		require.NoError(t, itemErr)
		items = append(items, item)
	}

	addr, err := kernel.NewStreetAddress(kernel.NewUUID(), "Main St 1", "1000", "Amsterdam")
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), r.ID(), addr, kernel.NewMoneyFromFloat(25), items)
	require.NoError(t, err)

	_, err = services.NewOrderDomainService(discardLogger()).ValidateAndInitiateOrder(t.Context(), o, r)
	require.NoError(t, err)
	require.NoError(t, repo.Add(t.Context(), o))
	return o
}
