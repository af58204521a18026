package order_test

import (
	"testing"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type itemSpec struct {
	catalogPrice float64
	price        float64
	quantity     int
	subtotal     float64
}

func money(v float64) kernel.Money {
	return kernel.NewMoneyFromFloat(v)
}

func newAddress(t *testing.T) kernel.StreetAddress {
	t.Helper()
	addr, err := kernel.NewStreetAddress(kernel.NewUUID(), "Main St 1", "1000", "Amsterdam")
	require.NoError(t, err)
	return addr
}

// newTransientOrder builds an order whose products are already confirmed
// with the given catalog prices.
func newTransientOrder(t *testing.T, price float64, specs ...itemSpec) *order.Order {
	t.Helper()

	items := make([]*order.OrderItem, 0, len(specs))
	productIDs := make([]kernel.UUID, 0, len(specs))
	for _, s := range specs {
		productID := kernel.NewUUID()
		product, err := order.NewProductReference(productID)
		require.NoError(t, err)
		item, err := order.NewOrderItem(product, s.quantity, money(s.price), money(s.subtotal))
		require.NoError(t, err)
		items = append(items, item)
		productIDs = append(productIDs, productID)
	}

	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), newAddress(t), money(price), items)
	require.NoError(t, err)

	for n, s := range specs {
		require.NoError(t, o.ConfirmProduct(productIDs[n], "product", money(s.catalogPrice)))
	}
	return o
}

func newValidTransientOrder(t *testing.T) *order.Order {
	t.Helper()
	return newTransientOrder(t, 25,
		itemSpec{catalogPrice: 10, price: 10, quantity: 1, subtotal: 10},
		itemSpec{catalogPrice: 15, price: 15, quantity: 1, subtotal: 15},
	)
}

func newPendingOrder(t *testing.T) *order.Order {
	t.Helper()
	o := newValidTransientOrder(t)
	require.NoError(t, o.ValidateOrder())
	_, err := o.InitializeOrder()
	require.NoError(t, err)
	return o
}

func TestNewOrder(t *testing.T) {
	t.Run("creates transient order", func(t *testing.T) {
		o := newValidTransientOrder(t)

		require.NoError(t, o.Validate())
		assert.True(t, o.ID().IsZero())
		assert.True(t, o.TrackingID().IsZero())
		assert.Equal(t, order.Unknown, o.Status())
		assert.Len(t, o.Items(), 2)
		assert.Empty(t, o.FailureMessages())
	})

	t.Run("collects every invalid argument", func(t *testing.T) {
		o, err := order.NewOrder(kernel.UUID{}, kernel.UUID{}, kernel.StreetAddress{}, money(1), nil)

		require.Error(t, err)
		assert.Nil(t, o)
		assert.Contains(t, err.Error(), "customerID")
		assert.Contains(t, err.Error(), "restaurantID")
		assert.Contains(t, err.Error(), "street address must be created")
		require.ErrorIs(t, err, order.ErrOrderHasNoItems)
	})

	t.Run("zero value order is not constructed", func(t *testing.T) {
		var o order.Order
		assert.Equal(t, order.ErrOrderIsNotConstructed, o.Validate())
	})
}

func TestNewOrderItem(t *testing.T) {
	product, err := order.NewProductReference(kernel.NewUUID())
	require.NoError(t, err)

	_, err = order.NewOrderItem(product, 0, money(1), money(0))
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)

	_, err = order.NewOrderItem(order.Product{}, 1, money(1), money(1))
	require.Error(t, err)
}

func TestOrder_ValidateOrder(t *testing.T) {
	t.Run("accepts consistent prices", func(t *testing.T) {
		o := newValidTransientOrder(t)
		require.NoError(t, o.ValidateOrder())
	})

	t.Run("rejects non-positive price", func(t *testing.T) {
		o := newTransientOrder(t, 0, itemSpec{catalogPrice: 1, price: 1, quantity: 1, subtotal: 1})

		err := o.ValidateOrder()

		var dataErr *errs.InvalidOrderDataError
		require.ErrorAs(t, err, &dataErr)
		assert.Equal(t, "price", dataErr.Subject)
	})

	t.Run("rejects item price different from product price and names the item", func(t *testing.T) {
		o := newTransientOrder(t, 25,
			itemSpec{catalogPrice: 10, price: 10, quantity: 1, subtotal: 10},
			itemSpec{catalogPrice: 14, price: 15, quantity: 1, subtotal: 15},
		)

		err := o.ValidateOrder()

		var dataErr *errs.InvalidOrderDataError
		require.ErrorAs(t, err, &dataErr)
		assert.Contains(t, dataErr.Subject, "item 2")
		assert.Contains(t, err.Error(), "does not match product price")
	})

	t.Run("rejects zero item price", func(t *testing.T) {
		o := newTransientOrder(t, 5,
			itemSpec{catalogPrice: 0, price: 0, quantity: 1, subtotal: 0},
			itemSpec{catalogPrice: 5, price: 5, quantity: 1, subtotal: 5},
		)

		err := o.ValidateOrder()
		require.ErrorIs(t, err, errs.ErrInvalidOrderData)
		assert.Contains(t, err.Error(), "item 1")
	})

	t.Run("rejects wrong subtotal", func(t *testing.T) {
		o := newTransientOrder(t, 30, itemSpec{catalogPrice: 10, price: 10, quantity: 2, subtotal: 30})

		err := o.ValidateOrder()
		require.ErrorIs(t, err, errs.ErrInvalidOrderData)
		assert.Contains(t, err.Error(), "subtotal 30.00 is not 10.00 x 2")
	})

	t.Run("rejects total different from sum of subtotals", func(t *testing.T) {
		o := newTransientOrder(t, 26,
			itemSpec{catalogPrice: 10, price: 10, quantity: 1, subtotal: 10},
			itemSpec{catalogPrice: 15, price: 15, quantity: 1, subtotal: 15},
		)

		err := o.ValidateOrder()

		var dataErr *errs.InvalidOrderDataError
		require.ErrorAs(t, err, &dataErr)
		assert.Equal(t, "price", dataErr.Subject)
		assert.True(t, o.ID().IsZero())
	})

	t.Run("sums with two digit rounding", func(t *testing.T) {
		o := newTransientOrder(t, 10.01,
			itemSpec{catalogPrice: 3.335, price: 3.335, quantity: 1, subtotal: 3.335},
			itemSpec{catalogPrice: 6.675, price: 6.675, quantity: 1, subtotal: 6.675},
		)
		// 3.335 -> 3.34, 6.675 -> 6.68 : 10.02
		require.ErrorIs(t, o.ValidateOrder(), errs.ErrInvalidOrderData)
	})

	t.Run("rejects already initialized order", func(t *testing.T) {
		o := newPendingOrder(t)
		require.ErrorIs(t, o.ValidateOrder(), errs.ErrInvalidStateTransition)
	})
}

func TestOrder_InitializeOrder(t *testing.T) {
	t.Run("assigns identity and pending status", func(t *testing.T) {
		o := newValidTransientOrder(t)

		evt, err := o.InitializeOrder()

		require.NoError(t, err)
		assert.Equal(t, order.Pending, o.Status())
		require.NoError(t, o.ID().Validate())
		require.NoError(t, o.TrackingID().Validate())
		require.NoError(t, o.SagaID().Validate())
		assert.False(t, o.ID().IsEqual(o.TrackingID()))

		for n, item := range o.Items() {
			assert.Equal(t, int64(n+1), item.ID())
			assert.True(t, o.ID().IsEqual(item.OrderID()))
		}

		assert.Equal(t, "OrderCreatedEvent", evt.Name())
		assert.True(t, evt.Order().IsEqual(o))
		assert.Equal(t, order.Pending, evt.Order().Status())
		assert.False(t, evt.CreatedAt().IsZero())
	})

	t.Run("runs only once", func(t *testing.T) {
		o := newPendingOrder(t)
		trackingID := o.TrackingID()

		_, err := o.InitializeOrder()

		require.ErrorIs(t, err, errs.ErrInvalidStateTransition)
		assert.True(t, trackingID.IsEqual(o.TrackingID()))
	})
}

func TestOrder_ConfirmProduct(t *testing.T) {
	t.Run("updates matching items only before initialization", func(t *testing.T) {
		o := newPendingOrder(t)
		productID := o.Items()[0].Product().ID()

		err := o.ConfirmProduct(productID, "other", money(99))

		require.ErrorIs(t, err, errs.ErrInvalidStateTransition)
		assert.True(t, o.Items()[0].Product().Price().IsEqual(money(10)))
	})
}

func TestOrder_Pay(t *testing.T) {
	o := newPendingOrder(t)

	evt, err := o.Pay()
	require.NoError(t, err)
	assert.Equal(t, order.Paid, o.Status())
	assert.Equal(t, "OrderPaidEvent", evt.Name())
	assert.Equal(t, order.Paid, evt.Order().Status())

	_, err = o.Pay()
	require.ErrorIs(t, err, errs.ErrInvalidStateTransition)
	assert.Equal(t, order.Paid, o.Status())
}

func TestOrder_Approve(t *testing.T) {
	t.Run("from paid", func(t *testing.T) {
		o := newPendingOrder(t)
		_, _ = o.Pay()

		require.NoError(t, o.Approve())
		assert.Equal(t, order.Approved, o.Status())
	})

	t.Run("not from pending", func(t *testing.T) {
		o := newPendingOrder(t)
		require.ErrorIs(t, o.Approve(), errs.ErrInvalidStateTransition)
		assert.Equal(t, order.Pending, o.Status())
	})

	t.Run("not from cancelled", func(t *testing.T) {
		o := newPendingOrder(t)
		require.NoError(t, o.Cancel(nil))
		require.ErrorIs(t, o.Approve(), errs.ErrInvalidStateTransition)
	})
}

func TestOrder_CancelFlow(t *testing.T) {
	t.Run("compensation path accumulates failure messages", func(t *testing.T) {
		o := newPendingOrder(t)
		_, _ = o.Pay()

		evt, err := o.InitCancel([]string{"a"})
		require.NoError(t, err)
		assert.Equal(t, order.Cancelling, o.Status())
		assert.Equal(t, "OrderCancelledEvent", evt.Name())
		assert.Equal(t, []string{"a"}, evt.Order().FailureMessages())

		require.NoError(t, o.Cancel([]string{"b", ""}))
		assert.Equal(t, order.Cancelled, o.Status())
		assert.Equal(t, []string{"a", "b"}, o.FailureMessages())
	})

	t.Run("empty messages are skipped", func(t *testing.T) {
		o := newPendingOrder(t)
		require.NoError(t, o.Cancel([]string{""}))
		assert.Empty(t, o.FailureMessages())
	})

	t.Run("init cancel requires paid", func(t *testing.T) {
		o := newPendingOrder(t)
		_, err := o.InitCancel([]string{"x"})
		require.ErrorIs(t, err, errs.ErrInvalidStateTransition)
		assert.Empty(t, o.FailureMessages())
	})

	t.Run("cancel rejects terminal states", func(t *testing.T) {
		o := newPendingOrder(t)
		_, _ = o.Pay()
		require.NoError(t, o.Approve())
		require.ErrorIs(t, o.Cancel([]string{"late"}), errs.ErrInvalidStateTransition)
		assert.Empty(t, o.FailureMessages())
	})
}

func TestOrder_EventSnapshotIsIsolated(t *testing.T) {
	o := newPendingOrder(t)
	paid, err := o.Pay()
	require.NoError(t, err)

	_, err = o.InitCancel([]string{"out of stock"})
	require.NoError(t, err)

	assert.Equal(t, order.Paid, paid.Order().Status())
	assert.Empty(t, paid.Order().FailureMessages())
}

func TestRestoreOrder(t *testing.T) {
	pending := newPendingOrder(t)

	t.Run("restores initialized state", func(t *testing.T) {
		restored, err := order.RestoreOrder(order.RestoreParams{
			ID:              pending.ID(),
			CustomerID:      pending.CustomerID(),
			RestaurantID:    pending.RestaurantID(),
			DeliveryAddress: pending.DeliveryAddress(),
			Price:           pending.Price(),
			Items:           pending.Items(),
			TrackingID:      pending.TrackingID(),
			SagaID:          pending.SagaID(),
			Status:          order.Cancelling,
			FailureMessages: []string{"rejected", ""},
			Version:         4,
		})

		require.NoError(t, err)
		assert.True(t, restored.IsEqual(pending))
		assert.Equal(t, order.Cancelling, restored.Status())
		assert.Equal(t, []string{"rejected"}, restored.FailureMessages())
		assert.Equal(t, int64(4), restored.Version())
	})

	t.Run("rejects missing identity", func(t *testing.T) {
		_, err := order.RestoreOrder(order.RestoreParams{
			CustomerID:      pending.CustomerID(),
			RestaurantID:    pending.RestaurantID(),
			DeliveryAddress: pending.DeliveryAddress(),
			Price:           pending.Price(),
			Items:           pending.Items(),
			Status:          order.Unknown,
		})

		require.Error(t, err)
	})
}
