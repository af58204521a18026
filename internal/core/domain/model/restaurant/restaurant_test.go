package restaurant_test

import (
	"testing"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/restaurant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRestaurant(t *testing.T) {
	pizzaID := kernel.NewUUID()
	pizza, err := restaurant.NewProduct(pizzaID, "pizza", kernel.NewMoneyFromFloat(12.5), true)
	require.NoError(t, err)

	r, err := restaurant.NewRestaurant(kernel.NewUUID(), true, []restaurant.Product{pizza})
	require.NoError(t, err)
	require.NoError(t, r.Validate())
	assert.True(t, r.IsActive())

	found, ok := r.FindProduct(pizzaID)
	require.True(t, ok)
	assert.Equal(t, "pizza", found.Name())
	assert.True(t, found.Available())
	assert.Equal(t, "12.50", found.Price().String())

	_, ok = r.FindProduct(kernel.NewUUID())
	assert.False(t, ok)
}

func TestNewRestaurant_Invalid(t *testing.T) {
	_, err := restaurant.NewRestaurant(kernel.UUID{}, true, nil)
	require.Error(t, err)

	_, err = restaurant.NewProduct(kernel.NewUUID(), "", kernel.ZeroMoney, true)
	require.Error(t, err)

	var r *restaurant.Restaurant
	assert.Equal(t, restaurant.ErrRestaurantIsNotConstructed, r.Validate())
}
