package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	delivery := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	o := Order{ID: "order-1", Status: StatusInProgress}
	subs := []SubOrder{
		{ID: "sub-1", OrderID: "order-1", Quantity: 10, DeliveryAt: &delivery},
		{ID: "sub-2", OrderID: "order-1", Quantity: 5},
	}

	view := Aggregate(o, subs)

	assert.Equal(t, 2, view.ItemCount)
	assert.Equal(t, 15, view.TotalQuantity)
	require.NotNil(t, view.EarliestDelivery)
	assert.True(t, view.EarliestDelivery.Equal(delivery))
	assert.False(t, view.Degraded)
}

func TestAggregate_NoDeliveryTimes(t *testing.T) {
	view := Aggregate(Order{ID: "order-1"}, []SubOrder{
		{ID: "sub-1", Quantity: 3},
		{ID: "sub-2", Quantity: 4},
	})

	assert.Nil(t, view.EarliestDelivery)
	assert.Equal(t, 7, view.TotalQuantity)
}

func TestAggregate_PicksEarliestDelivery(t *testing.T) {
	early := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	view := Aggregate(Order{}, []SubOrder{
		{ID: "sub-1", Quantity: 1, DeliveryAt: &late},
		{ID: "sub-2", Quantity: 1, DeliveryAt: &early},
	})

	require.NotNil(t, view.EarliestDelivery)
	assert.True(t, view.EarliestDelivery.Equal(early))
}

func TestAggregate_Deterministic(t *testing.T) {
	delivery := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	o := Order{ID: "order-1", Status: StatusPending, CreatedAt: delivery}
	subs := []SubOrder{
		{ID: "sub-1", Quantity: 10, DeliveryAt: &delivery},
		{ID: "sub-2", Quantity: 5},
	}

	first := Aggregate(o, subs)
	second := Aggregate(o, subs)

	assert.Equal(t, first.ItemCount, second.ItemCount)
	assert.Equal(t, first.TotalQuantity, second.TotalQuantity)
	assert.Equal(t, first.EarliestDelivery, second.EarliestDelivery)
}

func TestAggregate_EarliestDeliveryIsCopied(t *testing.T) {
	delivery := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	subs := []SubOrder{{ID: "sub-1", Quantity: 1, DeliveryAt: &delivery}}

	view := Aggregate(Order{}, subs)
	require.NotNil(t, view.EarliestDelivery)

	// Mutating the input pointer must not reach the view.
	*subs[0].DeliveryAt = delivery.AddDate(1, 0, 0)
	assert.True(t, view.EarliestDelivery.Equal(delivery))
}

func TestAllSubOrdersCompleted(t *testing.T) {
	t.Run("AllCompleted", func(t *testing.T) {
		assert.True(t, AllSubOrdersCompleted([]SubOrder{
			{Status: SubStatusCompleted},
			{Status: SubStatusCompleted},
		}))
	})

	t.Run("OneOutstanding", func(t *testing.T) {
		assert.False(t, AllSubOrdersCompleted([]SubOrder{
			{Status: SubStatusCompleted},
			{Status: SubStatusPending},
		}))
	})

	t.Run("EmptySet", func(t *testing.T) {
		assert.True(t, AllSubOrdersCompleted(nil))
	})
}
