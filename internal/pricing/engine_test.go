package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shorebytelabs/nailsbyabri/internal/domain"
)

func testEngine() *Engine {
	shapes := []domain.Shape{
		{ID: "square", Name: "Square", BasePrice: decimal.NewFromInt(35), IsVisible: true},
		{ID: "stiletto", Name: "Stiletto", BasePrice: decimal.NewFromInt(35), PriceAdjustment: decimal.NewFromInt(5), IsVisible: true},
	}
	methods := []domain.DeliveryMethodConfig{
		{
			ID:           domain.DeliveryMethodPickup,
			Label:        "Studio pickup",
			DefaultSpeed: domain.DeliverySpeedStandard,
			SpeedOptions: map[domain.DeliverySpeed]domain.SpeedOption{
				domain.DeliverySpeedStandard: {Fee: decimal.Zero, Label: "Standard", EstimatedDays: 7},
			},
		},
		{
			ID:           domain.DeliveryMethodDelivery,
			Label:        "Local delivery",
			DefaultSpeed: domain.DeliverySpeedStandard,
			SpeedOptions: map[domain.DeliverySpeed]domain.SpeedOption{
				domain.DeliverySpeedStandard: {Fee: decimal.NewFromInt(5), Label: "Standard", EstimatedDays: 8},
				domain.DeliverySpeedRush:     {Fee: decimal.NewFromInt(20), Label: "Rush", EstimatedDays: 4},
			},
		},
	}
	return NewEngine(shapes, methods)
}

func TestComputeSingleSetWithDeliveryFee(t *testing.T) {
	engine := testEngine()

	out, err := engine.Compute(Input{
		Sets: []domain.NailSetDraft{
			{ShapeID: "square", Quantity: 1},
		},
		Delivery: domain.DeliveryDetails{
			Method: domain.DeliveryMethodDelivery,
			Speed:  domain.DeliverySpeedStandard,
		},
	})
	require.NoError(t, err)

	require.Len(t, out.LineItems, 2)
	assert.Equal(t, LineItemSet, out.LineItems[0].Kind)
	assert.True(t, out.LineItems[0].Amount.Equal(decimal.NewFromInt(35)))
	assert.Equal(t, LineItemDelivery, out.LineItems[1].Kind)
	assert.True(t, out.LineItems[1].Amount.Equal(decimal.NewFromInt(5)))
	assert.True(t, out.Total.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, 8, out.EstimatedCompletionDays)
}

func TestComputeQuantityAndAdjustment(t *testing.T) {
	engine := testEngine()

	out, err := engine.Compute(Input{
		Sets: []domain.NailSetDraft{
			{ShapeID: "stiletto", Quantity: 2},
		},
		Delivery: domain.DeliveryDetails{Method: domain.DeliveryMethodPickup},
	})
	require.NoError(t, err)

	// 2 x (35 + 5), no fee line for zero-fee pickup
	require.Len(t, out.LineItems, 1)
	assert.Equal(t, 2, out.LineItems[0].Quantity)
	assert.True(t, out.Total.Equal(decimal.NewFromInt(80)))
}

func TestComputePromoDiscountLine(t *testing.T) {
	engine := testEngine()

	out, err := engine.Compute(Input{
		Sets: []domain.NailSetDraft{
			{ShapeID: "square", Quantity: 1},
		},
		Delivery: domain.DeliveryDetails{Method: domain.DeliveryMethodPickup},
		Promo: &domain.PromoApplication{
			Code:           "ABRI10",
			Valid:          true,
			DiscountAmount: decimal.NewFromInt(5),
		},
	})
	require.NoError(t, err)

	require.Len(t, out.LineItems, 2)
	assert.Equal(t, LineItemDiscount, out.LineItems[1].Kind)
	assert.True(t, out.LineItems[1].Amount.Equal(decimal.NewFromInt(-5)))
	assert.True(t, out.Total.Equal(decimal.NewFromInt(30)))
}

func TestComputeInvalidPromoIgnored(t *testing.T) {
	engine := testEngine()

	out, err := engine.Compute(Input{
		Sets: []domain.NailSetDraft{
			{ShapeID: "square", Quantity: 1},
		},
		Delivery: domain.DeliveryDetails{Method: domain.DeliveryMethodPickup},
		Promo: &domain.PromoApplication{
			Code:           "EXPIRED",
			Valid:          false,
			DiscountAmount: decimal.NewFromInt(5),
		},
	})
	require.NoError(t, err)
	assert.True(t, out.Total.Equal(decimal.NewFromInt(35)))
}

func TestComputeTotalClampedAtZero(t *testing.T) {
	engine := testEngine()

	out, err := engine.Compute(Input{
		Sets: []domain.NailSetDraft{
			{ShapeID: "square", Quantity: 1},
		},
		Delivery: domain.DeliveryDetails{Method: domain.DeliveryMethodPickup},
		Promo: &domain.PromoApplication{
			Code:           "BIG",
			Valid:          true,
			DiscountAmount: decimal.NewFromInt(100),
		},
	})
	require.NoError(t, err)
	assert.True(t, out.Total.IsZero())
}

func TestComputeUnknownShape(t *testing.T) {
	engine := testEngine()

	_, err := engine.Compute(Input{
		Sets: []domain.NailSetDraft{{ShapeID: "ghost", Quantity: 1}},
	})
	require.Error(t, err)
}

func TestComputeDefaultsToPickupWhenTableMissing(t *testing.T) {
	engine := NewEngine([]domain.Shape{
		{ID: "square", Name: "Square", BasePrice: decimal.NewFromInt(35), IsVisible: true},
	}, nil)

	out, err := engine.Compute(Input{
		Sets: []domain.NailSetDraft{{ShapeID: "square", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.True(t, out.Total.Equal(decimal.NewFromInt(35)))
}

func TestComputeIsPure(t *testing.T) {
	engine := testEngine()
	in := Input{
		Sets: []domain.NailSetDraft{
			{ShapeID: "square", Quantity: 1},
			{ShapeID: "stiletto", Quantity: 3},
		},
		Delivery: domain.DeliveryDetails{
			Method: domain.DeliveryMethodDelivery,
			Speed:  domain.DeliverySpeedRush,
		},
	}

	first, err := engine.Compute(in)
	require.NoError(t, err)
	second, err := engine.Compute(in)
	require.NoError(t, err)

	assert.True(t, first.Total.Equal(second.Total))
	assert.Equal(t, len(first.LineItems), len(second.LineItems))
}

func TestSubtotalExcludesDelivery(t *testing.T) {
	engine := testEngine()

	got, err := engine.Subtotal([]domain.NailSetDraft{
		{ShapeID: "square", Quantity: 2},
	})
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(70)))
}
