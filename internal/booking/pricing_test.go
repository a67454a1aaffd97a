package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking/internal/model"
)

func priceRoom(t *testing.T, m *memStore, hotelID, roomID string, stay Stay) (Quote, error) {
	t.Helper()

	tx, err := m.Begin(context.Background())
	require.NoError(t, err)

	defer tx.Rollback()

	return PriceRoom(context.Background(), tx, hotelID, roomID, stay)
}

func pricingStore() *memStore {
	m := newMemStore()
	m.addHotel("h1", "Grand")
	m.addHotel("h2", "Other")
	m.addRoomType("t-base", "h1", price(100))
	m.addRoomType("t-season", "h1", price(100))
	m.addRoomType("t-free", "h1", nil)
	m.addRoom("r-base", "h1", "t-base", "101")
	m.addRoom("r-season", "h1", "t-season", "201")
	m.addRoom("r-free", "h1", "t-free", "301")
	m.addRoom("r-far", "h2", "t-base", "901")
	m.addTariff("summer", "t-season", 180, "2024-06-01", "2024-08-31")

	return m
}

func TestPriceRoom_BasePriceWithoutTariff(t *testing.T) {
	m := pricingStore()

	q, err := priceRoom(t, m, "h1", "r-base", NewStay(date("2024-06-01"), date("2024-06-04")))

	require.NoError(t, err)
	assert.Equal(t, 3, q.Nights)
	assert.Equal(t, 100.0, q.PricePerNight)
	assert.Equal(t, 300.0, q.Total)
	assert.Nil(t, q.TariffID)
}

func TestPriceRoom_TariffAtCheckInAppliesToWholeStay(t *testing.T) {
	m := pricingStore()

	// Check-in on the last tariff day: all nights priced at the tariff.
	q, err := priceRoom(t, m, "h1", "r-season", NewStay(date("2024-08-31"), date("2024-09-03")))

	require.NoError(t, err)
	assert.Equal(t, 180.0, q.PricePerNight)
	assert.Equal(t, 540.0, q.Total)
	require.NotNil(t, q.TariffID)
	assert.Equal(t, "summer", *q.TariffID)
}

func TestPriceRoom_OutsideTariffFallsBackToBase(t *testing.T) {
	m := pricingStore()

	q, err := priceRoom(t, m, "h1", "r-season", NewStay(date("2024-09-01"), date("2024-09-02")))

	require.NoError(t, err)
	assert.Equal(t, 100.0, q.PricePerNight)
	assert.Nil(t, q.TariffID)
}

func TestPriceRoom_NoRateIsZero(t *testing.T) {
	m := pricingStore()

	q, err := priceRoom(t, m, "h1", "r-free", NewStay(date("2024-09-01"), date("2024-09-03")))

	require.NoError(t, err)
	assert.Zero(t, q.Total)
}

func TestPriceRoom_UnknownOrForeignRoom(t *testing.T) {
	m := pricingStore()
	stay := NewStay(date("2024-09-01"), date("2024-09-03"))

	_, err := priceRoom(t, m, "h1", "nope", stay)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = priceRoom(t, m, "h1", "r-far", stay)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestPriceRoom_Deterministic(t *testing.T) {
	m := pricingStore()
	stay := NewStay(date("2024-07-10"), date("2024-07-14"))

	first, err := priceRoom(t, m, "h1", "r-season", stay)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := priceRoom(t, m, "h1", "r-season", stay)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestApplyDiscount(t *testing.T) {
	tests := []struct {
		name     string
		total    float64
		discount *model.Discount
		expected float64
	}{
		{"none", 500, nil, 0},
		{"percentage capped", 500, &model.Discount{AmountType: model.DiscountPercentage, Amount: 20, MaxDiscountAmount: price(50)}, 50},
		{"percentage below cap", 200, &model.Discount{AmountType: model.DiscountPercentage, Amount: 20, MaxDiscountAmount: price(50)}, 40},
		{"percentage uncapped", 500, &model.Discount{AmountType: model.DiscountPercentage, Amount: 20}, 100},
		{"zero cap ignored", 500, &model.Discount{AmountType: model.DiscountPercentage, Amount: 20, MaxDiscountAmount: price(0)}, 100},
		{"fixed", 500, &model.Discount{AmountType: model.DiscountFixed, Amount: 75}, 75},
		{"fixed above total", 50, &model.Discount{AmountType: model.DiscountFixed, Amount: 75}, 75},
		{"rounded to cents", 33.33, &model.Discount{AmountType: model.DiscountPercentage, Amount: 10}, 3.33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ApplyDiscount(tt.total, tt.discount))
		})
	}
}

func TestApplyDiscount_NeverExceedsCeiling(t *testing.T) {
	d := &model.Discount{AmountType: model.DiscountPercentage, Amount: 35, MaxDiscountAmount: price(120)}

	for total := 100.0; total <= 10000; total += 137.5 {
		assert.LessOrEqual(t, ApplyDiscount(total, d), 120.0, "total %.2f", total)
	}
}

func TestRedeemable(t *testing.T) {
	limit := 3
	base := model.Discount{
		IsActive:   true,
		ValidFrom:  date("2024-05-01"),
		ValidTo:    date("2024-05-31"),
		UsageLimit: &limit,
		UsageCount: 2,
	}

	assert.True(t, Redeemable(&base, date("2024-05-01")))
	assert.True(t, Redeemable(&base, date("2024-05-31").Add(23*time.Hour)))
	assert.False(t, Redeemable(&base, date("2024-06-01")))
	assert.False(t, Redeemable(&base, date("2024-04-30")))
	assert.False(t, Redeemable(nil, date("2024-05-10")))

	inactive := base
	inactive.IsActive = false
	assert.False(t, Redeemable(&inactive, date("2024-05-10")))

	exhausted := base
	exhausted.UsageCount = 3
	assert.False(t, Redeemable(&exhausted, date("2024-05-10")))

	unlimited := base
	unlimited.UsageLimit = nil
	unlimited.UsageCount = 1000
	assert.True(t, Redeemable(&unlimited, date("2024-05-10")))
}
