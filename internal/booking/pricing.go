package booking

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// Quote is the priced allocation of one room over a stay.
type Quote struct {
	RoomID        string
	RoomTypeID    string
	PricePerNight float64
	Nights        int
	Total         float64
	TariffID      *string
}

// PriceRoom prices roomID for stay using the tariff that contains the
// check-in date.  Rooms outside hotelID are reported as not found when
// hotelID is non-empty.
func PriceRoom(ctx context.Context, r rateReader, hotelID, roomID string, stay Stay) (Quote, error) {
	room, roomType, err := r.RoomWithType(ctx, roomID)
	if err != nil {
		return Quote{}, fmt.Errorf("load room %s: %w", roomID, err)
	}

	if hotelID != "" && room.HotelID != hotelID {
		return Quote{}, fmt.Errorf("room %s in hotel %s: %w", roomID, hotelID, ErrRoomNotFound)
	}

	rate, tariffID, err := nightlyRate(ctx, r, roomType, stay.CheckIn)
	if err != nil {
		return Quote{}, err
	}

	nights := stay.Nights()

	return Quote{
		RoomID:        room.ID,
		RoomTypeID:    roomType.ID,
		PricePerNight: rate,
		Nights:        nights,
		Total:         roundCents(rate * float64(nights)),
		TariffID:      tariffID,
	}, nil
}

// nightlyRate resolves the rate of a room type on a given day: the
// covering tariff, else the base price, else zero.
func nightlyRate(ctx context.Context, r rateReader, roomType *model.RoomType, on time.Time) (float64, *string, error) {
	tariff, err := r.TariffOn(ctx, roomType.ID, Day(on))
	if err != nil {
		return 0, nil, fmt.Errorf("load tariff for room type %s: %w", roomType.ID, err)
	}

	if tariff != nil {
		id := tariff.ID
		return tariff.Price, &id, nil
	}

	if roomType.BasePrice != nil {
		return *roomType.BasePrice, nil, nil
	}

	return 0, nil, nil
}

// Redeemable reports whether d may be applied on today: active, inside
// its validity window and below its usage limit.
func Redeemable(d *model.Discount, today time.Time) bool {
	if d == nil || !d.IsActive {
		return false
	}

	today = Day(today)
	if today.Before(Day(d.ValidFrom)) || today.After(Day(d.ValidTo)) {
		return false
	}

	return d.UsageLimit == nil || d.UsageCount < *d.UsageLimit
}

// ApplyDiscount returns the discount amount for total.  Percentage
// discounts are capped by a positive MaxDiscountAmount; fixed discounts
// are taken as-is and may exceed total.
func ApplyDiscount(total float64, d *model.Discount) float64 {
	if d == nil {
		return 0
	}

	var amount float64

	switch d.AmountType {
	case model.DiscountPercentage:
		amount = total * d.Amount / 100
		if d.MaxDiscountAmount != nil && *d.MaxDiscountAmount > 0 {
			amount = math.Min(amount, *d.MaxDiscountAmount)
		}
	default:
		amount = d.Amount
	}

	return roundCents(amount)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
