package model

import "time"

// Discount amount types stored in discounts.amount_type.
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Discount is a redeemable code.  Amount is a percentage when
// AmountType is "percentage" and a currency amount otherwise.
// UsageCount is only ever incremented inside the booking transaction.
//
// Fields:
//
//	ID                – primary key identifier (UUID).
//	Code              – unique code entered by guests.
//	AmountType        – percentage | fixed.
//	Amount            – percent or currency amount.
//	MaxDiscountAmount – ceiling for percentage discounts (nullable).
//	IsActive          – inactive codes are never applied.
//	ValidFrom/ValidTo – closed validity window.
//	UsageLimit        – maximum redemptions (nullable = unlimited).
//	UsageCount        – redemptions so far.
type Discount struct {
	ID                string    `json:"id"`
	Code              string    `json:"code"`
	AmountType        string    `json:"amount_type"`
	Amount            float64   `json:"amount"`
	MaxDiscountAmount *float64  `json:"max_discount_amount,omitempty"`
	IsActive          bool      `json:"is_active"`
	ValidFrom         time.Time `json:"valid_from"`
	ValidTo           time.Time `json:"valid_to"`
	UsageLimit        *int      `json:"usage_limit,omitempty"`
	UsageCount        int       `json:"usage_count"`
}
