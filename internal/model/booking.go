package model

import "time"

// Booking status values.  The lifecycle is
// pending_payment → confirmed → checked_in → checked_out with side
// branches to cancelled and no_show.
const (
	StatusPendingPayment = "pending_payment"
	StatusConfirmed      = "confirmed"
	StatusCheckedIn      = "checked_in"
	StatusCheckedOut     = "checked_out"
	StatusCancelled      = "cancelled"
	StatusNoShow         = "no_show"
)

// BookingStatuses lists every accepted status value.
var BookingStatuses = []string{
	StatusPendingPayment,
	StatusConfirmed,
	StatusCheckedIn,
	StatusCheckedOut,
	StatusCancelled,
	StatusNoShow,
}

// IsBookingStatus reports whether s is one of BookingStatuses.
func IsBookingStatus(s string) bool {
	for _, v := range BookingStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Booking is the reservation aggregate.  It is created together with
// one or more BookingLine rows and shares one stay interval
// [CheckInDate, CheckOutDate) across all of them.
//
// Fields:
//
//	ID             – primary key identifier (UUID).
//	GuestID        – user who stays.
//	HotelID        – hotel being booked.
//	CheckInDate    – first night (inclusive).
//	CheckOutDate   – departure day (exclusive).
//	NumberOfGuests – head count.
//	TotalAmount    – Σ line totals.
//	DiscountAmount – discount applied at booking level.
//	FinalAmount    – TotalAmount − DiscountAmount.
//	DiscountID     – applied discount (nullable).
//	Status         – lifecycle state.
//	HotelName      – joined hotels.name (read side only).
//	RoomNumbers    – joined room numbers (read side only).
type Booking struct {
	ID                 string        `json:"id"`
	GuestID            string        `json:"guest_id"`
	HotelID            string        `json:"hotel_id"`
	CheckInDate        time.Time     `json:"check_in_date"`
	CheckOutDate       time.Time     `json:"check_out_date"`
	NumberOfGuests     int           `json:"number_of_guests"`
	SpecialRequests    *string       `json:"special_requests,omitempty"`
	TotalAmount        float64       `json:"total_amount"`
	DiscountAmount     float64       `json:"discount_amount"`
	FinalAmount        float64       `json:"final_amount"`
	DiscountID         *string       `json:"discount_id,omitempty"`
	Status             string        `json:"status"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty"`
	CancelledBy        *string       `json:"cancelled_by,omitempty"`
	CancellationReason *string       `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
	HotelName          string        `json:"hotel_name,omitempty"`
	RoomNumbers        []string      `json:"room_numbers"`
	Lines              []BookingLine `json:"lines,omitempty"`
}

// BookingLine is one allocated room within a booking.  It is immutable
// after creation except for room reallocation, which updates the row
// in place.
type BookingLine struct {
	ID             string    `json:"id"`
	BookingID      string    `json:"booking_id"`
	RoomID         string    `json:"room_id"`
	CheckInDate    time.Time `json:"check_in_date"`
	CheckOutDate   time.Time `json:"check_out_date"`
	PricePerNight  float64   `json:"price_per_night"`
	NumberOfNights int       `json:"number_of_nights"`
	TotalPrice     float64   `json:"total_price"`
	TariffID       *string   `json:"tariff_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// StatusChange is an audit row in booking_status_history.
type StatusChange struct {
	ID        string    `json:"id"`
	BookingID string    `json:"booking_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	ChangedBy string    `json:"changed_by"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
