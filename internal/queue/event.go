// Package queue carries booking events over RabbitMQ: a publisher used
// by the booking service and a consumer that appends them to an audit
// log file.
package queue

import (
	"time"

	"github.com/iliyamo/hotel-booking/internal/booking"
)

// BookingEvent is the JSON payload published for every committed
// booking change.  The routing key equals Type.
type BookingEvent struct {
	Type        string   `json:"type"`
	BookingID   string   `json:"booking_id"`
	GuestID     string   `json:"guest_id"`
	HotelID     string   `json:"hotel_id"`
	HotelName   string   `json:"hotel_name,omitempty"`
	OldStatus   string   `json:"old_status,omitempty"`
	NewStatus   string   `json:"new_status"`
	ActorID     string   `json:"actor_id,omitempty"`
	RoomIDs     []string `json:"room_ids"`
	RoomNumbers []string `json:"room_numbers"`
	CheckIn     string   `json:"check_in"`
	CheckOut    string   `json:"check_out"`
	FinalAmount float64  `json:"final_amount"`
	Note        string   `json:"note,omitempty"`
	OccurredAt  string   `json:"occurred_at"`
}

// FromDomain converts a booking.Event to its wire form.
func FromDomain(ev booking.Event) BookingEvent {
	return BookingEvent{
		Type:        ev.Type,
		BookingID:   ev.BookingID,
		GuestID:     ev.GuestID,
		HotelID:     ev.HotelID,
		HotelName:   ev.HotelName,
		OldStatus:   ev.OldStatus,
		NewStatus:   ev.NewStatus,
		ActorID:     ev.ActorID,
		RoomIDs:     ev.RoomIDs,
		RoomNumbers: ev.RoomNumbers,
		CheckIn:     ev.CheckIn.Format("2006-01-02"),
		CheckOut:    ev.CheckOut.Format("2006-01-02"),
		FinalAmount: ev.FinalAmount,
		Note:        ev.Note,
		OccurredAt:  ev.OccurredAt.UTC().Format(time.RFC3339),
	}
}
