package booking

import (
	"context"
	"time"
)

// Event types published after a booking transaction commits.
const (
	EventCreated       = "booking.created"
	EventStatusChanged = "booking.status_changed"
	EventCancelled     = "booking.cancelled"
	EventRoomChanged   = "booking.room_changed"
)

// Event describes a committed change to a booking.
type Event struct {
	Type        string
	BookingID   string
	GuestID     string
	HotelID     string
	HotelName   string
	OldStatus   string
	NewStatus   string
	ActorID     string
	RoomIDs     []string
	RoomNumbers []string
	CheckIn     time.Time
	CheckOut    time.Time
	FinalAmount float64
	Note        string
	OccurredAt  time.Time
}

// Publisher delivers events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }
