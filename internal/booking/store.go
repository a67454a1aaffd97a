package booking

import (
	"context"
	"time"

	"github.com/iliyamo/hotel-booking/internal/model"
)

type inventoryReader interface {
	// IsRoomType reports whether id names a room type rather than a room.
	IsRoomType(ctx context.Context, id string) (bool, error)
	// FirstFreeRoomOfType returns the lowest-numbered available room of
	// the type in the hotel with no active booking overlapping stay,
	// skipping the ids in exclude.  found is false when none remains.
	FirstFreeRoomOfType(ctx context.Context, roomTypeID, hotelID string, stay Stay, exclude []string) (roomID string, found bool, err error)
}

type overlapReader interface {
	// CountOverlapping counts lines on roomID whose booking is neither
	// cancelled nor no_show and whose stay overlaps stay.  Lines of
	// excludeBookingID are ignored when it is non-empty.
	CountOverlapping(ctx context.Context, roomID string, stay Stay, excludeBookingID string) (int, error)
}

type rateReader interface {
	// RoomWithType loads a room and its room type.  It returns
	// ErrRoomNotFound when the room does not exist.
	RoomWithType(ctx context.Context, roomID string) (*model.Room, *model.RoomType, error)
	// TariffOn returns the tariff of the room type whose closed interval
	// contains day, or nil when none does.
	TariffOn(ctx context.Context, roomTypeID string, day time.Time) (*model.Tariff, error)
}

type discountStore interface {
	// RedeemableDiscount returns the discount with code that is active,
	// valid on today and below its usage limit, or nil.
	RedeemableDiscount(ctx context.Context, code string, today time.Time) (*model.Discount, error)
	IncrementDiscountUsage(ctx context.Context, discountID string) error
}

// Tx is the transactional query interface used by Service.  Every
// method runs inside the same database transaction.
type Tx interface {
	inventoryReader
	overlapReader
	rateReader
	discountStore

	// LockRooms takes exclusive row locks on the given rooms.
	LockRooms(ctx context.Context, roomIDs []string) error

	InsertBooking(ctx context.Context, b *model.Booking) error
	InsertLines(ctx context.Context, lines []model.BookingLine) error
	// GetBooking loads a booking with hotel name, room numbers and lines.
	// forUpdate locks the booking row.  It returns ErrBookingNotFound.
	GetBooking(ctx context.Context, id string, forUpdate bool) (*model.Booking, error)
	Lines(ctx context.Context, bookingID string) ([]model.BookingLine, error)
	UpdateStatus(ctx context.Context, bookingID, status string, at time.Time) error
	MarkCancelled(ctx context.Context, bookingID, actorID, reason string, at time.Time) error
	InsertStatusChange(ctx context.Context, c *model.StatusChange) error
	SetBookingRoomsStatus(ctx context.Context, bookingID, status string) error
	SetRoomStatus(ctx context.Context, roomID, status string) error
	UpdateLine(ctx context.Context, line *model.BookingLine) error
	UpdateTotals(ctx context.Context, bookingID string, total, final float64, at time.Time) error

	Commit() error
	Rollback() error
}

// ListFilter narrows booking listings.  Zero values mean "any".
type ListFilter struct {
	GuestID string
	HotelID string
	Status  string
	Limit   int
	Offset  int
}

// Store opens transactions and serves the read side.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
	GetBooking(ctx context.Context, id string) (*model.Booking, error)
	ListBookings(ctx context.Context, f ListFilter) ([]model.Booking, error)
}
