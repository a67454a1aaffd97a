package booking

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDateRange      = errors.New("check-out must be after check-in")
	ErrNoRoomsRequested      = errors.New("at least one room must be selected")
	ErrNoAvailableRoomOfType = errors.New("no available rooms for the selected room type and dates")
	ErrRoomUnavailable       = errors.New("room is not available for selected dates")
	ErrRoomNotFound          = errors.New("room not found")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrInvalidStatus         = errors.New("invalid status")
	ErrNoBookingLines        = errors.New("booking has no allocated rooms")
	ErrLineNotFound          = errors.New("booking line not found")
)

// RoomUnavailableError names the room whose stay collides with an
// active booking.  It matches ErrRoomUnavailable with errors.Is.
type RoomUnavailableError struct {
	RoomID string
}

func (e *RoomUnavailableError) Error() string {
	return fmt.Sprintf("room %s is not available for selected dates", e.RoomID)
}

func (e *RoomUnavailableError) Is(target error) bool {
	return target == ErrRoomUnavailable
}

// AsRoomUnavailable returns the RoomUnavailableError wrapped in err, or
// nil when err is of another kind.
func AsRoomUnavailable(err error) *RoomUnavailableError {
	if err == nil {
		return nil
	}

	var unavailable *RoomUnavailableError

	if errors.As(err, &unavailable) {
		return unavailable
	}

	return nil
}
