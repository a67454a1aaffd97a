package booking

import (
	"context"
	"fmt"
)

// CheckAvailability verifies that none of roomIDs has an active booking
// overlapping stay.  The first conflicting room fails the whole check
// with a *RoomUnavailableError; a room listed twice counts as a conflict
// with itself.  Lines belonging to excludeBookingID are ignored, which
// lets a booking move within its own allocation.
func CheckAvailability(ctx context.Context, r overlapReader, roomIDs []string, stay Stay, excludeBookingID string) error {
	seen := make(map[string]struct{}, len(roomIDs))

	for _, roomID := range roomIDs {
		if _, dup := seen[roomID]; dup {
			return &RoomUnavailableError{RoomID: roomID}
		}

		seen[roomID] = struct{}{}

		conflicts, err := r.CountOverlapping(ctx, roomID, stay, excludeBookingID)
		if err != nil {
			return fmt.Errorf("count overlapping bookings for room %s: %w", roomID, err)
		}

		if conflicts > 0 {
			return &RoomUnavailableError{RoomID: roomID}
		}
	}

	return nil
}
