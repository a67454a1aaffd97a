package booking

import (
	"context"
	"fmt"
)

// ResolveRooms turns requested identifiers into concrete room ids, one
// output per input and in input order.  Room-type ids are expanded to a
// free room of that type in the hotel; any other id is passed through
// unchanged and left to CheckAvailability.  Rooms already present in the
// request are never picked again for a type entry.  Nothing is
// reserved here.
func ResolveRooms(ctx context.Context, inv inventoryReader, hotelID string, stay Stay, ids []string) ([]string, error) {
	resolved := make([]string, 0, len(ids))
	picked := make([]string, 0, len(ids))

	for _, id := range ids {
		isType, err := inv.IsRoomType(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("check room type %s: %w", id, err)
		}

		if !isType {
			picked = append(picked, id)
			resolved = append(resolved, id)
			continue
		}

		roomID, found, err := inv.FirstFreeRoomOfType(ctx, id, hotelID, stay, picked)
		if err != nil {
			return nil, fmt.Errorf("find free room of type %s: %w", id, err)
		}

		if !found {
			return nil, fmt.Errorf("%w: room type %s", ErrNoAvailableRoomOfType, id)
		}

		picked = append(picked, roomID)
		resolved = append(resolved, roomID)
	}

	return resolved, nil
}
