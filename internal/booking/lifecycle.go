package booking

import (
	"context"
	"fmt"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// guestCancelPrefix marks reasons supplied through the guest cancel path.
const guestCancelPrefix = "Cancelled by guest: "

// SetStatus moves a booking to status and records the change.  Moving to
// checked_in marks every allocated room occupied; moving to checked_out
// releases them.  The room updates share the transaction with the status
// write, so a failed side effect rolls the transition back.
func (s *Service) SetStatus(ctx context.Context, bookingID, status, actorID string, note *string) error {
	if !model.IsBookingStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	now := s.opts.Now().UTC()

	var b *model.Booking

	err := s.inTx(ctx, func(tx Tx) error {
		var err error

		b, err = tx.GetBooking(ctx, bookingID, true)
		if err != nil {
			return err
		}

		if err := tx.UpdateStatus(ctx, bookingID, status, now); err != nil {
			return fmt.Errorf("update booking status: %w", err)
		}

		if err := tx.InsertStatusChange(ctx, &model.StatusChange{
			ID:        s.opts.NewID(),
			BookingID: bookingID,
			OldStatus: b.Status,
			NewStatus: status,
			ChangedBy: actorID,
			Notes:     note,
			CreatedAt: now,
		}); err != nil {
			return fmt.Errorf("record status change: %w", err)
		}

		switch status {
		case model.StatusCheckedIn:
			err = tx.SetBookingRoomsStatus(ctx, bookingID, model.RoomOccupied)
		case model.StatusCheckedOut:
			err = tx.SetBookingRoomsStatus(ctx, bookingID, model.RoomAvailable)
		}

		if err != nil {
			return fmt.Errorf("update room status: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	ev := Event{
		Type:        EventStatusChanged,
		BookingID:   b.ID,
		GuestID:     b.GuestID,
		HotelID:     b.HotelID,
		HotelName:   b.HotelName,
		OldStatus:   b.Status,
		NewStatus:   status,
		ActorID:     actorID,
		RoomIDs:     lineRoomIDs(b.Lines),
		RoomNumbers: b.RoomNumbers,
		CheckIn:     b.CheckInDate,
		CheckOut:    b.CheckOutDate,
		FinalAmount: b.FinalAmount,
		OccurredAt:  now,
	}
	if note != nil {
		ev.Note = *note
	}

	s.publish(ctx, ev)

	return nil
}

// Cancel marks a booking cancelled regardless of its current status and
// records who cancelled it and why.  Rooms are released only when
// Options.ReleaseRoomsOnCancel is set and the booking was checked in.
func (s *Service) Cancel(ctx context.Context, bookingID, actorID, reason string) error {
	now := s.opts.Now().UTC()

	var b *model.Booking

	err := s.inTx(ctx, func(tx Tx) error {
		var err error

		b, err = tx.GetBooking(ctx, bookingID, true)
		if err != nil {
			return err
		}

		if err := tx.MarkCancelled(ctx, bookingID, actorID, reason, now); err != nil {
			return fmt.Errorf("cancel booking: %w", err)
		}

		var notes *string
		if reason != "" {
			notes = &reason
		}

		if err := tx.InsertStatusChange(ctx, &model.StatusChange{
			ID:        s.opts.NewID(),
			BookingID: bookingID,
			OldStatus: b.Status,
			NewStatus: model.StatusCancelled,
			ChangedBy: actorID,
			Notes:     notes,
			CreatedAt: now,
		}); err != nil {
			return fmt.Errorf("record status change: %w", err)
		}

		if s.opts.ReleaseRoomsOnCancel && b.Status == model.StatusCheckedIn {
			if err := tx.SetBookingRoomsStatus(ctx, bookingID, model.RoomAvailable); err != nil {
				return fmt.Errorf("release rooms: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, Event{
		Type:        EventCancelled,
		BookingID:   b.ID,
		GuestID:     b.GuestID,
		HotelID:     b.HotelID,
		HotelName:   b.HotelName,
		OldStatus:   b.Status,
		NewStatus:   model.StatusCancelled,
		ActorID:     actorID,
		RoomIDs:     lineRoomIDs(b.Lines),
		RoomNumbers: b.RoomNumbers,
		CheckIn:     b.CheckInDate,
		CheckOut:    b.CheckOutDate,
		FinalAmount: b.FinalAmount,
		Note:        reason,
		OccurredAt:  now,
	})

	return nil
}

// CancelByGuest cancels on behalf of the booking's guest.  The reason is
// stored with a prefix that distinguishes it from staff cancellations.
func (s *Service) CancelByGuest(ctx context.Context, bookingID, guestID, reason string) error {
	return s.Cancel(ctx, bookingID, guestID, guestCancelPrefix+reason)
}

// ChangeRoomInput selects the booking line to reallocate.  An empty
// LineID targets the first line and releases every room of the booking.
type ChangeRoomInput struct {
	BookingID string
	NewRoomID string
	LineID    string
}

// ChangeRoom moves one booking line to NewRoomID.  The new room must be
// available, belong to the booking's hotel and be free for the stay.  It
// is priced at the tariff covering today.  Booking totals are recomputed
// from all lines, keeping the stored discount amount.
func (s *Service) ChangeRoom(ctx context.Context, in ChangeRoomInput) (*model.Booking, error) {
	now := s.opts.Now().UTC()

	var (
		b       *model.Booking
		updated *model.Booking
		oldRoom string
	)

	err := s.inTx(ctx, func(tx Tx) error {
		var err error

		b, err = tx.GetBooking(ctx, in.BookingID, true)
		if err != nil {
			return err
		}

		lines, err := tx.Lines(ctx, in.BookingID)
		if err != nil {
			return fmt.Errorf("load booking lines: %w", err)
		}

		if len(lines) == 0 {
			return ErrNoBookingLines
		}

		idx := 0
		if in.LineID != "" {
			idx = -1
			for i := range lines {
				if lines[i].ID == in.LineID {
					idx = i
					break
				}
			}

			if idx < 0 {
				return fmt.Errorf("%w: %s", ErrLineNotFound, in.LineID)
			}
		}

		line := lines[idx]
		oldRoom = line.RoomID

		if err := tx.LockRooms(ctx, sortedCopy([]string{in.NewRoomID, oldRoom})); err != nil {
			return fmt.Errorf("lock rooms: %w", err)
		}

		room, roomType, err := tx.RoomWithType(ctx, in.NewRoomID)
		if err != nil {
			return fmt.Errorf("load room %s: %w", in.NewRoomID, err)
		}

		if room.HotelID != b.HotelID {
			return fmt.Errorf("room %s in hotel %s: %w", in.NewRoomID, b.HotelID, ErrRoomNotFound)
		}

		if room.Status != model.RoomAvailable || !room.IsActive {
			return &RoomUnavailableError{RoomID: in.NewRoomID}
		}

		stay := NewStay(line.CheckInDate, line.CheckOutDate)

		// Lines of this booking are skipped by the overlap query below.
		for j, other := range lines {
			if j != idx && other.RoomID == in.NewRoomID &&
				stay.Overlaps(NewStay(other.CheckInDate, other.CheckOutDate)) {
				return &RoomUnavailableError{RoomID: in.NewRoomID}
			}
		}

		if err := CheckAvailability(ctx, tx, []string{in.NewRoomID}, stay, in.BookingID); err != nil {
			return err
		}

		if in.LineID == "" {
			err = tx.SetBookingRoomsStatus(ctx, in.BookingID, model.RoomAvailable)
		} else {
			err = tx.SetRoomStatus(ctx, oldRoom, model.RoomAvailable)
		}

		if err != nil {
			return fmt.Errorf("release rooms: %w", err)
		}

		rate, tariffID, err := nightlyRate(ctx, tx, roomType, now)
		if err != nil {
			return err
		}

		line.RoomID = in.NewRoomID
		line.PricePerNight = rate
		line.TariffID = tariffID
		line.TotalPrice = roundCents(rate * float64(line.NumberOfNights))

		if err := tx.UpdateLine(ctx, &line); err != nil {
			return fmt.Errorf("update booking line: %w", err)
		}

		if b.Status == model.StatusCheckedIn {
			if err := tx.SetRoomStatus(ctx, in.NewRoomID, model.RoomOccupied); err != nil {
				return fmt.Errorf("occupy room: %w", err)
			}
		}

		lines[idx] = line

		total := 0.0
		for _, l := range lines {
			total += l.TotalPrice
		}

		total = roundCents(total)

		if err := tx.UpdateTotals(ctx, in.BookingID, total, roundCents(total-b.DiscountAmount), now); err != nil {
			return fmt.Errorf("update booking totals: %w", err)
		}

		updated, err = tx.GetBooking(ctx, in.BookingID, false)
		if err != nil {
			return fmt.Errorf("reload booking: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, Event{
		Type:        EventRoomChanged,
		BookingID:   updated.ID,
		GuestID:     updated.GuestID,
		HotelID:     updated.HotelID,
		HotelName:   updated.HotelName,
		OldStatus:   b.Status,
		NewStatus:   updated.Status,
		RoomIDs:     lineRoomIDs(updated.Lines),
		RoomNumbers: updated.RoomNumbers,
		CheckIn:     updated.CheckInDate,
		CheckOut:    updated.CheckOutDate,
		FinalAmount: updated.FinalAmount,
		Note:        fmt.Sprintf("room %s -> %s", oldRoom, in.NewRoomID),
		OccurredAt:  now,
	})

	return updated, nil
}
