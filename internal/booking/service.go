// Package booking implements the booking transaction: room-type
// resolution, overlap checks, pricing, discount redemption and the
// atomic commit of a booking with its lines, plus the status lifecycle
// and room reallocation of existing bookings.
package booking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/hotel-booking/internal/model"
)

type logger interface {
	Warnf(format string, args ...interface{})
}

// Options configures a Service.  Zero values fall back to the wall
// clock, random UUIDs and a publisher that drops events.
type Options struct {
	// ReleaseRoomsOnCancel sets the rooms of a checked-in booking back
	// to available when it is cancelled.
	ReleaseRoomsOnCancel bool
	Now                  func() time.Time
	NewID                func() string
	Publisher            Publisher
	Logger               logger
}

// Service orchestrates booking operations.  Each public method runs as
// one database transaction; any error rolls the whole unit back.
type Service struct {
	store Store
	opts  Options
}

// NewService returns a Service bound to store.
func NewService(store Store, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.NewString() }
	}

	if opts.Publisher == nil {
		opts.Publisher = nopPublisher{}
	}

	return &Service{store: store, opts: opts}
}

// CreateInput carries a booking request.  RoomIDs may mix room ids and
// room-type ids; each entry yields one allocated room.
type CreateInput struct {
	GuestID         string
	HotelID         string
	CheckIn         time.Time
	CheckOut        time.Time
	RoomIDs         []string
	NumberOfGuests  int
	SpecialRequests *string
	DiscountCode    string
}

// Create books the requested rooms.  It validates the stay, resolves
// room types, locks and re-checks every room, prices each line, applies
// at most one discount and persists the booking in pending_payment.
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Booking, error) {
	stay := NewStay(in.CheckIn, in.CheckOut)

	nights := stay.Nights()
	if nights <= 0 {
		return nil, ErrInvalidDateRange
	}

	if len(in.RoomIDs) == 0 {
		return nil, ErrNoRoomsRequested
	}

	now := s.opts.Now().UTC()

	var created *model.Booking

	err := s.inTx(ctx, func(tx Tx) error {
		roomIDs, err := ResolveRooms(ctx, tx, in.HotelID, stay, in.RoomIDs)
		if err != nil {
			return err
		}

		if err := tx.LockRooms(ctx, sortedCopy(roomIDs)); err != nil {
			return fmt.Errorf("lock rooms: %w", err)
		}

		if err := CheckAvailability(ctx, tx, roomIDs, stay, ""); err != nil {
			return err
		}

		quotes := make([]Quote, 0, len(roomIDs))
		total := 0.0

		for _, roomID := range roomIDs {
			q, err := PriceRoom(ctx, tx, in.HotelID, roomID, stay)
			if err != nil {
				return err
			}

			quotes = append(quotes, q)
			total += q.Total
		}

		total = roundCents(total)

		var discount *model.Discount

		if in.DiscountCode != "" {
			discount, err = tx.RedeemableDiscount(ctx, in.DiscountCode, now)
			if err != nil {
				return fmt.Errorf("load discount: %w", err)
			}
		}

		discountAmount := ApplyDiscount(total, discount)

		b := &model.Booking{
			ID:              s.opts.NewID(),
			GuestID:         in.GuestID,
			HotelID:         in.HotelID,
			CheckInDate:     stay.CheckIn,
			CheckOutDate:    stay.CheckOut,
			NumberOfGuests:  in.NumberOfGuests,
			SpecialRequests: in.SpecialRequests,
			TotalAmount:     total,
			DiscountAmount:  discountAmount,
			FinalAmount:     roundCents(total - discountAmount),
			Status:          model.StatusPendingPayment,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		if discount != nil {
			id := discount.ID
			b.DiscountID = &id
		}

		if err := tx.InsertBooking(ctx, b); err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}

		lines := make([]model.BookingLine, 0, len(quotes))
		for _, q := range quotes {
			lines = append(lines, model.BookingLine{
				ID:             s.opts.NewID(),
				BookingID:      b.ID,
				RoomID:         q.RoomID,
				CheckInDate:    stay.CheckIn,
				CheckOutDate:   stay.CheckOut,
				PricePerNight:  q.PricePerNight,
				NumberOfNights: q.Nights,
				TotalPrice:     q.Total,
				TariffID:       q.TariffID,
				CreatedAt:      now,
			})
		}

		if err := tx.InsertLines(ctx, lines); err != nil {
			return fmt.Errorf("insert booking lines: %w", err)
		}

		if discount != nil {
			if err := tx.IncrementDiscountUsage(ctx, discount.ID); err != nil {
				return fmt.Errorf("increment discount usage: %w", err)
			}
		}

		created, err = tx.GetBooking(ctx, b.ID, false)
		if err != nil {
			return fmt.Errorf("reload booking: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, Event{
		Type:        EventCreated,
		BookingID:   created.ID,
		GuestID:     created.GuestID,
		HotelID:     created.HotelID,
		HotelName:   created.HotelName,
		NewStatus:   created.Status,
		ActorID:     in.GuestID,
		RoomIDs:     lineRoomIDs(created.Lines),
		RoomNumbers: created.RoomNumbers,
		CheckIn:     created.CheckInDate,
		CheckOut:    created.CheckOutDate,
		FinalAmount: created.FinalAmount,
		OccurredAt:  now,
	})

	return created, nil
}

// Get returns a booking with its lines.
func (s *Service) Get(ctx context.Context, id string) (*model.Booking, error) {
	return s.store.GetBooking(ctx, id)
}

// ListForGuest returns the bookings of one guest, newest first.
func (s *Service) ListForGuest(ctx context.Context, guestID string, limit, offset int) ([]model.Booking, error) {
	return s.store.ListBookings(ctx, ListFilter{GuestID: guestID, Limit: limit, Offset: offset})
}

// List returns bookings matching f, newest first.
func (s *Service) List(ctx context.Context, f ListFilter) ([]model.Booking, error) {
	if f.Status != "" && !model.IsBookingStatus(f.Status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, f.Status)
	}

	return s.store.ListBookings(ctx, f)
}

// inTx runs fn inside a transaction and commits when it returns nil.
func (s *Service) inTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	committed = true

	return nil
}

func (s *Service) publish(ctx context.Context, ev Event) {
	if err := s.opts.Publisher.Publish(ctx, ev); err != nil && s.opts.Logger != nil {
		s.opts.Logger.Warnf("publish %s for booking %s: %v", ev.Type, ev.BookingID, err)
	}
}

// sortedCopy returns ids sorted so that concurrent transactions lock
// rooms in the same order.
func sortedCopy(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)

	return out
}

func lineRoomIDs(lines []model.BookingLine) []string {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.RoomID)
	}

	return ids
}
