package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/model"
)

// dateLayout is the format used for DATE parameters.
const dateLayout = "2006-01-02"

// inactiveStatuses lists the booking statuses that no longer hold rooms.
const inactiveStatuses = "'cancelled','no_show'"

// querier is satisfied by both *sql.DB and *sql.Tx so read helpers can
// run inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// BookingRepo persists bookings, their lines and status history.  It
// implements booking.Store; every write goes through a transaction
// opened by Begin.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to db.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// Begin opens a READ COMMITTED transaction.  Row locks taken through
// LockRooms serialise competing writers on the same rooms, and the
// isolation level lets the overlap query see lines committed by the
// previous lock holder.
func (r *BookingRepo) Begin(ctx context.Context) (booking.Tx, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	return &bookingTx{tx: tx}, nil
}

// GetBooking loads a booking with its hotel name, room numbers and lines.
func (r *BookingRepo) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	return loadBooking(ctx, r.db, id, false)
}

// ListBookings returns bookings matching f ordered by creation time,
// newest first.  Lines and room numbers are loaded with one extra query.
func (r *BookingRepo) ListBookings(ctx context.Context, f booking.ListFilter) ([]model.Booking, error) {
	where := make([]string, 0, 3)
	args := make([]interface{}, 0, 5)
	if f.GuestID != "" {
		where = append(where, "b.guest_id = ?")
		args = append(args, f.GuestID)
	}
	if f.HotelID != "" {
		where = append(where, "b.hotel_id = ?")
		args = append(args, f.HotelID)
	}
	if f.Status != "" {
		where = append(where, "b.status = ?")
		args = append(args, f.Status)
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	query := bookingSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY b.created_at DESC, b.id LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		out   []model.Booking
		index = map[string]int{}
	)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		index[b.ID] = len(out)
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	// Attach lines for all bookings in one round trip.
	placeholders := make([]string, 0, len(out))
	ids := make([]interface{}, 0, len(out))
	for _, b := range out {
		placeholders = append(placeholders, "?")
		ids = append(ids, b.ID)
	}
	lines, numbers, err := loadLines(ctx, r.db,
		"bl.booking_id IN ("+strings.Join(placeholders, ",")+")", ids...)
	if err != nil {
		return nil, err
	}
	for i, l := range lines {
		pos := index[l.BookingID]
		out[pos].Lines = append(out[pos].Lines, l)
		out[pos].RoomNumbers = append(out[pos].RoomNumbers, numbers[i])
	}
	return out, nil
}

// DueNoShows returns the ids of pending or confirmed bookings whose
// check-in day is before today.
func (r *BookingRepo) DueNoShows(ctx context.Context, today time.Time) ([]string, error) {
	const q = `SELECT id FROM bookings
               WHERE status IN ('pending_payment','confirmed') AND check_in_date < ?
               ORDER BY check_in_date, id`
	rows, err := r.db.QueryContext(ctx, q, today.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// bookingTx implements booking.Tx on a *sql.Tx.
type bookingTx struct {
	tx *sql.Tx
}

func (t *bookingTx) Commit() error   { return t.tx.Commit() }
func (t *bookingTx) Rollback() error { return t.tx.Rollback() }

func (t *bookingTx) IsRoomType(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := t.tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM room_types WHERE id = ?)", id).Scan(&exists)
	return exists, err
}

func (t *bookingTx) FirstFreeRoomOfType(ctx context.Context, roomTypeID, hotelID string, stay booking.Stay, exclude []string) (string, bool, error) {
	query := `SELECT r.id FROM rooms r
              WHERE r.room_type_id = ? AND r.hotel_id = ? AND r.status = 'available' AND r.is_active = 1`
	args := []interface{}{roomTypeID, hotelID}
	if len(exclude) > 0 {
		placeholders := make([]string, len(exclude))
		for i, id := range exclude {
			placeholders[i] = "?"
			args = append(args, id)
		}
		query += " AND r.id NOT IN (" + strings.Join(placeholders, ",") + ")"
	}
	query += ` AND NOT EXISTS (
                 SELECT 1 FROM booking_lines bl
                 JOIN bookings b ON b.id = bl.booking_id
                 WHERE bl.room_id = r.id
                   AND b.status NOT IN (` + inactiveStatuses + `)
                   AND NOT (bl.check_out_date <= ? OR bl.check_in_date >= ?))
               ORDER BY r.room_number, r.id
               LIMIT 1`
	args = append(args, stay.CheckIn.Format(dateLayout), stay.CheckOut.Format(dateLayout))

	var id string
	err := t.tx.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

func (t *bookingTx) CountOverlapping(ctx context.Context, roomID string, stay booking.Stay, excludeBookingID string) (int, error) {
	const q = `SELECT COUNT(*) FROM booking_lines bl
               JOIN bookings b ON b.id = bl.booking_id
               WHERE bl.room_id = ?
                 AND b.status NOT IN (` + inactiveStatuses + `)
                 AND NOT (bl.check_out_date <= ? OR bl.check_in_date >= ?)
                 AND (? = '' OR b.id <> ?)`
	var n int
	err := t.tx.QueryRowContext(ctx, q, roomID,
		stay.CheckIn.Format(dateLayout), stay.CheckOut.Format(dateLayout),
		excludeBookingID, excludeBookingID).Scan(&n)
	return n, err
}

func (t *bookingTx) RoomWithType(ctx context.Context, roomID string) (*model.Room, *model.RoomType, error) {
	const q = `SELECT r.id, r.hotel_id, r.room_type_id, r.room_number, r.floor, r.status, r.is_active, r.created_at,
                      rt.id, rt.hotel_id, rt.name, rt.description, rt.max_occupancy, rt.bed_configuration,
                      rt.amenities, rt.base_price, rt.created_at
               FROM rooms r
               JOIN room_types rt ON rt.id = r.room_type_id
               WHERE r.id = ?`
	var (
		room  model.Room
		rt    model.RoomType
		floor sql.NullInt64
		desc  sql.NullString
		beds  sql.NullString
		amen  sql.NullString
		base  sql.NullFloat64
	)
	err := t.tx.QueryRowContext(ctx, q, roomID).Scan(
		&room.ID, &room.HotelID, &room.RoomTypeID, &room.RoomNumber, &floor, &room.Status, &room.IsActive, &room.CreatedAt,
		&rt.ID, &rt.HotelID, &rt.Name, &desc, &rt.MaxOccupancy, &beds, &amen, &base, &rt.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, booking.ErrRoomNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	room.Floor = nullInt(floor)
	rt.Description = nullString(desc)
	rt.BedConfiguration = nullString(beds)
	rt.Amenities = nullString(amen)
	rt.BasePrice = nullFloat(base)
	return &room, &rt, nil
}

func (t *bookingTx) TariffOn(ctx context.Context, roomTypeID string, day time.Time) (*model.Tariff, error) {
	const q = `SELECT id, room_type_id, price, start_date, end_date, season_name
               FROM tariffs
               WHERE room_type_id = ? AND ? BETWEEN start_date AND end_date
               ORDER BY start_date DESC, id
               LIMIT 1`
	tr, err := scanTariff(t.tx.QueryRowContext(ctx, q, roomTypeID, day.Format(dateLayout)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return tr, err
}

func (t *bookingTx) RedeemableDiscount(ctx context.Context, code string, today time.Time) (*model.Discount, error) {
	const q = `SELECT ` + discountColumns + `
               FROM discounts
               WHERE code = ? AND is_active = 1
                 AND ? BETWEEN valid_from AND valid_to
                 AND (usage_limit IS NULL OR usage_count < usage_limit)
               LIMIT 1`
	d, err := scanDiscount(t.tx.QueryRowContext(ctx, q, normalizeCode(code), today.Format(dateLayout)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return d, err
}

func (t *bookingTx) IncrementDiscountUsage(ctx context.Context, discountID string) error {
	res, err := t.tx.ExecContext(ctx,
		"UPDATE discounts SET usage_count = usage_count + 1 WHERE id = ?", discountID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("discount %s: %w", discountID, sql.ErrNoRows)
	}
	return nil
}

func (t *bookingTx) LockRooms(ctx context.Context, roomIDs []string) error {
	if len(roomIDs) == 0 {
		return nil
	}
	placeholders := make([]string, len(roomIDs))
	args := make([]interface{}, len(roomIDs))
	for i, id := range roomIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	rows, err := t.tx.QueryContext(ctx,
		"SELECT id FROM rooms WHERE id IN ("+strings.Join(placeholders, ",")+") ORDER BY id FOR UPDATE", args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (t *bookingTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings (id, guest_id, hotel_id, check_in_date, check_out_date, number_of_guests,
                   special_requests, total_amount, discount_amount, final_amount, discount_id, status,
                   created_at, updated_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := t.tx.ExecContext(ctx, q,
		b.ID, b.GuestID, b.HotelID, b.CheckInDate.Format(dateLayout), b.CheckOutDate.Format(dateLayout),
		b.NumberOfGuests, b.SpecialRequests, b.TotalAmount, b.DiscountAmount, b.FinalAmount,
		b.DiscountID, b.Status, b.CreatedAt, b.UpdatedAt)
	return err
}

// InsertLines writes all lines in one statement, preserving their order
// through the seq column.
func (t *bookingTx) InsertLines(ctx context.Context, lines []model.BookingLine) error {
	if len(lines) == 0 {
		return nil
	}
	query := `INSERT INTO booking_lines (id, booking_id, room_id, check_in_date, check_out_date,
                  price_per_night, number_of_nights, total_price, tariff_id, created_at) VALUES `
	args := make([]interface{}, 0, len(lines)*10)
	for i, l := range lines {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		args = append(args, l.ID, l.BookingID, l.RoomID,
			l.CheckInDate.Format(dateLayout), l.CheckOutDate.Format(dateLayout),
			l.PricePerNight, l.NumberOfNights, l.TotalPrice, l.TariffID, l.CreatedAt)
	}
	_, err := t.tx.ExecContext(ctx, query, args...)
	return err
}

func (t *bookingTx) GetBooking(ctx context.Context, id string, forUpdate bool) (*model.Booking, error) {
	return loadBooking(ctx, t.tx, id, forUpdate)
}

func (t *bookingTx) Lines(ctx context.Context, bookingID string) ([]model.BookingLine, error) {
	lines, _, err := loadLines(ctx, t.tx, "bl.booking_id = ?", bookingID)
	return lines, err
}

func (t *bookingTx) UpdateStatus(ctx context.Context, bookingID, status string, at time.Time) error {
	_, err := t.tx.ExecContext(ctx,
		"UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?", status, at, bookingID)
	return err
}

func (t *bookingTx) MarkCancelled(ctx context.Context, bookingID, actorID, reason string, at time.Time) error {
	var r *string
	if reason != "" {
		r = &reason
	}
	_, err := t.tx.ExecContext(ctx,
		`UPDATE bookings SET status = 'cancelled', cancelled_at = ?, cancelled_by = ?, cancellation_reason = ?, updated_at = ?
         WHERE id = ?`, at, actorID, r, at, bookingID)
	return err
}

func (t *bookingTx) InsertStatusChange(ctx context.Context, c *model.StatusChange) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO booking_status_history (id, booking_id, old_status, new_status, changed_by, notes, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.BookingID, c.OldStatus, c.NewStatus, c.ChangedBy, c.Notes, c.CreatedAt)
	return err
}

func (t *bookingTx) SetBookingRoomsStatus(ctx context.Context, bookingID, status string) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE rooms r JOIN booking_lines bl ON bl.room_id = r.id
         SET r.status = ?
         WHERE bl.booking_id = ?`, status, bookingID)
	return err
}

func (t *bookingTx) SetRoomStatus(ctx context.Context, roomID, status string) error {
	_, err := t.tx.ExecContext(ctx, "UPDATE rooms SET status = ? WHERE id = ?", status, roomID)
	return err
}

func (t *bookingTx) UpdateLine(ctx context.Context, l *model.BookingLine) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE booking_lines SET room_id = ?, price_per_night = ?, total_price = ?, tariff_id = ?
         WHERE id = ?`, l.RoomID, l.PricePerNight, l.TotalPrice, l.TariffID, l.ID)
	return err
}

func (t *bookingTx) UpdateTotals(ctx context.Context, bookingID string, total, final float64, at time.Time) error {
	_, err := t.tx.ExecContext(ctx,
		"UPDATE bookings SET total_amount = ?, final_amount = ?, updated_at = ? WHERE id = ?",
		total, final, at, bookingID)
	return err
}

const bookingSelect = `SELECT b.id, b.guest_id, b.hotel_id, h.name, b.check_in_date, b.check_out_date,
                              b.number_of_guests, b.special_requests, b.total_amount, b.discount_amount,
                              b.final_amount, b.discount_id, b.status, b.cancelled_at, b.cancelled_by,
                              b.cancellation_reason, b.created_at, b.updated_at
                       FROM bookings b
                       JOIN hotels h ON h.id = b.hotel_id`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(s rowScanner) (*model.Booking, error) {
	var (
		b           model.Booking
		requests    sql.NullString
		discountID  sql.NullString
		cancelledAt sql.NullTime
		cancelledBy sql.NullString
		reason      sql.NullString
	)
	if err := s.Scan(&b.ID, &b.GuestID, &b.HotelID, &b.HotelName, &b.CheckInDate, &b.CheckOutDate,
		&b.NumberOfGuests, &requests, &b.TotalAmount, &b.DiscountAmount,
		&b.FinalAmount, &discountID, &b.Status, &cancelledAt, &cancelledBy,
		&reason, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.SpecialRequests = nullString(requests)
	b.DiscountID = nullString(discountID)
	b.CancelledBy = nullString(cancelledBy)
	b.CancellationReason = nullString(reason)
	if cancelledAt.Valid {
		at := cancelledAt.Time
		b.CancelledAt = &at
	}
	return &b, nil
}

func loadBooking(ctx context.Context, q querier, id string, forUpdate bool) (*model.Booking, error) {
	query := bookingSelect + " WHERE b.id = ?"
	if forUpdate {
		query += " FOR UPDATE"
	}
	b, err := scanBooking(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	lines, numbers, err := loadLines(ctx, q, "bl.booking_id = ?", id)
	if err != nil {
		return nil, err
	}
	b.Lines = lines
	b.RoomNumbers = numbers
	return b, nil
}

// loadLines returns lines matching cond in insertion order along with
// the room number of each line.
func loadLines(ctx context.Context, q querier, cond string, args ...interface{}) ([]model.BookingLine, []string, error) {
	query := `SELECT bl.id, bl.booking_id, bl.room_id, r.room_number, bl.check_in_date, bl.check_out_date,
                     bl.price_per_night, bl.number_of_nights, bl.total_price, bl.tariff_id, bl.created_at
              FROM booking_lines bl
              JOIN rooms r ON r.id = bl.room_id
              WHERE ` + cond + `
              ORDER BY bl.seq`
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var (
		lines   []model.BookingLine
		numbers []string
	)
	for rows.Next() {
		var (
			l        model.BookingLine
			number   string
			tariffID sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.BookingID, &l.RoomID, &number, &l.CheckInDate, &l.CheckOutDate,
			&l.PricePerNight, &l.NumberOfNights, &l.TotalPrice, &tariffID, &l.CreatedAt); err != nil {
			return nil, nil, err
		}
		l.TariffID = nullString(tariffID)
		lines = append(lines, l)
		numbers = append(numbers, number)
	}
	return lines, numbers, rows.Err()
}
