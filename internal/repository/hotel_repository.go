package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// ErrNotFound is returned by catalogue lookups that match no row.
var ErrNotFound = errors.New("not found")

// HotelFilter narrows hotel listings.  Empty fields are ignored.
type HotelFilter struct {
	City       string
	Country    string
	StarRating int
	Limit      int
	Offset     int
}

// HotelRepo serves the public catalogue: hotels, their room types,
// rooms and tariffs, and the per-room availability calendar.
type HotelRepo struct {
	db *sql.DB
}

// NewHotelRepo returns a HotelRepo bound to db.
func NewHotelRepo(db *sql.DB) *HotelRepo { return &HotelRepo{db: db} }

const hotelColumns = `id, name, address, city, state, country, phone, star_rating, is_active, created_at, updated_at`

func scanHotel(s rowScanner) (*model.Hotel, error) {
	var (
		h     model.Hotel
		state sql.NullString
		phone sql.NullString
	)
	if err := s.Scan(&h.ID, &h.Name, &h.Address, &h.City, &state, &h.Country, &phone,
		&h.StarRating, &h.IsActive, &h.CreatedAt, &h.UpdatedAt); err != nil {
		return nil, err
	}
	h.State = nullString(state)
	h.Phone = nullString(phone)
	return &h, nil
}

// List returns active hotels ordered by star rating, best first.
func (r *HotelRepo) List(ctx context.Context, f HotelFilter) ([]model.Hotel, error) {
	query := "SELECT " + hotelColumns + " FROM hotels WHERE is_active = 1"
	args := make([]interface{}, 0, 5)
	if f.City != "" {
		query += " AND city = ?"
		args = append(args, f.City)
	}
	if f.Country != "" {
		query += " AND country = ?"
		args = append(args, f.Country)
	}
	if f.StarRating > 0 {
		query += " AND star_rating = ?"
		args = append(args, f.StarRating)
	}
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	query += " ORDER BY star_rating DESC, name LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Hotel{}
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	return out, rows.Err()
}

// Get returns one active hotel or ErrNotFound.
func (r *HotelRepo) Get(ctx context.Context, id string) (*model.Hotel, error) {
	h, err := scanHotel(r.db.QueryRowContext(ctx,
		"SELECT "+hotelColumns+" FROM hotels WHERE id = ? AND is_active = 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return h, err
}

// RoomTypes lists the room types of a hotel by name.
func (r *HotelRepo) RoomTypes(ctx context.Context, hotelID string) ([]model.RoomType, error) {
	const q = `SELECT id, hotel_id, name, description, max_occupancy, bed_configuration, amenities, base_price, created_at
               FROM room_types WHERE hotel_id = ? ORDER BY name, id`
	rows, err := r.db.QueryContext(ctx, q, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.RoomType{}
	for rows.Next() {
		var (
			rt   model.RoomType
			desc sql.NullString
			beds sql.NullString
			amen sql.NullString
			base sql.NullFloat64
		)
		if err := rows.Scan(&rt.ID, &rt.HotelID, &rt.Name, &desc, &rt.MaxOccupancy, &beds, &amen, &base, &rt.CreatedAt); err != nil {
			return nil, err
		}
		rt.Description = nullString(desc)
		rt.BedConfiguration = nullString(beds)
		rt.Amenities = nullString(amen)
		rt.BasePrice = nullFloat(base)
		out = append(out, rt)
	}
	return out, rows.Err()
}

// Rooms lists the active rooms of a hotel by floor and number.
func (r *HotelRepo) Rooms(ctx context.Context, hotelID string) ([]model.Room, error) {
	const q = `SELECT id, hotel_id, room_type_id, room_number, floor, status, is_active, created_at
               FROM rooms WHERE hotel_id = ? AND is_active = 1
               ORDER BY floor, room_number`
	rows, err := r.db.QueryContext(ctx, q, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Room{}
	for rows.Next() {
		var (
			rm    model.Room
			floor sql.NullInt64
		)
		if err := rows.Scan(&rm.ID, &rm.HotelID, &rm.RoomTypeID, &rm.RoomNumber, &floor, &rm.Status, &rm.IsActive, &rm.CreatedAt); err != nil {
			return nil, err
		}
		rm.Floor = nullInt(floor)
		out = append(out, rm)
	}
	return out, rows.Err()
}

// Tariffs lists every tariff of the hotel's room types by start date.
func (r *HotelRepo) Tariffs(ctx context.Context, hotelID string) ([]model.Tariff, error) {
	const q = `SELECT t.id, t.room_type_id, t.price, t.start_date, t.end_date, t.season_name
               FROM tariffs t
               JOIN room_types rt ON rt.id = t.room_type_id
               WHERE rt.hotel_id = ?
               ORDER BY t.start_date, t.room_type_id`
	rows, err := r.db.QueryContext(ctx, q, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Tariff{}
	for rows.Next() {
		t, err := scanTariff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// Availability returns one row per active room of the hotel and per
// booking that holds it inside [from, to).  Rooms with no such booking
// appear once with empty booking fields.
func (r *HotelRepo) Availability(ctx context.Context, hotelID string, from, to time.Time) ([]model.RoomAvailability, error) {
	const q = `SELECT r.id, r.room_number, r.floor, rt.name, b.id, b.check_in_date, b.check_out_date, b.status
               FROM rooms r
               JOIN room_types rt ON rt.id = r.room_type_id
               LEFT JOIN booking_lines bl ON bl.room_id = r.id
                    AND NOT (bl.check_out_date <= ? OR bl.check_in_date >= ?)
               LEFT JOIN bookings b ON b.id = bl.booking_id
                    AND b.status IN ('pending_payment','confirmed','checked_in')
               WHERE r.hotel_id = ? AND r.is_active = 1
               ORDER BY r.floor, r.room_number, b.check_in_date`
	rows, err := r.db.QueryContext(ctx, q, from.Format(dateLayout), to.Format(dateLayout), hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		all    []model.RoomAvailability
		booked = map[string]bool{}
	)
	for rows.Next() {
		var (
			a         model.RoomAvailability
			floor     sql.NullInt64
			bookingID sql.NullString
			checkIn   sql.NullTime
			checkOut  sql.NullTime
			status    sql.NullString
		)
		if err := rows.Scan(&a.RoomID, &a.RoomNumber, &floor, &a.TypeName, &bookingID, &checkIn, &checkOut, &status); err != nil {
			return nil, err
		}
		a.Floor = nullInt(floor)
		a.BookingID = nullString(bookingID)
		a.Status = nullString(status)
		if checkIn.Valid {
			t := checkIn.Time
			a.CheckInDate = &t
		}
		if checkOut.Valid {
			t := checkOut.Time
			a.CheckOutDate = &t
		}
		if a.BookingID != nil {
			booked[a.RoomID] = true
		}
		all = append(all, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Lines of inactive bookings join with NULL booking columns.  Drop
	// them for booked rooms and keep a single free row otherwise.
	out := []model.RoomAvailability{}
	listedFree := map[string]bool{}
	for _, a := range all {
		if a.BookingID == nil {
			if booked[a.RoomID] || listedFree[a.RoomID] {
				continue
			}
			listedFree[a.RoomID] = true
		}
		out = append(out, a)
	}
	return out, nil
}

func scanTariff(s rowScanner) (*model.Tariff, error) {
	var (
		t      model.Tariff
		season sql.NullString
	)
	if err := s.Scan(&t.ID, &t.RoomTypeID, &t.Price, &t.StartDate, &t.EndDate, &season); err != nil {
		return nil, err
	}
	t.SeasonName = nullString(season)
	return &t, nil
}

const discountColumns = `id, code, amount_type, amount, max_discount_amount, is_active, valid_from, valid_to, usage_limit, usage_count`

func scanDiscount(s rowScanner) (*model.Discount, error) {
	var (
		d        model.Discount
		maxAmt   sql.NullFloat64
		limitRaw sql.NullInt64
	)
	if err := s.Scan(&d.ID, &d.Code, &d.AmountType, &d.Amount, &maxAmt, &d.IsActive,
		&d.ValidFrom, &d.ValidTo, &limitRaw, &d.UsageCount); err != nil {
		return nil, err
	}
	d.MaxDiscountAmount = nullFloat(maxAmt)
	d.UsageLimit = nullInt(limitRaw)
	return &d, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// normalizeCode upper-cases and trims a discount code.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
