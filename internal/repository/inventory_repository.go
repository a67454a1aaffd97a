package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// mysqlDuplicateEntry is the server error number for unique key violations.
const mysqlDuplicateEntry = 1062

// mysqlNoReferencedRow is raised when a foreign key target does not exist.
const mysqlNoReferencedRow = 1452

// InventoryRepo creates the sellable inventory of a hotel: room types,
// rooms, seasonal tariffs and discount codes.
type InventoryRepo struct {
	db *sql.DB
}

// NewInventoryRepo returns an InventoryRepo bound to db.
func NewInventoryRepo(db *sql.DB) *InventoryRepo { return &InventoryRepo{db: db} }

// CreateRoomType inserts rt, assigning its ID.
func (r *InventoryRepo) CreateRoomType(ctx context.Context, rt *model.RoomType) error {
	rt.ID = uuid.NewString()
	const q = `INSERT INTO room_types (id, hotel_id, name, description, max_occupancy, bed_configuration, amenities, base_price)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, rt.ID, rt.HotelID, rt.Name, rt.Description, rt.MaxOccupancy,
		rt.BedConfiguration, rt.Amenities, rt.BasePrice)
	return translateWriteErr(err)
}

// CreateRoom inserts room as available, assigning its ID.  The room type
// must belong to the same hotel.
func (r *InventoryRepo) CreateRoom(ctx context.Context, room *model.Room) error {
	hotelID, err := r.RoomTypeHotel(ctx, room.RoomTypeID)
	if err != nil {
		return err
	}
	if hotelID != room.HotelID {
		return ErrNotFound
	}
	room.ID = uuid.NewString()
	if room.Status == "" {
		room.Status = model.RoomAvailable
	}
	room.IsActive = true
	const q = `INSERT INTO rooms (id, hotel_id, room_type_id, room_number, floor, status, is_active)
               VALUES (?, ?, ?, ?, ?, ?, 1)`
	_, err = r.db.ExecContext(ctx, q, room.ID, room.HotelID, room.RoomTypeID, room.RoomNumber, room.Floor, room.Status)
	return translateWriteErr(err)
}

// CreateTariff inserts t, assigning its ID.  Overlap with existing
// tariffs of the same room type is rejected with ErrConflict.
func (r *InventoryRepo) CreateTariff(ctx context.Context, t *model.Tariff) error {
	var overlapping int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tariffs
         WHERE room_type_id = ? AND NOT (end_date < ? OR start_date > ?)`,
		t.RoomTypeID, t.StartDate.Format(dateLayout), t.EndDate.Format(dateLayout)).Scan(&overlapping)
	if err != nil {
		return err
	}
	if overlapping > 0 {
		return ErrConflict
	}
	t.ID = uuid.NewString()
	const q = `INSERT INTO tariffs (id, room_type_id, price, start_date, end_date, season_name)
               VALUES (?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, q, t.ID, t.RoomTypeID, t.Price,
		t.StartDate.Format(dateLayout), t.EndDate.Format(dateLayout), t.SeasonName)
	return translateWriteErr(err)
}

// CreateDiscount inserts d with a normalised code and zero usage.
func (r *InventoryRepo) CreateDiscount(ctx context.Context, d *model.Discount) error {
	d.ID = uuid.NewString()
	d.Code = normalizeCode(d.Code)
	d.UsageCount = 0
	const q = `INSERT INTO discounts (id, code, amount_type, amount, max_discount_amount, is_active,
                   valid_from, valid_to, usage_limit, usage_count)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`
	_, err := r.db.ExecContext(ctx, q, d.ID, d.Code, d.AmountType, d.Amount, d.MaxDiscountAmount, d.IsActive,
		d.ValidFrom.Format(dateLayout), d.ValidTo.Format(dateLayout), d.UsageLimit)
	return translateWriteErr(err)
}

// RoomTypeHotel returns the hotel that owns a room type.
func (r *InventoryRepo) RoomTypeHotel(ctx context.Context, roomTypeID string) (string, error) {
	var hotelID string
	err := r.db.QueryRowContext(ctx, "SELECT hotel_id FROM room_types WHERE id = ?", roomTypeID).Scan(&hotelID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return hotelID, err
}

// translateWriteErr maps MySQL constraint violations onto the package
// sentinels.
func translateWriteErr(err error) error {
	if err == nil {
		return nil
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDuplicateEntry:
			return ErrConflict
		case mysqlNoReferencedRow:
			return ErrNotFound
		}
	}
	return err
}
