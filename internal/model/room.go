package model

import "time"

// Room status values stored in rooms.status.
const (
	RoomAvailable   = "available"
	RoomOccupied    = "occupied"
	RoomMaintenance = "maintenance"
)

// RoomType describes a category of rooms within a hotel.  The base
// price is the nightly fallback used when no tariff covers a date.
//
// Fields:
//
//	ID               – primary key identifier (UUID).
//	HotelID          – owning hotel.
//	Name             – type name (e.g. "Deluxe King").
//	Description      – optional free text.
//	MaxOccupancy     – maximum number of guests.
//	BedConfiguration – bed layout description (nullable).
//	Amenities        – comma separated amenity list (nullable).
//	BasePrice        – nightly fallback price (nullable).
type RoomType struct {
	ID               string    `json:"id"`
	HotelID          string    `json:"hotel_id"`
	Name             string    `json:"name"`
	Description      *string   `json:"description,omitempty"`
	MaxOccupancy     uint16    `json:"max_occupancy"`
	BedConfiguration *string   `json:"bed_configuration,omitempty"`
	Amenities        *string   `json:"amenities,omitempty"`
	BasePrice        *float64  `json:"base_price,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Room is a concrete bookable unit.  Status is mutated by check-in,
// check-out and room reallocation.
type Room struct {
	ID         string    `json:"id"`           // rooms.id
	HotelID    string    `json:"hotel_id"`     // rooms.hotel_id
	RoomTypeID string    `json:"room_type_id"` // rooms.room_type_id
	RoomNumber string    `json:"room_number"`  // rooms.room_number
	Floor      *int      `json:"floor,omitempty"`
	Status     string    `json:"status"`    // rooms.status
	IsActive   bool      `json:"is_active"` // rooms.is_active
	CreatedAt  time.Time `json:"created_at"`
}

// Tariff is a nightly price for a room type valid over the closed
// interval [StartDate, EndDate].
type Tariff struct {
	ID         string    `json:"id"`
	RoomTypeID string    `json:"room_type_id"`
	Price      float64   `json:"price"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	SeasonName *string   `json:"season_name,omitempty"`
}

// RoomAvailability is one row of the hotel availability calendar: a
// room together with the booking occupying it inside the requested
// window, if any.
type RoomAvailability struct {
	RoomID       string     `json:"room_id"`
	RoomNumber   string     `json:"room_number"`
	Floor        *int       `json:"floor,omitempty"`
	TypeName     string     `json:"type_name"`
	BookingID    *string    `json:"booking_id,omitempty"`
	CheckInDate  *time.Time `json:"check_in_date,omitempty"`
	CheckOutDate *time.Time `json:"check_out_date,omitempty"`
	Status       *string    `json:"status,omitempty"`
}
