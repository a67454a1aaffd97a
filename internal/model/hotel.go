package model

import "time"

// Hotel represents a property that owns rooms and room types.  It
// corresponds to a row in the `hotels` table.
//
// Fields:
//
//	ID         – primary key identifier (UUID).
//	Name       – display name of the hotel.
//	Address    – street address.
//	City       – city name.
//	State      – state or region (nullable).
//	Country    – country name.
//	Phone      – front desk phone number (nullable).
//	StarRating – 1..5 star classification.
//	IsActive   – inactive hotels are hidden from public browsing.
//	CreatedAt  – creation timestamp.
//	UpdatedAt  – last update timestamp.
type Hotel struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	City       string    `json:"city"`
	State      *string   `json:"state,omitempty"`
	Country    string    `json:"country"`
	Phone      *string   `json:"phone,omitempty"`
	StarRating uint8     `json:"star_rating"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
