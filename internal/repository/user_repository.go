package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

// NewUser carries the fields needed to register an account.
type NewUser struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
	HotelID   *string
}

// Create hashes the password, inserts the user and returns its ID.
func (r *UserRepo) Create(ctx context.Context, u NewUser, cost int) (string, error) {
	email := strings.ToLower(strings.TrimSpace(u.Email))
	hash, err := utils.HashPassword(u.Password, cost)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, first_name, last_name, role, hotel_id) VALUES (?,?,?,?,?,?,?)",
		id, email, hash, strings.TrimSpace(u.FirstName), strings.TrimSpace(u.LastName), u.Role, u.HotelID)
	if err != nil {
		if errors.Is(translateWriteErr(err), ErrConflict) {
			return "", ErrEmailExists
		}
		return "", err
	}
	return id, nil
}

const userColumns = "id,email,password_hash,first_name,last_name,role,hotel_id,is_active,created_at,updated_at"

func scanUser(s rowScanner) (model.User, error) {
	var (
		u       model.User
		hotelID sql.NullString
	)
	err := s.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Role, &hotelID,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	u.HotelID = nullString(hotelID)
	return u, err
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}
