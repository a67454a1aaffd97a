package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/middleware"
	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

// InventoryStore creates sellable inventory.
type InventoryStore interface {
	CreateRoomType(ctx context.Context, rt *model.RoomType) error
	CreateRoom(ctx context.Context, room *model.Room) error
	CreateTariff(ctx context.Context, t *model.Tariff) error
	CreateDiscount(ctx context.Context, d *model.Discount) error
	RoomTypeHotel(ctx context.Context, roomTypeID string) (string, error)
}

// InventoryHandler serves the admin creation endpoints.  Hotel admins
// are limited to their own hotel.
type InventoryHandler struct {
	Inv InventoryStore
}

func NewInventoryHandler(inv InventoryStore) *InventoryHandler {
	return &InventoryHandler{Inv: inv}
}

type roomTypeReq struct {
	HotelID          string   `json:"hotel_id" validate:"required"`
	Name             string   `json:"name" validate:"required,max=100"`
	Description      *string  `json:"description"`
	MaxOccupancy     uint16   `json:"max_occupancy" validate:"required,min=1"`
	BedConfiguration *string  `json:"bed_configuration" validate:"omitempty,max=100"`
	Amenities        *string  `json:"amenities"`
	BasePrice        *float64 `json:"base_price" validate:"omitempty,gte=0"`
}

type roomReq struct {
	HotelID    string `json:"hotel_id" validate:"required"`
	RoomTypeID string `json:"room_type_id" validate:"required"`
	RoomNumber string `json:"room_number" validate:"required,max=20"`
	Floor      *int   `json:"floor"`
	Status     string `json:"status" validate:"omitempty,oneof=available occupied maintenance"`
}

type tariffReq struct {
	RoomTypeID string  `json:"room_type_id" validate:"required"`
	Price      float64 `json:"price" validate:"gt=0"`
	StartDate  string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate    string  `json:"end_date" validate:"required,datetime=2006-01-02"`
	SeasonName *string `json:"season_name" validate:"omitempty,max=100"`
}

type discountReq struct {
	Code              string   `json:"code" validate:"required,max=50"`
	AmountType        string   `json:"amount_type" validate:"required,oneof=percentage fixed"`
	Amount            float64  `json:"amount" validate:"gt=0"`
	MaxDiscountAmount *float64 `json:"max_discount_amount" validate:"omitempty,gt=0"`
	ValidFrom         string   `json:"valid_from" validate:"required,datetime=2006-01-02"`
	ValidTo           string   `json:"valid_to" validate:"required,datetime=2006-01-02"`
	UsageLimit        *int     `json:"usage_limit" validate:"omitempty,min=1"`
}

// manages reports whether the caller may administer hotelID.
func manages(c echo.Context, hotelID string) bool {
	switch middleware.CurrentRole(c) {
	case model.RoleSuperAdmin:
		return true
	case model.RoleAdmin:
		return hotelID != "" && hotelID == middleware.CurrentHotelID(c)
	}
	return false
}

func (h *InventoryHandler) CreateRoomType(c echo.Context) error {
	var req roomTypeReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	if !manages(c, req.HotelID) {
		return writeError(c, repository.ErrForbidden)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	rt := &model.RoomType{
		HotelID:          req.HotelID,
		Name:             req.Name,
		Description:      req.Description,
		MaxOccupancy:     req.MaxOccupancy,
		BedConfiguration: req.BedConfiguration,
		Amenities:        req.Amenities,
		BasePrice:        req.BasePrice,
	}
	if err := h.Inv.CreateRoomType(ctx, rt); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, rt)
}

func (h *InventoryHandler) CreateRoom(c echo.Context) error {
	var req roomReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	if !manages(c, req.HotelID) {
		return writeError(c, repository.ErrForbidden)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	room := &model.Room{
		HotelID:    req.HotelID,
		RoomTypeID: req.RoomTypeID,
		RoomNumber: req.RoomNumber,
		Floor:      req.Floor,
		Status:     req.Status,
	}
	if err := h.Inv.CreateRoom(ctx, room); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, room)
}

// CreateTariff adds a seasonal price.  Tariffs of one room type may not
// overlap.
func (h *InventoryHandler) CreateTariff(c echo.Context) error {
	var req tariffReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_date"})
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_date"})
	}
	if end.Before(start) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must not be before start_date"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	hotelID, err := h.Inv.RoomTypeHotel(ctx, req.RoomTypeID)
	if err != nil {
		return writeError(c, err)
	}
	if !manages(c, hotelID) {
		return writeError(c, repository.ErrForbidden)
	}

	t := &model.Tariff{RoomTypeID: req.RoomTypeID, Price: req.Price, StartDate: start, EndDate: end, SeasonName: req.SeasonName}
	if err := h.Inv.CreateTariff(ctx, t); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

// CreateDiscount adds a discount code.  Codes are global, so the route
// is restricted to super admins.
func (h *InventoryHandler) CreateDiscount(c echo.Context) error {
	var req discountReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	from, err := parseDate(req.ValidFrom)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid valid_from"})
	}
	to, err := parseDate(req.ValidTo)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid valid_to"})
	}
	if to.Before(from) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid_to must not be before valid_from"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	d := &model.Discount{
		Code:              req.Code,
		AmountType:        req.AmountType,
		Amount:            req.Amount,
		MaxDiscountAmount: req.MaxDiscountAmount,
		IsActive:          true,
		ValidFrom:         from,
		ValidTo:           to,
		UsageLimit:        req.UsageLimit,
	}
	if err := h.Inv.CreateDiscount(ctx, d); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, d)
}
