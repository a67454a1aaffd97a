package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

// HotelCatalog is the read side served to anonymous visitors.
type HotelCatalog interface {
	List(ctx context.Context, f repository.HotelFilter) ([]model.Hotel, error)
	Get(ctx context.Context, id string) (*model.Hotel, error)
	RoomTypes(ctx context.Context, hotelID string) ([]model.RoomType, error)
	Rooms(ctx context.Context, hotelID string) ([]model.Room, error)
	Tariffs(ctx context.Context, hotelID string) ([]model.Tariff, error)
	Availability(ctx context.Context, hotelID string, from, to time.Time) ([]model.RoomAvailability, error)
}

// HotelHandler serves the public browse endpoints.
type HotelHandler struct {
	Hotels HotelCatalog
}

func NewHotelHandler(hotels HotelCatalog) *HotelHandler {
	return &HotelHandler{Hotels: hotels}
}

// List handles GET /v1/hotels?city=&country=&star_rating=.
func (h *HotelHandler) List(c echo.Context) error {
	limit, offset := pageParams(c)
	stars, _ := strconv.Atoi(c.QueryParam("star_rating"))

	ctx, cancel := reqCtx(c)
	defer cancel()

	out, err := h.Hotels.List(ctx, repository.HotelFilter{
		City:       c.QueryParam("city"),
		Country:    c.QueryParam("country"),
		StarRating: stars,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"hotels": out})
}

func (h *HotelHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	hotel, err := h.Hotels.Get(ctx, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, hotel)
}

func (h *HotelHandler) RoomTypes(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	out, err := h.Hotels.RoomTypes(ctx, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"room_types": out})
}

func (h *HotelHandler) Rooms(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	out, err := h.Hotels.Rooms(ctx, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": out})
}

func (h *HotelHandler) Tariffs(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	out, err := h.Hotels.Tariffs(ctx, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tariffs": out})
}

// Availability handles GET /v1/hotels/:id/availability?start_date=&end_date=.
// The window is half-open like a stay.
func (h *HotelHandler) Availability(c echo.Context) error {
	from, err := parseDate(c.QueryParam("start_date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date must be YYYY-MM-DD"})
	}
	to, err := parseDate(c.QueryParam("end_date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must be YYYY-MM-DD"})
	}
	if !to.After(from) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must be after start_date"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	out, err := h.Hotels.Availability(ctx, c.Param("id"), from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"hotel_id":   c.Param("id"),
		"start_date": from.Format(dateLayout),
		"end_date":   to.Format(dateLayout),
		"rooms":      out,
	})
}
