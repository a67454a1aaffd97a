package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/middleware"
	"github.com/iliyamo/hotel-booking/internal/model"
)

// BookingService is the part of booking.Service used over HTTP.
type BookingService interface {
	Create(ctx context.Context, in booking.CreateInput) (*model.Booking, error)
	Get(ctx context.Context, id string) (*model.Booking, error)
	ListForGuest(ctx context.Context, guestID string, limit, offset int) ([]model.Booking, error)
	List(ctx context.Context, f booking.ListFilter) ([]model.Booking, error)
	SetStatus(ctx context.Context, bookingID, status, actorID string, note *string) error
	Cancel(ctx context.Context, bookingID, actorID, reason string) error
	CancelByGuest(ctx context.Context, bookingID, guestID, reason string) error
	ChangeRoom(ctx context.Context, in booking.ChangeRoomInput) (*model.Booking, error)
}

// BookingHandler exposes booking creation, reads and the admin
// lifecycle endpoints.  Role checks happen here; the service itself is
// role agnostic.
type BookingHandler struct {
	Svc BookingService
}

func NewBookingHandler(svc BookingService) *BookingHandler {
	return &BookingHandler{Svc: svc}
}

type createBookingReq struct {
	GuestID         string   `json:"guest_id"`
	HotelID         string   `json:"hotel_id" validate:"required"`
	CheckInDate     string   `json:"check_in_date" validate:"required,datetime=2006-01-02"`
	CheckOutDate    string   `json:"check_out_date" validate:"required,datetime=2006-01-02"`
	RoomIDs         []string `json:"room_ids" validate:"required,min=1,dive,required"`
	NumberOfGuests  int      `json:"number_of_guests" validate:"required,min=1"`
	SpecialRequests *string  `json:"special_requests" validate:"omitempty,max=1000"`
	DiscountCode    string   `json:"discount_code" validate:"omitempty,max=50"`
}

type cancelReq struct {
	Reason string `json:"reason" validate:"max=500"`
}

type statusReq struct {
	Status string  `json:"status" validate:"required"`
	Notes  *string `json:"notes" validate:"omitempty,max=500"`
}

type changeRoomReq struct {
	RoomID string `json:"room_id" validate:"required"`
	LineID string `json:"line_id"`
}

// Create books rooms.  Guests always book for themselves; staff may
// book on behalf of guest_id within the hotels they manage.
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}

	uid := middleware.CurrentUserID(c)
	guestID := strings.TrimSpace(req.GuestID)
	switch middleware.CurrentRole(c) {
	case model.RoleGuest:
		if guestID != "" && guestID != uid {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "guests may only book for themselves"})
		}
		guestID = uid
	case model.RoleAdmin:
		if req.HotelID != middleware.CurrentHotelID(c) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	}
	if guestID == "" {
		guestID = uid
	}

	checkIn, err := parseDate(req.CheckInDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check_in_date"})
	}
	checkOut, err := parseDate(req.CheckOutDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check_out_date"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Svc.Create(ctx, booking.CreateInput{
		GuestID:         guestID,
		HotelID:         req.HotelID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		RoomIDs:         req.RoomIDs,
		NumberOfGuests:  req.NumberOfGuests,
		SpecialRequests: req.SpecialRequests,
		DiscountCode:    req.DiscountCode,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// MyBookings lists the caller's own bookings.
func (h *BookingHandler) MyBookings(c echo.Context) error {
	limit, offset := pageParams(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	out, err := h.Svc.ListForGuest(ctx, middleware.CurrentUserID(c), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

// Get returns one booking visible to the caller.
func (h *BookingHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.visibleBooking(ctx, c, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// List serves the staff booking search.  Hotel admins only see their
// own hotel regardless of the hotel_id filter.
func (h *BookingHandler) List(c echo.Context) error {
	limit, offset := pageParams(c)
	f := booking.ListFilter{
		GuestID: c.QueryParam("guest_id"),
		HotelID: c.QueryParam("hotel_id"),
		Status:  c.QueryParam("status"),
		Limit:   limit,
		Offset:  offset,
	}
	if middleware.CurrentRole(c) == model.RoleAdmin {
		f.HotelID = middleware.CurrentHotelID(c)
		if f.HotelID == "" {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "no hotel assigned"})
		}
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	out, err := h.Svc.List(ctx, f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

// Cancel cancels a booking.  Guests cancel their own bookings and get
// the guest prefix on the stored reason.
func (h *BookingHandler) Cancel(c echo.Context) error {
	var req cancelReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	reason := strings.TrimSpace(req.Reason)

	ctx, cancel := reqCtx(c)
	defer cancel()

	id := c.Param("id")
	if _, err := h.visibleBooking(ctx, c, id); err != nil {
		return writeError(c, err)
	}

	uid := middleware.CurrentUserID(c)
	var err error
	if middleware.CurrentRole(c) == model.RoleGuest {
		err = h.Svc.CancelByGuest(ctx, id, uid, reason)
	} else {
		err = h.Svc.Cancel(ctx, id, uid, reason)
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": model.StatusCancelled})
}

// UpdateStatus moves a booking to any valid status.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	var req statusReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id := c.Param("id")
	if _, err := h.visibleBooking(ctx, c, id); err != nil {
		return writeError(c, err)
	}
	if err := h.Svc.SetStatus(ctx, id, req.Status, middleware.CurrentUserID(c), req.Notes); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": req.Status})
}

// ChangeRoom reallocates a booking line to another room.
func (h *BookingHandler) ChangeRoom(c echo.Context) error {
	var req changeRoomReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id := c.Param("id")
	if _, err := h.visibleBooking(ctx, c, id); err != nil {
		return writeError(c, err)
	}
	b, err := h.Svc.ChangeRoom(ctx, booking.ChangeRoomInput{BookingID: id, NewRoomID: req.RoomID, LineID: req.LineID})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// visibleBooking loads a booking and hides it from callers outside its
// scope: guests see their own, hotel admins their hotel's.
func (h *BookingHandler) visibleBooking(ctx context.Context, c echo.Context, id string) (*model.Booking, error) {
	b, err := h.Svc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch middleware.CurrentRole(c) {
	case model.RoleSuperAdmin:
		return b, nil
	case model.RoleAdmin:
		if b.HotelID == middleware.CurrentHotelID(c) {
			return b, nil
		}
	default:
		if b.GuestID == middleware.CurrentUserID(c) {
			return b, nil
		}
	}
	return nil, booking.ErrBookingNotFound
}
