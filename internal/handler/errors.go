package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

// requestTimeout bounds the database work of one request.
const requestTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// writeError maps domain and repository errors onto HTTP responses.
// Unknown errors are logged and reported as 500 without details.
func writeError(c echo.Context, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": validationDetails(verrs)})
	}
	if unavailable := booking.AsRoomUnavailable(err); unavailable != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": booking.ErrRoomUnavailable.Error(), "room_id": unavailable.RoomID})
	}

	switch {
	case errors.Is(err, booking.ErrInvalidDateRange),
		errors.Is(err, booking.ErrNoRoomsRequested),
		errors.Is(err, booking.ErrInvalidStatus):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrBookingNotFound),
		errors.Is(err, booking.ErrRoomNotFound),
		errors.Is(err, booking.ErrLineNotFound),
		errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrNoAvailableRoomOfType),
		errors.Is(err, booking.ErrRoomUnavailable),
		errors.Is(err, booking.ErrNoBookingLines),
		errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "request timed out"})
	}

	c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
