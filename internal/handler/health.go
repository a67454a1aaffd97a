package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports liveness for load balancers.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

type pinger interface {
	PingContext(ctx context.Context) error
}

// Ready reports whether the database answers.
func Ready(db pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := reqCtx(c)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
	}
}
