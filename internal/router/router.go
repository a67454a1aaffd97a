// Package router wires handlers and middleware onto the echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/handler"
	"github.com/iliyamo/hotel-booking/internal/middleware"
	"github.com/iliyamo/hotel-booking/internal/model"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Auth      *handler.AuthHandler
	Hotels    *handler.HotelHandler
	Bookings  *handler.BookingHandler
	Inventory *handler.InventoryHandler
	Ready     echo.HandlerFunc

	JWTSecret string
	// RateLimit guards booking writes.  Idempotency replays booking
	// creation retries.  Either may be a pass-through.
	RateLimit   echo.MiddlewareFunc
	Idempotency echo.MiddlewareFunc
}

// RegisterRoutes mounts the public, authenticated and admin routes.
func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/healthz", handler.Health)
	if h.Ready != nil {
		e.GET("/readyz", h.Ready)
	}

	a := e.Group("/v1/auth")
	a.POST("/register", h.Auth.Register)
	a.POST("/login", h.Auth.Login)
	a.POST("/refresh", h.Auth.Refresh)
	a.POST("/logout", h.Auth.Logout)

	pub := e.Group("/v1/hotels")
	pub.GET("", h.Hotels.List)
	pub.GET("/:id", h.Hotels.Get)
	pub.GET("/:id/room-types", h.Hotels.RoomTypes)
	pub.GET("/:id/rooms", h.Hotels.Rooms)
	pub.GET("/:id/tariffs", h.Hotels.Tariffs)
	pub.GET("/:id/availability", h.Hotels.Availability)

	rl := orPass(h.RateLimit)
	idem := orPass(h.Idempotency)

	user := e.Group("/v1", middleware.JWTAuth(h.JWTSecret),
		middleware.RequireRole(model.RoleGuest, model.RoleAdmin, model.RoleSuperAdmin))
	user.GET("/me", h.Auth.Me)
	user.POST("/bookings", h.Bookings.Create, rl, idem)
	user.GET("/my-bookings", h.Bookings.MyBookings)
	user.GET("/bookings/:id", h.Bookings.Get)
	user.POST("/bookings/:id/cancel", h.Bookings.Cancel, rl)

	staff := middleware.RequireRole(model.RoleAdmin, model.RoleSuperAdmin)
	user.GET("/bookings", h.Bookings.List, staff)
	user.PATCH("/bookings/:id/status", h.Bookings.UpdateStatus, staff, rl)
	user.PATCH("/bookings/:id/room", h.Bookings.ChangeRoom, staff, rl)
	user.POST("/room-types", h.Inventory.CreateRoomType, staff)
	user.POST("/rooms", h.Inventory.CreateRoom, staff)
	user.POST("/tariffs", h.Inventory.CreateTariff, staff)
	user.POST("/discounts", h.Inventory.CreateDiscount, middleware.RequireRole(model.RoleSuperAdmin))
}

func orPass(m echo.MiddlewareFunc) echo.MiddlewareFunc {
	if m != nil {
		return m
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
}
