package middleware

import "github.com/labstack/echo/v4"

// CurrentUserID returns the authenticated user id or "" when JWTAuth did
// not run.
func CurrentUserID(c echo.Context) string {
	s, _ := c.Get(ctxUserID).(string)
	return s
}

// CurrentRole returns the role claim of the authenticated user.
func CurrentRole(c echo.Context) string {
	s, _ := c.Get(ctxRole).(string)
	return s
}

// CurrentHotelID returns the hotel managed by the authenticated admin, or
// "" for guests and super admins.
func CurrentHotelID(c echo.Context) string {
	s, _ := c.Get(ctxHotelID).(string)
	return s
}

// rateSubject identifies the caller for rate limiting and idempotency keys.
func rateSubject(c echo.Context) string {
	if id := CurrentUserID(c); id != "" {
		return id
	}
	return "anon"
}
