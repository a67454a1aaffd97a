package handler

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// dateLayout is the wire format of calendar dates.
const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}

// pageParams reads ?limit and ?offset.  Invalid values fall back to the
// repository defaults.
func pageParams(c echo.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	offset, _ = strconv.Atoi(c.QueryParam("offset"))
	return limit, offset
}
