package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

const ProcessTimeHeader = "X-Process-Time"

// ProcessTime sets X-Process-Time to the seconds spent downstream. The
// header is written just before the response, so error and panic responses
// produced by inner middleware carry it too; it must be the outermost
// middleware.
func ProcessTime() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			c.Response().Before(func() {
				elapsed := time.Since(start).Seconds()
				c.Response().Header().Set(ProcessTimeHeader, strconv.FormatFloat(elapsed, 'f', -1, 64))
			})
			return next(c)
		}
	}
}
