package handler // handler defines the HTTP handlers

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
)

// getUserID extracts the user_id the JWT middleware stored in the echo
// context and converts it to uint64.  JWT numeric claims decode as
// float64, so several representations are accepted.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// getHandle returns the handle claim stored by the JWT middleware, or
// an empty string when absent.
func getHandle(c echo.Context) string {
	if s, ok := c.Get("handle").(string); ok {
		return s
	}
	return ""
}
