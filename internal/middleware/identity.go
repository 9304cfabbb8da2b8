package middleware

// identity.go defines helper functions shared across middleware files.  It
// provides a staff identifier extraction function used by the rate limiter
// key builder.  When no token is present "anon" is returned so unauthenticated
// traffic still shares a bucket.

import (
	"github.com/labstack/echo/v4"
)

// staffID extracts the authenticated staff identifier set by StaffAuth.  It
// returns "anon" when no staff member is authenticated.
func staffID(c echo.Context) string {
	if v := c.Get("staff_id"); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "anon"
}
