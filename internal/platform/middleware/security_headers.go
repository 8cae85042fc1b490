package middleware

import (
	"github.com/labstack/echo/v4"
)

// hstsValue pins HTTPS for a year, subdomains included.
const hstsValue = "max-age=31536000; includeSubDomains"

// apiHeaders never vary per request: the API serves JSON only, is never
// framed and must not be cached, since bodies carry patient records.
var apiHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"X-XSS-Protection", "0"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Referrer-Policy", "no-referrer"},
	{"Permissions-Policy", "camera=(), microphone=(), geolocation=()"},
	{"Cache-Control", "no-store"},
}

// SecurityHeaders sets the response headers of the JSON API. hsts adds
// Strict-Transport-Security; development servers on plain HTTP leave it off
// so browsers do not pin localhost to HTTPS.
func SecurityHeaders(hsts bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			for _, kv := range apiHeaders {
				h.Set(kv[0], kv[1])
			}
			if hsts {
				h.Set("Strict-Transport-Security", hstsValue)
			}
			return next(c)
		}
	}
}
