// Package envelope renders the uniform JSON wrapper returned by every
// endpoint: {status, message|msg, data|<collection>, [errors], [page meta]}.
package envelope

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/pkg/pagination"
)

// Body is an envelope under construction.
type Body map[string]interface{}

const internalMessage = "Internal server error"

// JSON writes body with the status duplicated into the "status" field.
func JSON(c echo.Context, status int, body Body) error {
	if body == nil {
		body = Body{}
	}
	body["status"] = status
	return c.JSON(status, body)
}

func Message(c echo.Context, status int, message string) error {
	return JSON(c, status, Body{"message": message})
}

func OK(c echo.Context, message string, data interface{}) error {
	return JSON(c, http.StatusOK, Body{"message": message, "data": data})
}

// List renders a paginated listing under key (e.g. "patients"). Listing
// envelopes use "msg" rather than "message".
func List(c echo.Context, key, msg string, items interface{}, pg pagination.Page) error {
	return JSON(c, http.StatusOK, Body{
		"msg":   msg,
		key:     items,
		"total": pg.Total,
		"page":  pg.Page,
		"pages": pg.Pages,
		"limit": pg.Limit,
	})
}

func Invalid(c echo.Context, fields map[string][]string) error {
	return JSON(c, http.StatusBadRequest, Body{"message": "Validation error", "errors": fields})
}

func NotFound(c echo.Context, message string) error {
	return Message(c, http.StatusNotFound, message)
}

func Unauthorized(c echo.Context, message string) error {
	return Message(c, http.StatusUnauthorized, message)
}

func Internal(c echo.Context) error {
	return Message(c, http.StatusInternalServerError, internalMessage)
}

// ErrorHandler replaces echo's default error handler so router errors,
// binding errors and recovered panics are rendered as envelopes too.
// Messages of 5xx errors are never exposed.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := internalMessage

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if status < http.StatusInternalServerError {
				message = messageOf(he)
			}
		}
		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Msg("unhandled error")
			message = internalMessage
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = Message(c, status, message)
		}
		if werr != nil {
			logger.Error().Err(werr).Msg("write error response")
		}
	}
}

func messageOf(he *echo.HTTPError) string {
	switch m := he.Message.(type) {
	case string:
		return m
	case error:
		return m.Error()
	case nil:
		return http.StatusText(he.Code)
	default:
		return fmt.Sprint(m)
	}
}

// ListMessage renders the "msg" of a listing, e.g. "Patients matching search
// term: ann" or "No patients found matching search term: ann".
func ListMessage(collection, q string, n int) string {
	if n == 0 {
		return "No " + collection + " found matching search term: " + q
	}
	return strings.ToUpper(collection[:1]) + collection[1:] + " matching search term: " + q
}
