package envelope

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/internal/platform/validation"
)

const (
	UnauthorizedMessage = "Unauthorized"
	invalidBodyField    = "body"
)

// FromError renders err as the envelope of its class. notFound is the
// message used for db.ErrNotFound. Unclassified errors are logged with op
// and answered with a generic 500.
func FromError(c echo.Context, err error, op, notFound string) error {
	var verr *validation.Error
	var herr *echo.HTTPError
	switch {
	case errors.As(err, &verr):
		return Invalid(c, verr.Fields)
	case errors.Is(err, validation.ErrInvalidBody):
		return Invalid(c, map[string][]string{invalidBodyField: {err.Error()}})
	case errors.Is(err, db.ErrNotFound):
		return NotFound(c, notFound)
	case errors.Is(err, auth.ErrUnauthenticated):
		return Unauthorized(c, auth.UnauthenticatedMessage)
	case errors.Is(err, auth.ErrUnauthorized):
		return Unauthorized(c, UnauthorizedMessage)
	case errors.As(err, &herr) && herr.Code < http.StatusInternalServerError:
		// Raised below the handler, e.g. an oversized body while decoding.
		return Message(c, herr.Code, messageOf(herr))
	}

	zerolog.Ctx(c.Request().Context()).Error().Err(err).Str("op", op).Msg("request failed")
	return Internal(c)
}
