package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const timeoutMessage = "Request processing exceeded the allowed time limit"

// RequestTimeout puts a deadline on the request context. Handlers still
// running when it passes are answered with 504; their database calls see
// the cancelled context.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if timeout <= 0 {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()

			c.SetRequest(c.Request().WithContext(ctx))

			done := make(chan error, 1)
			go func() {
				// Recovery cannot see panics on this goroutine.
				defer func() {
					if r := recover(); r != nil {
						done <- fmt.Errorf("panic: %v", r)
					}
				}()
				done <- next(c)
			}()

			select {
			case err := <-done:
				if err != nil && errors.Is(err, context.DeadlineExceeded) {
					return echo.NewHTTPError(http.StatusGatewayTimeout, timeoutMessage)
				}
				return err
			case <-ctx.Done():
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					return echo.NewHTTPError(http.StatusGatewayTimeout, timeoutMessage)
				}
				// Client went away.
				return ctx.Err()
			}
		}
	}
}
