package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
)

// statusClientClosedRequest is the nginx convention for a caller that went
// away before the response was ready.
const statusClientClosedRequest = 499

// errorResponse is the canonical error envelope for all API errors.
// Code is a stable machine-readable identifier clients branch on
// (sign-up prompt, upsell); Limit accompanies quota_exceeded.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Limit int64  `json:"limit,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs gateway and unexpected errors internally without leaking details.
//   - Renders a consistent JSON envelope: {"error", "code", "limit"}.
func NewHTTPErrorHandler(log zerolog.Logger, freeLimit int64) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, freeLimit, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, freeLimit int64, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	// Expected outcomes → deterministic HTTP codes, never logged as failures.
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, errorResponse{Error: "sign in to like cheats", Code: "unauthenticated"}
	case errors.Is(err, domain.ErrQuotaExceeded):
		return http.StatusForbidden, errorResponse{
			Error: fmt.Sprintf("free accounts can keep up to %d favorites", freeLimit),
			Code:  "quota_exceeded",
			Limit: freeLimit,
		}
	case errors.Is(err, domain.ErrCheatNotFound):
		return http.StatusNotFound, errorResponse{Error: "cheat not found", Code: "cheat_not_found"}
	case errors.Is(err, domain.ErrBusy):
		return http.StatusConflict, errorResponse{Error: "another like is being processed, retry", Code: "busy"}
	case errors.Is(err, domain.ErrInvalidTrigger):
		return http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "invalid_trigger"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "access forbidden", Code: "forbidden"}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: "invalid credentials", Code: "invalid_credentials"}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Error: "user not found", Code: "user_not_found"}
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, errorResponse{Error: "user already exists", Code: "user_exists"}
	}

	// A request context that ended outside a gateway call is the caller's
	// doing, not a failure of ours.
	if !errors.Is(err, domain.ErrRemoteFailure) {
		switch {
		case errors.Is(err, context.Canceled):
			return statusClientClosedRequest, errorResponse{Error: "request cancelled", Code: "canceled"}
		case errors.Is(err, context.DeadlineExceeded):
			return http.StatusGatewayTimeout, errorResponse{Error: "request timed out, please retry", Code: "timeout"}
		}
	}

	if errors.Is(err, domain.ErrRemoteFailure) {
		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("data gateway failure")
		return http.StatusServiceUnavailable, errorResponse{
			Error: "service temporarily unavailable, please retry",
			Code:  "remote_failure",
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
