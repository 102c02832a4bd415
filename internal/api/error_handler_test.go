package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  int
		wantError string
		wantLimit int64
	}{
		{name: "unauthenticated", err: domain.ErrUnauthenticated, wantCode: http.StatusUnauthorized, wantError: "unauthenticated"},
		{name: "quota", err: domain.ErrQuotaExceeded, wantCode: http.StatusForbidden, wantError: "quota_exceeded", wantLimit: 10},
		{name: "wrapped quota", err: fmt.Errorf("toggle: %w", domain.ErrQuotaExceeded), wantCode: http.StatusForbidden, wantError: "quota_exceeded", wantLimit: 10},
		{name: "cheat not found", err: domain.ErrCheatNotFound, wantCode: http.StatusNotFound, wantError: "cheat_not_found"},
		{name: "busy", err: domain.ErrBusy, wantCode: http.StatusConflict, wantError: "busy"},
		{name: "invalid trigger", err: domain.ErrInvalidTrigger, wantCode: http.StatusBadRequest, wantError: "invalid_trigger"},
		{name: "credentials", err: domain.ErrInvalidCredentials, wantCode: http.StatusUnauthorized, wantError: "invalid_credentials"},
		{name: "user exists", err: domain.ErrUserExists, wantCode: http.StatusConflict, wantError: "user_exists"},
		{name: "remote", err: domain.Remote("count likes", errors.New("connection reset")), wantCode: http.StatusServiceUnavailable, wantError: "remote_failure"},
		{name: "caller cancelled", err: context.Canceled, wantCode: statusClientClosedRequest, wantError: "canceled"},
		{name: "caller deadline", err: fmt.Errorf("toggle: %w", context.DeadlineExceeded), wantCode: http.StatusGatewayTimeout, wantError: "timeout"},
		{name: "gateway deadline", err: domain.Remote("count likes", context.DeadlineExceeded), wantCode: http.StatusServiceUnavailable, wantError: "remote_failure"},
		{name: "unexpected", err: errors.New("boom"), wantCode: http.StatusInternalServerError},
		{name: "echo error", err: echo.NewHTTPError(http.StatusBadRequest, "invalid cheat id"), wantCode: http.StatusBadRequest},
	}

	handler := NewHTTPErrorHandler(zerolog.Nop(), 10)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodPost, "/v1/cheats/1/like", nil), rec)

			handler(tt.err, c)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Code != tt.wantError {
				t.Fatalf("expected code %q, got %q", tt.wantError, body.Code)
			}
			if body.Limit != tt.wantLimit {
				t.Fatalf("expected limit %d, got %d", tt.wantLimit, body.Limit)
			}
			if body.Error == "" {
				t.Fatalf("error message must not be empty")
			}
		})
	}
}

func TestHTTPErrorHandler_RemoteCauseNotLeaked(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop(), 10)(domain.Remote("find cheat", errors.New("dial tcp 10.0.0.3:27017")), c)

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Error != "service temporarily unavailable, please retry" {
		t.Fatalf("gateway cause leaked: %q", body.Error)
	}
}
