package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
	"github.com/cheatvault/gta-cheats-api/internal/core/ports"
)

func TestCheatHandler_List_BindsQuery(t *testing.T) {
	stub := &stubCheatService{
		listFn: func(ctx context.Context, in ports.ListCheatsInput) (*ports.ListCheatsResult, error) {
			if in.Game != "gta-sa" || in.Platform != "pc" || in.Category != "weapons" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.ListCheatsResult{
				Cheats:     []domain.Cheat{{ID: 2, Name: "Weapon set 1", Code: "LXGIWYL", Category: "weapons", Game: "gta-sa", Platform: "pc"}},
				Categories: []string{"player", "weapons"},
			}, nil
		},
	}
	handler := NewCheatHandler(stub)

	c, rec := newContext(http.MethodGet, "/v1/cheats?game=gta-sa&platform=pc&category=weapons", "", "")
	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp listCheatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Code != "LXGIWYL" {
		t.Fatalf("unexpected data: %+v", resp.Data)
	}
	if len(resp.Categories) != 2 {
		t.Fatalf("unexpected categories: %v", resp.Categories)
	}
}

func TestCheatHandler_Get(t *testing.T) {
	stub := &stubCheatService{
		getFn: func(ctx context.Context, id int64) (*domain.Cheat, error) {
			if id == 404 {
				return nil, domain.ErrCheatNotFound
			}
			return &domain.Cheat{ID: id, Name: "Jetpack", Code: "ROCKETMAN"}, nil
		},
	}
	handler := NewCheatHandler(stub)

	c, rec := newContext(http.MethodGet, "/v1/cheats/9", "", "")
	if err := handler.Get(withParam(c, "id", "9")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp cheatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.ID != 9 || resp.Code != "ROCKETMAN" {
		t.Fatalf("unexpected payload: %+v", resp)
	}

	c, _ = newContext(http.MethodGet, "/v1/cheats/404", "", "")
	if err := handler.Get(withParam(c, "id", "404")); !errors.Is(err, domain.ErrCheatNotFound) {
		t.Fatalf("expected ErrCheatNotFound, got %v", err)
	}
}
