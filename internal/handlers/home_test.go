package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bakerycost/internal/db/mock"
)

func TestHomeRedirects(t *testing.T) {
	sm, cleanup := withTestSessionManager(t)
	t.Cleanup(cleanup)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx, err := sm.Load(req.Context(), "")
	if err != nil {
		t.Fatalf("failed to load session context: %v", err)
	}
	w := httptest.NewRecorder()
	Home(w, req.WithContext(ctx))
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", w.Code, w.Header().Get("Location"))
	}

	w = httptest.NewRecorder()
	Home(w, authenticatedRequest(t, sm, http.MethodGet, "/", nil))
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/app" {
		t.Fatalf("expected redirect to /app, got %d %q", w.Code, w.Header().Get("Location"))
	}

	w = httptest.NewRecorder()
	Home(w, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown path, got %d", w.Code)
	}
}

func TestAppListsSeededBreads(t *testing.T) {
	sm, cleanup := withTestSessionManager(t)
	t.Cleanup(cleanup)

	seeded, err := mock.New(context.Background())
	if err != nil {
		t.Fatalf("mock database: %v", err)
	}
	original := database
	database = seeded
	t.Cleanup(func() { database = original })

	w := httptest.NewRecorder()
	App(w, authenticatedRequest(t, sm, http.MethodGet, "/app", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, want := range []string{"Signed in as Morgan", "Almond Brioche", "Country Loaf", "Sesame Bun", `name="quantity_`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in landing page", want)
		}
	}

	w = httptest.NewRecorder()
	App(w, authenticatedRequest(t, sm, http.MethodGet, "/app/unknown", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
