package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2"

	"bakerycost/internal/db/mock"
)

// withSeededBakery installs the mock bakery database, which includes the
// morgan@bakerycost.app account.
func withSeededBakery(t *testing.T) {
	t.Helper()
	seeded, err := mock.New(context.Background())
	if err != nil {
		t.Fatalf("mock database: %v", err)
	}
	original := database
	database = seeded
	t.Cleanup(func() { database = original })
}

// sessionContext loads an empty session so several requests can share it.
func sessionContext(t *testing.T, sm *scs.SessionManager) context.Context {
	t.Helper()
	ctx, err := sm.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("failed to load session context: %v", err)
	}
	return ctx
}

func formRequest(ctx context.Context, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req.WithContext(ctx)
}

func TestLoginContinuesToRememberedCostReport(t *testing.T) {
	sm, cleanup := withTestSessionManager(t)
	t.Cleanup(cleanup)
	withSeededBakery(t)
	ctx := sessionContext(t, sm)

	guarded := RequireAuthentication(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("protected handler reached without a session")
	}))
	w := httptest.NewRecorder()
	guarded.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/app/reports/breads/3/cost", nil).WithContext(ctx))
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", w.Code, w.Header().Get("Location"))
	}

	w = httptest.NewRecorder()
	Login(w, formRequest(ctx, "/login", url.Values{"email": {"Morgan@BakeryCost.app"}, "password": {"levain"}}))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/app/reports/breads/3/cost" {
		t.Fatalf("expected to continue to the cost report, got %q", loc)
	}
	if got := sm.GetString(ctx, sessionUserNameKey); got != "Morgan Baker" {
		t.Fatalf("expected the baker's name in the session, got %q", got)
	}
	if sm.Exists(ctx, sessionReturnToKey) {
		t.Fatal("expected the remembered page to be consumed")
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	sm, cleanup := withTestSessionManager(t)
	t.Cleanup(cleanup)
	withSeededBakery(t)
	ctx := sessionContext(t, sm)

	req := formRequest(ctx, "/login", url.Values{"email": {"morgan@bakerycost.app"}, "password": {"rye"}})
	req.Header.Set("HX-Request", "true")
	w := httptest.NewRecorder()
	Login(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected the form to be shown again, got %d", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, "<html") {
		t.Fatal("expected an HTMX partial")
	}
	for _, want := range []string{"Invalid email or password", `value="morgan@bakerycost.app"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in %q", want, body)
		}
	}
	if ActiveSession(req) {
		t.Fatal("expected no session after a failed sign-in")
	}

	w = httptest.NewRecorder()
	Login(w, formRequest(ctx, "/login", url.Values{"email": {"morgan@bakerycost.app"}}))
	if !strings.Contains(w.Body.String(), "Email and password are required.") {
		t.Fatalf("expected missing password message, got %q", w.Body.String())
	}
}

func TestLoginSendsSignedInBakersOn(t *testing.T) {
	sm, cleanup := withTestSessionManager(t)
	t.Cleanup(cleanup)

	req := authenticatedRequest(t, sm, http.MethodGet, "/login", nil)
	w := httptest.NewRecorder()
	Login(w, req)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/app" {
		t.Fatalf("expected redirect to /app, got %d %q", w.Code, w.Header().Get("Location"))
	}

	w = httptest.NewRecorder()
	Login(w, httptest.NewRequest(http.MethodDelete, "/login", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}

func TestRequireAuthenticationDoesNotRememberAPIRoutes(t *testing.T) {
	sm, cleanup := withTestSessionManager(t)
	t.Cleanup(cleanup)
	ctx := sessionContext(t, sm)

	guarded := RequireAuthentication(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/app/api/breads", nil),
		httptest.NewRequest(http.MethodPost, "/app/reports/production-plan", nil),
	} {
		guarded.ServeHTTP(httptest.NewRecorder(), req.WithContext(ctx))
		if sm.Exists(ctx, sessionReturnToKey) {
			t.Fatalf("%s %s: expected nothing to be remembered", req.Method, req.URL.Path)
		}
	}
}

func TestSafeReturnTo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		target string
		want   bool
	}{
		{"/app", true},
		{"/app/reports/breads/3/cost", true},
		{"/app/reports/breads/3/cost?format=html", true},
		{"", false},
		{"/login", false},
		{"/application", false},
		{"/app/api/breads", false},
		{"//evil.example/app", false},
		{"https://evil.example/app", false},
		{"/app\\@evil.example", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.target, func(t *testing.T) {
			t.Parallel()
			if got := safeReturnTo(tt.target); got != tt.want {
				t.Fatalf("safeReturnTo(%q) = %v, want %v", tt.target, got, tt.want)
			}
		})
	}
}
