package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2"
	"gorm.io/gorm"

	"bakerycost/models"
)

// rollCatalog is a tiny catalog with round numbers: flour costs 0.001 per
// gram, water is free and one roll uses a tenth of a 1000 g dough.
type rollCatalog struct {
	Flour models.Ingredient
	Water models.Ingredient
	Sugar models.Ingredient
	Dough models.DoughRecipe
	Glaze models.FillingRecipe
	Roll  models.BreadType
}

func seedRollCatalog(t *testing.T, db *gorm.DB) rollCatalog {
	t.Helper()

	c := rollCatalog{
		Flour: models.Ingredient{Name: "Flour", PurchaseUnit: "kg", BaseUnit: "g", Price: 1, Norms: 1000},
		Water: models.Ingredient{Name: "Water", PurchaseUnit: "g", BaseUnit: "g", Price: 0, Norms: 1},
		Sugar: models.Ingredient{Name: "Sugar", PurchaseUnit: "kg", BaseUnit: "g", Price: 2, Norms: 1000},
	}
	for _, ingredient := range []*models.Ingredient{&c.Flour, &c.Water, &c.Sugar} {
		if err := db.Create(ingredient).Error; err != nil {
			t.Fatalf("create ingredient %s: %v", ingredient.Name, err)
		}
	}

	c.Dough = models.DoughRecipe{
		Name:  "Plain Dough",
		Yield: 1000,
		Ingredients: []models.RecipeIngredient{
			{IngredientID: c.Flour.ID, Quantity: 600, Unit: "g"},
			{IngredientID: c.Water.ID, Quantity: 400, Unit: "g"},
		},
	}
	if err := db.Create(&c.Dough).Error; err != nil {
		t.Fatalf("create dough: %v", err)
	}

	c.Glaze = models.FillingRecipe{
		Name:        "Sugar Glaze",
		Yield:       100,
		Ingredients: []models.RecipeIngredient{{IngredientID: c.Sugar.ID, Quantity: 100, Unit: "g"}},
	}
	if err := db.Create(&c.Glaze).Error; err != nil {
		t.Fatalf("create filling: %v", err)
	}

	c.Roll = models.BreadType{
		Name:        "Roll",
		Price:       1,
		DoughID:     c.Dough.ID,
		DoughWeight: 100,
		Fillings:    []models.FillingUsage{{FillingID: &c.Glaze.ID, Quantity: 10, Unit: "g"}},
	}
	if err := db.Create(&c.Roll).Error; err != nil {
		t.Fatalf("create bread: %v", err)
	}
	return c
}

// authenticatedRequest builds a request carrying a signed-in session.
func authenticatedRequest(t *testing.T, sm *scs.SessionManager, method, target string, body io.Reader) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	ctx, err := sm.Load(req.Context(), "")
	if err != nil {
		t.Fatalf("failed to load session context: %v", err)
	}
	req = req.WithContext(ctx)
	sm.Put(req.Context(), sessionAuthenticatedKey, true)
	sm.Put(req.Context(), sessionUserIDKey, 1)
	sm.Put(req.Context(), sessionUserNameKey, "Morgan")
	return req
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(target); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestParseResourceRoute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		ok   bool
		want resourceRoute
	}{
		{name: "collection", path: "/app/api/breads", ok: true, want: resourceRoute{collection: true}},
		{name: "collection trailing slash", path: "/app/api/breads/", ok: true, want: resourceRoute{collection: true}},
		{name: "item", path: "/app/api/breads/12", ok: true, want: resourceRoute{id: 12}},
		{name: "action", path: "/app/api/breads/12/cost", ok: true, want: resourceRoute{id: 12, action: "cost"}},
		{name: "zero id", path: "/app/api/breads/0", ok: false},
		{name: "word id", path: "/app/api/breads/roll", ok: false},
		{name: "too deep", path: "/app/api/breads/1/cost/extra", ok: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := parseResourceRoute(tt.path, "/app/api/breads")
			if ok != tt.ok {
				t.Fatalf("expected ok=%t, got %t", tt.ok, ok)
			}
			if ok && got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestAPIRequiresDatabaseAndSession(t *testing.T) {
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	original := database
	database = nil
	t.Cleanup(func() { database = original })

	w := httptest.NewRecorder()
	IngredientResource(w, authenticatedRequest(t, sm, http.MethodGet, "/app/api/ingredients", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without database, got %d", w.Code)
	}

	_, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)

	req := httptest.NewRequest(http.MethodGet, "/app/api/ingredients", nil)
	ctx, err := sm.Load(req.Context(), "")
	if err != nil {
		t.Fatalf("failed to load session context: %v", err)
	}
	w = httptest.NewRecorder()
	IngredientResource(w, req.WithContext(ctx))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user, got %d", w.Code)
	}
}

func TestIngredientResourceLifecycle(t *testing.T) {
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	_, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)

	body := `{"name":"Rye Flour","purchase_unit":"kg","base_unit":"g","price":1.5,"norms":1000,"category":"Flour"}`
	w := httptest.NewRecorder()
	IngredientResource(w, authenticatedRequest(t, sm, http.MethodPost, "/app/api/ingredients", strings.NewReader(body)))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created ingredientResponse
	decodeBody(t, w, &created)
	if created.ID == 0 || created.Name != "Rye Flour" {
		t.Fatalf("unexpected created ingredient: %+v", created)
	}
	if created.PricePerBaseUnit != 0.0015 {
		t.Fatalf("expected price per gram 0.0015, got %v", created.PricePerBaseUnit)
	}

	w = httptest.NewRecorder()
	IngredientResource(w, authenticatedRequest(t, sm, http.MethodPost, "/app/api/ingredients", strings.NewReader(`{"name":"rye flour","price":1}`)))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate name, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	IngredientResource(w, authenticatedRequest(t, sm, http.MethodGet, "/app/api/ingredients?category=Flour", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 listing ingredients, got %d", w.Code)
	}
	var listed []ingredientResponse
	decodeBody(t, w, &listed)
	if len(listed) != 1 {
		t.Fatalf("expected 1 flour, got %d", len(listed))
	}

	update := `{"name":"Rye Flour","purchase_unit":"kg","base_unit":"g","price":2,"norms":1000,"category":"Flour"}`
	w = httptest.NewRecorder()
	IngredientResource(w, authenticatedRequest(t, sm, http.MethodPut, "/app/api/ingredients/"+itoa(created.ID), strings.NewReader(update)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 updating ingredient, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	IngredientResource(w, authenticatedRequest(t, sm, http.MethodDelete, "/app/api/ingredients/"+itoa(created.ID), nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 deleting ingredient, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	IngredientResource(w, authenticatedRequest(t, sm, http.MethodGet, "/app/api/ingredients/"+itoa(created.ID), nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	IngredientResource(w, authenticatedRequest(t, sm, http.MethodPost, "/app/api/ingredients", strings.NewReader(body)))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected name to be reusable after delete, got %d", w.Code)
	}
}

func TestIngredientResourceRejectsInvalidPayloads(t *testing.T) {
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	_, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)

	payloads := []string{
		`{"name":""}`,
		`{"name":"Salt","price":-1}`,
		`{"name":"Salt","unknown":true}`,
		`not json`,
	}
	for _, payload := range payloads {
		w := httptest.NewRecorder()
		IngredientResource(w, authenticatedRequest(t, sm, http.MethodPost, "/app/api/ingredients", strings.NewReader(payload)))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("payload %s: expected 400, got %d", payload, w.Code)
		}
	}
}
