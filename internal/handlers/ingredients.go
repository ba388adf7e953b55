package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	applog "bakerycost/internal/log"
	"bakerycost/models"
)

type ingredientRequest struct {
	Name         string  `json:"name"`
	PurchaseUnit string  `json:"purchase_unit"`
	BaseUnit     string  `json:"base_unit"`
	Price        float64 `json:"price"`
	Norms        float64 `json:"norms"`
	Category     string  `json:"category"`
	Specs        string  `json:"specs"`
}

type ingredientResponse struct {
	ID               uint      `json:"id"`
	Name             string    `json:"name"`
	PurchaseUnit     string    `json:"purchase_unit"`
	BaseUnit         string    `json:"base_unit"`
	Price            float64   `json:"price"`
	Norms            float64   `json:"norms"`
	PricePerBaseUnit float64   `json:"price_per_base_unit"`
	Category         string    `json:"category"`
	Specs            string    `json:"specs"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// IngredientResource handles REST-style interactions for ingredient master data.
func IngredientResource(w http.ResponseWriter, r *http.Request) {
	if !requireAPIAccess(w, r, "ingredients") {
		return
	}

	route, ok := parseResourceRoute(r.URL.Path, "/app/api/ingredients")
	if !ok || route.action != "" {
		applog.Debug(r.Context(), "invalid ingredient path", "path", r.URL.Path)
		http.NotFound(w, r)
		return
	}

	if route.collection {
		switch r.Method {
		case http.MethodGet:
			listIngredients(w, r)
		case http.MethodPost:
			createIngredient(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		showIngredient(w, r, route.id)
	case http.MethodPut:
		updateIngredient(w, r, route.id)
	case http.MethodDelete:
		deleteIngredient(w, r, route.id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listIngredients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := database.WithContext(ctx).Order("name asc")
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		query = query.Where("lower(category) = ?", strings.ToLower(category))
	}

	var results []models.Ingredient
	if err := query.Find(&results).Error; err != nil {
		writeError(w, r, err, "load ingredients")
		return
	}

	responses := make([]ingredientResponse, 0, len(results))
	for _, ingredient := range results {
		responses = append(responses, projectIngredient(ingredient))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showIngredient(w http.ResponseWriter, r *http.Request, id uint) {
	var ingredient models.Ingredient
	if err := database.WithContext(r.Context()).First(&ingredient, id).Error; err != nil {
		writeError(w, r, err, "load ingredient")
		return
	}
	writeJSON(w, http.StatusOK, projectIngredient(ingredient))
}

func createIngredient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload ingredientRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err, "create ingredient")
		return
	}

	ingredient, err := payload.model()
	if err != nil {
		writeError(w, r, err, "create ingredient")
		return
	}
	if err := ensureIngredientNameFree(ctx, ingredient.Name, 0); err != nil {
		writeError(w, r, err, "create ingredient")
		return
	}

	if err := database.WithContext(ctx).Create(&ingredient).Error; err != nil {
		writeError(w, r, err, "create ingredient")
		return
	}

	applog.Info(ctx, "ingredient created", "id", ingredient.ID, "name", ingredient.Name)
	writeJSON(w, http.StatusCreated, projectIngredient(ingredient))
}

func updateIngredient(w http.ResponseWriter, r *http.Request, id uint) {
	ctx := r.Context()
	var ingredient models.Ingredient
	if err := database.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		writeError(w, r, err, "load ingredient")
		return
	}

	var payload ingredientRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err, "update ingredient")
		return
	}
	updated, err := payload.model()
	if err != nil {
		writeError(w, r, err, "update ingredient")
		return
	}
	if err := ensureIngredientNameFree(ctx, updated.Name, id); err != nil {
		writeError(w, r, err, "update ingredient")
		return
	}

	updates := map[string]any{
		"name":          updated.Name,
		"purchase_unit": updated.PurchaseUnit,
		"base_unit":     updated.BaseUnit,
		"price":         updated.Price,
		"norms":         updated.Norms,
		"category":      updated.Category,
		"specs":         updated.Specs,
	}
	if err := database.WithContext(ctx).Model(&ingredient).Updates(updates).Error; err != nil {
		writeError(w, r, err, "update ingredient")
		return
	}
	if err := database.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		writeError(w, r, err, "load updated ingredient")
		return
	}

	applog.Info(ctx, "ingredient updated", "id", id)
	writeJSON(w, http.StatusOK, projectIngredient(ingredient))
}

func deleteIngredient(w http.ResponseWriter, r *http.Request, id uint) {
	ctx := r.Context()
	var ingredient models.Ingredient
	if err := database.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		writeError(w, r, err, "load ingredient")
		return
	}
	// Names are unique, so the row is removed for good rather than soft deleted.
	if err := database.WithContext(ctx).Unscoped().Delete(&ingredient).Error; err != nil {
		writeError(w, r, err, "delete ingredient")
		return
	}

	applog.Info(ctx, "ingredient deleted", "id", id, "name", ingredient.Name)
	w.WriteHeader(http.StatusNoContent)
}

func (p ingredientRequest) model() (models.Ingredient, error) {
	ingredient := models.Ingredient{
		Name:         strings.TrimSpace(p.Name),
		PurchaseUnit: strings.TrimSpace(p.PurchaseUnit),
		BaseUnit:     strings.TrimSpace(p.BaseUnit),
		Price:        p.Price,
		Norms:        p.Norms,
		Category:     strings.TrimSpace(p.Category),
		Specs:        strings.TrimSpace(p.Specs),
	}
	if ingredient.Name == "" {
		return models.Ingredient{}, invalidf("name is required")
	}
	if ingredient.BaseUnit == "" {
		ingredient.BaseUnit = "g"
	}
	if ingredient.PurchaseUnit == "" {
		ingredient.PurchaseUnit = ingredient.BaseUnit
	}
	if ingredient.Norms == 0 {
		ingredient.Norms = 1
	}
	if !validNumber(ingredient.Price) {
		return models.Ingredient{}, invalidf("price must be a non-negative number")
	}
	if !validNumber(ingredient.Norms) || ingredient.Norms <= 0 {
		return models.Ingredient{}, invalidf("norms must be a positive number")
	}
	return ingredient, nil
}

// ensureIngredientNameFree fails with errDuplicateName when another ingredient
// already uses name, case-insensitively.
func ensureIngredientNameFree(ctx context.Context, name string, exceptID uint) error {
	var existing models.Ingredient
	err := database.WithContext(ctx).Where("lower(name) = ?", strings.ToLower(name)).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID == exceptID:
		return nil
	default:
		return errDuplicateName
	}
}

func projectIngredient(ingredient models.Ingredient) ingredientResponse {
	return ingredientResponse{
		ID:               ingredient.ID,
		Name:             ingredient.Name,
		PurchaseUnit:     ingredient.PurchaseUnit,
		BaseUnit:         ingredient.BaseUnit,
		Price:            ingredient.Price,
		Norms:            ingredient.Norms,
		PricePerBaseUnit: ingredient.PricePerBaseUnit(),
		Category:         ingredient.Category,
		Specs:            ingredient.Specs,
		CreatedAt:        ingredient.CreatedAt,
		UpdatedAt:        ingredient.UpdatedAt,
	}
}
