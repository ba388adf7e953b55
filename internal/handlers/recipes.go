package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	applog "bakerycost/internal/log"
	"bakerycost/models"
)

const (
	ownerDoughs      = "doughs"
	ownerPreFerments = "pre_ferments"
	ownerFillings    = "fillings"
)

type recipeLineRequest struct {
	IngredientID  uint     `json:"ingredient_id"`
	Quantity      float64  `json:"quantity"`
	Unit          string   `json:"unit"`
	PriceOverride *float64 `json:"price_override,omitempty"`
}

type recipeLineResponse struct {
	ID            uint     `json:"id"`
	IngredientID  uint     `json:"ingredient_id"`
	Quantity      float64  `json:"quantity"`
	Unit          string   `json:"unit"`
	PriceOverride *float64 `json:"price_override,omitempty"`
}

type preFermentRequest struct {
	Name        string              `json:"name"`
	Yield       float64             `json:"yield"`
	Ingredients []recipeLineRequest `json:"ingredients"`
}

type preFermentResponse struct {
	ID          uint                 `json:"id"`
	Name        string               `json:"name"`
	Yield       float64              `json:"yield"`
	Ingredients []recipeLineResponse `json:"ingredients"`
}

type doughRequest struct {
	Name        string              `json:"name"`
	Yield       float64             `json:"yield"`
	Notes       string              `json:"notes"`
	Ingredients []recipeLineRequest `json:"ingredients"`
	PreFerments []preFermentRequest `json:"pre_ferments"`
}

type doughResponse struct {
	ID          uint                 `json:"id"`
	Name        string               `json:"name"`
	Yield       float64              `json:"yield"`
	Notes       string               `json:"notes"`
	Ingredients []recipeLineResponse `json:"ingredients"`
	PreFerments []preFermentResponse `json:"pre_ferments"`
	CreatedAt   time.Time            `json:"created_at"`
}

type subFillingRequest struct {
	FillingID uint    `json:"filling_id"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
}

type subFillingResponse struct {
	ID        uint    `json:"id"`
	FillingID uint    `json:"filling_id"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
}

type fillingRequest struct {
	Name        string              `json:"name"`
	Yield       float64             `json:"yield"`
	Notes       string              `json:"notes"`
	Ingredients []recipeLineRequest `json:"ingredients"`
	SubFillings []subFillingRequest `json:"sub_fillings"`
}

type fillingResponse struct {
	ID          uint                 `json:"id"`
	Name        string               `json:"name"`
	Yield       float64              `json:"yield"`
	Notes       string               `json:"notes"`
	Ingredients []recipeLineResponse `json:"ingredients"`
	SubFillings []subFillingResponse `json:"sub_fillings"`
	CreatedAt   time.Time            `json:"created_at"`
}

// DoughResource handles dough recipes and their cost endpoint.
func DoughResource(w http.ResponseWriter, r *http.Request) {
	if !requireAPIAccess(w, r, "doughs") {
		return
	}

	route, ok := parseResourceRoute(r.URL.Path, "/app/api/doughs")
	if !ok {
		http.NotFound(w, r)
		return
	}

	switch {
	case route.collection && r.Method == http.MethodGet:
		listDoughs(w, r)
	case route.collection && r.Method == http.MethodPost:
		createDough(w, r)
	case route.action == "cost" && r.Method == http.MethodGet:
		doughCost(w, r, route.id)
	case route.action != "":
		http.NotFound(w, r)
	case !route.collection && r.Method == http.MethodGet:
		showDough(w, r, route.id)
	case !route.collection && r.Method == http.MethodDelete:
		deleteDough(w, r, route.id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func preloadDough(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Ingredients").Preload("PreFerments.Ingredients")
}

func listDoughs(w http.ResponseWriter, r *http.Request) {
	var doughs []models.DoughRecipe
	if err := preloadDough(database.WithContext(r.Context())).Order("name asc").Find(&doughs).Error; err != nil {
		writeError(w, r, err, "load doughs")
		return
	}
	responses := make([]doughResponse, 0, len(doughs))
	for _, dough := range doughs {
		responses = append(responses, projectDough(dough))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showDough(w http.ResponseWriter, r *http.Request, id uint) {
	var dough models.DoughRecipe
	if err := preloadDough(database.WithContext(r.Context())).First(&dough, id).Error; err != nil {
		writeError(w, r, err, "load dough")
		return
	}
	writeJSON(w, http.StatusOK, projectDough(dough))
}

func createDough(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload doughRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err, "create dough")
		return
	}

	dough, err := payload.model()
	if err != nil {
		writeError(w, r, err, "create dough")
		return
	}

	if err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&dough).Error
	}); err != nil {
		writeError(w, r, err, "create dough")
		return
	}

	applog.Info(ctx, "dough recipe created", "id", dough.ID, "name", dough.Name, "preFerments", len(dough.PreFerments))
	writeJSON(w, http.StatusCreated, projectDough(dough))
}

func deleteDough(w http.ResponseWriter, r *http.Request, id uint) {
	ctx := r.Context()
	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dough models.DoughRecipe
		if err := tx.Preload("PreFerments").First(&dough, id).Error; err != nil {
			return err
		}
		preFermentIDs := make([]uint, 0, len(dough.PreFerments))
		for _, preFerment := range dough.PreFerments {
			preFermentIDs = append(preFermentIDs, preFerment.ID)
		}
		if err := deleteRecipeLines(tx, ownerDoughs, dough.ID); err != nil {
			return err
		}
		if len(preFermentIDs) > 0 {
			if err := deleteRecipeLines(tx, ownerPreFerments, preFermentIDs...); err != nil {
				return err
			}
			if err := tx.Where("dough_recipe_id = ?", dough.ID).Delete(&models.PreFerment{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&dough).Error
	})
	if err != nil {
		writeError(w, r, err, "delete dough")
		return
	}

	applog.Info(ctx, "dough recipe deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// FillingResource handles filling recipes and their cost endpoint.
func FillingResource(w http.ResponseWriter, r *http.Request) {
	if !requireAPIAccess(w, r, "fillings") {
		return
	}

	route, ok := parseResourceRoute(r.URL.Path, "/app/api/fillings")
	if !ok {
		http.NotFound(w, r)
		return
	}

	switch {
	case route.collection && r.Method == http.MethodGet:
		listFillings(w, r)
	case route.collection && r.Method == http.MethodPost:
		createFilling(w, r)
	case route.action == "cost" && r.Method == http.MethodGet:
		fillingCost(w, r, route.id)
	case route.action != "":
		http.NotFound(w, r)
	case !route.collection && r.Method == http.MethodGet:
		showFilling(w, r, route.id)
	case !route.collection && r.Method == http.MethodDelete:
		deleteFilling(w, r, route.id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func preloadFilling(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Ingredients").Preload("SubFillings")
}

func listFillings(w http.ResponseWriter, r *http.Request) {
	var fillings []models.FillingRecipe
	if err := preloadFilling(database.WithContext(r.Context())).Order("name asc").Find(&fillings).Error; err != nil {
		writeError(w, r, err, "load fillings")
		return
	}
	responses := make([]fillingResponse, 0, len(fillings))
	for _, filling := range fillings {
		responses = append(responses, projectFilling(filling))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showFilling(w http.ResponseWriter, r *http.Request, id uint) {
	var filling models.FillingRecipe
	if err := preloadFilling(database.WithContext(r.Context())).First(&filling, id).Error; err != nil {
		writeError(w, r, err, "load filling")
		return
	}
	writeJSON(w, http.StatusOK, projectFilling(filling))
}

func createFilling(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload fillingRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err, "create filling")
		return
	}

	filling, err := payload.model()
	if err != nil {
		writeError(w, r, err, "create filling")
		return
	}

	err = database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, sub := range filling.SubFillings {
			if err := requireRecord(ctx, tx, &models.FillingRecipe{}, sub.FillingID, "sub-filling"); err != nil {
				return err
			}
		}
		return tx.Create(&filling).Error
	})
	if err != nil {
		writeError(w, r, err, "create filling")
		return
	}

	applog.Info(ctx, "filling recipe created", "id", filling.ID, "name", filling.Name, "subFillings", len(filling.SubFillings))
	writeJSON(w, http.StatusCreated, projectFilling(filling))
}

func deleteFilling(w http.ResponseWriter, r *http.Request, id uint) {
	ctx := r.Context()
	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var filling models.FillingRecipe
		if err := tx.First(&filling, id).Error; err != nil {
			return err
		}
		if err := deleteRecipeLines(tx, ownerFillings, filling.ID); err != nil {
			return err
		}
		if err := tx.Where("parent_id = ?", filling.ID).Delete(&models.SubFilling{}).Error; err != nil {
			return err
		}
		return tx.Delete(&filling).Error
	})
	if err != nil {
		writeError(w, r, err, "delete filling")
		return
	}

	applog.Info(ctx, "filling recipe deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func deleteRecipeLines(tx *gorm.DB, ownerType string, ownerIDs ...uint) error {
	return tx.Where("owner_type = ? AND owner_id IN ?", ownerType, ownerIDs).Delete(&models.RecipeIngredient{}).Error
}

// requireRecord turns a missing reference in a request body into a 400.
func requireRecord(ctx context.Context, tx *gorm.DB, model any, id uint, label string) error {
	var count int64
	if err := tx.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return invalidf("%s %d does not exist", label, id)
	}
	return nil
}

func buildRecipeLines(lines []recipeLineRequest, owner string) ([]models.RecipeIngredient, error) {
	result := make([]models.RecipeIngredient, 0, len(lines))
	for idx, line := range lines {
		if line.IngredientID == 0 {
			return nil, invalidf("%s line %d: ingredient_id is required", owner, idx+1)
		}
		if !validNumber(line.Quantity) {
			return nil, invalidf("%s line %d: quantity must be a non-negative number", owner, idx+1)
		}
		if line.PriceOverride != nil && !validNumber(*line.PriceOverride) {
			return nil, invalidf("%s line %d: price_override must be a non-negative number", owner, idx+1)
		}
		result = append(result, models.RecipeIngredient{
			IngredientID:  line.IngredientID,
			Quantity:      line.Quantity,
			Unit:          strings.TrimSpace(line.Unit),
			PriceOverride: line.PriceOverride,
		})
	}
	return result, nil
}

func validateRecipeHeader(name string, yield float64) error {
	if name == "" {
		return invalidf("name is required")
	}
	if !validNumber(yield) || yield == 0 {
		return invalidf("yield must be a positive number of grams")
	}
	return nil
}

func (p doughRequest) model() (models.DoughRecipe, error) {
	dough := models.DoughRecipe{
		Name:  strings.TrimSpace(p.Name),
		Yield: p.Yield,
		Notes: strings.TrimSpace(p.Notes),
	}
	if err := validateRecipeHeader(dough.Name, dough.Yield); err != nil {
		return models.DoughRecipe{}, err
	}

	lines, err := buildRecipeLines(p.Ingredients, "dough")
	if err != nil {
		return models.DoughRecipe{}, err
	}
	dough.Ingredients = lines

	for idx, preFerment := range p.PreFerments {
		name := strings.TrimSpace(preFerment.Name)
		if name == "" {
			return models.DoughRecipe{}, invalidf("pre-ferment %d: name is required", idx+1)
		}
		if !validNumber(preFerment.Yield) {
			return models.DoughRecipe{}, invalidf("pre-ferment %q: yield must be a non-negative number", name)
		}
		lines, err := buildRecipeLines(preFerment.Ingredients, "pre-ferment "+name)
		if err != nil {
			return models.DoughRecipe{}, err
		}
		dough.PreFerments = append(dough.PreFerments, models.PreFerment{Name: name, Yield: preFerment.Yield, Ingredients: lines})
	}
	return dough, nil
}

func (p fillingRequest) model() (models.FillingRecipe, error) {
	filling := models.FillingRecipe{
		Name:  strings.TrimSpace(p.Name),
		Yield: p.Yield,
		Notes: strings.TrimSpace(p.Notes),
	}
	if err := validateRecipeHeader(filling.Name, filling.Yield); err != nil {
		return models.FillingRecipe{}, err
	}

	lines, err := buildRecipeLines(p.Ingredients, "filling")
	if err != nil {
		return models.FillingRecipe{}, err
	}
	filling.Ingredients = lines

	for idx, sub := range p.SubFillings {
		if sub.FillingID == 0 {
			return models.FillingRecipe{}, invalidf("sub-filling %d: filling_id is required", idx+1)
		}
		if !validNumber(sub.Quantity) {
			return models.FillingRecipe{}, invalidf("sub-filling %d: quantity must be a non-negative number", idx+1)
		}
		filling.SubFillings = append(filling.SubFillings, models.SubFilling{
			FillingID: sub.FillingID,
			Quantity:  sub.Quantity,
			Unit:      strings.TrimSpace(sub.Unit),
		})
	}
	return filling, nil
}

func projectLines(lines []models.RecipeIngredient) []recipeLineResponse {
	result := make([]recipeLineResponse, 0, len(lines))
	for _, line := range lines {
		result = append(result, recipeLineResponse{
			ID:            line.ID,
			IngredientID:  line.IngredientID,
			Quantity:      line.Quantity,
			Unit:          line.Unit,
			PriceOverride: line.PriceOverride,
		})
	}
	return result
}

func projectDough(dough models.DoughRecipe) doughResponse {
	preFerments := make([]preFermentResponse, 0, len(dough.PreFerments))
	for _, preFerment := range dough.PreFerments {
		preFerments = append(preFerments, preFermentResponse{
			ID:          preFerment.ID,
			Name:        preFerment.Name,
			Yield:       preFerment.Yield,
			Ingredients: projectLines(preFerment.Ingredients),
		})
	}
	return doughResponse{
		ID:          dough.ID,
		Name:        dough.Name,
		Yield:       dough.Yield,
		Notes:       dough.Notes,
		Ingredients: projectLines(dough.Ingredients),
		PreFerments: preFerments,
		CreatedAt:   dough.CreatedAt,
	}
}

func projectFilling(filling models.FillingRecipe) fillingResponse {
	subs := make([]subFillingResponse, 0, len(filling.SubFillings))
	for _, sub := range filling.SubFillings {
		subs = append(subs, subFillingResponse{
			ID:        sub.ID,
			FillingID: sub.FillingID,
			Quantity:  sub.Quantity,
			Unit:      sub.Unit,
		})
	}
	return fillingResponse{
		ID:          filling.ID,
		Name:        filling.Name,
		Yield:       filling.Yield,
		Notes:       filling.Notes,
		Ingredients: projectLines(filling.Ingredients),
		SubFillings: subs,
		CreatedAt:   filling.CreatedAt,
	}
}
