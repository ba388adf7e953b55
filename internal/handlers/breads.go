package handlers

import (
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	applog "bakerycost/internal/log"
	"bakerycost/models"
)

type fillingUsageRequest struct {
	FillingID    *uint   `json:"filling_id,omitempty"`
	IngredientID *uint   `json:"ingredient_id,omitempty"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
}

type decorationUsageRequest struct {
	IngredientID uint    `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
}

type breadRequest struct {
	Name        string                   `json:"name"`
	Price       float64                  `json:"price"`
	DoughID     uint                     `json:"dough_id"`
	DoughWeight float64                  `json:"dough_weight"`
	Fillings    []fillingUsageRequest    `json:"fillings"`
	Decorations []decorationUsageRequest `json:"decorations"`
}

type fillingUsageResponse struct {
	ID           uint    `json:"id"`
	FillingID    *uint   `json:"filling_id,omitempty"`
	IngredientID *uint   `json:"ingredient_id,omitempty"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
}

type decorationUsageResponse struct {
	ID           uint    `json:"id"`
	IngredientID uint    `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
}

type breadResponse struct {
	ID          uint                      `json:"id"`
	Name        string                    `json:"name"`
	Price       float64                   `json:"price"`
	DoughID     uint                      `json:"dough_id"`
	DoughWeight float64                   `json:"dough_weight"`
	Fillings    []fillingUsageResponse    `json:"fillings"`
	Decorations []decorationUsageResponse `json:"decorations"`
	CreatedAt   time.Time                 `json:"created_at"`
}

// BreadResource handles bread types and their cost breakdown.
func BreadResource(w http.ResponseWriter, r *http.Request) {
	if !requireAPIAccess(w, r, "breads") {
		return
	}

	route, ok := parseResourceRoute(r.URL.Path, "/app/api/breads")
	if !ok {
		http.NotFound(w, r)
		return
	}

	switch {
	case route.collection && r.Method == http.MethodGet:
		listBreads(w, r)
	case route.collection && r.Method == http.MethodPost:
		createBread(w, r)
	case route.action == "cost" && r.Method == http.MethodGet:
		breadCost(w, r, route.id)
	case route.action != "":
		http.NotFound(w, r)
	case !route.collection && r.Method == http.MethodGet:
		showBread(w, r, route.id)
	case !route.collection && r.Method == http.MethodDelete:
		deleteBread(w, r, route.id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func preloadBread(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Fillings").Preload("Decorations")
}

func listBreads(w http.ResponseWriter, r *http.Request) {
	var breads []models.BreadType
	if err := preloadBread(database.WithContext(r.Context())).Order("name asc").Find(&breads).Error; err != nil {
		writeError(w, r, err, "load breads")
		return
	}
	responses := make([]breadResponse, 0, len(breads))
	for _, bread := range breads {
		responses = append(responses, projectBread(bread))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showBread(w http.ResponseWriter, r *http.Request, id uint) {
	var bread models.BreadType
	if err := preloadBread(database.WithContext(r.Context())).First(&bread, id).Error; err != nil {
		writeError(w, r, err, "load bread")
		return
	}
	writeJSON(w, http.StatusOK, projectBread(bread))
}

func createBread(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload breadRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err, "create bread")
		return
	}

	bread, err := payload.model()
	if err != nil {
		writeError(w, r, err, "create bread")
		return
	}

	err = database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.BreadType{}).Where("name = ?", bread.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errDuplicateName
		}
		if err := requireRecord(ctx, tx, &models.DoughRecipe{}, bread.DoughID, "dough"); err != nil {
			return err
		}
		for _, usage := range bread.Fillings {
			if usage.FillingID != nil {
				if err := requireRecord(ctx, tx, &models.FillingRecipe{}, *usage.FillingID, "filling"); err != nil {
					return err
				}
				continue
			}
			if err := requireRecord(ctx, tx, &models.Ingredient{}, *usage.IngredientID, "ingredient"); err != nil {
				return err
			}
		}
		for _, usage := range bread.Decorations {
			if err := requireRecord(ctx, tx, &models.Ingredient{}, usage.IngredientID, "ingredient"); err != nil {
				return err
			}
		}
		return tx.Create(&bread).Error
	})
	if err != nil {
		writeError(w, r, err, "create bread")
		return
	}

	applog.Info(ctx, "bread type created", "id", bread.ID, "name", bread.Name, "doughID", bread.DoughID)
	writeJSON(w, http.StatusCreated, projectBread(bread))
}

func deleteBread(w http.ResponseWriter, r *http.Request, id uint) {
	ctx := r.Context()
	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bread models.BreadType
		if err := tx.First(&bread, id).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("bread_type_id = ?", bread.ID).Delete(&models.FillingUsage{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("bread_type_id = ?", bread.ID).Delete(&models.DecorationUsage{}).Error; err != nil {
			return err
		}
		// Names are unique, so the row is removed for good rather than soft deleted.
		return tx.Unscoped().Delete(&bread).Error
	})
	if err != nil {
		writeError(w, r, err, "delete bread")
		return
	}

	applog.Info(ctx, "bread type deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (p breadRequest) model() (models.BreadType, error) {
	bread := models.BreadType{
		Name:        strings.TrimSpace(p.Name),
		Price:       p.Price,
		DoughID:     p.DoughID,
		DoughWeight: p.DoughWeight,
	}
	if bread.Name == "" {
		return models.BreadType{}, invalidf("name is required")
	}
	if !validNumber(bread.Price) {
		return models.BreadType{}, invalidf("price must be a non-negative number")
	}
	if bread.DoughID == 0 {
		return models.BreadType{}, invalidf("dough_id is required")
	}
	if !validNumber(bread.DoughWeight) || bread.DoughWeight == 0 {
		return models.BreadType{}, invalidf("dough_weight must be a positive number of grams")
	}

	for idx, usage := range p.Fillings {
		hasFilling := usage.FillingID != nil && *usage.FillingID != 0
		hasIngredient := usage.IngredientID != nil && *usage.IngredientID != 0
		if hasFilling == hasIngredient {
			return models.BreadType{}, invalidf("filling %d: exactly one of filling_id or ingredient_id is required", idx+1)
		}
		if !validNumber(usage.Quantity) {
			return models.BreadType{}, invalidf("filling %d: quantity must be a non-negative number", idx+1)
		}
		fillingUsage := models.FillingUsage{Quantity: usage.Quantity, Unit: strings.TrimSpace(usage.Unit)}
		if hasFilling {
			fillingUsage.FillingID = usage.FillingID
		} else {
			fillingUsage.IngredientID = usage.IngredientID
		}
		bread.Fillings = append(bread.Fillings, fillingUsage)
	}

	for idx, usage := range p.Decorations {
		if usage.IngredientID == 0 {
			return models.BreadType{}, invalidf("decoration %d: ingredient_id is required", idx+1)
		}
		if !validNumber(usage.Quantity) {
			return models.BreadType{}, invalidf("decoration %d: quantity must be a non-negative number", idx+1)
		}
		bread.Decorations = append(bread.Decorations, models.DecorationUsage{
			IngredientID: usage.IngredientID,
			Quantity:     usage.Quantity,
			Unit:         strings.TrimSpace(usage.Unit),
		})
	}
	return bread, nil
}

func projectBread(bread models.BreadType) breadResponse {
	fillings := make([]fillingUsageResponse, 0, len(bread.Fillings))
	for _, usage := range bread.Fillings {
		fillings = append(fillings, fillingUsageResponse{
			ID:           usage.ID,
			FillingID:    usage.FillingID,
			IngredientID: usage.IngredientID,
			Quantity:     usage.Quantity,
			Unit:         usage.Unit,
		})
	}
	decorations := make([]decorationUsageResponse, 0, len(bread.Decorations))
	for _, usage := range bread.Decorations {
		decorations = append(decorations, decorationUsageResponse{
			ID:           usage.ID,
			IngredientID: usage.IngredientID,
			Quantity:     usage.Quantity,
			Unit:         usage.Unit,
		})
	}
	return breadResponse{
		ID:          bread.ID,
		Name:        bread.Name,
		Price:       bread.Price,
		DoughID:     bread.DoughID,
		DoughWeight: bread.DoughWeight,
		Fillings:    fillings,
		Decorations: decorations,
		CreatedAt:   bread.CreatedAt,
	}
}
