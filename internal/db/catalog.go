package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"bakerycost/internal/costing"
	"bakerycost/models"
)

// LoadCatalog reads every ingredient, recipe and bread type with their
// nested lines and returns them as a costing snapshot.
func LoadCatalog(ctx context.Context, database *gorm.DB) (costing.Catalog, error) {
	if database == nil {
		return costing.Catalog{}, gorm.ErrInvalidDB
	}
	tx := database.WithContext(ctx)

	var ingredients []models.Ingredient
	if err := tx.Find(&ingredients).Error; err != nil {
		return costing.Catalog{}, fmt.Errorf("load ingredients: %w", err)
	}

	var doughs []models.DoughRecipe
	if err := tx.Preload("Ingredients").Preload("PreFerments.Ingredients").Find(&doughs).Error; err != nil {
		return costing.Catalog{}, fmt.Errorf("load doughs: %w", err)
	}

	var fillings []models.FillingRecipe
	if err := tx.Preload("Ingredients").Preload("SubFillings").Find(&fillings).Error; err != nil {
		return costing.Catalog{}, fmt.Errorf("load fillings: %w", err)
	}

	var breads []models.BreadType
	if err := tx.Preload("Fillings").Preload("Decorations").Find(&breads).Error; err != nil {
		return costing.Catalog{}, fmt.Errorf("load breads: %w", err)
	}

	return costing.NewCatalog(ingredients, doughs, fillings, breads), nil
}
