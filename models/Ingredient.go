package models

import (
	"gorm.io/gorm"
)

// Ingredient is a purchasable raw material. Price is quoted per PurchaseUnit
// and Norms converts one PurchaseUnit into BaseUnit quantities.
type Ingredient struct {
	gorm.Model
	Name         string  `gorm:"uniqueIndex;not null" json:"name"`
	PurchaseUnit string  `gorm:"not null" json:"purchase_unit"`
	BaseUnit     string  `gorm:"not null;default:g" json:"base_unit"`
	Price        float64 `gorm:"not null;default:0" json:"price"`
	Norms        float64 `gorm:"not null;default:1" json:"norms"`
	Category     string  `json:"category"`
	Specs        string  `gorm:"type:text" json:"specs"`
}

// PricePerBaseUnit reports the ingredient price for a single base unit.
func (i Ingredient) PricePerBaseUnit() float64 {
	if i.Norms <= 0 {
		return 0
	}
	return i.Price / i.Norms
}

// RecipeIngredient is an ingredient line owned by a dough, pre-ferment or filling.
type RecipeIngredient struct {
	gorm.Model
	OwnerID      uint    `gorm:"not null;index:idx_recipe_ingredient_owner" json:"owner_id"`
	OwnerType    string  `gorm:"not null;index:idx_recipe_ingredient_owner" json:"owner_type"`
	IngredientID uint    `gorm:"not null" json:"ingredient_id"`
	Quantity     float64 `gorm:"not null" json:"quantity"`
	Unit         string  `json:"unit"`

	// PriceOverride replaces Ingredient.Price (per purchase unit) for this recipe only.
	PriceOverride *float64 `json:"price_override,omitempty"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
}
