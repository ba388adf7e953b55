package models

import (
	"gorm.io/gorm"
)

// DoughRecipe describes a dough and the pre-ferments built into it.
// Yield is the total dough mass produced, in grams.
type DoughRecipe struct {
	gorm.Model
	Name        string             `gorm:"not null" json:"name"`
	Yield       float64            `gorm:"not null" json:"yield"`
	Notes       string             `gorm:"type:text" json:"notes"`
	Ingredients []RecipeIngredient `gorm:"polymorphic:Owner;polymorphicValue:doughs" json:"ingredients"`
	PreFerments []PreFerment       `gorm:"foreignKey:DoughRecipeID" json:"pre_ferments"`
}

// PreFerment is a starter embedded in a single dough recipe.
type PreFerment struct {
	gorm.Model
	DoughRecipeID uint               `gorm:"not null;index" json:"dough_recipe_id"`
	Name          string             `gorm:"not null" json:"name"`
	Yield         float64            `json:"yield"`
	Ingredients   []RecipeIngredient `gorm:"polymorphic:Owner;polymorphicValue:pre_ferments" json:"ingredients"`
}

// FillingRecipe describes a filling. SubFillings reference other filling recipes.
type FillingRecipe struct {
	gorm.Model
	Name        string             `gorm:"not null" json:"name"`
	Yield       float64            `gorm:"not null" json:"yield"`
	Notes       string             `gorm:"type:text" json:"notes"`
	Ingredients []RecipeIngredient `gorm:"polymorphic:Owner;polymorphicValue:fillings" json:"ingredients"`
	SubFillings []SubFilling       `gorm:"foreignKey:ParentID" json:"sub_fillings"`
}

// SubFilling uses Quantity of another filling recipe inside its parent.
type SubFilling struct {
	gorm.Model
	ParentID  uint    `gorm:"not null;index" json:"parent_id"`
	FillingID uint    `gorm:"not null" json:"filling_id"`
	Quantity  float64 `gorm:"not null" json:"quantity"`
	Unit      string  `json:"unit"`
}
