package models

import (
	"gorm.io/gorm"
)

// BreadType is a sellable product made from one dough, optional fillings and decorations.
type BreadType struct {
	gorm.Model
	Name        string            `gorm:"uniqueIndex;not null" json:"name"`
	Price       float64           `json:"price"`
	DoughID     uint              `gorm:"not null" json:"dough_id"`
	DoughWeight float64           `gorm:"not null" json:"dough_weight"`
	Fillings    []FillingUsage    `gorm:"foreignKey:BreadTypeID" json:"fillings"`
	Decorations []DecorationUsage `gorm:"foreignKey:BreadTypeID" json:"decorations"`
}

type FillingUsage struct {
	gorm.Model
	BreadTypeID uint    `gorm:"not null;index" json:"bread_type_id"`
	Quantity    float64 `gorm:"not null" json:"quantity"`
	Unit        string  `json:"unit"`

	// --- Filling Link ---
	// Exactly one of these is set: a filling recipe or a raw ingredient used as-is.
	FillingID    *uint `json:"filling_id,omitempty"`
	IngredientID *uint `json:"ingredient_id,omitempty"`
}

type DecorationUsage struct {
	gorm.Model
	BreadTypeID  uint    `gorm:"not null;index" json:"bread_type_id"`
	IngredientID uint    `gorm:"not null" json:"ingredient_id"`
	Quantity     float64 `gorm:"not null" json:"quantity"`
	Unit         string  `json:"unit"`
}
