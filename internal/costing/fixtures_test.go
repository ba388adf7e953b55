package costing

import (
	"math"

	"gorm.io/gorm"

	"bakerycost/models"
)

const (
	flourID uint = iota + 1
	waterID
	sugarID
	butterID
	sesameID
	yeastID
)

func gramIngredient(id uint, name string, pricePerGram float64) models.Ingredient {
	return models.Ingredient{
		Model:        gorm.Model{ID: id},
		Name:         name,
		PurchaseUnit: "g",
		BaseUnit:     "g",
		Price:        pricePerGram,
		Norms:        1,
	}
}

func grams(id uint, quantity float64) models.RecipeIngredient {
	return models.RecipeIngredient{IngredientID: id, Quantity: quantity, Unit: "g"}
}

func uintPtr(v uint) *uint { return &v }

func floatPtr(v float64) *float64 { return &v }

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

// bakeryCatalog mirrors the worked example: dough D (yield 1000 g, cost 2.8)
// used at 500 g in bread B with filling F (yield 200 g, cost 3.6) used at 50 g.
func bakeryCatalog() Catalog {
	ingredients := []models.Ingredient{
		gramIngredient(flourID, "Flour", 0.004),
		gramIngredient(waterID, "Water", 0.001),
		gramIngredient(sugarID, "Sugar", 0.006),
		gramIngredient(butterID, "Butter", 0.03),
		gramIngredient(sesameID, "Sesame", 0.02),
	}
	dough := models.DoughRecipe{
		Model:       gorm.Model{ID: 10},
		Name:        "Country Dough",
		Yield:       1000,
		Ingredients: []models.RecipeIngredient{grams(flourID, 600), grams(waterID, 400)},
	}
	filling := models.FillingRecipe{
		Model:       gorm.Model{ID: 20},
		Name:        "Butter Sugar",
		Yield:       200,
		Ingredients: []models.RecipeIngredient{grams(sugarID, 100), grams(butterID, 100)},
	}
	bread := models.BreadType{
		Model:       gorm.Model{ID: 30},
		Name:        "Sugar Loaf",
		Price:       5,
		DoughID:     dough.ID,
		DoughWeight: 500,
		Fillings:    []models.FillingUsage{{FillingID: uintPtr(filling.ID), Quantity: 50, Unit: "g"}},
	}
	return NewCatalog(ingredients, []models.DoughRecipe{dough}, []models.FillingRecipe{filling}, []models.BreadType{bread})
}
