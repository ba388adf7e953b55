package costing

import (
	"math"
	"testing"

	"gorm.io/gorm"

	"bakerycost/models"
)

func TestLinesCostConvertsUnits(t *testing.T) {
	t.Parallel()

	table := IngredientTable{
		flourID: {
			Model:        gorm.Model{ID: flourID},
			Name:         "Flour",
			PurchaseUnit: "bag",
			BaseUnit:     "g",
			Price:        20,
			Norms:        25000,
		},
	}

	cases := []struct {
		name     string
		line     models.RecipeIngredient
		wantCost float64
		wantKind Kind
	}{
		{"base unit", models.RecipeIngredient{IngredientID: flourID, Quantity: 1000, Unit: "g"}, 0.8, ""},
		{"blank unit means base unit", models.RecipeIngredient{IngredientID: flourID, Quantity: 1000}, 0.8, ""},
		{"purchase unit", models.RecipeIngredient{IngredientID: flourID, Quantity: 1, Unit: "Bag"}, 20, ""},
		{"same dimension", models.RecipeIngredient{IngredientID: flourID, Quantity: 2, Unit: "kg"}, 1.6, ""},
		{"line override", models.RecipeIngredient{IngredientID: flourID, Quantity: 1, Unit: "bag", PriceOverride: floatPtr(25)}, 25, ""},
		{"incompatible unit", models.RecipeIngredient{IngredientID: flourID, Quantity: 3, Unit: "ml"}, 0, KindUnitMismatch},
		{"negative quantity", models.RecipeIngredient{IngredientID: flourID, Quantity: -5, Unit: "g"}, 0, KindInvalidQuantity},
		{"nan quantity", models.RecipeIngredient{IngredientID: flourID, Quantity: math.NaN(), Unit: "g"}, 0, KindInvalidQuantity},
		{"missing ingredient", models.RecipeIngredient{IngredientID: 99, Quantity: 1, Unit: "g"}, 0, KindMissingReference},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := LinesCost([]models.RecipeIngredient{tt.line}, table)
			if !approxEqual(result.Cost, tt.wantCost) {
				t.Fatalf("LinesCost cost = %v, want %v", result.Cost, tt.wantCost)
			}
			if tt.wantKind == "" {
				if len(result.Errors) != 0 {
					t.Fatalf("expected no issues, got %+v", result.Errors)
				}
				return
			}
			if len(result.Errors) != 1 || result.Errors[0].Kind != tt.wantKind {
				t.Fatalf("expected one %s issue, got %+v", tt.wantKind, result.Errors)
			}
			if result.Lines[0].Resolved {
				t.Fatal("expected failed line to be marked unresolved")
			}
		})
	}
}

func TestLinesCostRejectsInvalidIngredientRecords(t *testing.T) {
	t.Parallel()

	table := IngredientTable{
		flourID: {Model: gorm.Model{ID: flourID}, Name: "Flour", BaseUnit: "g", Price: 1, Norms: 0},
		waterID: {Model: gorm.Model{ID: waterID}, Name: "Water", BaseUnit: "g", Price: -1, Norms: 1},
		sugarID: gramIngredient(sugarID, "Sugar", 0.006),
	}
	lines := []models.RecipeIngredient{grams(flourID, 10), grams(waterID, 10), grams(sugarID, 100)}

	result := LinesCost(lines, table)
	if !approxEqual(result.Cost, 0.6) {
		t.Fatalf("expected only sugar to be costed, got %v", result.Cost)
	}
	if got := result.Errors.Count(KindInvalidQuantity); got != 1 {
		t.Fatalf("expected 1 invalid quantity issue for the conversion factor, got %d: %v", got, result.Errors.Messages())
	}
	if got := result.Errors.Count(KindInvalidPrice); got != 1 {
		t.Fatalf("expected 1 invalid price issue, got %d: %v", got, result.Errors.Messages())
	}
	if result.Errors[1].Ref != "ingredient:2" {
		t.Fatalf("expected the price issue to reference water, got %q", result.Errors[1].Ref)
	}
}

func TestLinesCostRejectsOverflowingLines(t *testing.T) {
	t.Parallel()

	table := IngredientTable{
		flourID: gramIngredient(flourID, "Flour", 1e300),
		sugarID: gramIngredient(sugarID, "Sugar", 0.006),
	}
	lines := []models.RecipeIngredient{grams(flourID, 1e10), grams(sugarID, 100)}

	result := LinesCost(lines, table)
	if math.IsInf(result.Cost, 0) || math.IsNaN(result.Cost) {
		t.Fatalf("expected a finite cost, got %v", result.Cost)
	}
	if !approxEqual(result.Cost, 0.6) {
		t.Fatalf("expected only sugar to be costed, got %v", result.Cost)
	}
	if result.Lines[0].Resolved || result.Lines[0].Cost != 0 {
		t.Fatalf("expected overflowing line to stay unresolved, got %+v", result.Lines[0])
	}
	if got := result.Errors.Count(KindInvalidQuantity); got != 1 {
		t.Fatalf("expected 1 invalid quantity issue, got %d: %v", got, result.Errors.Messages())
	}

	summed := LinesCost([]models.RecipeIngredient{grams(flourID, 1e8), grams(flourID, 1e8)}, table)
	if math.IsInf(summed.Cost, 0) {
		t.Fatalf("expected the running total to stay finite, got %v", summed.Cost)
	}
	if got := summed.Errors.Count(KindInvalidQuantity); got != 1 {
		t.Fatalf("expected the second line to be rejected, got %v", summed.Errors.Messages())
	}
	if summed.Lines[1].Resolved || summed.Lines[1].Cost != 0 {
		t.Fatalf("expected the rejected line to contribute nothing, got %+v", summed.Lines[1])
	}
}
