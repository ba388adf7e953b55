package costing

import (
	"math"
	"reflect"
	"testing"

	"gorm.io/gorm"

	"bakerycost/models"
)

func nestedFillings() FillingTable {
	return FillingTable{
		1: {
			Model:       gorm.Model{ID: 1},
			Name:        "Custard",
			Yield:       300,
			Ingredients: []models.RecipeIngredient{grams(sugarID, 100)},
			SubFillings: []models.SubFilling{{ParentID: 1, FillingID: 2, Quantity: 50, Unit: "g"}},
		},
		2: {
			Model:       gorm.Model{ID: 2},
			Name:        "Brown Butter",
			Yield:       100,
			Ingredients: []models.RecipeIngredient{grams(butterID, 100)},
			SubFillings: []models.SubFilling{{ParentID: 2, FillingID: 3, Quantity: 0.01, Unit: "kg"}},
		},
		3: {
			Model:       gorm.Model{ID: 3},
			Name:        "Caramel",
			Yield:       50,
			Ingredients: []models.RecipeIngredient{grams(sugarID, 50)},
		},
	}
}

func TestFillingCostSumsSubFillings(t *testing.T) {
	t.Parallel()

	catalog := bakeryCatalog()
	fillings := nestedFillings()

	result := FillingCost(fillings[1], fillings, catalog.Ingredients)
	if len(result.Errors) != 0 {
		t.Fatalf("expected no issues, got %v", result.Errors.Messages())
	}

	// The cost of a filling is its own lines plus unit cost times quantity of each sub-filling.
	want := LinesCost(fillings[1].Ingredients, catalog.Ingredients).Cost
	for _, sub := range fillings[1].SubFillings {
		subResult := FillingCost(fillings[sub.FillingID], fillings, catalog.Ingredients)
		want += subResult.Cost / subResult.Yield * sub.Quantity
	}
	if !approxEqual(result.Cost, want) {
		t.Fatalf("FillingCost = %v, want %v", result.Cost, want)
	}

	// caramel 0.3/50 g; brown butter 3.0 + 10 g caramel = 3.06 per 100 g; custard 0.6 + 50 g brown butter.
	if !approxEqual(result.Cost, 0.6+3.06/100*50) {
		t.Fatalf("unexpected nested cost %v", result.Cost)
	}
	if len(result.SubFillings) != 1 || result.SubFillings[0].Detail == nil {
		t.Fatalf("expected nested sub-filling detail, got %+v", result.SubFillings)
	}
	inner := result.SubFillings[0].Detail.SubFillings
	if len(inner) != 1 || inner[0].Name != "Caramel" || !approxEqual(inner[0].Cost, 0.06) {
		t.Fatalf("expected caramel detail costing 0.06, got %+v", inner)
	}
}

func TestFillingCostIsIdempotent(t *testing.T) {
	t.Parallel()

	catalog := bakeryCatalog()
	fillings := nestedFillings()

	first := FillingCost(fillings[1], fillings, catalog.Ingredients)
	second := FillingCost(fillings[1], fillings, catalog.Ingredients)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results, got %+v and %+v", first, second)
	}
}

func TestFillingCostBreaksCycles(t *testing.T) {
	t.Parallel()

	catalog := bakeryCatalog()
	fillings := FillingTable{
		1: {
			Model:       gorm.Model{ID: 1},
			Name:        "Alpha",
			Yield:       100,
			Ingredients: []models.RecipeIngredient{grams(sugarID, 100)},
			SubFillings: []models.SubFilling{{FillingID: 2, Quantity: 10}},
		},
		2: {
			Model:       gorm.Model{ID: 2},
			Name:        "Beta",
			Yield:       100,
			Ingredients: []models.RecipeIngredient{grams(butterID, 100)},
			SubFillings: []models.SubFilling{{FillingID: 1, Quantity: 10}},
		},
	}

	result := FillingCost(fillings[1], fillings, catalog.Ingredients)

	if math.IsNaN(result.Cost) || math.IsInf(result.Cost, 0) {
		t.Fatalf("expected finite cost, got %v", result.Cost)
	}
	// Alpha 0.6 + 10 g of Beta (3.0 per 100 g, its Alpha contribution dropped).
	if !approxEqual(result.Cost, 0.9) {
		t.Fatalf("expected cost 0.9, got %v", result.Cost)
	}
	if got := result.Errors.Count(KindCyclicReference); got != 1 {
		t.Fatalf("expected one cyclic reference issue, got %d: %v", got, result.Errors.Messages())
	}
}

func TestFillingCostRejectsSelfReference(t *testing.T) {
	t.Parallel()

	catalog := bakeryCatalog()
	fillings := FillingTable{
		1: {
			Model:       gorm.Model{ID: 1},
			Name:        "Ouroboros",
			Yield:       100,
			Ingredients: []models.RecipeIngredient{grams(sugarID, 100)},
			SubFillings: []models.SubFilling{{FillingID: 1, Quantity: 50}},
		},
	}

	result := FillingCost(fillings[1], fillings, catalog.Ingredients)
	if !approxEqual(result.Cost, 0.6) {
		t.Fatalf("expected self reference to contribute nothing, got %v", result.Cost)
	}
	if result.Errors.Count(KindCyclicReference) != 1 || !result.SubFillings[0].Skipped {
		t.Fatalf("expected skipped cyclic sub-filling, got %+v", result)
	}
}

func TestFillingCostZeroYieldSubFilling(t *testing.T) {
	t.Parallel()

	catalog := bakeryCatalog()
	fillings := FillingTable{
		1: {
			Model:       gorm.Model{ID: 1},
			Name:        "Parent",
			Yield:       100,
			Ingredients: []models.RecipeIngredient{grams(sugarID, 100)},
			SubFillings: []models.SubFilling{{FillingID: 2, Quantity: 20}},
		},
		2: {
			Model:       gorm.Model{ID: 2},
			Name:        "Broken",
			Yield:       0,
			Ingredients: []models.RecipeIngredient{grams(butterID, 100)},
		},
	}

	result := FillingCost(fillings[1], fillings, catalog.Ingredients)

	sub := result.SubFillings[0]
	if sub.UnitCost.Available {
		t.Fatalf("expected unavailable unit cost, got %s", sub.UnitCost)
	}
	if sub.UnitCost.String() != "N/A" {
		t.Fatalf("expected N/A label, got %q", sub.UnitCost.String())
	}
	if math.IsNaN(sub.Cost) || math.IsInf(sub.Cost, 0) || sub.Cost != 0 {
		t.Fatalf("expected zero contribution, got %v", sub.Cost)
	}
	if !approxEqual(result.Cost, 0.6) {
		t.Fatalf("expected parent cost 0.6, got %v", result.Cost)
	}
	if result.Errors.Count(KindInvalidYield) != 1 {
		t.Fatalf("expected one invalid yield issue, got %v", result.Errors.Messages())
	}
}

func TestFillingCostMissingSubFilling(t *testing.T) {
	t.Parallel()

	catalog := bakeryCatalog()
	fillings := nestedFillings()
	parent := fillings[1]
	parent.SubFillings = append([]models.SubFilling{{FillingID: 77, Quantity: 5}}, parent.SubFillings...)

	result := FillingCost(parent, fillings, catalog.Ingredients)
	if result.Errors.Count(KindMissingReference) != 1 {
		t.Fatalf("expected one missing reference issue, got %v", result.Errors.Messages())
	}
	if !approxEqual(result.Cost, 0.6+3.06/100*50) {
		t.Fatalf("expected siblings to be costed, got %v", result.Cost)
	}
}

func TestFillingCostAllowsSharedSubFilling(t *testing.T) {
	t.Parallel()

	catalog := bakeryCatalog()
	fillings := nestedFillings()
	parent := fillings[1]
	parent.SubFillings = []models.SubFilling{{FillingID: 3, Quantity: 10}, {FillingID: 2, Quantity: 10}}

	result := FillingCost(parent, fillings, catalog.Ingredients)
	if len(result.Errors) != 0 {
		t.Fatalf("a filling reused on separate branches is not a cycle: %v", result.Errors.Messages())
	}
	if !approxEqual(result.Cost, 0.6+0.06+0.306) {
		t.Fatalf("unexpected cost %v", result.Cost)
	}
}
