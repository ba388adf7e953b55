package costing

import (
	"errors"
	"testing"

	"bakerycost/models"
)

func TestBreadCostBreakdownWorkedExample(t *testing.T) {
	t.Parallel()

	catalog := bakeryCatalog()
	breakdown, err := catalog.BreadCost(catalog.Breads[30])
	if err != nil {
		t.Fatalf("BreadCost returned error: %v", err)
	}

	if !approxEqual(breakdown.DoughCost, 1.40) {
		t.Fatalf("expected dough cost 1.40, got %v", breakdown.DoughCost)
	}
	if !approxEqual(breakdown.FillingsCost, 0.90) {
		t.Fatalf("expected fillings cost 0.90, got %v", breakdown.FillingsCost)
	}
	if breakdown.DecorationsCost != 0 {
		t.Fatalf("expected no decoration cost, got %v", breakdown.DecorationsCost)
	}
	if !approxEqual(breakdown.TotalCost, 2.30) {
		t.Fatalf("expected total 2.30, got %v", breakdown.TotalCost)
	}
	if !approxEqual(breakdown.Margin, 2.70) {
		t.Fatalf("expected margin 2.70, got %v", breakdown.Margin)
	}
	if !breakdown.MarginRatio.Available || !approxEqual(breakdown.MarginRatio.Value, 0.54) {
		t.Fatalf("expected margin ratio 0.54, got %s", breakdown.MarginRatio)
	}
	if len(breakdown.Errors) != 0 {
		t.Fatalf("expected no issues, got %v", breakdown.Errors.Messages())
	}
	if len(breakdown.Fillings) != 1 || breakdown.Fillings[0].Name != "Butter Sugar" || breakdown.Fillings[0].DirectIngredient {
		t.Fatalf("unexpected filling detail %+v", breakdown.Fillings)
	}
}

func TestBreadCostBreakdownMissingDoughIsFatal(t *testing.T) {
	t.Parallel()

	catalog := bakeryCatalog()
	bread := catalog.Breads[30]
	bread.DoughID = 999

	_, err := catalog.BreadCost(bread)
	if !errors.Is(err, ErrDoughNotFound) {
		t.Fatalf("expected ErrDoughNotFound, got %v", err)
	}
}

func TestBreadCostBreakdownPartialResults(t *testing.T) {
	t.Parallel()

	catalog := bakeryCatalog()
	bread := catalog.Breads[30]
	bread.Fillings = append(bread.Fillings,
		models.FillingUsage{FillingID: uintPtr(404), Quantity: 10},
		models.FillingUsage{IngredientID: uintPtr(sesameID), Quantity: 5, Unit: "g"},
		models.FillingUsage{Quantity: 5},
	)
	bread.Decorations = []models.DecorationUsage{
		{IngredientID: sesameID, Quantity: 10, Unit: "g"},
		{IngredientID: 505, Quantity: 1, Unit: "g"},
	}

	breakdown, err := catalog.BreadCost(bread)
	if err != nil {
		t.Fatalf("BreadCost returned error: %v", err)
	}

	direct := breakdown.Fillings[2]
	if !direct.DirectIngredient || !approxEqual(direct.CostInProduct, 0.1) {
		t.Fatalf("expected direct sesame filling costing 0.1, got %+v", direct)
	}
	if !breakdown.Fillings[1].Skipped || !breakdown.Fillings[3].Skipped {
		t.Fatalf("expected unresolved fillings to be skipped, got %+v", breakdown.Fillings)
	}
	if !approxEqual(breakdown.DecorationsCost, 0.2) {
		t.Fatalf("expected decorations 0.2, got %v", breakdown.DecorationsCost)
	}
	if !approxEqual(breakdown.TotalCost, 1.40+0.90+0.1+0.2) {
		t.Fatalf("unexpected total %v", breakdown.TotalCost)
	}
	if got := breakdown.Errors.Count(KindMissingReference); got != 3 {
		t.Fatalf("expected 3 missing references, got %d: %v", got, breakdown.Errors.Messages())
	}
}

func TestBreadCostBreakdownZeroYieldDough(t *testing.T) {
	t.Parallel()

	catalog := bakeryCatalog()
	dough := catalog.Doughs[10]
	dough.Yield = 0
	catalog.Doughs[10] = dough

	breakdown, err := catalog.BreadCost(catalog.Breads[30])
	if err != nil {
		t.Fatalf("BreadCost returned error: %v", err)
	}
	if breakdown.Dough.UnitCost.Available || breakdown.DoughCost != 0 {
		t.Fatalf("expected unavailable dough unit cost, got %+v", breakdown.Dough)
	}
	if !approxEqual(breakdown.TotalCost, 0.90) {
		t.Fatalf("expected filling-only total 0.90, got %v", breakdown.TotalCost)
	}
	if breakdown.Errors.Count(KindInvalidYield) != 1 {
		t.Fatalf("expected invalid yield issue, got %v", breakdown.Errors.Messages())
	}
}

func TestBreadCostBreakdownWithoutPrice(t *testing.T) {
	t.Parallel()

	catalog := bakeryCatalog()
	bread := catalog.Breads[30]
	bread.Price = 0

	breakdown, err := catalog.BreadCost(bread)
	if err != nil {
		t.Fatalf("BreadCost returned error: %v", err)
	}
	if breakdown.MarginRatio.Available {
		t.Fatalf("expected margin ratio to be unavailable without a price, got %s", breakdown.MarginRatio)
	}
}
