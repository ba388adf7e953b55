package costing

import (
	"math"
	"testing"

	"gorm.io/gorm"

	"bakerycost/models"
)

func quantities(lines []AggregatedLine) map[string]float64 {
	out := make(map[string]float64, len(lines))
	for _, line := range lines {
		out[line.Name] = line.TotalQuantity
	}
	return out
}

func TestAggregateRawMaterialsSingleUnit(t *testing.T) {
	t.Parallel()

	catalog := bakeryCatalog()
	lines, issues := AggregateRawMaterials(30, catalog.Breads, catalog.Doughs, catalog.Fillings, catalog.Ingredients, 1)
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues.Messages())
	}

	wantOrder := []string{"Butter", "Flour", "Sugar", "Water"}
	if len(lines) != len(wantOrder) {
		t.Fatalf("expected %d lines, got %+v", len(wantOrder), lines)
	}
	for i, name := range wantOrder {
		if lines[i].Name != name {
			t.Fatalf("line %d: expected %s, got %s", i, name, lines[i].Name)
		}
		if lines[i].Unit != "g" {
			t.Fatalf("line %d: expected unit g, got %q", i, lines[i].Unit)
		}
	}

	got := quantities(lines)
	want := map[string]float64{"Flour": 300, "Water": 200, "Sugar": 25, "Butter": 25}
	for name, quantity := range want {
		if !approxEqual(got[name], quantity) {
			t.Fatalf("%s: expected %v, got %v", name, quantity, got[name])
		}
	}

	total := 0.0
	for _, line := range lines {
		total += line.TotalCost
	}
	if !approxEqual(total, 2.30) {
		t.Fatalf("expected raw material cost to match the breakdown total 2.30, got %v", total)
	}
}

func TestAggregateRawMaterialsIsLinear(t *testing.T) {
	t.Parallel()

	catalog := bakeryCatalog()
	one, _ := AggregateRawMaterials(30, catalog.Breads, catalog.Doughs, catalog.Fillings, catalog.Ingredients, 1)
	ten, _ := AggregateRawMaterials(30, catalog.Breads, catalog.Doughs, catalog.Fillings, catalog.Ingredients, 10)

	base := quantities(one)
	for name, quantity := range quantities(ten) {
		if !approxEqual(quantity, base[name]*10) {
			t.Fatalf("%s: expected %v, got %v", name, base[name]*10, quantity)
		}
	}

	zero, issues := AggregateRawMaterials(30, catalog.Breads, catalog.Doughs, catalog.Fillings, catalog.Ingredients, 0)
	if len(issues) != 0 {
		t.Fatalf("expected no issues for zero planned, got %v", issues.Messages())
	}
	for _, line := range zero {
		if line.TotalQuantity != 0 {
			t.Fatalf("expected zero quantities, got %+v", line)
		}
	}
}

func TestAggregateRawMaterialsWalksNestedRecipes(t *testing.T) {
	t.Parallel()

	catalog := bakeryCatalog()
	for id, filling := range nestedFillings() {
		catalog.Fillings[id] = filling
	}
	dough := catalog.Doughs[10]
	dough.PreFerments = []models.PreFerment{{
		Model:       gorm.Model{ID: 1},
		Name:        "Poolish",
		Yield:       200,
		Ingredients: []models.RecipeIngredient{grams(flourID, 100), grams(waterID, 100)},
	}}
	catalog.Doughs[10] = dough

	bread := models.BreadType{
		Model:       gorm.Model{ID: 31},
		Name:        "Custard Bun",
		DoughID:     10,
		DoughWeight: 100,
		Fillings:    []models.FillingUsage{{FillingID: uintPtr(1), Quantity: 30}},
		Decorations: []models.DecorationUsage{{IngredientID: sesameID, Quantity: 2, Unit: "g"}},
	}
	catalog.Breads[bread.ID] = bread

	lines, issues := AggregateRawMaterials(bread.ID, catalog.Breads, catalog.Doughs, catalog.Fillings, catalog.Ingredients, 2)
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues.Messages())
	}

	// dough scale 2*100/1000 = 0.2; custard scale 60/300 = 0.2; brown butter 50 g * 0.2 = 10 g
	// -> scale 0.1; caramel 10 g * 0.1 = 1 g -> scale 0.02.
	got := quantities(lines)
	want := map[string]float64{
		"Flour":  (600 + 100) * 0.2,
		"Water":  (400 + 100) * 0.2,
		"Sugar":  100*0.2 + 50*0.02,
		"Butter": 100 * 0.1,
		"Sesame": 4,
	}
	for name, quantity := range want {
		if !approxEqual(got[name], quantity) {
			t.Fatalf("%s: expected %v, got %v", name, quantity, got[name])
		}
	}
}

func TestAggregateRawMaterialsReportsProblems(t *testing.T) {
	t.Parallel()

	catalog := bakeryCatalog()
	catalog.Fillings[1] = models.FillingRecipe{
		Model:       gorm.Model{ID: 1},
		Name:        "Loop",
		Yield:       100,
		Ingredients: []models.RecipeIngredient{grams(sugarID, 100)},
		SubFillings: []models.SubFilling{{FillingID: 1, Quantity: 10}},
	}
	catalog.Breads[40] = models.BreadType{
		Model:       gorm.Model{ID: 40},
		Name:        "Orphan",
		DoughID:     999,
		DoughWeight: 100,
		Fillings:    []models.FillingUsage{{FillingID: uintPtr(1), Quantity: 10}},
	}

	lines, issues := AggregateRawMaterials(40, catalog.Breads, catalog.Doughs, catalog.Fillings, catalog.Ingredients, 1)
	if issues.Count(KindMissingReference) != 1 || issues.Count(KindCyclicReference) != 1 {
		t.Fatalf("expected one missing dough and one cycle, got %v", issues.Messages())
	}
	if len(lines) != 1 || lines[0].Name != "Sugar" || !approxEqual(lines[0].TotalQuantity, 10) {
		t.Fatalf("expected 10 g of sugar, got %+v", lines)
	}

	lines, issues = AggregateRawMaterials(404, catalog.Breads, catalog.Doughs, catalog.Fillings, catalog.Ingredients, 1)
	if len(lines) != 0 || issues.Count(KindMissingReference) != 1 {
		t.Fatalf("expected missing bread issue, got %+v %v", lines, issues.Messages())
	}
	if issues[0].Ref != "bread:404" {
		t.Fatalf("unexpected ref %q", issues[0].Ref)
	}
}

func TestAggregateBatchSumsPlanItems(t *testing.T) {
	t.Parallel()

	catalog := bakeryCatalog()
	lines, issues := AggregateBatch([]PlanItem{{BreadID: 30, Quantity: 4}, {BreadID: 30, Quantity: 6}}, catalog)
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues.Messages())
	}
	if got := quantities(lines)["Flour"]; !approxEqual(got, 3000) {
		t.Fatalf("expected 3000 g of flour, got %v", got)
	}

	_, issues = AggregateBatch([]PlanItem{{BreadID: 30, Quantity: -1}}, catalog)
	if issues.Count(KindInvalidQuantity) != 1 {
		t.Fatalf("expected invalid planned quantity issue, got %v", issues.Messages())
	}
}

func TestAggregateRawMaterialsSkipsInvalidPrices(t *testing.T) {
	t.Parallel()

	catalog := bakeryCatalog()
	flour := catalog.Ingredients[flourID]
	flour.Price = -4
	catalog.Ingredients[flourID] = flour

	lines, issues := AggregateRawMaterials(30, catalog.Breads, catalog.Doughs, catalog.Fillings, catalog.Ingredients, 1)
	if got := issues.Count(KindInvalidPrice); got != 1 {
		t.Fatalf("expected 1 invalid price issue, got %v", issues.Messages())
	}
	if issues[0].Ref != "ingredient:1" {
		t.Fatalf("unexpected ref %q", issues[0].Ref)
	}
	if _, ok := quantities(lines)["Flour"]; ok {
		t.Fatalf("expected flour to be left out, got %+v", lines)
	}
	if len(lines) != 3 {
		t.Fatalf("expected the other ingredients to remain, got %+v", lines)
	}

	breakdown, err := catalog.BreadCost(catalog.Breads[30])
	if err != nil {
		t.Fatalf("BreadCost returned error: %v", err)
	}
	if got := breakdown.Errors.Count(KindInvalidPrice); got != 1 {
		t.Fatalf("expected the cost breakdown to report the same price issue, got %v", breakdown.Errors.Messages())
	}
}

func TestAggregateRawMaterialsRejectsOverflow(t *testing.T) {
	t.Parallel()

	catalog := bakeryCatalog()
	lines, issues := AggregateRawMaterials(30, catalog.Breads, catalog.Doughs, catalog.Fillings, catalog.Ingredients, 1e308)
	if len(lines) != 0 {
		t.Fatalf("expected every overflowing line to be left out, got %+v", lines)
	}
	if got := issues.Count(KindInvalidQuantity); got != 4 {
		t.Fatalf("expected 4 invalid quantity issues, got %v", issues.Messages())
	}

	planned := math.MaxFloat64 / 500
	lines, issues = AggregateBatch([]PlanItem{{BreadID: 30, Quantity: planned}, {BreadID: 30, Quantity: planned}}, catalog)
	if len(issues) != 1 || issues[0].Kind != KindInvalidQuantity || issues[0].Ref != "ingredient:1" {
		t.Fatalf("expected only the second flour line to overflow, got %v", issues.Messages())
	}
	for _, line := range lines {
		if math.IsInf(line.TotalQuantity, 0) || math.IsInf(line.TotalCost, 0) {
			t.Fatalf("expected finite totals, got %+v", line)
		}
	}
	if got := quantities(lines)["Flour"]; !approxEqual(got, planned*300) {
		t.Fatalf("expected the first flour contribution to be kept, got %v", got)
	}
}

func TestAggregateRawMaterialsChainsScaleAroundBrokenSubFilling(t *testing.T) {
	t.Parallel()

	catalog := bakeryCatalog()
	catalog.Fillings[20] = models.FillingRecipe{
		Model:       gorm.Model{ID: 20},
		Name:        "Butter Sugar",
		Yield:       200,
		Ingredients: []models.RecipeIngredient{grams(sugarID, 100)},
		SubFillings: []models.SubFilling{{FillingID: 21, Quantity: 40}},
	}
	catalog.Fillings[21] = models.FillingRecipe{
		Model:       gorm.Model{ID: 21},
		Name:        "Brown Butter",
		Yield:       100,
		Ingredients: []models.RecipeIngredient{grams(butterID, 50)},
		SubFillings: []models.SubFilling{{FillingID: 22, Quantity: 10}},
	}
	catalog.Fillings[22] = models.FillingRecipe{
		Model:       gorm.Model{ID: 22},
		Name:        "Seed Crumble",
		Yield:       0,
		Ingredients: []models.RecipeIngredient{grams(sesameID, 100)},
	}

	lines, issues := AggregateRawMaterials(30, catalog.Breads, catalog.Doughs, catalog.Fillings, catalog.Ingredients, 2)
	if len(issues) != 1 || issues[0].Kind != KindInvalidYield || issues[0].Ref != "filling:22" {
		t.Fatalf("expected a single invalid yield issue for the crumble, got %v", issues.Messages())
	}

	got := quantities(lines)
	want := map[string]float64{"Flour": 600, "Water": 400, "Sugar": 50, "Butter": 10}
	if len(got) != len(want) {
		t.Fatalf("expected %d lines, got %+v", len(want), lines)
	}
	for name, quantity := range want {
		if !approxEqual(got[name], quantity) {
			t.Fatalf("%s: expected %v, got %v", name, quantity, got[name])
		}
	}
	if _, ok := got["Sesame"]; ok {
		t.Fatal("expected the crumble's ingredients to be left out")
	}
}
