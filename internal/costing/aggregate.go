package costing

import (
	"fmt"
	"sort"
	"strings"

	"bakerycost/models"
)

// AggregatedLine is the total amount of one base ingredient needed for a plan.
type AggregatedLine struct {
	IngredientID  uint    `json:"ingredient_id"`
	Name          string  `json:"name"`
	TotalQuantity float64 `json:"total_quantity"`
	Unit          string  `json:"unit"`
	TotalCost     float64 `json:"total_cost"`
}

// PlanItem asks for Quantity units of one bread type.
type PlanItem struct {
	BreadID  uint    `json:"bread_id"`
	Quantity float64 `json:"quantity"`
}

// Aggregator accumulates base-ingredient quantities across bread types.
// Build one per computation; it is not safe for concurrent use.
type Aggregator struct {
	doughs      DoughTable
	fillings    FillingTable
	ingredients IngredientTable

	totals map[uint]float64
	errors Issues
}

func NewAggregator(doughs DoughTable, fillings FillingTable, ingredients IngredientTable) *Aggregator {
	return &Aggregator{
		doughs:      doughs,
		fillings:    fillings,
		ingredients: ingredients,
		totals:      make(map[uint]float64),
	}
}

// AggregateRawMaterials lists the base ingredients needed to produce planned
// units of the bread identified by breadID.
func AggregateRawMaterials(breadID uint, breads BreadTable, doughs DoughTable, fillings FillingTable, ingredients IngredientTable, planned float64) ([]AggregatedLine, Issues) {
	aggregator := NewAggregator(doughs, fillings, ingredients)
	aggregator.AddByID(breadID, breads, planned)
	return aggregator.Lines(), aggregator.Errors()
}

// AggregateBatch sums the raw materials of every plan item into one list.
func AggregateBatch(plan []PlanItem, catalog Catalog) ([]AggregatedLine, Issues) {
	aggregator := NewAggregator(catalog.Doughs, catalog.Fillings, catalog.Ingredients)
	for _, item := range plan {
		aggregator.AddByID(item.BreadID, catalog.Breads, item.Quantity)
	}
	return aggregator.Lines(), aggregator.Errors()
}

// AddByID resolves breadID in breads and adds it.
func (a *Aggregator) AddByID(breadID uint, breads BreadTable, planned float64) {
	bread, ok := breads[breadID]
	if !ok {
		a.report(issuef(KindMissingReference, breadRef(breadID), "bread %d not found", breadID))
		return
	}
	a.Add(bread, planned)
}

// Add accumulates the raw materials for planned units of bread.
func (a *Aggregator) Add(bread models.BreadType, planned float64) {
	if !validQuantity(planned) {
		a.report(issuef(KindInvalidQuantity, breadRef(bread.ID), "bread %q has invalid planned quantity %v", bread.Name, planned))
		return
	}

	a.addDough(bread, planned)

	for _, usage := range bread.Fillings {
		switch {
		case usage.FillingID != nil && *usage.FillingID != 0:
			a.addFillingUsage(bread, *usage.FillingID, usage.Quantity, usage.Unit, planned)
		case usage.IngredientID != nil && *usage.IngredientID != 0:
			a.addIngredient(*usage.IngredientID, usage.Quantity, usage.Unit, planned)
		default:
			a.report(issuef(KindMissingReference, breadRef(bread.ID), "bread %q: filling usage %d references neither a filling nor an ingredient", bread.Name, usage.ID))
		}
	}

	for _, decoration := range bread.Decorations {
		a.addIngredient(decoration.IngredientID, decoration.Quantity, decoration.Unit, planned)
	}
}

func (a *Aggregator) addDough(bread models.BreadType, planned float64) {
	dough, ok := a.doughs[bread.DoughID]
	if !ok {
		a.report(issuef(KindMissingReference, doughRef(bread.DoughID), "bread %q: dough %d not found", bread.Name, bread.DoughID))
		return
	}
	weight, issue, ok := usageGrams(doughRef(dough.ID), fmt.Sprintf("dough weight of %q", bread.Name), bread.DoughWeight, "")
	if !ok {
		a.report(issue)
		return
	}
	yield := sanitizeYield(dough.Yield)
	if yield == 0 {
		a.report(issuef(KindInvalidYield, doughRef(dough.ID), "dough %q has invalid yield %v; its ingredients are left out", dough.Name, dough.Yield))
		return
	}

	scale := planned * (weight / yield)
	a.addLines(dough.Ingredients, scale)
	for _, preFerment := range dough.PreFerments {
		a.addLines(preFerment.Ingredients, scale)
	}
}

func (a *Aggregator) addFillingUsage(bread models.BreadType, fillingID uint, quantity float64, unit string, planned float64) {
	filling, ok := a.fillings[fillingID]
	if !ok {
		a.report(issuef(KindMissingReference, fillingRef(fillingID), "bread %q: filling %d not found", bread.Name, fillingID))
		return
	}
	grams, issue, ok := usageGrams(fillingRef(fillingID), fmt.Sprintf("filling %q in %q", filling.Name, bread.Name), quantity, unit)
	if !ok {
		a.report(issue)
		return
	}
	a.addFilling(filling, planned*grams, make(map[uint]bool))
}

// addFilling adds amount grams of filling, walking sub-fillings with a path guard.
func (a *Aggregator) addFilling(filling models.FillingRecipe, amount float64, path map[uint]bool) {
	yield := sanitizeYield(filling.Yield)
	if yield == 0 {
		a.report(issuef(KindInvalidYield, fillingRef(filling.ID), "filling %q has invalid yield %v; its ingredients are left out", filling.Name, filling.Yield))
		return
	}

	path[filling.ID] = true
	defer delete(path, filling.ID)

	scale := amount / yield
	a.addLines(filling.Ingredients, scale)

	for _, sub := range filling.SubFillings {
		ref := fillingRef(sub.FillingID)
		target, ok := a.fillings[sub.FillingID]
		if !ok {
			a.report(issuef(KindMissingReference, ref, "filling %q: sub-filling %d not found", filling.Name, sub.FillingID))
			continue
		}
		if path[sub.FillingID] {
			a.report(issuef(KindCyclicReference, ref, "filling %q: sub-filling %q is already part of this recipe chain", filling.Name, target.Name))
			continue
		}
		grams, issue, ok := usageGrams(ref, fmt.Sprintf("sub-filling %q in %q", target.Name, filling.Name), sub.Quantity, sub.Unit)
		if !ok {
			a.report(issue)
			continue
		}
		a.addFilling(target, scale*grams, path)
	}
}

func (a *Aggregator) addLines(lines []models.RecipeIngredient, scale float64) {
	for _, line := range lines {
		a.addIngredient(line.IngredientID, line.Quantity, line.Unit, scale)
	}
}

func (a *Aggregator) addIngredient(id uint, quantity float64, unit string, scale float64) {
	ref := ingredientRef(id)
	ingredient, ok := a.ingredients[id]
	if !ok {
		a.report(issuef(KindMissingReference, ref, "ingredient %d not found", id))
		return
	}
	if !validQuantity(quantity) {
		a.report(issuef(KindInvalidQuantity, ref, "ingredient %q has invalid quantity %v", ingredient.Name, quantity))
		return
	}
	if !finite(ingredient.Norms) || ingredient.Norms <= 0 {
		a.report(issuef(KindInvalidQuantity, ref, "ingredient %q has invalid conversion factor %v", ingredient.Name, ingredient.Norms))
		return
	}
	if !validQuantity(ingredient.Price) {
		a.report(issuef(KindInvalidPrice, ref, "ingredient %q has invalid price %v", ingredient.Name, ingredient.Price))
		return
	}
	base, ok := toBaseQuantity(quantity, unit, ingredient)
	if !ok {
		a.report(issuef(KindUnitMismatch, ref, "ingredient %q: cannot convert %q to %q", ingredient.Name, unit, baseUnitOf(ingredient)))
		return
	}
	amount := base * scale
	total := a.totals[id] + amount
	if !finite(amount) || !finite(total) || !finite(total*ingredient.PricePerBaseUnit()) {
		a.report(issuef(KindInvalidQuantity, ref, "ingredient %q: scaled quantity is too large to aggregate", ingredient.Name))
		return
	}
	a.totals[id] = total
}

func (a *Aggregator) report(issue Issue) {
	a.errors = append(a.errors, issue)
}

// Lines returns the aggregated ingredients ordered by name.
func (a *Aggregator) Lines() []AggregatedLine {
	lines := make([]AggregatedLine, 0, len(a.totals))
	for id, quantity := range a.totals {
		ingredient := a.ingredients[id]
		lines = append(lines, AggregatedLine{
			IngredientID:  id,
			Name:          ingredient.Name,
			TotalQuantity: quantity,
			Unit:          baseUnitOf(ingredient),
			TotalCost:     quantity * ingredient.PricePerBaseUnit(),
		})
	}
	sort.SliceStable(lines, func(i, j int) bool {
		ni, nj := strings.ToLower(lines[i].Name), strings.ToLower(lines[j].Name)
		if ni != nj {
			return ni < nj
		}
		return lines[i].IngredientID < lines[j].IngredientID
	})
	return lines
}

// Errors returns every issue reported so far.
func (a *Aggregator) Errors() Issues {
	return append(Issues(nil), a.errors...)
}
