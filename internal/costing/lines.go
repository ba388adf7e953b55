package costing

import "bakerycost/models"

// LineCost is the priced contribution of one ingredient line.
type LineCost struct {
	IngredientID     uint    `json:"ingredient_id"`
	Name             string  `json:"name"`
	Quantity         float64 `json:"quantity"`
	Unit             string  `json:"unit"`
	BaseQuantity     float64 `json:"base_quantity"`
	BaseUnit         string  `json:"base_unit"`
	PricePerBaseUnit float64 `json:"price_per_base_unit"`
	Cost             float64 `json:"cost"`
	Resolved         bool    `json:"resolved"`
}

// LinesResult is the summed cost of a list of ingredient lines.
type LinesResult struct {
	Cost   float64    `json:"cost"`
	Lines  []LineCost `json:"lines"`
	Errors Issues     `json:"errors"`
}

// LinesCost prices every line against the ingredient table. Each line's own
// price override applies to that line. Lines that cannot be priced are kept
// in the detail with Resolved=false, reported, and contribute nothing.
func LinesCost(lines []models.RecipeIngredient, ingredients IngredientTable) LinesResult {
	result := LinesResult{Lines: make([]LineCost, 0, len(lines))}
	for _, line := range lines {
		priced, issue, ok := priceLine(line.IngredientID, line.Quantity, line.Unit, ingredients, []models.RecipeIngredient{line})
		result.Lines = append(result.Lines, priced)
		if !ok {
			result.Errors = append(result.Errors, issue)
			continue
		}
		if !finite(result.Cost + priced.Cost) {
			priced.Resolved = false
			priced.Cost = 0
			result.Lines[len(result.Lines)-1] = priced
			result.Errors = append(result.Errors, issuef(KindInvalidQuantity, ingredientRef(priced.IngredientID), "ingredient %q pushes the recipe cost past the representable range", priced.Name))
			continue
		}
		result.Cost += priced.Cost
	}
	return result
}

func priceLine(id uint, quantity float64, unit string, ingredients IngredientTable, local []models.RecipeIngredient) (LineCost, Issue, bool) {
	line := LineCost{IngredientID: id, Quantity: quantity, Unit: unit}
	ref := ingredientRef(id)

	ingredient, ok := ResolveIngredient(id, ingredients, local)
	if !ok {
		return line, issuef(KindMissingReference, ref, "ingredient %d not found", id), false
	}
	line.Name = ingredient.Name
	line.BaseUnit = baseUnitOf(ingredient)

	if !validQuantity(quantity) {
		return line, issuef(KindInvalidQuantity, ref, "ingredient %q has invalid quantity %v", ingredient.Name, quantity), false
	}
	if !finite(ingredient.Norms) || ingredient.Norms <= 0 {
		return line, issuef(KindInvalidQuantity, ref, "ingredient %q has invalid conversion factor %v", ingredient.Name, ingredient.Norms), false
	}
	if !validQuantity(ingredient.Price) {
		return line, issuef(KindInvalidPrice, ref, "ingredient %q has invalid price %v", ingredient.Name, ingredient.Price), false
	}

	base, ok := toBaseQuantity(quantity, unit, ingredient)
	if !ok {
		return line, issuef(KindUnitMismatch, ref, "ingredient %q: cannot convert %q to %q", ingredient.Name, unit, line.BaseUnit), false
	}

	cost := base * ingredient.PricePerBaseUnit()
	if !finite(base) || !finite(cost) {
		return line, issuef(KindInvalidQuantity, ref, "ingredient %q: %v %s is too large to cost", ingredient.Name, quantity, unit), false
	}

	line.BaseQuantity = base
	line.PricePerBaseUnit = ingredient.PricePerBaseUnit()
	line.Cost = cost
	line.Resolved = true
	return line, Issue{}, true
}
