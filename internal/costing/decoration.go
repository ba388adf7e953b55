package costing

import "bakerycost/models"

// DecorationResult is the flat cost of a bread's decoration ingredients.
type DecorationResult struct {
	Cost    float64    `json:"cost"`
	Details []LineCost `json:"details"`
	Errors  Issues     `json:"errors"`
}

func DecorationCost(usages []models.DecorationUsage, ingredients IngredientTable) DecorationResult {
	result := DecorationResult{Details: make([]LineCost, 0, len(usages))}
	for _, usage := range usages {
		priced, issue, ok := priceLine(usage.IngredientID, usage.Quantity, usage.Unit, ingredients, nil)
		result.Details = append(result.Details, priced)
		if !ok {
			result.Errors = append(result.Errors, issue)
			continue
		}
		if !finite(result.Cost + priced.Cost) {
			result.Errors = append(result.Errors, issuef(KindInvalidQuantity, ingredientRef(priced.IngredientID), "decoration %q pushes the cost past the representable range", priced.Name))
			continue
		}
		result.Cost += priced.Cost
	}
	return result
}
