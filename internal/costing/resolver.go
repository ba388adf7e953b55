package costing

import "bakerycost/models"

// ResolveIngredient looks id up in the global table and applies the first
// price override found among the recipe-local lines for the same ingredient.
// The second return value is false when the ingredient does not exist.
func ResolveIngredient(id uint, table IngredientTable, local []models.RecipeIngredient) (models.Ingredient, bool) {
	ingredient, ok := table[id]
	if !ok {
		return models.Ingredient{}, false
	}
	for _, line := range local {
		if line.IngredientID != id || line.PriceOverride == nil {
			continue
		}
		ingredient.Price = *line.PriceOverride
		break
	}
	return ingredient, true
}
