package costing

import "bakerycost/models"

type (
	IngredientTable map[uint]models.Ingredient
	DoughTable      map[uint]models.DoughRecipe
	FillingTable    map[uint]models.FillingRecipe
	BreadTable      map[uint]models.BreadType
)

// Catalog is a read-only snapshot of every table the calculators consume.
type Catalog struct {
	Ingredients IngredientTable
	Doughs      DoughTable
	Fillings    FillingTable
	Breads      BreadTable
}

// NewCatalog indexes the supplied records by ID. Later duplicates win.
func NewCatalog(ingredients []models.Ingredient, doughs []models.DoughRecipe, fillings []models.FillingRecipe, breads []models.BreadType) Catalog {
	catalog := Catalog{
		Ingredients: make(IngredientTable, len(ingredients)),
		Doughs:      make(DoughTable, len(doughs)),
		Fillings:    make(FillingTable, len(fillings)),
		Breads:      make(BreadTable, len(breads)),
	}
	for _, ingredient := range ingredients {
		catalog.Ingredients[ingredient.ID] = ingredient
	}
	for _, dough := range doughs {
		catalog.Doughs[dough.ID] = dough
	}
	for _, filling := range fillings {
		catalog.Fillings[filling.ID] = filling
	}
	for _, bread := range breads {
		catalog.Breads[bread.ID] = bread
	}
	return catalog
}

// BreadCost runs BreadCostBreakdown against the catalog tables.
func (c Catalog) BreadCost(bread models.BreadType) (Breakdown, error) {
	return BreadCostBreakdown(bread, c.Doughs, c.Fillings, c.Ingredients)
}
