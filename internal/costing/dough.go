package costing

import "bakerycost/models"

// PreFermentCost is the cost of one pre-ferment embedded in a dough.
type PreFermentCost struct {
	PreFermentID uint       `json:"pre_ferment_id"`
	Name         string     `json:"name"`
	Yield        float64    `json:"yield"`
	Cost         float64    `json:"cost"`
	Lines        []LineCost `json:"lines"`
}

// DoughResult is the cost of a whole dough batch (one Yield worth of dough).
type DoughResult struct {
	DoughID        uint             `json:"dough_id"`
	Name           string           `json:"name"`
	Cost           float64          `json:"cost"`
	Yield          float64          `json:"yield"`
	UnitCost       UnitCost         `json:"unit_cost"`
	MainCost       float64          `json:"main_cost"`
	PreFermentCost float64          `json:"pre_ferment_cost"`
	Lines          []LineCost       `json:"lines"`
	PreFerments    []PreFermentCost `json:"pre_ferments"`
	Errors         Issues           `json:"errors"`
}

// DoughCost sums the dough's own lines and the lines of each pre-ferment.
// Pre-ferments cannot nest, so no recursion is involved.
func DoughCost(dough models.DoughRecipe, ingredients IngredientTable) DoughResult {
	main := LinesCost(dough.Ingredients, ingredients)
	result := DoughResult{
		DoughID:     dough.ID,
		Name:        dough.Name,
		MainCost:    main.Cost,
		Lines:       main.Lines,
		PreFerments: make([]PreFermentCost, 0, len(dough.PreFerments)),
		Errors:      append(Issues{}, main.Errors...),
	}

	for _, preFerment := range dough.PreFerments {
		lines := LinesCost(preFerment.Ingredients, ingredients)
		result.PreFerments = append(result.PreFerments, PreFermentCost{
			PreFermentID: preFerment.ID,
			Name:         preFerment.Name,
			Yield:        sanitizeYield(preFerment.Yield),
			Cost:         lines.Cost,
			Lines:        lines.Lines,
		})
		result.PreFermentCost += lines.Cost
		result.Errors = append(result.Errors, lines.Errors...)
	}

	result.Cost = result.MainCost + result.PreFermentCost
	result.Yield = sanitizeYield(dough.Yield)
	result.UnitCost = perUnit(result.Cost, result.Yield)
	if !result.UnitCost.Available {
		result.Errors = append(result.Errors, issuef(KindInvalidYield, doughRef(dough.ID), "dough %q has invalid yield %v; unit cost unavailable", dough.Name, dough.Yield))
	}
	return result
}
