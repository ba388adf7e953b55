package costing

import (
	"fmt"

	"bakerycost/models"
)

// DoughUsageCost is the share of a dough batch used by one bread.
type DoughUsageCost struct {
	DoughID       uint        `json:"dough_id"`
	Name          string      `json:"name"`
	Weight        float64     `json:"weight"`
	UnitCost      UnitCost    `json:"unit_cost"`
	CostInProduct float64     `json:"cost_in_product"`
	Detail        DoughResult `json:"detail"`
}

// FillingUsageCost is the share of a filling, or of a directly used
// ingredient, in one bread.
type FillingUsageCost struct {
	FillingID        *uint          `json:"filling_id,omitempty"`
	IngredientID     *uint          `json:"ingredient_id,omitempty"`
	Name             string         `json:"name"`
	Quantity         float64        `json:"quantity"`
	Unit             string         `json:"unit"`
	DirectIngredient bool           `json:"direct_ingredient"`
	UnitCost         UnitCost       `json:"unit_cost"`
	CostInProduct    float64        `json:"cost_in_product"`
	Skipped          bool           `json:"skipped"`
	Detail           *FillingResult `json:"detail,omitempty"`
	Line             *LineCost      `json:"line,omitempty"`
}

// Breakdown is the full cost of one unit of a bread product.
type Breakdown struct {
	BreadID         uint               `json:"bread_id"`
	BreadName       string             `json:"bread_name"`
	Price           float64            `json:"price"`
	Dough           DoughUsageCost     `json:"dough"`
	Fillings        []FillingUsageCost `json:"fillings"`
	Decorations     DecorationResult   `json:"decorations"`
	DoughCost       float64            `json:"dough_cost"`
	FillingsCost    float64            `json:"fillings_cost"`
	DecorationsCost float64            `json:"decorations_cost"`
	TotalCost       float64            `json:"total_cost"`
	Margin          float64            `json:"margin"`
	MarginRatio     UnitCost           `json:"margin_ratio"`
	Errors          Issues             `json:"errors"`
}

// BreadCostBreakdown costs one unit of bread. A missing dough recipe is fatal
// and reported through an error wrapping ErrDoughNotFound; every other
// missing or malformed part is skipped and listed in Breakdown.Errors.
func BreadCostBreakdown(bread models.BreadType, doughs DoughTable, fillings FillingTable, ingredients IngredientTable) (Breakdown, error) {
	dough, ok := doughs[bread.DoughID]
	if !ok {
		return Breakdown{}, fmt.Errorf("%w: bread %q references dough %d", ErrDoughNotFound, bread.Name, bread.DoughID)
	}

	breakdown := Breakdown{
		BreadID:   bread.ID,
		BreadName: bread.Name,
		Price:     bread.Price,
		Fillings:  make([]FillingUsageCost, 0, len(bread.Fillings)),
	}

	doughDetail := DoughCost(dough, ingredients)
	breakdown.Errors = append(breakdown.Errors, doughDetail.Errors...)
	breakdown.Dough = DoughUsageCost{
		DoughID:  dough.ID,
		Name:     dough.Name,
		Weight:   bread.DoughWeight,
		UnitCost: doughDetail.UnitCost,
		Detail:   doughDetail,
	}
	label := fmt.Sprintf("dough weight of %q", bread.Name)
	if weight, issue, ok := usageGrams(doughRef(dough.ID), label, bread.DoughWeight, ""); !ok {
		breakdown.Errors = append(breakdown.Errors, issue)
	} else if cost, issue, ok := costIn(doughRef(dough.ID), label, doughDetail.UnitCost, weight); !ok {
		breakdown.Errors = append(breakdown.Errors, issue)
	} else {
		breakdown.Dough.CostInProduct = cost
	}
	breakdown.DoughCost = breakdown.Dough.CostInProduct

	for _, usage := range bread.Fillings {
		line, issues := fillingUsageCost(bread, usage, fillings, ingredients)
		breakdown.Fillings = append(breakdown.Fillings, line)
		breakdown.Errors = append(breakdown.Errors, issues...)
		breakdown.FillingsCost += line.CostInProduct
	}

	breakdown.Decorations = DecorationCost(bread.Decorations, ingredients)
	breakdown.Errors = append(breakdown.Errors, breakdown.Decorations.Errors...)
	breakdown.DecorationsCost = breakdown.Decorations.Cost

	breakdown.TotalCost = breakdown.DoughCost + breakdown.FillingsCost + breakdown.DecorationsCost
	breakdown.Margin = breakdown.Price - breakdown.TotalCost
	breakdown.MarginRatio = perUnit(breakdown.Margin, breakdown.Price)
	return breakdown, nil
}

func fillingUsageCost(bread models.BreadType, usage models.FillingUsage, fillings FillingTable, ingredients IngredientTable) (FillingUsageCost, Issues) {
	line := FillingUsageCost{
		FillingID:    usage.FillingID,
		IngredientID: usage.IngredientID,
		Quantity:     usage.Quantity,
		Unit:         usage.Unit,
		Skipped:      true,
	}

	switch {
	case usage.FillingID != nil && *usage.FillingID != 0:
		id := *usage.FillingID
		filling, ok := fillings[id]
		if !ok {
			return line, Issues{issuef(KindMissingReference, fillingRef(id), "bread %q: filling %d not found", bread.Name, id)}
		}
		line.Name = filling.Name

		label := fmt.Sprintf("filling %q in %q", filling.Name, bread.Name)
		grams, issue, ok := usageGrams(fillingRef(id), label, usage.Quantity, usage.Unit)
		if !ok {
			return line, Issues{issue}
		}

		detail := FillingCost(filling, fillings, ingredients)
		line.Detail = &detail
		line.UnitCost = detail.UnitCost
		if !detail.UnitCost.Available {
			return line, detail.Errors
		}
		cost, issue, ok := costIn(fillingRef(id), label, detail.UnitCost, grams)
		if !ok {
			return line, append(detail.Errors, issue)
		}
		line.CostInProduct = cost
		line.Skipped = false
		return line, detail.Errors

	case usage.IngredientID != nil && *usage.IngredientID != 0:
		line.DirectIngredient = true
		priced, issue, ok := priceLine(*usage.IngredientID, usage.Quantity, usage.Unit, ingredients, nil)
		line.Name = priced.Name
		line.Line = &priced
		if !ok {
			return line, Issues{issue}
		}
		line.UnitCost = UnitCost{Value: priced.PricePerBaseUnit, Available: true}
		line.CostInProduct = priced.Cost
		line.Skipped = false
		return line, nil

	default:
		return line, Issues{issuef(KindMissingReference, breadRef(bread.ID), "bread %q: filling usage %d references neither a filling nor an ingredient", bread.Name, usage.ID)}
	}
}
