package costing

import (
	"fmt"

	"bakerycost/models"
)

// SubFillingCost is the contribution of one sub-filling to its parent.
type SubFillingCost struct {
	FillingID uint           `json:"filling_id"`
	Name      string         `json:"name"`
	Quantity  float64        `json:"quantity"`
	Unit      string         `json:"unit"`
	UnitCost  UnitCost       `json:"unit_cost"`
	Cost      float64        `json:"cost"`
	Skipped   bool           `json:"skipped"`
	Detail    *FillingResult `json:"detail,omitempty"`
}

// FillingResult is the cost of one filling batch (one Yield worth of filling).
type FillingResult struct {
	FillingID      uint             `json:"filling_id"`
	Name           string           `json:"name"`
	Cost           float64          `json:"cost"`
	Yield          float64          `json:"yield"`
	UnitCost       UnitCost         `json:"unit_cost"`
	MainCost       float64          `json:"main_cost"`
	SubFillingCost float64          `json:"sub_filling_cost"`
	Lines          []LineCost       `json:"lines"`
	SubFillings    []SubFillingCost `json:"sub_fillings"`
	Errors         Issues           `json:"errors"`
}

// FillingCost costs a filling and, recursively, every sub-filling it uses.
// A sub-filling that is already on the current path is reported as a cycle
// and contributes zero.
func FillingCost(filling models.FillingRecipe, fillings FillingTable, ingredients IngredientTable) FillingResult {
	return fillingCost(filling, fillings, ingredients, make(map[uint]bool))
}

func fillingCost(filling models.FillingRecipe, fillings FillingTable, ingredients IngredientTable, path map[uint]bool) FillingResult {
	path[filling.ID] = true
	defer delete(path, filling.ID)

	main := LinesCost(filling.Ingredients, ingredients)
	result := FillingResult{
		FillingID:   filling.ID,
		Name:        filling.Name,
		MainCost:    main.Cost,
		Lines:       main.Lines,
		SubFillings: make([]SubFillingCost, 0, len(filling.SubFillings)),
		Errors:      append(Issues{}, main.Errors...),
	}

	for _, sub := range filling.SubFillings {
		entry := SubFillingCost{
			FillingID: sub.FillingID,
			Quantity:  sub.Quantity,
			Unit:      sub.Unit,
			Skipped:   true,
		}
		ref := fillingRef(sub.FillingID)

		target, ok := fillings[sub.FillingID]
		if !ok {
			result.Errors = append(result.Errors, issuef(KindMissingReference, ref, "filling %q: sub-filling %d not found", filling.Name, sub.FillingID))
			result.SubFillings = append(result.SubFillings, entry)
			continue
		}
		entry.Name = target.Name

		if path[sub.FillingID] {
			result.Errors = append(result.Errors, issuef(KindCyclicReference, ref, "filling %q: sub-filling %q is already part of this recipe chain", filling.Name, target.Name))
			result.SubFillings = append(result.SubFillings, entry)
			continue
		}

		label := fmt.Sprintf("sub-filling %q in %q", target.Name, filling.Name)
		grams, issue, ok := usageGrams(ref, label, sub.Quantity, sub.Unit)
		if !ok {
			result.Errors = append(result.Errors, issue)
			result.SubFillings = append(result.SubFillings, entry)
			continue
		}

		detail := fillingCost(target, fillings, ingredients, path)
		result.Errors = append(result.Errors, detail.Errors...)
		entry.Detail = &detail
		entry.UnitCost = detail.UnitCost
		if detail.UnitCost.Available {
			if cost, issue, ok := costIn(ref, label, detail.UnitCost, grams); ok {
				entry.Cost = cost
				entry.Skipped = false
				result.SubFillingCost += entry.Cost
			} else {
				result.Errors = append(result.Errors, issue)
			}
		}
		result.SubFillings = append(result.SubFillings, entry)
	}

	result.Cost = result.MainCost + result.SubFillingCost
	result.Yield = sanitizeYield(filling.Yield)
	result.UnitCost = perUnit(result.Cost, result.Yield)
	if !result.UnitCost.Available {
		result.Errors = append(result.Errors, issuef(KindInvalidYield, fillingRef(filling.ID), "filling %q has invalid yield %v; unit cost unavailable", filling.Name, filling.Yield))
	}
	return result
}
