package costing

import (
	"math"
	"strings"

	"bakerycost/models"
)

type dimension int

const (
	dimensionMass dimension = iota + 1
	dimensionVolume
	dimensionCount
)

type measure struct {
	dim    dimension
	factor float64
}

// measures maps unit spellings onto the smallest unit of their dimension (g, ml, pcs).
var measures = map[string]measure{
	"mg":     {dimensionMass, 0.001},
	"g":      {dimensionMass, 1},
	"gr":     {dimensionMass, 1},
	"gram":   {dimensionMass, 1},
	"grams":  {dimensionMass, 1},
	"kg":     {dimensionMass, 1000},
	"lb":     {dimensionMass, 453.59237},
	"oz":     {dimensionMass, 28.349523125},
	"ml":     {dimensionVolume, 1},
	"cl":     {dimensionVolume, 10},
	"dl":     {dimensionVolume, 100},
	"l":      {dimensionVolume, 1000},
	"pcs":    {dimensionCount, 1},
	"pc":     {dimensionCount, 1},
	"piece":  {dimensionCount, 1},
	"pieces": {dimensionCount, 1},
	"ea":     {dimensionCount, 1},
}

func normalizeUnit(unit string) string {
	return strings.ToLower(strings.TrimSpace(unit))
}

func baseUnitOf(ingredient models.Ingredient) string {
	if unit := normalizeUnit(ingredient.BaseUnit); unit != "" {
		return unit
	}
	return "g"
}

// toBaseQuantity converts quantity, expressed in unit, into the ingredient's base unit.
func toBaseQuantity(quantity float64, unit string, ingredient models.Ingredient) (float64, bool) {
	from := normalizeUnit(unit)
	base := baseUnitOf(ingredient)
	switch {
	case from == "" || from == base:
		return quantity, true
	case from == normalizeUnit(ingredient.PurchaseUnit):
		return quantity * ingredient.Norms, true
	}
	return convertMeasure(quantity, from, base)
}

func convertMeasure(quantity float64, from, to string) (float64, bool) {
	src, ok := measures[from]
	if !ok {
		return 0, false
	}
	dst, ok := measures[to]
	if !ok || src.dim != dst.dim {
		return 0, false
	}
	return quantity * src.factor / dst.factor, true
}

// toGrams converts a recipe usage (dough weight, filling or sub-filling quantity) into grams.
func toGrams(quantity float64, unit string) (float64, bool) {
	from := normalizeUnit(unit)
	if from == "" {
		return quantity, true
	}
	return convertMeasure(quantity, from, "g")
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validQuantity(v float64) bool {
	return finite(v) && v >= 0
}

// usageGrams validates and converts a usage quantity. ref and label describe
// the usage in the issue returned when ok is false.
func usageGrams(ref, label string, quantity float64, unit string) (float64, Issue, bool) {
	if !validQuantity(quantity) {
		return 0, issuef(KindInvalidQuantity, ref, "%s has invalid quantity %v", label, quantity), false
	}
	grams, ok := toGrams(quantity, unit)
	if !ok {
		return 0, issuef(KindUnitMismatch, ref, "%s uses unit %q which cannot be converted to grams", label, unit), false
	}
	if !finite(grams) {
		return 0, issuef(KindInvalidQuantity, ref, "%s of %v %s is too large to convert", label, quantity, unit), false
	}
	return grams, Issue{}, true
}

// costIn prices grams of a recipe at its unit cost. The result is rejected
// when the product overflows.
func costIn(ref, label string, unit UnitCost, grams float64) (float64, Issue, bool) {
	cost := unit.Times(grams)
	if !finite(cost) {
		return 0, issuef(KindInvalidQuantity, ref, "%s: %v g is too large to cost", label, grams), false
	}
	return cost, Issue{}, true
}
