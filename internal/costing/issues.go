package costing

import (
	"errors"
	"fmt"
)

// Kind classifies a data-quality problem found while costing.
//
// KindInvalidQuantity covers quantities and conversion factors that are
// negative, not finite, or that overflow once scaled. Prices that are
// negative or not finite are reported as KindInvalidPrice.
type Kind string

const (
	KindMissingReference Kind = "missing_reference"
	KindCyclicReference  Kind = "cyclic_reference"
	KindInvalidYield     Kind = "invalid_yield"
	KindInvalidQuantity  Kind = "invalid_quantity"
	KindInvalidPrice     Kind = "invalid_price"
	KindUnitMismatch     Kind = "unit_mismatch"
)

// ErrDoughNotFound is returned by BreadCostBreakdown when the bread's dough
// recipe cannot be resolved. It is the only fatal condition in this package.
var ErrDoughNotFound = errors.New("costing: dough recipe not found")

// Issue records a problem that was skipped while computing a result.
type Issue struct {
	Kind    Kind   `json:"kind"`
	Ref     string `json:"ref"`
	Message string `json:"message"`
}

func (i Issue) Error() string {
	return i.Message
}

// Issues is the list of problems returned next to every computed value.
type Issues []Issue

// Messages returns the human-readable text of every issue, in order.
func (is Issues) Messages() []string {
	messages := make([]string, 0, len(is))
	for _, issue := range is {
		messages = append(messages, issue.Message)
	}
	return messages
}

// Count reports how many issues have the given kind.
func (is Issues) Count(kind Kind) int {
	n := 0
	for _, issue := range is {
		if issue.Kind == kind {
			n++
		}
	}
	return n
}

func issuef(kind Kind, ref string, format string, args ...any) Issue {
	return Issue{
		Kind:    kind,
		Ref:     ref,
		Message: fmt.Sprintf(format, args...),
	}
}

func ingredientRef(id uint) string { return fmt.Sprintf("ingredient:%d", id) }
func doughRef(id uint) string      { return fmt.Sprintf("dough:%d", id) }
func fillingRef(id uint) string    { return fmt.Sprintf("filling:%d", id) }
func breadRef(id uint) string      { return fmt.Sprintf("bread:%d", id) }
