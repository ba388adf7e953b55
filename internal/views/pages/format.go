package pages

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bakerycost/internal/costing"
)

// Money renders amounts with a fixed number of decimals and a currency code.
type Money struct {
	Currency  string
	Precision int32
}

// DefaultMoney is used when no report settings were configured.
var DefaultMoney = Money{Currency: "EUR", Precision: 2}

// Format rounds value half away from zero. Values that are not finite render as N/A.
func (m Money) Format(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return costing.UnitCost{}.String()
	}
	amount := decimal.NewFromFloat(value).Round(m.Precision).StringFixed(m.Precision)
	if m.Currency == "" {
		return amount
	}
	return amount + " " + m.Currency
}

// FormatUnitCost renders a per-gram cost with two more decimals than money, or N/A.
func (m Money) FormatUnitCost(cost costing.UnitCost) string {
	if !cost.Available {
		return cost.String()
	}
	return Money{Currency: m.Currency, Precision: m.Precision + 4}.Format(cost.Value) + "/g"
}

// FormatPercent renders a ratio such as a margin, or N/A.
func FormatPercent(ratio costing.UnitCost) string {
	if !ratio.Available {
		return ratio.String()
	}
	return decimal.NewFromFloat(ratio.Value*100).Round(1).StringFixed(1) + "%"
}

// FormatReportQuantity renders a quantity with up to three decimals and a trailing unit.
func FormatReportQuantity(value float64, unit string) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "N/A"
	}
	rendered := decimal.NewFromFloat(value).Round(3).String()
	if strings.TrimSpace(unit) == "" {
		return rendered
	}
	return rendered + " " + unit
}

// FormatReportDate renders the supplied time using a production-friendly layout.
func FormatReportDate(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.Format("02 Jan 2006")
}

// ParseUint returns zero for anything that is not a positive integer.
func ParseUint(value string) uint {
	parsed, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}
	return uint(parsed)
}
