package costing

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// UnitCost is a guarded ratio. When Available is false the value could not be
// computed (zero, negative or non-numeric divisor) and Value must be ignored.
type UnitCost struct {
	Value     float64
	Available bool
}

const unavailableLabel = "N/A"

func perUnit(total, divisor float64) UnitCost {
	if !finite(total) || !finite(divisor) || divisor <= 0 {
		return UnitCost{}
	}
	value := total / divisor
	if !finite(value) {
		return UnitCost{}
	}
	return UnitCost{Value: value, Available: true}
}

// Times scales the unit cost by quantity. An unavailable cost contributes zero.
func (u UnitCost) Times(quantity float64) float64 {
	if !u.Available {
		return 0
	}
	return u.Value * quantity
}

func (u UnitCost) String() string {
	if !u.Available {
		return unavailableLabel
	}
	return strconv.FormatFloat(u.Value, 'f', -1, 64)
}

func (u UnitCost) MarshalJSON() ([]byte, error) {
	if !u.Available {
		return json.Marshal(unavailableLabel)
	}
	return json.Marshal(u.Value)
}

func (u *UnitCost) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`"`+unavailableLabel+`"`)) {
		*u = UnitCost{}
		return nil
	}
	var value float64
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return err
	}
	*u = UnitCost{Value: value, Available: true}
	return nil
}

func sanitizeYield(yield float64) float64 {
	if !finite(yield) || yield <= 0 {
		return 0
	}
	return yield
}
