package star

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Measure is an optional catalog value. The zero value is missing.
type Measure struct {
	value float64
	valid bool
}

// Some wraps a present value. NaN and infinities are treated as missing.
func Some(v float64) Measure {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Measure{}
	}
	return Measure{value: v, valid: true}
}

// Missing returns an absent value.
func Missing() Measure { return Measure{} }

// Get returns the value and whether it is present.
func (m Measure) Get() (float64, bool) { return m.value, m.valid }

// Valid reports whether the value is present.
func (m Measure) Valid() bool { return m.valid }

// MarshalJSON renders missing values as null.
func (m Measure) MarshalJSON() ([]byte, error) {
	if !m.valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(m.value, 'g', -1, 64)), nil
}

// UnmarshalJSON accepts a number or null.
func (m *Measure) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = Measure{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode measure: %w", err)
	}
	*m = Some(v)
	return nil
}
