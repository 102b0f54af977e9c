// Package option provides an explicit optional float used wherever "absent"
// and "zero" must stay distinguishable: calibration values, the peak height
// threshold and the column luma cutoff.
package option

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Float is a float64 that may be absent. The zero value is absent.
type Float struct {
	val float64
	set bool
}

// Some returns a present value. Non-finite inputs are treated as absent.
func Some(v float64) Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Float{}
	}
	return Float{val: v, set: true}
}

// None returns an absent value.
func None() Float {
	return Float{}
}

// Get returns the value and whether it is present.
func (f Float) Get() (float64, bool) {
	return f.val, f.set
}

// IsSet reports whether the value is present.
func (f Float) IsSet() bool {
	return f.set
}

// Or returns the value when present and def otherwise.
func (f Float) Or(def float64) float64 {
	if f.set {
		return f.val
	}
	return def
}

// String renders present values in shortest decimal form and absent values as "absent".
func (f Float) String() string {
	if !f.set {
		return "absent"
	}
	return strconv.FormatFloat(f.val, 'g', -1, 64)
}

// Parse converts user text to a Float. Empty or non-numeric text is absent.
func Parse(s string) Float {
	s = strings.TrimSpace(s)
	if s == "" {
		return None()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return None()
	}
	return Some(v)
}

// MarshalJSON writes null for absent values.
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.set {
		return []byte("null"), nil
	}
	return json.Marshal(f.val)
}

// UnmarshalJSON accepts numbers, numeric strings and null. Anything else
// that is syntactically valid JSON decodes to absent rather than failing.
func (f *Float) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*f = None()
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*f = Some(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = Parse(s)
		return nil
	}
	var discard interface{}
	return json.Unmarshal(data, &discard)
}
