package beam

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a scalar parameter value that remembers the textual form it was
// entered with, so exported scripts reproduce user input verbatim instead of
// the shortest float round-trip.
type Value struct {
	lit      string
	num      float64
	isString bool
}

// Float builds a numeric value with the canonical literal form:
// shortest round-trip representation, with a forced ".0" suffix for
// integral values so exported parameters stay float literals.
func Float(v float64) Value {
	return Value{lit: FormatFloat(v), num: v}
}

// Int builds an integer value (nslice, npart and friends).
func Int(v int) Value {
	return Value{lit: strconv.Itoa(v), num: float64(v)}
}

// String builds a string value, rendered quoted in exported scripts.
func String(s string) Value {
	return Value{lit: s, isString: true}
}

// ParseFloat parses a numeric literal and keeps it verbatim for rendering.
func ParseFloat(lit string) (Value, error) {
	trimmed := strings.TrimSpace(lit)
	num, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return Value{}, fmt.Errorf("not a number: %q", lit)
	}
	return Value{lit: trimmed, num: num}, nil
}

// FormatFloat is the canonical numeric-to-text form used whenever no
// user-supplied literal exists: strconv 'g' with -1 precision, plus ".0"
// when the result would otherwise read as an integer.
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// Literal renders the value as a script literal. Strings are quoted.
func (v Value) Literal() string {
	if v.isString {
		return strconv.Quote(v.lit)
	}
	return v.lit
}

func (v Value) Float() float64 { return v.num }

func (v Value) IsString() bool { return v.isString }

// Raw returns the unquoted textual form.
func (v Value) Raw() string { return v.lit }

// Param is a single named parameter. Parameters travel in slices, not maps:
// entry order is the render order.
type Param struct {
	Name  string
	Value Value
}

type Params []Param

// Get returns the value for name and whether it is present.
func (p Params) Get(name string) (Value, bool) {
	for _, param := range p {
		if param.Name == name {
			return param.Value, true
		}
	}
	return Value{}, false
}

// Names returns parameter names in order.
func (p Params) Names() []string {
	names := make([]string, len(p))
	for i, param := range p {
		names[i] = param.Name
	}
	return names
}
