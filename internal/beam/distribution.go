package beam

import (
	"fmt"
	"strings"
)

// Kind names a phase-space distribution supported by the engine.
type Kind string

const (
	Waterbag     Kind = "Waterbag"
	KVdist       Kind = "KVdist"
	Gaussian     Kind = "Gaussian"
	Kurth4D      Kind = "Kurth4D"
	Kurth6D      Kind = "Kurth6D"
	Semigaussian Kind = "Semigaussian"
	Triangle     Kind = "Triangle"
	Thermal      Kind = "Thermal"
	Empty        Kind = "Empty"
)

// Style selects how quadratic-form distributions take their parameters:
// directly as lambda/mu covariance inputs, or as Courant-Snyder (Twiss)
// functions expanded through the twiss(...) helper.
type Style string

const (
	StyleQuadraticForm Style = "quadratic_form"
	StyleTwiss         Style = "twiss"
)

var sixDParams = []string{
	"lambdaX", "lambdaY", "lambdaT",
	"lambdaPx", "lambdaPy", "lambdaPt",
	"muxpx", "muypy", "mutpt",
}

var twissParams = []string{
	"beta_x", "beta_y", "beta_t",
	"emitt_x", "emitt_y", "emitt_t",
	"alpha_x", "alpha_y", "alpha_t",
}

// requiredParams is the closed per-kind parameter list. A distribution is
// valid only when its parameter names match this set exactly.
var requiredParams = map[Kind][]string{
	Waterbag:     sixDParams,
	KVdist:       sixDParams,
	Gaussian:     sixDParams,
	Semigaussian: sixDParams,
	Triangle:     sixDParams,
	Kurth4D: {
		"lambdaX", "lambdaY", "lambdaT",
		"lambdaPx", "lambdaPy", "lambdaPt",
		"muxpx", "muypy",
	},
	Kurth6D: {
		"lambdaX", "lambdaY", "lambdaT",
		"lambdaPx", "lambdaPy", "lambdaPt",
	},
	Thermal: {"k", "kT", "kT_halo", "normalize", "normalize_halo", "w_halo"},
	Empty:   {},
}

// twissCapable marks kinds whose quadratic form can be derived from Twiss
// functions via the twiss(...) wrapper.
var twissCapable = map[Kind]bool{
	Waterbag:     true,
	KVdist:       true,
	Gaussian:     true,
	Semigaussian: true,
	Triangle:     true,
}

// Kinds lists the supported distribution kinds in menu order.
func Kinds() []Kind {
	return []Kind{Waterbag, KVdist, Gaussian, Kurth4D, Kurth6D, Semigaussian, Triangle, Thermal, Empty}
}

// RequiredParams returns the exact parameter names for a kind under a style.
func RequiredParams(kind Kind, style Style) ([]string, error) {
	names, ok := requiredParams[kind]
	if !ok {
		return nil, fmt.Errorf("unknown distribution kind: %s", kind)
	}
	if style == StyleTwiss {
		if !twissCapable[kind] {
			return nil, fmt.Errorf("distribution %s does not accept twiss parameters", kind)
		}
		return twissParams, nil
	}
	return names, nil
}

// Distribution is a named phase-space distribution with its validated
// parameters, in render order.
type Distribution struct {
	Kind   Kind
	Style  Style
	Params Params
}

// Validate checks that the kind is known, the style applies, every value is
// numeric, and the parameter names match the required set exactly.
func (d Distribution) Validate() error {
	style := d.Style
	if style == "" {
		style = StyleQuadraticForm
	}
	required, err := RequiredParams(d.Kind, style)
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(d.Params))
	for _, p := range d.Params {
		if p.Value.IsString() {
			return fmt.Errorf("distribution %s: parameter %s must be numeric", d.Kind, p.Name)
		}
		seen[p.Name] = true
	}

	var missing, unknown []string
	want := make(map[string]bool, len(required))
	for _, name := range required {
		want[name] = true
		if !seen[name] {
			missing = append(missing, name)
		}
	}
	for _, p := range d.Params {
		if !want[p.Name] {
			unknown = append(unknown, p.Name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("distribution %s: missing parameters: %s", d.Kind, strings.Join(missing, ", "))
	}
	if len(unknown) > 0 {
		return fmt.Errorf("distribution %s: unknown parameters: %s", d.Kind, strings.Join(unknown, ", "))
	}
	return nil
}

// IsTwiss reports whether parameters are wrapped in a twiss(...) call on
// export.
func (d Distribution) IsTwiss() bool {
	return d.Style == StyleTwiss
}
