// Package lattice models the ordered beamline a bunch passes through:
// focusing elements, drifts, kickers, apertures and diagnostic monitors.
// Element order is the physical order and is never rearranged.
package lattice

import (
	"fmt"

	"github.com/EZoni/impactx/internal/beam"
)

// Kind names a beamline element type.
type Kind string

const (
	Drift       Kind = "Drift"
	Quad        Kind = "Quad"
	Sbend       Kind = "Sbend"
	ConstF      Kind = "ConstF"
	Multipole   Kind = "Multipole"
	Kicker      Kind = "Kicker"
	Aperture    Kind = "Aperture"
	BeamMonitor Kind = "BeamMonitor"
)

// kindSpec describes one element kind: its known physical parameters in
// canonical render order, which of them are string-valued, and whether the
// element is thick (has a length and accepts nslice).
type kindSpec struct {
	params       []string
	stringParams map[string]bool
	thick        bool
}

var kinds = map[Kind]kindSpec{
	Drift:     {params: []string{"ds"}, thick: true},
	Quad:      {params: []string{"ds", "k", "dx", "dy", "rotation"}, thick: true},
	Sbend:     {params: []string{"ds", "rc", "dx", "dy", "rotation"}, thick: true},
	ConstF:    {params: []string{"ds", "kx", "ky", "kt"}, thick: true},
	Multipole: {params: []string{"multipole", "K_normal", "K_skew", "dx", "dy", "rotation"}},
	Kicker:    {params: []string{"xkick", "ykick"}},
	Aperture: {
		params:       []string{"xmax", "ymax", "repeat_x", "repeat_y", "shape"},
		stringParams: map[string]bool{"shape": true},
	},
	BeamMonitor: {
		params:       []string{"backend", "encoding"},
		stringParams: map[string]bool{"backend": true, "encoding": true},
	},
}

// Kinds lists the supported element kinds in menu order.
func Kinds() []Kind {
	return []Kind{Drift, Quad, Sbend, ConstF, Multipole, Kicker, Aperture, BeamMonitor}
}

// Thick reports whether a kind has a length and accepts nslice.
func Thick(kind Kind) bool {
	return kinds[kind].thick
}

// KnownParams returns the canonical parameter names for a kind.
func KnownParams(kind Kind) ([]string, error) {
	spec, ok := kinds[kind]
	if !ok {
		return nil, fmt.Errorf("unknown element kind: %s", kind)
	}
	return spec.params, nil
}

// Element is one beamline element: a kind, an optional user-defined name,
// an optional slice count for thick elements, and its raw parameters.
// Elements are value objects; the lattice owns its copies.
type Element struct {
	Kind   Kind
	Name   string
	NSlice int
	Params beam.Params
}

// Validate checks the kind is known, parameter names belong to the kind,
// and values carry the right scalar type.
func (e Element) Validate() error {
	spec, ok := kinds[e.Kind]
	if !ok {
		return fmt.Errorf("unknown element kind: %s", e.Kind)
	}
	known := make(map[string]bool, len(spec.params))
	for _, name := range spec.params {
		known[name] = true
	}
	for _, p := range e.Params {
		if !known[p.Name] {
			return fmt.Errorf("element %s: unknown parameter %s", e.Kind, p.Name)
		}
		if spec.stringParams[p.Name] != p.Value.IsString() {
			want := "numeric"
			if spec.stringParams[p.Name] {
				want = "string"
			}
			return fmt.Errorf("element %s: parameter %s must be %s", e.Kind, p.Name, want)
		}
	}
	if e.NSlice != 0 && !spec.thick {
		return fmt.Errorf("element %s: nslice only applies to thick elements", e.Kind)
	}
	if e.NSlice < 0 {
		return fmt.Errorf("element %s: nslice must be non-negative", e.Kind)
	}
	if e.Kind == BeamMonitor && e.Name == "" {
		return fmt.Errorf("beam monitor requires a name")
	}
	return nil
}

// CheckParams maps an element's raw parameter set to the validated key/value
// pairs that appear in a rendered constructor call: name first when set,
// then the known physical parameters in canonical order, then nslice for
// thick elements. Unknown parameters never appear.
func CheckParams(e Element) beam.Params {
	spec, ok := kinds[e.Kind]
	if !ok {
		return nil
	}

	out := make(beam.Params, 0, len(spec.params)+2)
	if e.Name != "" {
		out = append(out, beam.Param{Name: "name", Value: beam.String(e.Name)})
	}
	for _, name := range spec.params {
		if v, found := e.Params.Get(name); found {
			if spec.stringParams[name] != v.IsString() {
				continue
			}
			out = append(out, beam.Param{Name: name, Value: v})
		}
	}
	if spec.thick && e.NSlice > 0 {
		out = append(out, beam.Param{Name: "nslice", Value: beam.Int(e.NSlice)})
	}
	return out
}

// Lattice is the ordered element sequence. Append order is beamline order.
type Lattice []Element

// Validate reports every invalid element, not only the first.
func (l Lattice) Validate() []error {
	var errs []error
	for i, e := range l {
		if err := e.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("lattice[%d]: %w", i, err))
		}
	}
	return errs
}

// Monitor builds a diagnostic beam monitor element.
func Monitor(name, backend string) Element {
	return Element{
		Kind: BeamMonitor,
		Name: name,
		Params: beam.Params{
			{Name: "backend", Value: beam.String(backend)},
		},
	}
}
