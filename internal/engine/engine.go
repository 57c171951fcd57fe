// Package engine drives the external simulation engine's run lifecycle.
// The engine itself is an opaque collaborator; this package owns the call
// order and the guaranteed shutdown, nothing numerical.
package engine

import (
	"fmt"

	"github.com/EZoni/impactx/internal/beam"
	"github.com/EZoni/impactx/internal/lattice"
)

// Settings are the numeric/IO options handed to the engine before grid
// initialization.
type Settings struct {
	ParticleShape        int
	SpaceCharge          bool
	CSR                  bool
	SliceStepDiagnostics bool
	MaxLevel             int
	NCell                []int
	BlockingFactorX      []int
	BlockingFactorY      []int
	BlockingFactorZ      []int
	DynamicSize          bool
	ProbRelative         []float64
}

// Engine is the consumed API surface of the external simulator. Calls must
// arrive in the fixed order Configure, InitGrids, SetRefParticle,
// AddParticles, ExtendLattice, TrackParticles, Finalize; the Runner enforces
// that order.
type Engine interface {
	Configure(s Settings) error
	InitGrids() error
	SetRefParticle(p beam.ReferenceParticle) error
	AddParticles(bunchChargeC float64, d beam.Distribution, npart int) error
	ExtendLattice(elements []lattice.Element) error
	TrackParticles() error
	Finalize() error
}

// EngineError wraps a failure from the external engine. Not recoverable
// here; it propagates after cleanup has been attempted.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine %s: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }
