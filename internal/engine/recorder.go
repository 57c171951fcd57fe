package engine

import (
	"fmt"

	"github.com/EZoni/impactx/internal/beam"
	"github.com/EZoni/impactx/internal/lattice"
)

// Call is one recorded engine invocation.
type Call struct {
	Op     string
	Detail string
}

// Recorder is an in-process Engine that records the call sequence instead
// of simulating anything. It backs dry runs and tests; FailOn injects a
// failure at a named operation.
type Recorder struct {
	Calls    []Call
	FailOn   string
	Settings Settings
}

func (r *Recorder) record(op, detail string) error {
	r.Calls = append(r.Calls, Call{Op: op, Detail: detail})
	if op == r.FailOn {
		return fmt.Errorf("injected failure")
	}
	return nil
}

func (r *Recorder) Configure(s Settings) error {
	r.Settings = s
	detail := fmt.Sprintf("particle_shape=%d space_charge=%t", s.ParticleShape, s.SpaceCharge)
	if len(s.NCell) == 3 {
		detail += fmt.Sprintf(" n_cell=%v", s.NCell)
	}
	return r.record("configure", detail)
}

func (r *Recorder) InitGrids() error {
	return r.record("init_grids", "")
}

func (r *Recorder) SetRefParticle(p beam.ReferenceParticle) error {
	return r.record("ref_particle", fmt.Sprintf("charge_qe=%s mass_MeV=%s kin_energy_MeV=%s",
		beam.FormatFloat(p.ChargeQe), beam.FormatFloat(p.MassMeV), beam.FormatFloat(p.KinEnergyMeV)))
}

func (r *Recorder) AddParticles(bunchChargeC float64, d beam.Distribution, npart int) error {
	return r.record("add_particles", fmt.Sprintf("bunch_charge_C=%s distribution=%s npart=%d",
		beam.FormatFloat(bunchChargeC), d.Kind, npart))
}

func (r *Recorder) ExtendLattice(elements []lattice.Element) error {
	return r.record("lattice", fmt.Sprintf("%d elements", len(elements)))
}

func (r *Recorder) TrackParticles() error {
	return r.record("track_particles", "")
}

func (r *Recorder) Finalize() error {
	return r.record("finalize", "")
}

// Ops returns just the operation names, in call order.
func (r *Recorder) Ops() []string {
	ops := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		ops[i] = c.Op
	}
	return ops
}
