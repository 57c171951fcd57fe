// Package export renders a populated simulation config into a standalone
// Python driver script for the ImpactX engine. Rendering is pure text
// generation: it reads the config snapshot and returns a string, byte-stable
// for golden comparison.
package export

import (
	"fmt"
	"strings"

	"github.com/EZoni/impactx/internal/beam"
	"github.com/EZoni/impactx/internal/config"
	"github.com/EZoni/impactx/internal/lattice"
)

// DistributionBlock renders the distribution constructor assignment.
// Twiss-style parameters nest inside a twiss(...) expansion with 8-space
// indentation; the flat form uses 4 spaces. The indentation is part of the
// exported format.
func DistributionBlock(d beam.Distribution) string {
	if len(d.Params) == 0 {
		return fmt.Sprintf("distr = distribution.%s()", d.Kind)
	}

	indent := strings.Repeat(" ", 4)
	if d.IsTwiss() {
		indent = strings.Repeat(" ", 8)
	}

	lines := make([]string, len(d.Params))
	for i, p := range d.Params {
		lines[i] = fmt.Sprintf("%s%s=%s", indent, p.Name, p.Value.Literal())
	}
	params := strings.Join(lines, ",\n")

	if d.IsTwiss() {
		return fmt.Sprintf("distr = distribution.%s(\n    **twiss(\n%s,\n    )\n)", d.Kind, params)
	}
	return fmt.Sprintf("distr = distribution.%s(\n%s,\n)", d.Kind, params)
}

// LatticeBlock renders the ordered element constructor list. Element order
// is the input order; parameters come from the per-kind checker, so unknown
// or invalid entries never appear. An empty lattice is still a valid list.
func LatticeBlock(l lattice.Lattice) string {
	if len(l) == 0 {
		return "lattice_configuration = []"
	}

	calls := make([]string, len(l))
	for i, e := range l {
		params := lattice.CheckParams(e)
		kv := make([]string, len(params))
		for j, p := range params {
			kv[j] = fmt.Sprintf("%s=%s", p.Name, p.Value.Literal())
		}
		calls[i] = fmt.Sprintf("elements.%s(%s)", e.Kind, strings.Join(kv, ", "))
	}

	return fmt.Sprintf("lattice_configuration = [\n    %s\n]", strings.Join(calls, ",\n    "))
}

// Script assembles the full driver script: imports, config flags, optional
// grid settings, grid init, beam variables, the chained reference-particle
// setters, the distribution and lattice blocks, and the track/finalize
// calls. The twiss symbol is imported only when the distribution needs it.
func Script(cfg *config.Config) (string, error) {
	distr, err := cfg.Distribution.ToDistribution()
	if err != nil {
		return "", err
	}

	imports := "from impactx import ImpactX, distribution, elements"
	if distr.IsTwiss() {
		imports += ", twiss"
	}

	var b strings.Builder
	b.WriteString(imports + "\n\n")
	b.WriteString("sim = ImpactX()\n\n")

	fmt.Fprintf(&b, "sim.particle_shape = %d\n", cfg.ParticleShape)
	fmt.Fprintf(&b, "sim.space_charge = %s\n", pyBool(cfg.SpaceCharge))
	fmt.Fprintf(&b, "sim.csr = %s\n", pyBool(cfg.CSR))
	fmt.Fprintf(&b, "sim.slice_step_diagnostics = %s\n", pyBool(cfg.SliceStepDiagnostics))
	writeGridSettings(&b, cfg)
	b.WriteString("\n")

	b.WriteString("sim.init_grids()\n\n")

	b.WriteString("# Initialize particle beam\n")
	fmt.Fprintf(&b, "kin_energy_MeV = %s\n", beam.FormatFloat(cfg.Beam.KinEnergyMeV))
	fmt.Fprintf(&b, "bunch_charge_C = %s\n", beam.FormatFloat(cfg.Beam.BunchChargeC))
	fmt.Fprintf(&b, "npart = %d\n\n", cfg.Beam.NPart)

	b.WriteString("# Reference particle\n")
	b.WriteString("ref = sim.particle_container().ref_particle()\n")
	fmt.Fprintf(&b, "ref.set_charge_qe(%s).set_mass_MeV(%s).set_kin_energy_MeV(kin_energy_MeV)\n\n",
		beam.FormatFloat(cfg.Beam.ChargeQe), beam.FormatFloat(cfg.Beam.MassMeV))

	b.WriteString(DistributionBlock(distr) + "\n")
	b.WriteString("sim.add_particles(bunch_charge_C, distr, npart)\n\n")

	b.WriteString(LatticeBlock(cfg.ToLattice()) + "\n")
	b.WriteString("sim.lattice.extend(lattice_configuration)\n\n")

	b.WriteString("# Simulate\n")
	b.WriteString("sim.track_particles()\n\n")

	b.WriteString("sim.finalize()\n")

	return b.String(), nil
}

func writeGridSettings(b *strings.Builder, cfg *config.Config) {
	if cfg.MaxLevel > 0 {
		fmt.Fprintf(b, "sim.max_level = %d\n", cfg.MaxLevel)
	}
	if len(cfg.NCell) == 3 {
		fmt.Fprintf(b, "sim.n_cell = %s\n", pyIntList(cfg.NCell))
	}
	if len(cfg.BlockingFactorX) > 0 {
		fmt.Fprintf(b, "sim.blocking_factor_x = %s\n", pyIntList(cfg.BlockingFactorX))
	}
	if len(cfg.BlockingFactorY) > 0 {
		fmt.Fprintf(b, "sim.blocking_factor_y = %s\n", pyIntList(cfg.BlockingFactorY))
	}
	if len(cfg.BlockingFactorZ) > 0 {
		fmt.Fprintf(b, "sim.blocking_factor_z = %s\n", pyIntList(cfg.BlockingFactorZ))
	}
	if cfg.DynamicSize {
		fmt.Fprintf(b, "sim.dynamic_size = %s\n", pyBool(cfg.DynamicSize))
	}
	if len(cfg.ProbRelative) > 0 {
		fmt.Fprintf(b, "sim.prob_relative = %s\n", pyFloatList(cfg.ProbRelative))
	}
}

func pyBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

func pyIntList(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func pyFloatList(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = beam.FormatFloat(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
