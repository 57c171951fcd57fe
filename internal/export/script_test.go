package export_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/EZoni/impactx/internal/beam"
	"github.com/EZoni/impactx/internal/config"
	"github.com/EZoni/impactx/internal/export"
	"github.com/EZoni/impactx/internal/lattice"
)

func mustParam(name, lit string) beam.Param {
	v, err := beam.ParseFloat(lit)
	if err != nil {
		panic(err)
	}
	return beam.Param{Name: name, Value: v}
}

// reparse extracts the key=value pairs from a rendered constructor call.
func reparse(block string) map[string]string {
	out := map[string]string{}
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), ","))
		if !strings.Contains(line, "=") || strings.Contains(line, "(") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		out[parts[0]] = parts[1]
	}
	return out
}

var _ = Describe("DistributionBlock", func() {
	It("renders flat parameters with 4-space indentation and no wrapper", func() {
		d := beam.Distribution{
			Kind: beam.Waterbag,
			Params: beam.Params{
				mustParam("lambdaX", "1.16098260008648811e-3"),
				mustParam("muxpx", "0.0"),
			},
		}

		block := export.DistributionBlock(d)
		Expect(block).To(Equal(
			"distr = distribution.Waterbag(\n" +
				"    lambdaX=1.16098260008648811e-3,\n" +
				"    muxpx=0.0,\n" +
				")"))
		Expect(block).NotTo(ContainSubstring("twiss"))
	})

	It("nests twiss-style parameters with 8-space indentation", func() {
		d := beam.Distribution{
			Kind:  beam.Gaussian,
			Style: beam.StyleTwiss,
			Params: beam.Params{
				mustParam("beta_x", "2.55"),
				mustParam("emitt_x", "1.0e-9"),
			},
		}

		block := export.DistributionBlock(d)
		Expect(block).To(Equal(
			"distr = distribution.Gaussian(\n" +
				"    **twiss(\n" +
				"        beta_x=2.55,\n" +
				"        emitt_x=1.0e-9,\n" +
				"    )\n" +
				")"))
	})

	It("round-trips validated parameters through the rendered call", func() {
		records := []beam.Record{
			{Name: "lambdaX", DefaultValue: "1.46e-3"},
			{Name: "lambdaPt", DefaultValue: "2.0326178944803812e-3"},
			{Name: "broken", DefaultValue: "nope", ErrorMessages: []string{"must be a float"}},
		}
		params, err := beam.ConvertRecords(records)
		Expect(err).NotTo(HaveOccurred())

		block := export.DistributionBlock(beam.Distribution{Kind: beam.Kurth6D, Params: params})
		got := reparse(block)

		Expect(got).To(HaveLen(len(params)))
		for _, p := range params {
			Expect(got).To(HaveKeyWithValue(p.Name, p.Value.Literal()))
		}
		Expect(got).NotTo(HaveKey("broken"))
	})

	It("keeps zero values as float literals", func() {
		d := beam.Distribution{
			Kind: beam.Thermal,
			Params: beam.Params{
				mustParam("w_halo", "0.0"),
				{Name: "normalize_halo", Value: beam.Float(0)},
			},
		}

		block := export.DistributionBlock(d)
		Expect(block).To(ContainSubstring("w_halo=0.0"))
		Expect(block).To(ContainSubstring("normalize_halo=0.0"))
		Expect(block).NotTo(MatchRegexp(`=0[,\n]`))
	})

	It("renders a parameterless distribution as a bare call", func() {
		Expect(export.DistributionBlock(beam.Distribution{Kind: beam.Empty})).
			To(Equal("distr = distribution.Empty()"))
	})
})

var _ = Describe("LatticeBlock", func() {
	It("renders the two-element benchmark lattice verbatim", func() {
		l := lattice.Lattice{
			{Kind: lattice.Quad, Params: beam.Params{
				mustParam("ds", "1.0"),
				mustParam("k", "0.25"),
			}},
			{Kind: lattice.Drift, Params: beam.Params{
				mustParam("ds", "1.0"),
			}},
		}

		Expect(export.LatticeBlock(l)).To(Equal(
			"lattice_configuration = [\n" +
				"    elements.Quad(ds=1.0, k=0.25),\n" +
				"    elements.Drift(ds=1.0)\n" +
				"]"))
	})

	It("preserves element order exactly, duplicates included", func() {
		drift := lattice.Element{Kind: lattice.Drift, Name: "drift1", NSlice: 20,
			Params: beam.Params{mustParam("ds", "1.0")}}
		constf := lattice.Element{Kind: lattice.ConstF, Name: "constf1", NSlice: 20,
			Params: beam.Params{
				mustParam("ds", "2.0"),
				mustParam("kx", "0.7"),
				mustParam("ky", "0.7"),
				mustParam("kt", "0.7"),
			}}
		mon := lattice.Monitor("monitor", "h5")

		block := export.LatticeBlock(lattice.Lattice{mon, drift, constf, drift, mon})
		lines := strings.Split(block, "\n")

		Expect(lines).To(HaveLen(7))
		Expect(lines[1]).To(ContainSubstring("BeamMonitor"))
		Expect(lines[2]).To(Equal(`    elements.Drift(name="drift1", ds=1.0, nslice=20),`))
		Expect(lines[3]).To(Equal(`    elements.ConstF(name="constf1", ds=2.0, kx=0.7, ky=0.7, kt=0.7, nslice=20),`))
		Expect(lines[4]).To(Equal(lines[2]))
	})

	It("drops unknown parameters from rendered calls", func() {
		e := lattice.Element{Kind: lattice.Drift, Params: beam.Params{
			mustParam("ds", "6.0"),
			mustParam("wavelength", "1.0"),
		}}

		block := export.LatticeBlock(lattice.Lattice{e})
		Expect(block).To(ContainSubstring("elements.Drift(ds=6.0)"))
		Expect(block).NotTo(ContainSubstring("wavelength"))
	})

	It("renders an empty lattice as a valid empty list", func() {
		Expect(export.LatticeBlock(nil)).To(Equal("lattice_configuration = []"))
	})
})

var _ = Describe("Script", func() {
	It("renders the alignment preset byte for byte", func() {
		script, err := export.Script(config.GetPreset("alignment"))
		Expect(err).NotTo(HaveOccurred())

		Expect(script).To(Equal(`from impactx import ImpactX, distribution, elements

sim = ImpactX()

sim.particle_shape = 2
sim.space_charge = False
sim.csr = False
sim.slice_step_diagnostics = True

sim.init_grids()

# Initialize particle beam
kin_energy_MeV = 2000.0
bunch_charge_C = 1e-09
npart = 100000

# Reference particle
ref = sim.particle_container().ref_particle()
ref.set_charge_qe(1.0).set_mass_MeV(938.27208816).set_kin_energy_MeV(kin_energy_MeV)

distr = distribution.Waterbag(
    lambdaX=1.16098260008648811e-3,
    lambdaY=1.16098260008648811e-3,
    lambdaT=1.0e-3,
    lambdaPx=0.580491300043e-3,
    lambdaPy=0.580491300043e-3,
    lambdaPt=2.0e-3,
    muxpx=0.0,
    muypy=0.0,
    mutpt=0.0,
)
sim.add_particles(bunch_charge_C, distr, npart)

lattice_configuration = [
    elements.BeamMonitor(name="monitor", backend="h5"),
    elements.Quad(ds=1.0, k=0.25, dx=0.003, dy=0.0, rotation=30.0, nslice=1),
    elements.BeamMonitor(name="monitor", backend="h5")
]
sim.lattice.extend(lattice_configuration)

# Simulate
sim.track_particles()

sim.finalize()
`))
	})

	It("emits grid settings for mesh-refined runs", func() {
		script, err := export.Script(config.GetPreset("expanding_beam"))
		Expect(err).NotTo(HaveOccurred())

		Expect(script).To(ContainSubstring("sim.max_level = 1\n"))
		Expect(script).To(ContainSubstring("sim.n_cell = [16, 16, 20]\n"))
		Expect(script).To(ContainSubstring("sim.blocking_factor_x = [16]\n"))
		Expect(script).To(ContainSubstring("sim.blocking_factor_z = [4]\n"))
		Expect(script).To(ContainSubstring("sim.dynamic_size = True\n"))
		Expect(script).To(ContainSubstring("sim.prob_relative = [3.0, 1.1]\n"))
		Expect(script).To(ContainSubstring("ref.set_charge_qe(-1.0).set_mass_MeV(0.51099895)"))
	})

	It("imports the twiss symbol only when needed", func() {
		cfg := config.GetPreset("alignment")
		script, err := export.Script(cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(script).To(HavePrefix("from impactx import ImpactX, distribution, elements\n"))

		twissCfg := *cfg
		twissCfg.Distribution = config.DistributionConfig{
			Kind:  "Gaussian",
			Style: "twiss",
			Parameters: []config.Param{
				{Name: "beta_x", Value: "2.55"}, {Name: "beta_y", Value: "2.55"}, {Name: "beta_t", Value: "0.3"},
				{Name: "emitt_x", Value: "1.0e-9"}, {Name: "emitt_y", Value: "1.0e-9"}, {Name: "emitt_t", Value: "1.0e-6"},
				{Name: "alpha_x", Value: "0.0"}, {Name: "alpha_y", Value: "0.0"}, {Name: "alpha_t", Value: "0.0"},
			},
		}
		script, err = export.Script(&twissCfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(script).To(HavePrefix("from impactx import ImpactX, distribution, elements, twiss\n"))
		Expect(script).To(ContainSubstring("    **twiss(\n        beta_x=2.55,"))
	})

	It("renders thermal parameters with their exact literals", func() {
		script, err := export.Script(config.GetPreset("thermal"))
		Expect(err).NotTo(HaveOccurred())

		Expect(script).To(ContainSubstring("distr = distribution.Thermal(\n"))
		Expect(script).To(ContainSubstring("    kT=36.0e-6,\n"))
		Expect(script).To(ContainSubstring("    normalize_halo=0.0,\n"))
		Expect(script).To(ContainSubstring("    w_halo=0.0,\n"))
	})

	It("fails on an unparseable distribution parameter", func() {
		cfg := *config.GetPreset("alignment")
		cfg.Distribution.Parameters = []config.Param{{Name: "lambdaX", Value: "wide"}}

		_, err := export.Script(&cfg)
		Expect(err).To(HaveOccurred())
	})
})
