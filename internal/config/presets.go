package config

import "sort"

func sixD(lambdaX, lambdaY, lambdaT, lambdaPx, lambdaPy, lambdaPt string) []Param {
	return []Param{
		{Name: "lambdaX", Value: lambdaX},
		{Name: "lambdaY", Value: lambdaY},
		{Name: "lambdaT", Value: lambdaT},
		{Name: "lambdaPx", Value: lambdaPx},
		{Name: "lambdaPy", Value: lambdaPy},
		{Name: "lambdaPt", Value: lambdaPt},
	}
}

func withCorrelations(params []Param, muxpx, muypy, mutpt string) []Param {
	return append(params,
		Param{Name: "muxpx", Value: muxpx},
		Param{Name: "muypy", Value: muypy},
		Param{Name: "mutpt", Value: mutpt},
	)
}

func monitor() ElementConfig {
	return ElementConfig{
		Kind:       "BeamMonitor",
		Name:       "monitor",
		Parameters: []Param{{Name: "backend", Value: "h5"}},
	}
}

// Presets are the stock driver scripts expressed as configs, value for
// value. Preset literals render verbatim in exported scripts.
var Presets = map[string]*Config{
	"alignment": {
		ParticleShape:        2,
		SpaceCharge:          false,
		SliceStepDiagnostics: true,
		Beam: BeamConfig{
			ChargeQe:     1.0,
			MassMeV:      938.27208816,
			KinEnergyMeV: 2.0e3,
			BunchChargeC: 1.0e-9,
			NPart:        100000,
		},
		Distribution: DistributionConfig{
			Kind: "Waterbag",
			Parameters: withCorrelations(
				sixD("1.16098260008648811e-3", "1.16098260008648811e-3", "1.0e-3",
					"0.580491300043e-3", "0.580491300043e-3", "2.0e-3"),
				"0.0", "0.0", "0.0"),
		},
		Lattice: []ElementConfig{
			monitor(),
			{
				Kind:   "Quad",
				NSlice: 1,
				Parameters: []Param{
					{Name: "ds", Value: "1.0"},
					{Name: "k", Value: "0.25"},
					{Name: "dx", Value: "0.003"},
					{Name: "dy", Value: "0.0"},
					{Name: "rotation", Value: "30.0"},
				},
			},
			monitor(),
		},
	},

	"kurth_10nC_periodic": {
		ParticleShape:        2,
		SpaceCharge:          true,
		SliceStepDiagnostics: true,
		NCell:                []int{48, 48, 40},
		Beam: BeamConfig{
			ChargeQe:     1.0,
			MassMeV:      938.27208816,
			KinEnergyMeV: 2.0e3,
			BunchChargeC: 1.0e-8,
			NPart:        10000,
		},
		Distribution: DistributionConfig{
			Kind: "Kurth6D",
			Parameters: sixD("1.46e-3", "1.46e-3", "4.9197638312420749e-4",
				"6.84931506849e-4", "6.84931506849e-4", "2.0326178944803812e-3"),
		},
		Lattice: []ElementConfig{
			monitor(),
			{
				Kind:       "Drift",
				Name:       "drift1",
				NSlice:     20,
				Parameters: []Param{{Name: "ds", Value: "1.0"}},
			},
			{
				Kind:   "ConstF",
				Name:   "constf1",
				NSlice: 20,
				Parameters: []Param{
					{Name: "ds", Value: "2.0"},
					{Name: "kx", Value: "0.7"},
					{Name: "ky", Value: "0.7"},
					{Name: "kt", Value: "0.7"},
				},
			},
			{
				Kind:       "Drift",
				Name:       "drift1",
				NSlice:     20,
				Parameters: []Param{{Name: "ds", Value: "1.0"}},
			},
			monitor(),
		},
	},

	"thermal": {
		ParticleShape:        2,
		SpaceCharge:          true,
		SliceStepDiagnostics: false,
		NCell:                []int{56, 56, 64},
		DynamicSize:          true,
		ProbRelative:         []float64{4.0},
		Beam: BeamConfig{
			ChargeQe:     1.0,
			MassMeV:      938.27208816,
			KinEnergyMeV: 0.1,
			BunchChargeC: 1.4285714285714285714e-10,
			NPart:        10000,
		},
		Distribution: DistributionConfig{
			Kind: "Thermal",
			Parameters: []Param{
				{Name: "k", Value: "6.283185307179586"},
				{Name: "kT", Value: "36.0e-6"},
				{Name: "kT_halo", Value: "36.0e-6"},
				{Name: "normalize", Value: "0.41604661"},
				{Name: "normalize_halo", Value: "0.0"},
				{Name: "w_halo", Value: "0.0"},
			},
		},
		Lattice: []ElementConfig{
			monitor(),
			{
				Kind:   "ConstF",
				NSlice: 400,
				Parameters: []Param{
					{Name: "ds", Value: "10.0"},
					{Name: "kx", Value: "6.283185307179586"},
					{Name: "ky", Value: "6.283185307179586"},
					{Name: "kt", Value: "6.283185307179586"},
				},
			},
			monitor(),
		},
	},

	"expanding_beam": {
		ParticleShape:        2,
		SpaceCharge:          true,
		SliceStepDiagnostics: false,
		MaxLevel:             1,
		NCell:                []int{16, 16, 20},
		BlockingFactorX:      []int{16},
		BlockingFactorY:      []int{16},
		BlockingFactorZ:      []int{4},
		DynamicSize:          true,
		ProbRelative:         []float64{3.0, 1.1},
		Beam: BeamConfig{
			ChargeQe:     -1.0,
			MassMeV:      0.510998950,
			KinEnergyMeV: 250.0,
			BunchChargeC: 1.0e-9,
			NPart:        10000,
		},
		Distribution: DistributionConfig{
			Kind: "Kurth6D",
			Parameters: sixD("4.472135955e-4", "4.472135955e-4", "9.12241869e-7",
				"0.0", "0.0", "0.0"),
		},
		Lattice: []ElementConfig{
			monitor(),
			{
				Kind:       "Drift",
				Name:       "d1",
				NSlice:     40,
				Parameters: []Param{{Name: "ds", Value: "6.0"}},
			},
			monitor(),
		},
	},
}

// GetPreset returns the named preset, nil when unknown.
func GetPreset(name string) *Config {
	return Presets[name]
}

// ListPresets returns preset names sorted for stable output.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
