package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/EZoni/impactx/internal/beam"
	"github.com/EZoni/impactx/internal/lattice"
)

// ConfigurationError marks a required field that is missing or out of range.
// These abort a run or export before any engine call is made.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Param is one name/value entry in a config file. Values stay textual so the
// exported script reproduces them verbatim.
type Param struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// DistributionConfig selects a distribution kind and its parameters.
// Style "twiss" feeds the parameters through the twiss(...) helper.
type DistributionConfig struct {
	Kind       string  `yaml:"kind"`
	Style      string  `yaml:"style,omitempty"`
	Parameters []Param `yaml:"parameters"`
}

// ElementConfig is one beamline element in file order.
type ElementConfig struct {
	Kind       string  `yaml:"kind"`
	Name       string  `yaml:"name,omitempty"`
	NSlice     int     `yaml:"nslice,omitempty"`
	Parameters []Param `yaml:"parameters,omitempty"`
}

// BeamConfig holds the reference particle and bunch settings.
type BeamConfig struct {
	ChargeQe     float64 `yaml:"charge_qe"`
	MassMeV      float64 `yaml:"mass_MeV"`
	KinEnergyMeV float64 `yaml:"kin_energy_MeV"`
	BunchChargeC float64 `yaml:"bunch_charge_C"`
	NPart        int     `yaml:"npart"`
}

// Config is the full description of one simulation run: numeric/IO flags,
// optional space-charge grid settings, the beam, the initial distribution
// and the ordered lattice. It is populated once, validated, and treated as
// read-only from the moment export or tracking begins.
type Config struct {
	ParticleShape        int  `yaml:"particle_shape"`
	SpaceCharge          bool `yaml:"space_charge"`
	CSR                  bool `yaml:"csr"`
	SliceStepDiagnostics bool `yaml:"slice_step_diagnostics"`

	MaxLevel        int       `yaml:"max_level,omitempty"`
	NCell           []int     `yaml:"n_cell,omitempty,flow"`
	BlockingFactorX []int     `yaml:"blocking_factor_x,omitempty,flow"`
	BlockingFactorY []int     `yaml:"blocking_factor_y,omitempty,flow"`
	BlockingFactorZ []int     `yaml:"blocking_factor_z,omitempty,flow"`
	DynamicSize     bool      `yaml:"dynamic_size,omitempty"`
	ProbRelative    []float64 `yaml:"prob_relative,omitempty,flow"`

	Beam         BeamConfig         `yaml:"beam"`
	Distribution DistributionConfig `yaml:"distribution"`
	Lattice      []ElementConfig    `yaml:"lattice"`
}

// DefaultConfig mirrors the settings common to the stock driver scripts.
func DefaultConfig() *Config {
	return &Config{
		ParticleShape:        2,
		SpaceCharge:          false,
		CSR:                  false,
		SliceStepDiagnostics: true,
		Beam: BeamConfig{
			ChargeQe:     1.0,
			MassMeV:      938.27208816,
			KinEnergyMeV: 2.0e3,
			BunchChargeC: 1.0e-9,
			NPart:        10000,
		},
	}
}

// Load reads a config file, starting from defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReferenceParticle builds the typed reference particle record through the
// validating constructor.
func (b BeamConfig) ReferenceParticle() (beam.ReferenceParticle, error) {
	return beam.NewReferenceParticle(b.ChargeQe, b.MassMeV, b.KinEnergyMeV)
}

// ToDistribution converts the file form into the typed distribution,
// keeping parameter literals verbatim.
func (d DistributionConfig) ToDistribution() (beam.Distribution, error) {
	style := beam.StyleQuadraticForm
	switch d.Style {
	case "", string(beam.StyleQuadraticForm):
	case string(beam.StyleTwiss):
		style = beam.StyleTwiss
	default:
		return beam.Distribution{}, fmt.Errorf("unknown distribution style: %s", d.Style)
	}

	params := make(beam.Params, 0, len(d.Parameters))
	for _, p := range d.Parameters {
		v, err := beam.ParseFloat(p.Value)
		if err != nil {
			return beam.Distribution{}, fmt.Errorf("distribution parameter %s: %w", p.Name, err)
		}
		params = append(params, beam.Param{Name: p.Name, Value: v})
	}

	return beam.Distribution{
		Kind:   beam.Kind(d.Kind),
		Style:  style,
		Params: params,
	}, nil
}

// ToElement converts the file form into a typed element. Values that parse
// as numbers keep their literal; everything else is a string parameter.
func (e ElementConfig) ToElement() lattice.Element {
	params := make(beam.Params, 0, len(e.Parameters))
	for _, p := range e.Parameters {
		if v, err := beam.ParseFloat(p.Value); err == nil {
			params = append(params, beam.Param{Name: p.Name, Value: v})
		} else {
			params = append(params, beam.Param{Name: p.Name, Value: beam.String(p.Value)})
		}
	}
	return lattice.Element{
		Kind:   lattice.Kind(e.Kind),
		Name:   e.Name,
		NSlice: e.NSlice,
		Params: params,
	}
}

// ToLattice converts the element list, preserving file order exactly.
func (c *Config) ToLattice() lattice.Lattice {
	l := make(lattice.Lattice, 0, len(c.Lattice))
	for _, e := range c.Lattice {
		l = append(l, e.ToElement())
	}
	return l
}

// Validate returns every problem with the config, not just the first, so a
// dashboard can surface the complete list. An empty slice means the config
// is ready for export or tracking.
func (c *Config) Validate() []error {
	var errs []error

	field := func(name, reason string) {
		errs = append(errs, &ConfigurationError{Field: name, Reason: reason})
	}

	if c.ParticleShape < 1 || c.ParticleShape > 3 {
		field("particle_shape", fmt.Sprintf("B-spline order must be 1, 2 or 3, got %d", c.ParticleShape))
	}
	if len(c.NCell) != 0 && len(c.NCell) != 3 {
		field("n_cell", fmt.Sprintf("must be 3 values, got %d", len(c.NCell)))
	}
	for _, n := range c.NCell {
		if n <= 0 {
			field("n_cell", "cell counts must be positive")
			break
		}
	}

	if c.Beam.ChargeQe == 0 {
		field("beam.charge_qe", "must be non-zero")
	}
	if c.Beam.MassMeV <= 0 {
		field("beam.mass_MeV", "must be positive")
	}
	if c.Beam.KinEnergyMeV <= 0 {
		field("beam.kin_energy_MeV", "must be positive")
	}
	if c.Beam.NPart <= 0 {
		field("beam.npart", "macro particle count must be positive")
	}
	if c.SpaceCharge && c.Beam.BunchChargeC == 0 {
		field("beam.bunch_charge_C", "must be non-zero when space charge is on")
	}

	if c.Distribution.Kind == "" {
		field("distribution.kind", "required")
	} else if d, err := c.Distribution.ToDistribution(); err != nil {
		field("distribution", err.Error())
	} else if err := d.Validate(); err != nil {
		field("distribution", err.Error())
	}

	for _, err := range c.ToLattice().Validate() {
		field("lattice", err.Error())
	}

	return errs
}

// Err joins validation problems into a single error, nil when valid.
func (c *Config) Err() error {
	errs := c.Validate()
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return fmt.Errorf("invalid config (%d problems):\n  %s", len(errs), strings.Join(msgs, "\n  "))
}

// Summary is a one-line description used by the CLI.
func (c *Config) Summary() string {
	return fmt.Sprintf("%s beam, %d macro particles, %d lattice elements",
		c.Distribution.Kind, c.Beam.NPart, len(c.Lattice))
}
