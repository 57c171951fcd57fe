package config

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ParticleShape != 2 {
		t.Errorf("expected particle shape 2, got %d", cfg.ParticleShape)
	}
	if cfg.Beam.MassMeV <= 0 {
		t.Error("mass should be positive")
	}
	if cfg.SpaceCharge {
		t.Error("space charge should default off")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("alignment")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Distribution.Kind != "Waterbag" {
		t.Errorf("expected Waterbag, got %s", cfg.Distribution.Kind)
	}
	if len(cfg.Lattice) != 3 {
		t.Errorf("expected 3 lattice elements, got %d", len(cfg.Lattice))
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for unknown preset")
	}
}

func TestPresetsAreValid(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg := GetPreset(name)
			if errs := cfg.Validate(); len(errs) != 0 {
				t.Errorf("preset %s invalid: %v", name, errs)
			}
		})
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != 4 {
		t.Fatalf("expected 4 presets, got %d", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("preset names not sorted: %v", names)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	orig := GetPreset("kurth_10nC_periodic")

	if err := Save(path, orig); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Distribution.Kind != "Kurth6D" {
		t.Errorf("distribution kind = %s", loaded.Distribution.Kind)
	}
	if len(loaded.Lattice) != len(orig.Lattice) {
		t.Fatalf("lattice length changed: %d vs %d", len(loaded.Lattice), len(orig.Lattice))
	}
	for i := range orig.Lattice {
		if loaded.Lattice[i].Kind != orig.Lattice[i].Kind {
			t.Errorf("lattice[%d] kind = %s, want %s", i, loaded.Lattice[i].Kind, orig.Lattice[i].Kind)
		}
	}
	if loaded.Distribution.Parameters[0].Value != "1.46e-3" {
		t.Errorf("parameter literal changed: %q", loaded.Distribution.Parameters[0].Value)
	}
	if len(loaded.NCell) != 3 || loaded.NCell[0] != 48 {
		t.Errorf("n_cell = %v", loaded.NCell)
	}
}

func TestReferenceParticle(t *testing.T) {
	p, err := DefaultConfig().Beam.ReferenceParticle()
	if err != nil {
		t.Fatalf("default beam should build a reference particle: %v", err)
	}
	if p.MassMeV != 938.27208816 {
		t.Errorf("mass_MeV = %v", p.MassMeV)
	}

	if _, err := (BeamConfig{ChargeQe: 0, MassMeV: 1, KinEnergyMeV: 1}).ReferenceParticle(); err == nil {
		t.Error("zero charge should be rejected")
	}
	if _, err := (BeamConfig{ChargeQe: 1, MassMeV: -1, KinEnergyMeV: 1}).ReferenceParticle(); err == nil {
		t.Error("negative mass should be rejected")
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := &Config{
		ParticleShape: 7,
		Beam:          BeamConfig{ChargeQe: 0, MassMeV: 0, KinEnergyMeV: 0, NPart: 0},
	}

	errs := cfg.Validate()
	if len(errs) < 5 {
		t.Fatalf("expected the complete problem list, got %d: %v", len(errs), errs)
	}
	var cerr *ConfigurationError
	if !errors.As(errs[0], &cerr) {
		t.Errorf("error type = %T, want *ConfigurationError", errs[0])
	}
}

func TestValidate_BadDistributionParams(t *testing.T) {
	cfg := GetPreset("alignment")
	bad := *cfg
	bad.Distribution.Parameters = []Param{{Name: "lambdaX", Value: "1.0e-3"}}

	errs := bad.Validate()
	if len(errs) == 0 {
		t.Fatal("expected error for incomplete parameter set")
	}
}

func TestValidate_BadLatticeElement(t *testing.T) {
	cfg := GetPreset("alignment")
	bad := *cfg
	bad.Lattice = append([]ElementConfig{}, bad.Lattice...)
	bad.Lattice = append(bad.Lattice, ElementConfig{Kind: "Undulator"})

	errs := bad.Validate()
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
}

func TestErr(t *testing.T) {
	if err := GetPreset("thermal").Err(); err != nil {
		t.Errorf("thermal preset should be valid: %v", err)
	}
	if err := (&Config{}).Err(); err == nil {
		t.Error("empty config should be invalid")
	}
}
