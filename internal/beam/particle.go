package beam

import "fmt"

// ReferenceParticle is the design particle a run is built around. It is an
// immutable construction record: charge in elementary charge units, mass and
// kinetic energy in MeV.
type ReferenceParticle struct {
	ChargeQe     float64
	MassMeV      float64
	KinEnergyMeV float64
}

// NewReferenceParticle builds and validates a reference particle.
func NewReferenceParticle(chargeQe, massMeV, kinEnergyMeV float64) (ReferenceParticle, error) {
	p := ReferenceParticle{
		ChargeQe:     chargeQe,
		MassMeV:      massMeV,
		KinEnergyMeV: kinEnergyMeV,
	}
	if err := p.Validate(); err != nil {
		return ReferenceParticle{}, err
	}
	return p, nil
}

// Validate checks the invariants: charge must be set, mass and kinetic
// energy must be positive.
func (p ReferenceParticle) Validate() error {
	if p.ChargeQe == 0 {
		return fmt.Errorf("reference particle charge_qe must be non-zero")
	}
	if p.MassMeV <= 0 {
		return fmt.Errorf("reference particle mass_MeV must be positive, got %s", FormatFloat(p.MassMeV))
	}
	if p.KinEnergyMeV <= 0 {
		return fmt.Errorf("reference particle kin_energy_MeV must be positive, got %s", FormatFloat(p.KinEnergyMeV))
	}
	return nil
}
