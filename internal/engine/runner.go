package engine

import (
	"context"
	"errors"

	"github.com/EZoni/impactx/internal/config"
)

// Run drives one complete engine lifecycle for a validated config.
//
// Configuration problems abort before any engine call. Once the engine has
// been touched, Finalize runs on every exit path, including tracking
// failures and context cancellation; its error is joined with the run error
// rather than replacing it.
func Run(ctx context.Context, cfg *config.Config, eng Engine) (rerr error) {
	if err := cfg.Err(); err != nil {
		return err
	}

	distr, err := cfg.Distribution.ToDistribution()
	if err != nil {
		return err
	}

	defer func() {
		if err := eng.Finalize(); err != nil {
			rerr = errors.Join(rerr, &EngineError{Op: "finalize", Err: err})
		}
	}()

	step := func(op string, fn func() error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(); err != nil {
			return &EngineError{Op: op, Err: err}
		}
		return nil
	}

	settings := Settings{
		ParticleShape:        cfg.ParticleShape,
		SpaceCharge:          cfg.SpaceCharge,
		CSR:                  cfg.CSR,
		SliceStepDiagnostics: cfg.SliceStepDiagnostics,
		MaxLevel:             cfg.MaxLevel,
		NCell:                cfg.NCell,
		BlockingFactorX:      cfg.BlockingFactorX,
		BlockingFactorY:      cfg.BlockingFactorY,
		BlockingFactorZ:      cfg.BlockingFactorZ,
		DynamicSize:          cfg.DynamicSize,
		ProbRelative:         cfg.ProbRelative,
	}

	if err := step("configure", func() error { return eng.Configure(settings) }); err != nil {
		return err
	}
	if err := step("init_grids", eng.InitGrids); err != nil {
		return err
	}
	if err := step("ref_particle", func() error {
		p, err := cfg.Beam.ReferenceParticle()
		if err != nil {
			return err
		}
		return eng.SetRefParticle(p)
	}); err != nil {
		return err
	}
	if err := step("add_particles", func() error {
		return eng.AddParticles(cfg.Beam.BunchChargeC, distr, cfg.Beam.NPart)
	}); err != nil {
		return err
	}
	if err := step("lattice", func() error {
		return eng.ExtendLattice(cfg.ToLattice())
	}); err != nil {
		return err
	}
	return step("track_particles", eng.TrackParticles)
}
