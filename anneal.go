package pedigree

import (
	"context"
	"math"
)

// RandomSource supplies the randomness used by the Annealer. *rand.Rand
// satisfies it; seed it to make a run reproducible.
type RandomSource interface {
	Float64() float64
	Intn(n int) int
}

// AnnealState is the lifecycle of an Annealer.
type AnnealState int

const (
	AnnealIdle AnnealState = iota
	AnnealRunning
	AnnealConverged
	AnnealStopped
)

func (s AnnealState) String() string {
	switch s {
	case AnnealIdle:
		return "Idle"
	case AnnealRunning:
		return "Running"
	case AnnealConverged:
		return "Converged"
	case AnnealStopped:
		return "Stopped"

	default:
		return "Illegal selection"
	}
}

// AnnealConfig holds the tuning constants of the Annealer.
type AnnealConfig struct {
	// StepSize is the width of the uniform perturbation window.
	StepSize float64 `yaml:"step_size"`

	InitialTemperature float64 `yaml:"initial_temperature"`

	// Cooling factors applied while the plateau counter is below SlowPlateau,
	// below StallPlateau, and at or above StallPlateau.
	CoolingRate        float64 `yaml:"cooling_rate"`
	SlowCoolingRate    float64 `yaml:"slow_cooling_rate"`
	StalledCoolingRate float64 `yaml:"stalled_cooling_rate"`
	SlowPlateau        int     `yaml:"slow_plateau"`
	StallPlateau       int     `yaml:"stall_plateau"`

	// ConvergedPlateau ends a Run once exceeded.
	ConvergedPlateau int `yaml:"converged_plateau"`
}

// DefaultAnnealConfig returns the standard schedule.
func DefaultAnnealConfig() AnnealConfig {
	return AnnealConfig{
		StepSize:           0.05,
		InitialTemperature: 1.0,
		CoolingRate:        0.995,
		SlowCoolingRate:    0.9995,
		StalledCoolingRate: 0.9999,
		SlowPlateau:        100,
		StallPlateau:       500,
		ConvergedPlateau:   5000,
	}
}

// Annealer searches founder priors by simulated annealing on the pedigree's
// negative log-likelihood. It is synchronous: a host drives it one Step at a
// time, or with Run, and may inspect the exported counters in between.
type Annealer struct {
	Iterations        int
	Accepted          int
	CurrentLikelihood float64
	BestLikelihood    float64
	Plateau           int
	Temperature       float64

	ped    *Pedigree
	rng    RandomSource
	config AnnealConfig
	state  AnnealState
}

// NewAnnealer builds an idle Annealer for p.
func NewAnnealer(p *Pedigree, rng RandomSource, config AnnealConfig) *Annealer {
	return &Annealer{
		ped:            p,
		rng:            rng,
		config:         config,
		BestLikelihood: math.Inf(1),
		Temperature:    config.InitialTemperature,
	}
}

// State reports where the Annealer is in its lifecycle.
func (a *Annealer) State() AnnealState {
	return a.state
}

// Initialize scores the current pedigree, clears the counters and puts the
// Annealer in the running state.
func (a *Annealer) Initialize() {
	a.Iterations = 0
	a.Accepted = 0
	a.Plateau = 0
	a.Temperature = a.config.InitialTemperature
	a.CurrentLikelihood = a.ped.NegativeLogLikelihood()
	a.BestLikelihood = a.CurrentLikelihood
	a.state = AnnealRunning
}

// Stop ends a running search at the next step boundary.
func (a *Annealer) Stop() {
	if a.state == AnnealRunning {
		a.state = AnnealStopped
	}
}

// Reset returns a finished Annealer to idle.
func (a *Annealer) Reset() {
	a.state = AnnealIdle
}

// Candidates are the founders the Annealer may perturb.
func (a *Annealer) Candidates() []ID {
	var out []ID
	for _, id := range a.ped.Founders() {
		ind := a.ped.individuals[id]
		if !ind.Affected && !ind.Frozen {
			out = append(out, id)
		}
	}
	return out
}

// Step perturbs one founder, propagates, and keeps or undoes the change by
// the Metropolis rule. It returns false when the search cannot go on: the
// Annealer is not running or there is nothing to perturb.
func (a *Annealer) Step() bool {
	if a.state != AnnealRunning {
		return false
	}

	candidates := a.Candidates()
	if len(candidates) == 0 {
		a.state = AnnealStopped
		return false
	}

	ind := a.ped.individuals[candidates[a.rng.Intn(len(candidates))]]
	previous := ind.Probabilities
	ind.setProbabilities(a.propose(previous))

	a.ped.UpdateAllProbabilities()
	nll := a.ped.NegativeLogLikelihood()

	delta := nll - a.CurrentLikelihood
	accept := delta < 0 || a.rng.Float64() < math.Exp(-delta/a.Temperature)

	if accept {
		a.Accepted++
		a.CurrentLikelihood = nll
		if nll < a.BestLikelihood {
			a.BestLikelihood = nll
			a.Plateau = 0
		} else {
			a.Plateau++
		}
	} else {
		ind.Probabilities = previous
		a.ped.UpdateAllProbabilities()
		a.Plateau++
	}
	a.Iterations++

	a.cool()

	if a.Plateau > a.config.ConvergedPlateau {
		a.state = AnnealConverged
	}

	return true
}

// propose moves either the homozygous normal slot or the shared carrier
// value and rescales the remaining slots to absorb the change.
func (a *Annealer) propose(p Probabilities) Probabilities {
	change := (a.rng.Float64() - 0.5) * a.config.StepSize

	if a.rng.Float64() < 0.5 {
		p[HomozygousNormal] = clamp(p[HomozygousNormal]+change, 0, 1)
		remaining := 1 - p[HomozygousNormal]
		if other := p[CarrierFromSideA] + p[CarrierFromSideB] + p[HomozygousAffected]; other > 0 {
			scale := remaining / other
			p[CarrierFromSideA] *= scale
			p[CarrierFromSideB] *= scale
			p[HomozygousAffected] *= scale
		}
		return p
	}

	carrier := clamp(p.Carrier()+change, 0, 0.5)
	p[CarrierFromSideA] = carrier
	p[CarrierFromSideB] = carrier
	remaining := 1 - 2*carrier
	if other := p[HomozygousNormal] + p[HomozygousAffected]; other > 0 {
		scale := remaining / other
		p[HomozygousNormal] *= scale
		p[HomozygousAffected] *= scale
	}

	return p
}

// cool slows the schedule as the search stagnates.
func (a *Annealer) cool() {
	switch {
	case a.Plateau < a.config.SlowPlateau:
		a.Temperature *= a.config.CoolingRate
	case a.Plateau < a.config.StallPlateau:
		a.Temperature *= a.config.SlowCoolingRate
	default:
		a.Temperature *= a.config.StalledCoolingRate
	}
}

// Run initializes and steps until maxIterations, convergence, an empty
// candidate pool, or cancellation of ctx, which is checked between steps.
// It returns the best negative log-likelihood seen.
func (a *Annealer) Run(ctx context.Context, maxIterations int) float64 {
	a.Initialize()

	for i := 0; i < maxIterations; i++ {
		if ctx.Err() != nil {
			a.Stop()
			break
		}
		if !a.Step() || a.state != AnnealRunning {
			break
		}
	}
	a.Stop()

	return a.BestLikelihood
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
