package pedigree

import (
	"errors"
	"fmt"
	"math"

	"github.com/carbocation/pedigree/optimize"
)

// ErrNoEligibleFounders is returned when there is no founder that is
// neither affected nor frozen to refine.
var ErrNoEligibleFounders = errors.New("pedigree: no eligible founders")

const (
	// feasibilitySlack allows pAA + 2*pCarrier to exceed 1 by rounding error.
	feasibilitySlack = 1e-9

	// A candidate must beat the best seen likelihood by more than this to
	// replace it.
	improvementTolerance = 1e-12

	// A refined likelihood this far above the starting one is a regression.
	regressionTolerance = 1e-12
)

// RefineResult describes one Powell refinement.
type RefineResult struct {
	Founders    []ID
	Start       float64
	Final       float64
	Evaluations int

	// Reverted is true when the best candidate was no better than the
	// starting state and the pedigree was put back as it was.
	Reverted bool
}

// RefineFounder tunes the prior of a single founder with Powell's method.
func RefineFounder(p *Pedigree, id ID, settings optimize.Settings) (RefineResult, error) {
	if !p.eligibleFounder(id) {
		return RefineResult{}, fmt.Errorf("%w: individual %d", ErrNoEligibleFounders, id)
	}
	return refine(p, []ID{id}, settings), nil
}

// RefineAllFounders tunes the priors of every eligible founder jointly.
func RefineAllFounders(p *Pedigree, settings optimize.Settings) (RefineResult, error) {
	var ids []ID
	for _, id := range p.Founders() {
		if p.eligibleFounder(id) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return RefineResult{}, ErrNoEligibleFounders
	}
	return refine(p, ids, settings), nil
}

func (p *Pedigree) eligibleFounder(id ID) bool {
	if !p.IsFounder(id) {
		return false
	}
	ind := p.individuals[id]
	return !ind.Affected && !ind.Frozen
}

// refine searches two variables per founder: the homozygous normal
// probability and the shared carrier probability. The affected slot is
// whatever remains. Every evaluation starts again from the same baseline, and
// the best feasible point seen is tracked here rather than taken from the
// minimizer.
func refine(p *Pedigree, ids []ID, settings optimize.Settings) RefineResult {
	baseline := p.Snapshot()
	res := RefineResult{
		Founders: ids,
		Start:    p.NegativeLogLikelihood(),
	}

	x0 := make([]float64, 2*len(ids))
	for i, id := range ids {
		pr := p.individuals[id].Probabilities
		x0[2*i] = pr[HomozygousNormal]
		x0[2*i+1] = pr.Carrier()
	}

	bestX := append([]float64(nil), x0...)
	bestF := math.Inf(1)

	objective := func(x []float64) float64 {
		if !feasible(x) {
			return math.Inf(1)
		}

		p.Restore(baseline)
		p.applyFounderVariables(ids, x)
		p.UpdateAllProbabilities()

		nll := p.NegativeLogLikelihood()
		if math.IsNaN(nll) || math.IsInf(nll, 0) {
			return math.Inf(1)
		}
		if nll < bestF-improvementTolerance {
			bestF = nll
			bestX = append(bestX[:0], x...)
		}

		return nll
	}

	out := optimize.Powell(objective, x0, settings)
	res.Evaluations = out.Evaluations

	p.Restore(baseline)
	p.applyFounderVariables(ids, bestX)
	p.UpdateAllProbabilities()
	res.Final = p.NegativeLogLikelihood()

	if math.IsNaN(res.Final) || math.IsInf(res.Final, 0) || res.Final > res.Start+regressionTolerance {
		p.Restore(baseline)
		res.Final = res.Start
		res.Reverted = true
	}

	return res
}

func feasible(x []float64) bool {
	for i := 0; i+1 < len(x); i += 2 {
		pAA, pCarrier := x[i], x[i+1]
		if math.IsNaN(pAA) || math.IsNaN(pCarrier) {
			return false
		}
		if pAA < 0 || pCarrier < 0 || pAA+2*pCarrier > 1+feasibilitySlack {
			return false
		}
	}
	return true
}

func (p *Pedigree) applyFounderVariables(ids []ID, x []float64) {
	for i, id := range ids {
		pAA, pCarrier := x[2*i], x[2*i+1]
		p.individuals[id].setProbabilities(Probabilities{
			pAA,
			pCarrier,
			pCarrier,
			math.Max(0, 1-pAA-2*pCarrier),
		})
	}
}
