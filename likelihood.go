package pedigree

import "math"

// probabilityFloor keeps an impossible observation from contributing -Inf.
const probabilityFloor = 1e-10

// NegativeLogLikelihood scores the observed phenotypes against the current
// probabilities. Each non-hypothetical individual contributes -log of the
// probability of its status: the affected slot if affected, the other three
// slots otherwise. Lower is better.
func (p *Pedigree) NegativeLogLikelihood() float64 {
	var nll float64
	for _, ind := range p.individuals[1:] {
		if ind.Hypothetical {
			continue
		}

		observed := ind.Probabilities.Unaffected()
		if ind.Affected {
			observed = ind.Probabilities[HomozygousAffected]
		}
		if !(observed > probabilityFloor) {
			observed = probabilityFloor
		}
		// Rounding in the three-slot sum can land just above one.
		observed = math.Min(observed, 1)

		nll -= math.Log(observed)
	}

	return nll
}
