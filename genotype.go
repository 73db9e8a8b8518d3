package pedigree

import "math"

// GenotypeState indexes one of the four ordered diploid genotypes at the
// locus. The two carrier states are biologically identical; they are kept
// apart so that allele origin can be tracked exactly during propagation.
type GenotypeState int

const (
	HomozygousNormal GenotypeState = iota
	CarrierFromSideA
	CarrierFromSideB
	HomozygousAffected
)

// NGenotypeStates is the number of slots in a Probabilities vector.
const NGenotypeStates = 4

func (g GenotypeState) String() string {
	switch g {
	case HomozygousNormal:
		return "neg/neg"
	case CarrierFromSideA:
		return "neg/pos"
	case CarrierFromSideB:
		return "pos/neg"
	case HomozygousAffected:
		return "pos/pos"

	default:
		return "Illegal selection"
	}
}

// Alleles decomposes a genotype into its two alleles, reporting true for a
// disease allele.
func (g GenotypeState) Alleles() [2]bool {
	switch g {
	case CarrierFromSideA:
		return [2]bool{false, true}
	case CarrierFromSideB:
		return [2]bool{true, false}
	case HomozygousAffected:
		return [2]bool{true, true}
	}
	return [2]bool{false, false}
}

func genotypeFromAlleles(first, second bool) GenotypeState {
	switch {
	case !first && !second:
		return HomozygousNormal
	case !first && second:
		return CarrierFromSideA
	case first && !second:
		return CarrierFromSideB
	}
	return HomozygousAffected
}

// Probabilities is a distribution over the four genotype states.
type Probabilities [NGenotypeStates]float64

var (
	// Uniform is the starting distribution of every new Individual.
	Uniform = Probabilities{0.25, 0.25, 0.25, 0.25}

	// ObligateCarrier is a certain heterozygote.
	ObligateCarrier = Probabilities{0, 0.5, 0.5, 0}

	certainlyAffected   = Probabilities{0, 0, 0, 1}
	certainlyUnaffected = Probabilities{1, 0, 0, 0}
)

// HardyWeinberg returns the random-mating genotype distribution for a
// disease allele frequency q.
func HardyWeinberg(q float64) Probabilities {
	p := 1 - q
	out := Probabilities{p * p, p * q, q * p, q * q}
	return out.Normalize()
}

// Sum adds all four slots.
func (p Probabilities) Sum() float64 {
	return p[0] + p[1] + p[2] + p[3]
}

// Unaffected is the probability mass not in the homozygous affected slot.
func (p Probabilities) Unaffected() float64 {
	return p[HomozygousNormal] + p[CarrierFromSideA] + p[CarrierFromSideB]
}

// Carrier is the shared carrier value, the mean of the two carrier slots.
func (p Probabilities) Carrier() float64 {
	return (p[CarrierFromSideA] + p[CarrierFromSideB]) / 2
}

// Normalize replaces NaN and negative slots with zero and rescales so that
// the slots sum to one. If nothing is left, the result is Uniform.
func (p Probabilities) Normalize() Probabilities {
	var sum float64
	for i, v := range p {
		if math.IsNaN(v) || v < 0 {
			p[i] = 0
		}
		sum += p[i]
	}

	if sum <= 0 || math.IsInf(sum, 0) {
		return Uniform
	}

	for i := range p {
		p[i] /= sum
	}

	return p
}

// ConditionUnaffected removes the affected slot and renormalizes: the
// distribution of someone observed to be unaffected.
func (p Probabilities) ConditionUnaffected() Probabilities {
	p[HomozygousAffected] = 0
	return p.Normalize()
}

// Convolve computes the child's genotype distribution given the two parents'
// distributions. Each parent passes one of its alleles with probability 1/2,
// independently of the other parent. Slot order follows the parents: the
// first allele comes from parent1.
func Convolve(parent1, parent2 Probabilities) Probabilities {
	var out Probabilities

	for i := 0; i < NGenotypeStates; i++ {
		if !(parent1[i] > 0) {
			continue
		}
		a1 := GenotypeState(i).Alleles()

		for j := 0; j < NGenotypeStates; j++ {
			if !(parent2[j] > 0) {
				continue
			}
			a2 := GenotypeState(j).Alleles()

			joint := parent1[i] * parent2[j]
			for _, x := range a1 {
				for _, y := range a2 {
					out[genotypeFromAlleles(x, y)] += joint * 0.25
				}
			}
		}
	}

	return out.Normalize()
}
