package pedigree

// ID addresses an Individual inside its Pedigree. IDs start at 1 and grow
// monotonically; 0 means "nobody".
type ID int

// Gender of an Individual.
type Gender string

const (
	Male   Gender = "M"
	Female Gender = "F"
)

// Individual is one member of a pedigree. It carries only genetic state:
// relations live in the owning Pedigree, drawing state lives with whoever
// renders it.
type Individual struct {
	ID           ID
	Gender       Gender
	Affected     bool
	Hypothetical bool

	// Frozen individuals are never recomputed or perturbed.
	Frozen bool

	// Population selects a FrequencyTable column; empty when unset.
	Population string

	Probabilities Probabilities

	// OriginalProbabilities is restored by Pedigree.ResetProbabilities.
	OriginalProbabilities Probabilities
}

func newIndividual(id ID, gender Gender) *Individual {
	return &Individual{
		ID:                    id,
		Gender:                gender,
		Probabilities:         Uniform,
		OriginalProbabilities: Uniform,
	}
}

// SetAffected records clinical status. Affected status is treated as ground
// truth: an affected individual is pinned to pos/pos and frozen.
func (ind *Individual) SetAffected(affected bool) {
	ind.Affected = affected
	if affected {
		ind.Probabilities = certainlyAffected
		ind.Frozen = true
	} else {
		ind.Probabilities = certainlyUnaffected
		ind.Frozen = false
	}
	ind.setProbabilities(ind.Probabilities)
	ind.snapshot()
}

// setFromFrequency seeds a founder from a disease allele frequency.
func (ind *Individual) setFromFrequency(q float64) {
	if ind.Frozen {
		return
	}
	if !ind.Affected {
		ind.Probabilities = HardyWeinberg(q)
	}
	ind.setProbabilities(ind.Probabilities)
	ind.snapshot()
}

// CalculateFromParents replaces the probabilities with the Mendelian
// convolution of the two parents. Frozen individuals are left alone.
func (ind *Individual) CalculateFromParents(parent1, parent2 *Individual) {
	if ind.Frozen || parent1 == nil || parent2 == nil {
		return
	}
	ind.Probabilities = Convolve(parent1.Probabilities, parent2.Probabilities)
}

func (ind *Individual) setProbabilities(p Probabilities) {
	ind.Probabilities = p.Normalize()
}

func (ind *Individual) snapshot() {
	ind.OriginalProbabilities = ind.Probabilities
}
