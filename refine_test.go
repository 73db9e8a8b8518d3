package pedigree

import (
	"math"
	"testing"

	"github.com/carbocation/pedigree/optimize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefineFounderNeverRegresses(t *testing.T) {
	p, father, mother := family(t, "cf", General)
	addChild(t, p, Male, father.ID, mother.ID).SetAffected(true)
	p.UpdateAllProbabilities()
	start := p.NegativeLogLikelihood()

	res, err := RefineFounder(p, father.ID, optimize.DefaultSettings())
	require.NoError(t, err)

	assert.Equal(t, []ID{father.ID}, res.Founders)
	assert.InDelta(t, start, res.Start, 1e-12)
	assert.LessOrEqual(t, res.Final, res.Start+1e-12)
	assert.InDelta(t, res.Final, p.NegativeLogLikelihood(), 1e-12)
	assert.Greater(t, res.Evaluations, 0)
	assert.Equal(t, ObligateCarrier, father.Probabilities)
}

func TestRefineAllFoundersImproves(t *testing.T) {
	p, father, mother := family(t, "cf", General)
	child := addChild(t, p, Male, father.ID, mother.ID)
	p.UpdateAllProbabilities()

	res, err := RefineAllFounders(p, optimize.DefaultSettings())
	require.NoError(t, err)

	assert.ElementsMatch(t, []ID{father.ID, mother.ID}, res.Founders)
	assert.False(t, res.Reverted)
	assert.Less(t, res.Final, res.Start)
	assert.InDelta(t, res.Final, p.NegativeLogLikelihood(), 1e-12)

	// Nobody is observed to be affected, so the search pushes the affected
	// mass of both founders towards zero.
	assert.Less(t, father.Probabilities[HomozygousAffected], HardyWeinberg(0.025)[HomozygousAffected])
	assert.Less(t, child.Probabilities[HomozygousAffected], Convolve(HardyWeinberg(0.025), HardyWeinberg(0.025))[HomozygousAffected])

	for _, ind := range p.Individuals() {
		assertNormalized(t, ind.Probabilities)
	}
}

func TestRefineLeavesConsistentState(t *testing.T) {
	p, father, mother := family(t, "pku", EuropeanAncestry)
	addChild(t, p, Female, father.ID, mother.ID)
	sick := addChild(t, p, Male, father.ID, mother.ID)
	spouse := p.AddIndividual(Female)
	require.NoError(t, p.SetRace(spouse.ID, General))
	grandchild := addChild(t, p, Female, sick.ID, spouse.ID)
	sick.SetAffected(true)
	p.UpdateAllProbabilities()

	_, err := RefineAllFounders(p, optimize.DefaultSettings())
	require.NoError(t, err)

	after := p.Snapshot()
	p.UpdateAllProbabilities()
	assert.Equal(t, after, p.Snapshot())

	assert.Equal(t, certainlyAffected, sick.Probabilities)
	assertNormalized(t, grandchild.Probabilities)
}

func TestRefineRevertsRegression(t *testing.T) {
	p := New("cf", DefaultFrequencies())
	founder := p.AddIndividual(Male)
	partner := p.AddIndividual(Female)
	partner.SetAffected(true)
	affected := addChild(t, p, Male, founder.ID, partner.ID)
	affected.SetAffected(true)
	sibling := addChild(t, p, Female, founder.ID, partner.ID)
	spouse := p.AddIndividual(Male)
	spouse.SetAffected(true)
	grandchild := addChild(t, p, Male, sibling.ID, spouse.ID)

	// Left unpropagated, this state scores better than anything propagation
	// can produce.
	grandchild.Probabilities = certainlyUnaffected
	start := p.NegativeLogLikelihood()

	res, err := RefineAllFounders(p, optimize.DefaultSettings())
	require.NoError(t, err)

	assert.Equal(t, []ID{founder.ID}, res.Founders)
	assert.True(t, res.Reverted)
	assert.Equal(t, start, res.Final)
	assert.Equal(t, certainlyUnaffected, grandchild.Probabilities)
	assert.Equal(t, Uniform, founder.Probabilities)
	assert.InDelta(t, start, p.NegativeLogLikelihood(), 1e-12)
}

func TestRefineNoEligibleFounders(t *testing.T) {
	p := New("cf", DefaultFrequencies())
	a := p.AddIndividual(Male)
	a.SetAffected(true)
	b := p.AddIndividual(Female)
	b.Frozen = true

	_, err := RefineAllFounders(p, optimize.DefaultSettings())
	assert.ErrorIs(t, err, ErrNoEligibleFounders)

	_, err = RefineFounder(p, a.ID, optimize.DefaultSettings())
	assert.ErrorIs(t, err, ErrNoEligibleFounders)

	c := p.AddIndividual(Male)
	child := addChild(t, p, Male, c.ID, b.ID)
	_, err = RefineFounder(p, child.ID, optimize.DefaultSettings())
	assert.ErrorIs(t, err, ErrNoEligibleFounders)

	_, err = RefineFounder(p, 99, optimize.DefaultSettings())
	assert.ErrorIs(t, err, ErrNoEligibleFounders)
}

func TestFeasible(t *testing.T) {
	assert.True(t, feasible([]float64{1, 0}))
	assert.True(t, feasible([]float64{0.5, 0.25, 0, 0.5}))
	assert.True(t, feasible([]float64{0.5, 0.25 + 1e-10}))
	assert.False(t, feasible([]float64{0.5, 0.3}))
	assert.False(t, feasible([]float64{-0.1, 0.1}))
	assert.False(t, feasible([]float64{0.1, math.NaN()}))
}
