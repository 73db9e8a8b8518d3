package pedfile

import (
	"bytes"
	"context"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/carbocation/pedigree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openFixture(t *testing.T, name string) *pedigree.Pedigree {
	t.Helper()

	p, err := Open(context.Background(), filepath.Join("testdata", name), pedigree.DefaultFrequencies())
	require.NoError(t, err)
	p.UpdateAllProbabilities()

	return p
}

func assertClose(t *testing.T, expected, got pedigree.Probabilities) {
	t.Helper()
	for i := range expected {
		assert.InDelta(t, expected[i], got[i], 1e-9, "slot %s", pedigree.GenotypeState(i))
	}
}

func TestThreeGenerationScenario(t *testing.T) {
	p := openFixture(t, "pku_three_generations.json")
	require.Equal(t, 10, p.Len())
	assert.Equal(t, "pku", p.Condition())

	// Parents of the affected child are obligate carriers, including the
	// one who is not a founder.
	assert.Equal(t, pedigree.ObligateCarrier, p.Individual(5).Probabilities)
	assert.Equal(t, pedigree.ObligateCarrier, p.Individual(6).Probabilities)

	// The unaffected sibling is conditioned on being unaffected.
	assertClose(t, pedigree.Probabilities{1.0 / 3, 1.0 / 3, 1.0 / 3, 0}, p.Individual(9).Probabilities)

	// The hypothetical sibling carries the plain recurrence risk.
	assert.InDelta(t, 0.25, p.Individual(10).Probabilities[pedigree.HomozygousAffected], 1e-12)

	// Founders keep their population priors.
	assertClose(t, pedigree.HardyWeinberg(0.02), p.Individual(1).Probabilities)
	assertClose(t, pedigree.HardyWeinberg(0.015), p.Individual(4).Probabilities)
	assert.Equal(t, pedigree.General, p.Individual(4).Population)

	nll := p.NegativeLogLikelihood()
	assert.False(t, math.IsNaN(nll) || math.IsInf(nll, 0))
	assert.Greater(t, nll, 0.0)

	for _, ind := range p.Individuals() {
		assert.InDelta(t, 1, ind.Probabilities.Sum(), 1e-9, "individual %d", ind.ID)
	}
}

func TestAfflictedSiblingScenario(t *testing.T) {
	p := openFixture(t, "afflicted_sibling.json")

	assert.Equal(t, pedigree.ObligateCarrier, p.Individual(1).Probabilities)
	assert.Equal(t, pedigree.ObligateCarrier, p.Individual(2).Probabilities)
	assertClose(t, pedigree.Uniform, p.Individual(4).Probabilities)
	assert.True(t, p.Individual(3).Frozen)
}

func TestAfflictedCousinScenario(t *testing.T) {
	p := openFixture(t, "afflicted_cousin.json")
	hw := pedigree.HardyWeinberg(0.025)

	assert.Equal(t, pedigree.ObligateCarrier, p.Individual(3).Probabilities)
	assert.Equal(t, pedigree.ObligateCarrier, p.Individual(5).Probabilities)

	// Carrier status of 3 is not pushed back to the grandparents, so 3's
	// sister and her hypothetical child stay at the population prior.
	assertClose(t, hw, p.Individual(1).Probabilities)
	assertClose(t, hw, p.Individual(2).Probabilities)
	assertClose(t, hw, p.Individual(4).Probabilities)
	assertClose(t, hw, p.Individual(8).Probabilities)
	assert.InDelta(t, 0.000625, p.Individual(8).Probabilities[pedigree.HomozygousAffected], 1e-12)
}

func TestBuildMapsFileIDs(t *testing.T) {
	f, err := Decode(strings.NewReader(`{"individuals": [
		{"id": 10, "gender": "F", "race": "general"},
		{"id": 20, "gender": "M", "race": "general"},
		{"id": 30, "gender": "M", "parents": [20, 10], "race": "general"}
	]}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultCondition, f.Condition)
	require.NoError(t, f.Validate())

	p, ids, err := f.Build(pedigree.DefaultFrequencies())
	require.NoError(t, err)

	assert.Equal(t, pedigree.ID(1), ids[10])
	assert.Equal(t, []pedigree.ID{ids[20], ids[10]}, p.Parents(ids[30]))
	assert.Equal(t, ids[10], p.Partner(ids[20]))

	// A race on a non-founder is recorded but does not seed it.
	child := p.Individual(ids[30])
	assert.Equal(t, pedigree.General, child.Population)
	assert.Equal(t, pedigree.Uniform, child.Probabilities)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		message string
	}{
		{
			name:    "missing parent",
			doc:     `{"individuals": [{"id": 1, "gender": "M", "parents": [2, 3]}, {"id": 2, "gender": "F"}]}`,
			message: "missing parent 3 for individual 1",
		},
		{
			name:    "one-way partner",
			doc:     `{"individuals": [{"id": 1, "gender": "M", "is_sexual_partner_of": [2]}, {"id": 2, "gender": "F"}]}`,
			message: "partner link 1 -> 2 is not reciprocated",
		},
		{
			name:    "own parent",
			doc:     `{"individuals": [{"id": 1, "gender": "M", "parents": [1]}]}`,
			message: "their own parent",
		},
		{
			name:    "own partner",
			doc:     `{"individuals": [{"id": 1, "gender": "M", "is_sexual_partner_of": [1]}]}`,
			message: "their own partner",
		},
		{
			name:    "duplicate id",
			doc:     `{"individuals": [{"id": 1, "gender": "M"}, {"id": 1, "gender": "F"}]}`,
			message: "duplicate id 1",
		},
		{
			name:    "unknown gender",
			doc:     `{"individuals": [{"id": 1, "gender": "X"}]}`,
			message: `gender "X"`,
		},
		{
			name:    "repeated parent",
			doc:     `{"individuals": [{"id": 1, "gender": "M"}, {"id": 2, "gender": "F", "parents": [1, 1]}]}`,
			message: "lists parent 1 twice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Decode(strings.NewReader(tt.doc))
			require.NoError(t, err)

			err = f.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestTooManyParentsFixture(t *testing.T) {
	f, err := OpenFile(context.Background(), filepath.Join("testdata", "too_many_parents.json"))
	require.NoError(t, err)

	err = f.Validate()
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "more than two parents")

	_, err = Open(context.Background(), filepath.Join("testdata", "too_many_parents.json"), pedigree.DefaultFrequencies())
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	p, err := Parse(strings.NewReader(`{"condition": "sma", "individuals": [{"id": 1, "gender": "F", "race": "general"}]}`), pedigree.DefaultFrequencies())
	require.NoError(t, err)
	assert.Equal(t, "sma", p.Condition())
	assertClose(t, pedigree.HardyWeinberg(0.018), p.Individual(1).Probabilities)

	_, err = Parse(strings.NewReader(`{"individuals": [`), pedigree.DefaultFrequencies())
	assert.Error(t, err)
}

func TestWriteAndReopen(t *testing.T) {
	original := openFixture(t, "pku_three_generations.json")
	dir := t.TempDir()

	for _, name := range []string{"plain.json", "packed.json.gz", "packed.json.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, Write(path, FromPedigree(original, true)))

			f, err := OpenFile(context.Background(), path)
			require.NoError(t, err)
			require.Len(t, f.Individuals, original.Len())
			assert.InDeltaSlice(t, []float64{0, 0.5, 0.5, 0}, f.Individuals[4].Probabilities, 1e-12)

			p, err := Open(context.Background(), path, pedigree.DefaultFrequencies())
			require.NoError(t, err)
			p.UpdateAllProbabilities()

			for _, ind := range original.Individuals() {
				got := p.Individual(ind.ID)
				require.NotNil(t, got)
				assert.Equal(t, ind.Affected, got.Affected)
				assert.Equal(t, ind.Hypothetical, got.Hypothetical)
				assert.Equal(t, ind.Population, got.Population)
				assert.Equal(t, original.Parents(ind.ID), p.Parents(ind.ID))
				assert.Equal(t, original.Partner(ind.ID), p.Partner(ind.ID))
				assertClose(t, ind.Probabilities, got.Probabilities)
			}
		})
	}
}

func TestEncodeOmitsProbabilitiesByDefault(t *testing.T) {
	p := openFixture(t, "afflicted_sibling.json")

	var buf bytes.Buffer
	require.NoError(t, FromPedigree(p, false).Encode(&buf))
	assert.NotContains(t, buf.String(), "probabilities")
	assert.Contains(t, buf.String(), `"is_sexual_partner_of"`)
}

func TestCompressionFromPath(t *testing.T) {
	assert.Equal(t, CompressionGZIP, CompressionFromPath("a.json.gz"))
	assert.Equal(t, CompressionZStandard, CompressionFromPath("gs://b/a.json.zst"))
	assert.Equal(t, CompressionDisabled, CompressionFromPath("a.json"))
	assert.Equal(t, "CompressionZStandard", CompressionZStandard.String())
}

func TestSplitGSPath(t *testing.T) {
	bucket, object, err := splitGSPath("gs://families/cohort/ped.json.gz")
	require.NoError(t, err)
	assert.Equal(t, "families", bucket)
	assert.Equal(t, "cohort/ped.json.gz", object)

	_, _, err = splitGSPath("gs://families")
	assert.Error(t, err)
	_, _, err = splitGSPath("gs:///ped.json")
	assert.Error(t, err)
}
