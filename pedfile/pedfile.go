// Package pedfile reads and writes pedigrees in the JSON exchange format:
//
//	{
//	  "condition": "cf",
//	  "individuals": [
//	    {"id": 1, "gender": "M", "race": "general", "is_sexual_partner_of": [2]},
//	    {"id": 2, "gender": "F", "race": "general", "is_sexual_partner_of": [1]},
//	    {"id": 3, "gender": "M", "parents": [1, 2], "affected": true}
//	  ]
//	}
//
// Files may be gzip or zstd compressed and may live on local disk or in
// Google Cloud Storage (gs://bucket/object).
package pedfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/carbocation/pedigree"
	"github.com/carbocation/pfx"
)

// ErrInvalid is wrapped by every structural problem Validate finds.
var ErrInvalid = errors.New("pedfile: invalid pedigree")

// File is the decoded form of a pedigree document.
type File struct {
	Condition   string   `json:"condition"`
	Individuals []Record `json:"individuals"`
}

// Record is one individual in a File. IDs are local to the file.
type Record struct {
	ID           int    `json:"id"`
	Gender       string `json:"gender"`
	Race         string `json:"race,omitempty"`
	Parents      []int  `json:"parents,omitempty"`
	Affected     bool   `json:"affected,omitempty"`
	Hypothetical bool   `json:"hypothetical,omitempty"`
	PartnerOf    []int  `json:"is_sexual_partner_of,omitempty"`

	// Probabilities is written for reports and ignored on input.
	Probabilities []float64 `json:"probabilities,omitempty"`
}

// DefaultCondition is used when a file names none.
const DefaultCondition = "cf"

// Decode reads a File without validating it.
func Decode(r io.Reader) (*File, error) {
	f := &File{}
	if err := json.NewDecoder(r).Decode(f); err != nil {
		return nil, pfx.Err(err)
	}
	if f.Condition == "" {
		f.Condition = DefaultCondition
	}
	return f, nil
}

// Validate checks the structure the inference engine relies on: unique IDs,
// known genders, at most two distinct known parents that are not the child
// itself, and reciprocal partner links between distinct individuals.
func (f *File) Validate() error {
	byID := make(map[int]*Record, len(f.Individuals))
	for i := range f.Individuals {
		rec := &f.Individuals[i]
		if _, dup := byID[rec.ID]; dup {
			return fmt.Errorf("%w: duplicate id %d", ErrInvalid, rec.ID)
		}
		byID[rec.ID] = rec
	}

	for _, rec := range f.Individuals {
		if rec.Gender != string(pedigree.Male) && rec.Gender != string(pedigree.Female) {
			return fmt.Errorf("%w: individual %d has gender %q", ErrInvalid, rec.ID, rec.Gender)
		}

		if len(rec.Parents) > 2 {
			return fmt.Errorf("%w: individual %d has more than two parents", ErrInvalid, rec.ID)
		}
		if len(rec.Parents) == 2 && rec.Parents[0] == rec.Parents[1] {
			return fmt.Errorf("%w: individual %d lists parent %d twice", ErrInvalid, rec.ID, rec.Parents[0])
		}
		for _, pid := range rec.Parents {
			if pid == rec.ID {
				return fmt.Errorf("%w: individual %d is their own parent", ErrInvalid, rec.ID)
			}
			if _, ok := byID[pid]; !ok {
				return fmt.Errorf("%w: missing parent %d for individual %d", ErrInvalid, pid, rec.ID)
			}
		}

		for _, partner := range rec.PartnerOf {
			if partner == rec.ID {
				return fmt.Errorf("%w: individual %d is their own partner", ErrInvalid, rec.ID)
			}
			other, ok := byID[partner]
			if !ok {
				return fmt.Errorf("%w: individual %d lists unknown partner %d", ErrInvalid, rec.ID, partner)
			}
			if !containsInt(other.PartnerOf, rec.ID) {
				return fmt.Errorf("%w: partner link %d -> %d is not reciprocated", ErrInvalid, rec.ID, partner)
			}
		}
	}

	return nil
}

// Build creates a Pedigree from a validated File. The returned map takes
// file IDs to pedigree IDs. Populations are applied after the parent links
// exist, so only true founders are seeded from table.
func (f *File) Build(table *pedigree.FrequencyTable) (*pedigree.Pedigree, map[int]pedigree.ID, error) {
	p := pedigree.New(f.Condition, table)
	ids := make(map[int]pedigree.ID, len(f.Individuals))

	for _, rec := range f.Individuals {
		ind := p.AddIndividual(pedigree.Gender(rec.Gender))
		ids[rec.ID] = ind.ID
		if rec.Affected {
			ind.SetAffected(true)
		}
		ind.Hypothetical = rec.Hypothetical
	}

	for _, rec := range f.Individuals {
		for _, pid := range rec.Parents {
			if err := p.AddParentChild(ids[pid], ids[rec.ID]); err != nil {
				return nil, nil, pfx.Err(err)
			}
		}
		for _, partner := range rec.PartnerOf {
			if err := p.AddPartnership(ids[rec.ID], ids[partner]); err != nil {
				return nil, nil, pfx.Err(err)
			}
		}
	}

	for _, rec := range f.Individuals {
		if rec.Race == "" {
			continue
		}
		if err := p.SetRace(ids[rec.ID], rec.Race); err != nil {
			return nil, nil, pfx.Err(err)
		}
	}

	return p, ids, nil
}

// Parse decodes, validates and builds a pedigree.
func Parse(r io.Reader, table *pedigree.FrequencyTable) (*pedigree.Pedigree, error) {
	f, err := Decode(r)
	if err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	p, _, err := f.Build(table)
	return p, err
}

// FromPedigree converts p back into a File, using pedigree IDs as file IDs.
// With probabilities set, each record also carries its current distribution.
func FromPedigree(p *pedigree.Pedigree, probabilities bool) *File {
	f := &File{Condition: p.Condition()}

	for _, ind := range p.Individuals() {
		rec := Record{
			ID:           int(ind.ID),
			Gender:       string(ind.Gender),
			Race:         ind.Population,
			Affected:     ind.Affected,
			Hypothetical: ind.Hypothetical,
		}
		if parents := p.Parents(ind.ID); len(parents) == 2 {
			rec.Parents = []int{int(parents[0]), int(parents[1])}
		}
		if partner := p.Partner(ind.ID); partner != 0 {
			rec.PartnerOf = []int{int(partner)}
		}
		if probabilities {
			rec.Probabilities = append([]float64(nil), ind.Probabilities[:]...)
		}
		f.Individuals = append(f.Individuals, rec)
	}

	return f
}

// Encode writes f as indented JSON.
func (f *File) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return pfx.Err(err)
	}
	return nil
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
