package pedigree

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownIndividual indicates an ID that this Pedigree never issued.
	ErrUnknownIndividual = errors.New("pedigree: unknown individual")

	// ErrSelfParent indicates an attempt to make someone their own parent.
	ErrSelfParent = errors.New("pedigree: individual cannot be their own parent")

	// ErrSelfPartner indicates an attempt to partner someone with themselves.
	ErrSelfPartner = errors.New("pedigree: individual cannot be their own partner")

	// ErrTooManyParents indicates a third parent for a child.
	ErrTooManyParents = errors.New("pedigree: child already has two parents")
)

// Pedigree owns a set of Individuals and the relations between them.
// Individuals are stored in an arena indexed by ID and relations are kept as
// ID adjacency lists, so there are no pointer cycles.
type Pedigree struct {
	condition string
	table     *FrequencyTable

	// Index 0 of every slice is unused so that an ID is its own index.
	individuals []*Individual
	parents     [][]ID
	children    [][]ID
	partner     []ID

	// order caches a parent-before-child ordering; nil when stale.
	order []ID
}

// New creates an empty pedigree for one condition. The table seeds founders
// that are given a population.
func New(condition string, table *FrequencyTable) *Pedigree {
	return &Pedigree{
		condition:   condition,
		table:       table,
		individuals: []*Individual{nil},
		parents:     [][]ID{nil},
		children:    [][]ID{nil},
		partner:     []ID{0},
	}
}

// Condition is the condition key selecting a FrequencyTable row.
func (p *Pedigree) Condition() string {
	return p.condition
}

// Table is the frequency table this pedigree was built with.
func (p *Pedigree) Table() *FrequencyTable {
	return p.table
}

// Len is the number of individuals.
func (p *Pedigree) Len() int {
	return len(p.individuals) - 1
}

// AddIndividual creates a new Individual with the next ID and a uniform
// distribution.
func (p *Pedigree) AddIndividual(gender Gender) *Individual {
	ind := newIndividual(ID(len(p.individuals)), gender)
	p.individuals = append(p.individuals, ind)
	p.parents = append(p.parents, nil)
	p.children = append(p.children, nil)
	p.partner = append(p.partner, 0)
	p.order = nil

	return ind
}

// Individual returns the member with the given ID, or nil.
func (p *Pedigree) Individual(id ID) *Individual {
	if !p.has(id) {
		return nil
	}
	return p.individuals[id]
}

// Individuals returns all members in ID order.
func (p *Pedigree) Individuals() []*Individual {
	out := make([]*Individual, 0, p.Len())
	out = append(out, p.individuals[1:]...)
	return out
}

// Parents returns the recorded parents of id in insertion order.
func (p *Pedigree) Parents(id ID) []ID {
	if !p.has(id) {
		return nil
	}
	return append([]ID(nil), p.parents[id]...)
}

// Children returns the recorded children of id.
func (p *Pedigree) Children(id ID) []ID {
	if !p.has(id) {
		return nil
	}
	return append([]ID(nil), p.children[id]...)
}

// Partner returns the current partner of id, or 0.
func (p *Pedigree) Partner(id ID) ID {
	if !p.has(id) {
		return 0
	}
	return p.partner[id]
}

// AddParentChild records parent as a parent of child. Once the child has two
// parents they become partners.
func (p *Pedigree) AddParentChild(parent, child ID) error {
	if !p.has(parent) || !p.has(child) {
		return fmt.Errorf("%w: parent %d, child %d", ErrUnknownIndividual, parent, child)
	}
	if parent == child {
		return fmt.Errorf("%w: %d", ErrSelfParent, child)
	}

	if !containsID(p.parents[child], parent) {
		if len(p.parents[child]) >= 2 {
			return fmt.Errorf("%w: %d", ErrTooManyParents, child)
		}
		p.parents[child] = append(p.parents[child], parent)
	}
	if !containsID(p.children[parent], child) {
		p.children[parent] = append(p.children[parent], child)
	}
	p.order = nil

	if ps := p.parents[child]; len(ps) == 2 {
		return p.AddPartnership(ps[0], ps[1])
	}

	return nil
}

// AddPartnership links a and b as partners. Partnerships are exclusive: any
// previous partner of either side loses its reciprocal link.
func (p *Pedigree) AddPartnership(a, b ID) error {
	if !p.has(a) || !p.has(b) {
		return fmt.Errorf("%w: partners %d and %d", ErrUnknownIndividual, a, b)
	}
	if a == b {
		return fmt.Errorf("%w: %d", ErrSelfPartner, a)
	}
	if p.partner[a] == b {
		return nil
	}
	if old := p.partner[a]; old != 0 {
		p.partner[old] = 0
	}
	if old := p.partner[b]; old != 0 {
		p.partner[old] = 0
	}
	p.partner[a] = b
	p.partner[b] = a

	return nil
}

// SetRace records the population of id. Founders that are not frozen are
// reseeded from the frequency table; an unknown condition or population
// leaves their probabilities as they are.
func (p *Pedigree) SetRace(id ID, population string) error {
	ind := p.Individual(id)
	if ind == nil {
		return fmt.Errorf("%w: %d", ErrUnknownIndividual, id)
	}
	ind.Population = population

	if !p.IsFounder(id) || ind.Frozen || population == "" {
		return nil
	}
	if q, ok := p.table.Frequency(p.condition, population); ok {
		ind.setFromFrequency(q)
	}

	return nil
}

// SiblingsOf returns the full siblings of id: other children of both of its
// parents.
func (p *Pedigree) SiblingsOf(id ID) []ID {
	if !p.has(id) || len(p.parents[id]) != 2 {
		return nil
	}
	p1, p2 := p.parents[id][0], p.parents[id][1]

	var out []ID
	for _, c := range p.children[p1] {
		if c != id && containsID(p.children[p2], c) {
			out = append(out, c)
		}
	}

	return out
}

// Founders returns the IDs of all individuals without recorded parents.
func (p *Pedigree) Founders() []ID {
	var out []ID
	for id := ID(1); int(id) < len(p.individuals); id++ {
		if p.IsFounder(id) {
			out = append(out, id)
		}
	}
	return out
}

// IsFounder is true for individuals with no recorded parents.
func (p *Pedigree) IsFounder(id ID) bool {
	return p.has(id) && len(p.parents[id]) == 0
}

func (p *Pedigree) has(id ID) bool {
	return id > 0 && int(id) < len(p.individuals)
}

func containsID(ids []ID, id ID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
