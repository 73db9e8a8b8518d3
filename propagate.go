package pedigree

// UpdateAllProbabilities recomputes every non-frozen individual after a
// structural or evidentiary change. It runs four passes in order:
//
//  1. forward: each two-parent individual is convolved from its parents, in
//     parent-before-child order;
//  2. obligate carriers: every non-affected, non-frozen parent of an affected
//     child is forced to a certain heterozygote, snapshot included;
//  3. forward again, so descendants of the corrected parents see the change;
//     corrected parents keep their forced value;
//  4. siblings: non-affected full siblings of each affected child are derived
//     again from the corrected parents. Real siblings are observed to be
//     unaffected and are conditioned on it; hypothetical siblings keep the
//     plain recurrence risk.
func (p *Pedigree) UpdateAllProbabilities() {
	p.forwardPass(nil)
	carriers := p.correctObligateCarriers()
	p.forwardPass(carriers)
	p.rederiveSiblings(carriers)
}

func (p *Pedigree) forwardPass(pinned map[ID]bool) {
	for _, id := range p.topologicalOrder() {
		if pinned[id] {
			continue
		}
		ps := p.parents[id]
		if len(ps) != 2 {
			continue
		}
		p.individuals[id].CalculateFromParents(p.individuals[ps[0]], p.individuals[ps[1]])
	}
}

// correctObligateCarriers returns the set of parents it forced.
func (p *Pedigree) correctObligateCarriers() map[ID]bool {
	carriers := make(map[ID]bool)

	for _, child := range p.individuals[1:] {
		if !child.Affected || len(p.parents[child.ID]) != 2 {
			continue
		}
		for _, pid := range p.parents[child.ID] {
			parent := p.individuals[pid]
			if parent.Affected || parent.Frozen {
				continue
			}
			parent.setProbabilities(ObligateCarrier)
			parent.snapshot()
			carriers[pid] = true
		}
	}

	return carriers
}

func (p *Pedigree) rederiveSiblings(carriers map[ID]bool) {
	for _, child := range p.individuals[1:] {
		if !child.Affected || len(p.parents[child.ID]) != 2 {
			continue
		}
		p1 := p.individuals[p.parents[child.ID][0]]
		p2 := p.individuals[p.parents[child.ID][1]]

		for _, sid := range p.SiblingsOf(child.ID) {
			sib := p.individuals[sid]
			if sib.Affected || sib.Frozen || carriers[sid] {
				continue
			}

			// Sibling parent order can differ from the affected child's.
			if sp := p.parents[sid]; sp[0] == p1.ID {
				sib.CalculateFromParents(p1, p2)
			} else {
				sib.CalculateFromParents(p2, p1)
			}
			if !sib.Hypothetical {
				sib.setProbabilities(sib.Probabilities.ConditionUnaffected())
			}
			sib.snapshot()
		}
	}
}

// topologicalOrder lists every individual so that parents come before their
// children. Ties keep ID order. The result is cached until the structure
// changes.
func (p *Pedigree) topologicalOrder() []ID {
	if p.order != nil {
		return p.order
	}

	n := len(p.individuals)
	pending := make([]int, n)
	var queue []ID
	for id := ID(1); int(id) < n; id++ {
		pending[id] = len(p.parents[id])
		if pending[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]ID, 0, n-1)
	seen := make([]bool, n)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		seen[id] = true

		for _, c := range p.children[id] {
			pending[c]--
			if pending[c] == 0 {
				queue = append(queue, c)
			}
		}
	}

	// Cycles are rejected by whoever builds the graph; anything left over is
	// still visited once so that a bad graph cannot hang propagation.
	for id := ID(1); int(id) < n; id++ {
		if !seen[id] {
			order = append(order, id)
		}
	}

	p.order = order
	return order
}

// ResetProbabilities restores every individual's snapshot.
func (p *Pedigree) ResetProbabilities() {
	for _, ind := range p.individuals[1:] {
		ind.Probabilities = ind.OriginalProbabilities
	}
}

// Snapshot holds the probability state of a whole pedigree.
type Snapshot struct {
	probabilities []Probabilities
	originals     []Probabilities
}

// Snapshot captures every individual's current and snapshot probabilities.
func (p *Pedigree) Snapshot() Snapshot {
	s := Snapshot{
		probabilities: make([]Probabilities, len(p.individuals)),
		originals:     make([]Probabilities, len(p.individuals)),
	}
	for _, ind := range p.individuals[1:] {
		s.probabilities[ind.ID] = ind.Probabilities
		s.originals[ind.ID] = ind.OriginalProbabilities
	}
	return s
}

// Restore puts back a state captured by Snapshot. Individuals added after
// the snapshot are left as they are.
func (p *Pedigree) Restore(s Snapshot) {
	for _, ind := range p.individuals[1:] {
		if int(ind.ID) >= len(s.probabilities) {
			continue
		}
		ind.Probabilities = s.probabilities[ind.ID]
		ind.OriginalProbabilities = s.originals[ind.ID]
	}
}
