package pedigree

// FreezeUninformativeFounders freezes founders that have no observed
// (non-hypothetical) descendant, so optimizers stop spending steps on
// individuals the likelihood cannot see. Nothing is frozen when no founder is
// informative at all.
func (p *Pedigree) FreezeUninformativeFounders() {
	informative := make(map[ID]bool)

	var stack []ID
	for _, ind := range p.individuals[1:] {
		if !ind.Hypothetical {
			stack = append(stack, ind.ID)
		}
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, parent := range p.parents[id] {
			if !informative[parent] {
				informative[parent] = true
				stack = append(stack, parent)
			}
		}
	}

	if len(informative) == 0 {
		return
	}

	for _, id := range p.Founders() {
		if !informative[id] {
			p.individuals[id].Frozen = true
		}
	}
}

// Generations assigns each individual reachable from a founder a level:
// founders are 0 and a child sits one below its deepest parent.
func (p *Pedigree) Generations() map[ID]int {
	levels := make(map[ID]int, p.Len())

	queue := p.Founders()
	for _, id := range queue {
		levels[id] = 0
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, c := range p.children[id] {
			next := levels[id] + 1
			if lvl, ok := levels[c]; !ok || next > lvl {
				levels[c] = next
				queue = append(queue, c)
			}
		}
	}

	return levels
}
