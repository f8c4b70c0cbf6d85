package opt

import (
	"cmp"
	"slices"
)

// neighborhood builds every neighbour of s. Neighbours never share storage
// with s.
type neighborhood func(s Solution, inst Instance) []Solution

// substitutions moves the whole content of one rented bin into a fresh copy
// of a cheaper catalog bin that is not rented yet and can hold the load. The
// budget is credited with the cost difference.
func substitutions(s Solution, inst Instance) []Solution {
	var out []Solution
	for bi, b := range s.Bins {
		load := b.Load()
		for _, o := range inst.Bins {
			if o.ID == b.ID || s.Rented(o.ID) {
				continue
			}
			if o.Capacity+capacityEps < load || o.Cost >= b.Cost {
				continue
			}
			bins := s.cloneBins()
			nb := o.Fresh()
			for _, it := range b.Items {
				nb.Add(it)
			}
			bins[bi] = nb
			out = append(out, NewSolution(bins, s.BudgetRes+b.Cost-o.Cost))
		}
	}
	return out
}

// destroyRepair yields one neighbour per rented bin: the bin drops its
// optional items and is refilled with unplaced items by descending profit,
// each taken while it fits. A bin left empty goes back to the pool and its
// cost is refunded.
func destroyRepair(s Solution, inst Instance) []Solution {
	var unplaced []Item
	for _, it := range inst.Items {
		if !s.Has(it.ID) {
			unplaced = append(unplaced, it)
		}
	}
	slices.SortStableFunc(unplaced, func(a, b Item) int { return cmp.Compare(b.Profit, a.Profit) })

	out := make([]Solution, 0, len(s.Bins))
	for bi := range s.Bins {
		bins := s.cloneBins()
		b := &bins[bi]
		kept := b.Items
		b.Reset()
		for _, it := range kept {
			if it.Compulsory {
				b.Add(it)
			}
		}
		for _, it := range unplaced {
			if b.Fits(it) {
				b.Add(it)
			}
		}
		budget := s.BudgetRes
		if len(b.Items) == 0 {
			budget += b.Cost
		}
		out = append(out, NewSolution(bins, budget))
	}
	return out
}
