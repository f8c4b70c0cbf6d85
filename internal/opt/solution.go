package opt

import (
	"fmt"
	"math"
)

// capacityEps absorbs floating point drift from incremental residual updates.
const capacityEps = 1e-9

// Solution is an immutable snapshot of rented bins, the item placement and
// the budget left after paying every rented bin.
type Solution struct {
	Bins      []Bin             // rented bins, each holding at least one item
	Assign    map[string]string // item id -> bin id
	BudgetRes float64
}

// Assignment is one item -> bin pair of a solution.
type Assignment struct {
	Item string `json:"item"`
	Bin  string `json:"bin"`
}

// NewSolution keeps the bins that hold items and derives the item map from
// them. The bins are copied; later changes to the argument are not seen.
func NewSolution(bins []Bin, budgetRes float64) Solution {
	sol := Solution{Assign: map[string]string{}, BudgetRes: budgetRes}
	for _, b := range bins {
		if len(b.Items) == 0 {
			continue
		}
		c := b.Clone()
		sol.Bins = append(sol.Bins, c)
		for _, it := range c.Items {
			sol.Assign[it.ID] = c.ID
		}
	}
	return sol
}

// FromAssignment scores an externally produced placement, such as the output
// of an exact solver. The residual budget is the instance budget minus the
// cost of every bin that received an item.
func FromAssignment(inst Instance, assign map[string]string) (Solution, error) {
	pool := newPool(freshBins(inst.Bins), inst.Budget)
	known := make(map[string]struct{}, len(inst.Items))
	for _, it := range inst.Items {
		known[it.ID] = struct{}{}
		binID, ok := assign[it.ID]
		if !ok || binID == "" {
			continue
		}
		i, ok := pool.lookup(binID)
		if !ok {
			return Solution{}, fmt.Errorf("item %s: unknown bin %q", it.ID, binID)
		}
		pool.rent(i)
		pool.place(i, it)
	}
	for itemID := range assign {
		if _, ok := known[itemID]; !ok {
			return Solution{}, fmt.Errorf("unknown item %q", itemID)
		}
	}
	return pool.solution(), nil
}

// IsValid checks, in order: budget, per-bin capacity, and that every
// compulsory item of the master list is placed.
func (s Solution) IsValid(items []Item) bool {
	if s.BudgetRes < 0 {
		return false
	}
	for _, b := range s.Bins {
		load := 0.0
		for _, it := range b.Items {
			load += it.Weight
		}
		if load > b.Capacity+capacityEps {
			return false
		}
	}
	for _, it := range items {
		if it.Compulsory && !s.Has(it.ID) {
			return false
		}
	}
	return true
}

// Violations explains IsValid == false, one entry per broken constraint.
func (s Solution) Violations(items []Item) []string {
	out := []string{}
	if s.BudgetRes < 0 {
		out = append(out, fmt.Sprintf("budget exceeded by %g", -s.BudgetRes))
	}
	for _, b := range s.Bins {
		load := 0.0
		for _, it := range b.Items {
			load += it.Weight
		}
		if load > b.Capacity+capacityEps {
			out = append(out, fmt.Sprintf("bin %s: load %g over capacity %g", b.ID, load, b.Capacity))
		}
	}
	for _, it := range items {
		if it.Compulsory && !s.Has(it.ID) {
			out = append(out, fmt.Sprintf("compulsory item %s not placed", it.ID))
		}
	}
	return out
}

// Objective is rental cost minus optional profit, or +Inf when the solution
// violates any constraint. Lower is better.
func (s Solution) Objective(items []Item) float64 {
	if !s.IsValid(items) {
		return math.Inf(1)
	}
	return s.TotalCost() - s.Profit()
}

// Has reports whether the item is placed.
func (s Solution) Has(itemID string) bool {
	_, ok := s.Assign[itemID]
	return ok
}

// TotalCost sums the rental cost of the rented bins.
func (s Solution) TotalCost() float64 {
	total := 0.0
	for _, b := range s.Bins {
		total += b.Cost
	}
	return total
}

// Profit sums the profit of placed optional items.
func (s Solution) Profit() float64 {
	total := 0.0
	for _, b := range s.Bins {
		for _, it := range b.Items {
			if !it.Compulsory {
				total += it.Profit
			}
		}
	}
	return total
}

// PackedWeight sums the weight of every placed item.
func (s Solution) PackedWeight() float64 {
	total := 0.0
	for _, b := range s.Bins {
		total += b.Load()
	}
	return total
}

// Rented reports whether the bin is part of the solution.
func (s Solution) Rented(binID string) bool {
	for _, b := range s.Bins {
		if b.ID == binID {
			return true
		}
	}
	return false
}

// Pairs lists the placement bin by bin, in the order items were packed.
func (s Solution) Pairs() []Assignment {
	out := make([]Assignment, 0, len(s.Assign))
	for _, b := range s.Bins {
		for _, it := range b.Items {
			out = append(out, Assignment{Item: it.ID, Bin: b.ID})
		}
	}
	return out
}

// cloneBins deep-copies the rented bins so a neighbour can be edited.
func (s Solution) cloneBins() []Bin {
	out := make([]Bin, len(s.Bins))
	for i, b := range s.Bins {
		out[i] = b.Clone()
	}
	return out
}
