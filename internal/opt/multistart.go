package opt

import (
	"math"

	"github.com/sourcegraph/conc/pool"
)

type startOrder struct {
	items ItemOrder
	bins  BinOrder
}

// startOrders is the FirstFit part of the multi-start schedule. Greedy is
// appended as the last start.
var startOrders = []startOrder{
	{ItemsByRatio, BinsByCapacity},
	{ItemsByProfit, BinsByCost},
	{ItemsByWeight, BinsByValue},
	{ItemsByRatio, BinsByCapacity},
	{ItemsByProfit, BinsByCost},
	{ItemsByWeight, BinsByValue},
	{ItemsByRatio, BinsByCapacity},
	{ItemsByProfit, BinsByCost},
	{ItemsByWeight, BinsByValue},
}

// startingPoints builds the ten constructive starts in schedule order.
func startingPoints(inst Instance) []Solution {
	out := make([]Solution, 0, len(startOrders)+1)
	for _, o := range startOrders {
		out = append(out, FirstFit(inst.Items, inst.Bins, inst.Budget, o.items, o.bins))
	}
	return append(out, Greedy(inst.Items, inst.Bins, inst.Budget))
}

// multiStart refines every starting point with nb and keeps the best. With
// workers > 1 the refinements run on a bounded goroutine pool; results are
// collected by start index, so the winner is the same as in a sequential
// run: lowest objective, earliest start on ties.
func multiStart(inst Instance, nb neighborhood, maxIter, workers int) (Solution, Stats) {
	starts := startingPoints(inst)
	refined := make([]Solution, len(starts))
	stats := make([]Stats, len(starts))
	run := func(i int) {
		stats[i].Starts = 1
		refined[i] = improve(starts[i], inst, nb, maxIter, &stats[i])
	}
	if workers > 1 {
		p := pool.New().WithMaxGoroutines(workers)
		for i := range starts {
			p.Go(func() { run(i) })
		}
		p.Wait()
	} else {
		for i := range starts {
			run(i)
		}
	}

	total := Stats{StartObjective: math.Inf(1)}
	best, bestVal := 0, math.Inf(1)
	for i := range starts {
		total.merge(stats[i])
		total.StartObjective = math.Min(total.StartObjective, starts[i].Objective(inst.Items))
		if v := refined[i].Objective(inst.Items); i == 0 || v < bestVal {
			best, bestVal = i, v
		}
	}
	total.BestObjective = bestVal
	return refined[best], total
}

// refine runs one more improvement loop over an orchestrated result.
func refine(sol Solution, st Stats, inst Instance, nb neighborhood, maxIter int) (Solution, Stats) {
	out := improve(sol, inst, nb, maxIter, &st)
	st.BestObjective = out.Objective(inst.Items)
	return out, st
}

// GRASP refines the ten starting points by bin substitution and returns the
// best.
func GRASP(items []Item, bins []Bin, budget float64, maxIter int) Solution {
	sol, _ := multiStart(newInstance(items, bins, budget), substitutions, maxIter, 1)
	return sol
}

// LNS refines the ten starting points by destroy and repair and returns the
// best.
func LNS(items []Item, bins []Bin, budget float64, maxIter int) Solution {
	sol, _ := multiStart(newInstance(items, bins, budget), destroyRepair, maxIter, 1)
	return sol
}

// LNSLocalSearch runs LNS, then bin substitution on its result.
func LNSLocalSearch(items []Item, bins []Bin, budget float64, maxIter int) Solution {
	inst := newInstance(items, bins, budget)
	sol, st := multiStart(inst, destroyRepair, maxIter, 1)
	sol, _ = refine(sol, st, inst, substitutions, maxIter)
	return sol
}

// GRASPLargeSearch runs GRASP, then destroy and repair on its result.
func GRASPLargeSearch(items []Item, bins []Bin, budget float64, maxIter int) Solution {
	inst := newInstance(items, bins, budget)
	sol, st := multiStart(inst, substitutions, maxIter, 1)
	sol, _ = refine(sol, st, inst, destroyRepair, maxIter)
	return sol
}
