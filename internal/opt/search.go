package opt

// DefaultMaxIter bounds every improvement loop when Options.MaxIter is unset.
const DefaultMaxIter = 1000

// Stats describes one solver call. Objectives are +Inf for infeasible
// solutions.
type Stats struct {
	Starts             int
	Iterations         int
	Improvements       int
	NeighborsEvaluated int
	StartObjective     float64
	BestObjective      float64
}

func (s *Stats) merge(o Stats) {
	s.Starts += o.Starts
	s.Iterations += o.Iterations
	s.Improvements += o.Improvements
	s.NeighborsEvaluated += o.NeighborsEvaluated
}

// improve runs steepest descent over nb from start. It moves to the best
// neighbour only when that neighbour is strictly better, and stops when the
// neighbourhood is empty, nothing improves, or maxIter rounds have run.
func improve(start Solution, inst Instance, nb neighborhood, maxIter int, st *Stats) Solution {
	if maxIter <= 0 {
		maxIter = DefaultMaxIter
	}
	cur := start
	curVal := cur.Objective(inst.Items)
	for i := 0; i < maxIter; i++ {
		st.Iterations++
		ns := nb(cur, inst)
		st.NeighborsEvaluated += len(ns)
		if len(ns) == 0 {
			break
		}
		best, bestVal := ns[0], ns[0].Objective(inst.Items)
		for _, n := range ns[1:] {
			if v := n.Objective(inst.Items); v < bestVal {
				best, bestVal = n, v
			}
		}
		if !(bestVal < curVal) {
			break
		}
		cur, curVal = best, bestVal
		st.Improvements++
	}
	return cur
}

// LocalSearch refines FirstFit with default orders by bin substitution.
func LocalSearch(items []Item, bins []Bin, budget float64, maxIter int) Solution {
	sol, _ := localSearch(newInstance(items, bins, budget), maxIter)
	return sol
}

func localSearch(inst Instance, maxIter int) (Solution, Stats) {
	start := FirstFit(inst.Items, inst.Bins, inst.Budget, ItemsByRatio, BinsByCapacity)
	st := Stats{Starts: 1, StartObjective: start.Objective(inst.Items)}
	sol := improve(start, inst, substitutions, maxIter, &st)
	st.BestObjective = sol.Objective(inst.Items)
	return sol, st
}

func newInstance(items []Item, bins []Bin, budget float64) Instance {
	return Instance{Items: cloneItems(items), Bins: freshBins(bins), Budget: budget}
}
