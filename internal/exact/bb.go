// Package exact is a depth-first branch and bound oracle for small
// instances. It exists to measure how far the heuristics are from the
// optimum; it is not used to serve solve requests.
package exact

import (
	"cmp"
	"context"
	"errors"
	"math"
	"slices"
	"time"

	"binrent/internal/opt"
)

// ErrNoSolution means no feasible assignment was found within the limits.
var ErrNoSolution = errors.New("exact: no feasible solution found")

const (
	eps            = 1e-9
	checkEvery     = 1024
	DefaultNodes   = 5_000_000
	DefaultTimeout = 30 * time.Second
)

// Options bound the search. Zero values pick the defaults.
type Options struct {
	NodeLimit int
	TimeLimit time.Duration
	// Incumbent seeds the upper bound. When nil the best GRASP solution is
	// used.
	Incumbent *opt.Solution
}

// Result is the best assignment found. Optimal is set when the search tree
// was exhausted, so the objective is proven minimal.
type Result struct {
	Solution  opt.Solution
	Objective float64
	Optimal   bool
	Nodes     int
	Elapsed   time.Duration
}

// engine keeps the search state in flat slices indexed by item and bin slot.
type engine struct {
	ctx context.Context

	items  []opt.Item
	bins   []opt.Bin
	suffix []float64 // optional profit still available from item k on

	residual []float64
	used     []bool
	assign   []int // item slot -> bin slot, -1 when unplaced
	budget   float64
	cost     float64
	profit   float64

	best       float64
	bestAssign []int

	nodes     int
	nodeLimit int
	deadline  time.Time
	stopped   bool
}

// Solve searches every item -> bin-or-none decision. Compulsory items are
// branched first, heaviest first; optional items follow by profit per
// weight and also try the "left out" branch. A node is pruned when
// cost - (profit + remaining optional profit) cannot beat the incumbent.
// Identical unrented bins are interchangeable, so only the first of each
// (capacity, cost) class is tried.
func Solve(ctx context.Context, inst opt.Instance, o Options) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	t0 := time.Now()
	if o.NodeLimit <= 0 {
		o.NodeLimit = DefaultNodes
	}
	if o.TimeLimit <= 0 {
		o.TimeLimit = DefaultTimeout
	}

	e := newEngine(ctx, inst, o)
	if o.Incumbent == nil {
		seed := opt.GRASP(inst.Items, inst.Bins, inst.Budget, opt.DefaultMaxIter)
		o.Incumbent = &seed
	}
	e.seed(*o.Incumbent, inst)
	e.search(0)

	res := Result{Nodes: e.nodes, Optimal: !e.stopped, Elapsed: time.Since(t0)}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	if math.IsInf(e.best, 1) {
		return res, ErrNoSolution
	}
	sol, err := opt.FromAssignment(inst, e.assignment())
	if err != nil {
		return res, err
	}
	res.Solution = sol
	res.Objective = sol.Objective(inst.Items)
	return res, nil
}

func newEngine(ctx context.Context, inst opt.Instance, o Options) *engine {
	items := slices.Clone(inst.Items)
	slices.SortStableFunc(items, func(a, b opt.Item) int {
		if a.Compulsory != b.Compulsory {
			if a.Compulsory {
				return -1
			}
			return 1
		}
		if a.Compulsory {
			return cmp.Compare(b.Weight, a.Weight)
		}
		return cmp.Compare(b.Ratio(), a.Ratio())
	})
	suffix := make([]float64, len(items)+1)
	for k := len(items) - 1; k >= 0; k-- {
		suffix[k] = suffix[k+1]
		if !items[k].Compulsory {
			suffix[k] += items[k].Profit
		}
	}
	bins := make([]opt.Bin, len(inst.Bins))
	residual := make([]float64, len(inst.Bins))
	for j, b := range inst.Bins {
		bins[j] = b.Fresh()
		residual[j] = b.Capacity
	}
	assign := make([]int, len(items))
	for k := range assign {
		assign[k] = -1
	}
	return &engine{
		ctx:       ctx,
		items:     items,
		bins:      bins,
		suffix:    suffix,
		residual:  residual,
		used:      make([]bool, len(bins)),
		assign:    assign,
		budget:    inst.Budget,
		best:      math.Inf(1),
		nodeLimit: o.NodeLimit,
		deadline:  time.Now().Add(o.TimeLimit),
	}
}

// seed installs a feasible heuristic solution as the incumbent.
func (e *engine) seed(sol opt.Solution, inst opt.Instance) {
	v := sol.Objective(inst.Items)
	if math.IsInf(v, 1) {
		return
	}
	slot := make(map[string]int, len(e.bins))
	for j, b := range e.bins {
		slot[b.ID] = j
	}
	best := make([]int, len(e.items))
	for k, it := range e.items {
		best[k] = -1
		if id, ok := sol.Assign[it.ID]; ok {
			j, ok := slot[id]
			if !ok {
				return
			}
			best[k] = j
		}
	}
	e.best, e.bestAssign = v, best
}

func (e *engine) halt() bool {
	if e.stopped {
		return true
	}
	e.nodes++
	if e.nodes >= e.nodeLimit {
		e.stopped = true
	} else if e.nodes%checkEvery == 0 && (time.Now().After(e.deadline) || e.ctx.Err() != nil) {
		e.stopped = true
	}
	return e.stopped
}

func (e *engine) search(k int) {
	if e.halt() {
		return
	}
	if e.cost-e.profit-e.suffix[k] >= e.best-eps {
		return
	}
	if k == len(e.items) {
		e.best = e.cost - e.profit
		e.bestAssign = slices.Clone(e.assign)
		return
	}
	it := e.items[k]
	for j := range e.bins {
		if e.residual[j]+eps < it.Weight {
			continue
		}
		opened := false
		if !e.used[j] {
			if e.bins[j].Cost > e.budget+eps || e.shadowed(j) {
				continue
			}
			e.used[j] = true
			e.budget -= e.bins[j].Cost
			e.cost += e.bins[j].Cost
			opened = true
		}
		e.residual[j] -= it.Weight
		e.assign[k] = j
		if !it.Compulsory {
			e.profit += it.Profit
		}

		e.search(k + 1)

		if !it.Compulsory {
			e.profit -= it.Profit
		}
		e.assign[k] = -1
		e.residual[j] += it.Weight
		if opened {
			e.used[j] = false
			e.budget += e.bins[j].Cost
			e.cost -= e.bins[j].Cost
		}
		if e.stopped {
			return
		}
	}
	if !it.Compulsory {
		e.search(k + 1)
	}
}

// shadowed reports whether an earlier unrented bin has the same capacity and
// cost as slot j.
func (e *engine) shadowed(j int) bool {
	for i := 0; i < j; i++ {
		if !e.used[i] && e.bins[i].Capacity == e.bins[j].Capacity && e.bins[i].Cost == e.bins[j].Cost {
			return true
		}
	}
	return false
}

func (e *engine) assignment() map[string]string {
	out := make(map[string]string, len(e.items))
	for k, j := range e.bestAssign {
		if j >= 0 {
			out[e.items[k].ID] = e.bins[j].ID
		}
	}
	return out
}
