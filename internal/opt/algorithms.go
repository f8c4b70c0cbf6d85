package opt

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrUnknownAlgorithm is returned by Solve for names outside the registry.
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// Registered algorithm names.
const (
	AlgGreedy           = "greedy"
	AlgFirstFit         = "first_fit"
	AlgLocalSearch      = "local_search"
	AlgGRASP            = "grasp"
	AlgLNS              = "lns"
	AlgLNSLocalSearch   = "lns_local_search"
	AlgGRASPLargeSearch = "grasp_large_search"
)

// Options tune a Solve call. Zero values pick the defaults.
type Options struct {
	MaxIter   int
	ItemOrder ItemOrder // first_fit only
	BinOrder  BinOrder  // first_fit only
	Workers   int       // > 1 refines multi-start points concurrently
}

// Result is one solver call.
type Result struct {
	Algorithm string
	Solution  Solution
	Objective float64
	Feasible  bool
	Stats     Stats
	Elapsed   time.Duration
}

// AlgorithmInfo describes a registry entry.
type AlgorithmInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	MultiStart  bool   `json:"multiStart"`
}

type solver func(inst Instance, o Options) (Solution, Stats)

type entry struct {
	info AlgorithmInfo
	run  solver
}

var registry = []entry{
	{AlgorithmInfo{AlgGreedy, "capacity/cost ordered greedy construction", false}, solveGreedy},
	{AlgorithmInfo{AlgFirstFit, "first fit with profit-aware bin opening and a cheapen pass", false}, solveFirstFit},
	{AlgorithmInfo{AlgLocalSearch, "first fit refined by bin substitution", false}, solveLocalSearch},
	{AlgorithmInfo{AlgGRASP, "ten constructive starts refined by bin substitution", true}, solveGRASP},
	{AlgorithmInfo{AlgLNS, "ten constructive starts refined by destroy and repair", true}, solveLNS},
	{AlgorithmInfo{AlgLNSLocalSearch, "lns followed by bin substitution", true}, solveLNSLocalSearch},
	{AlgorithmInfo{AlgGRASPLargeSearch, "grasp followed by destroy and repair", true}, solveGRASPLargeSearch},
}

// Algorithms lists the registry in a fixed order.
func Algorithms() []AlgorithmInfo {
	out := make([]AlgorithmInfo, len(registry))
	for i, e := range registry {
		out[i] = e.info
	}
	return out
}

// Known reports whether name is registered.
func Known(name string) bool {
	_, ok := lookup(name)
	return ok
}

func lookup(name string) (entry, bool) {
	for _, e := range registry {
		if e.info.Name == name {
			return e, true
		}
	}
	return entry{}, false
}

// Solve runs the named algorithm on a private copy of inst and records its
// stats in the metrics store.
func Solve(name string, inst Instance, o Options) (Result, error) {
	e, ok := lookup(name)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
	if o.MaxIter <= 0 {
		o.MaxIter = DefaultMaxIter
	}
	if o.ItemOrder == "" {
		o.ItemOrder = ItemsByRatio
	}
	if o.BinOrder == "" {
		o.BinOrder = BinsByCapacity
	}
	work := newInstance(inst.Items, inst.Bins, inst.Budget)
	t0 := time.Now()
	sol, st := e.run(work, o)
	res := Result{
		Algorithm: name,
		Solution:  sol,
		Objective: sol.Objective(work.Items),
		Stats:     st,
		Elapsed:   time.Since(t0),
	}
	res.Feasible = !math.IsInf(res.Objective, 1)
	RecordMetrics(name, res)
	return res, nil
}

func constructed(sol Solution, inst Instance) (Solution, Stats) {
	v := sol.Objective(inst.Items)
	return sol, Stats{Starts: 1, StartObjective: v, BestObjective: v}
}

func solveGreedy(inst Instance, _ Options) (Solution, Stats) {
	return constructed(Greedy(inst.Items, inst.Bins, inst.Budget), inst)
}

func solveFirstFit(inst Instance, o Options) (Solution, Stats) {
	return constructed(FirstFit(inst.Items, inst.Bins, inst.Budget, o.ItemOrder, o.BinOrder), inst)
}

func solveLocalSearch(inst Instance, o Options) (Solution, Stats) {
	return localSearch(inst, o.MaxIter)
}

func solveGRASP(inst Instance, o Options) (Solution, Stats) {
	return multiStart(inst, substitutions, o.MaxIter, o.Workers)
}

func solveLNS(inst Instance, o Options) (Solution, Stats) {
	return multiStart(inst, destroyRepair, o.MaxIter, o.Workers)
}

func solveLNSLocalSearch(inst Instance, o Options) (Solution, Stats) {
	sol, st := multiStart(inst, destroyRepair, o.MaxIter, o.Workers)
	return refine(sol, st, inst, substitutions, o.MaxIter)
}

func solveGRASPLargeSearch(inst Instance, o Options) (Solution, Stats) {
	sol, st := multiStart(inst, substitutions, o.MaxIter, o.Workers)
	return refine(sol, st, inst, destroyRepair, o.MaxIter)
}
