package opt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstitutionPreservesContent(t *testing.T) {
	inst := Instance{
		Items: []Item{
			{ID: "c1", Weight: 5, Compulsory: true},
			{ID: "o1", Profit: 7, Weight: 2},
		},
		Bins:   []Bin{NewBin("A", 1, 20, 100), NewBin("B", 2, 8, 30), NewBin("C", 3, 4, 10)},
		Budget: 200,
	}
	sol, err := FromAssignment(inst, map[string]string{"c1": "A", "o1": "A"})
	require.NoError(t, err)

	ns := substitutions(sol, inst)
	require.Len(t, ns, 1, "C is too small, A is the bin itself")
	n := ns[0]
	assert.True(t, n.Rented("B"))
	assert.False(t, n.Rented("A"))
	assert.InDelta(t, sol.PackedWeight(), n.PackedWeight(), 1e-9)
	assert.InDelta(t, sol.BudgetRes+70, n.BudgetRes, 1e-9)
	assert.True(t, n.IsValid(inst.Items))

	// the neighbour owns its bins
	assert.Equal(t, "A", sol.Assign["c1"])
	assert.True(t, sol.Rented("A"))
}

func TestSubstitutionSkipsRentedBins(t *testing.T) {
	inst := Instance{
		Items: []Item{
			{ID: "c1", Weight: 5, Compulsory: true},
			{ID: "c2", Weight: 5, Compulsory: true},
		},
		Bins:   []Bin{NewBin("A", 1, 10, 100), NewBin("B", 1, 10, 50)},
		Budget: 500,
	}
	sol, err := FromAssignment(inst, map[string]string{"c1": "A", "c2": "B"})
	require.NoError(t, err)
	assert.Empty(t, substitutions(sol, inst))
}

func TestLocalSearchImprovesOnCheapen(t *testing.T) {
	items := []Item{{ID: "c1", Weight: 5, Compulsory: true}}
	bins := []Bin{NewBin("A", 1, 20, 100), NewBin("B", 2, 10, 60), NewBin("C", 3, 8, 30)}

	start := FirstFit(items, bins, 500, ItemsByRatio, BinsByCapacity)
	require.True(t, start.Rented("B"))

	sol, st := localSearch(newInstance(items, bins, 500), 0)
	assert.True(t, sol.Rented("C"))
	assert.InDelta(t, 30.0, sol.Objective(items), 1e-9)
	assert.Equal(t, 1, st.Improvements)
	assert.InDelta(t, 60.0, st.StartObjective, 1e-9)
	assert.InDelta(t, 30.0, st.BestObjective, 1e-9)

	assert.Equal(t, sol, LocalSearch(items, bins, 500, 0))
}

func TestImproveStopsAtMaxIter(t *testing.T) {
	inst := Instance{
		Items: []Item{
			{ID: "c1", Weight: 5, Compulsory: true},
			{ID: "c2", Weight: 5, Compulsory: true},
		},
		Bins: []Bin{
			NewBin("A1", 1, 10, 100), NewBin("A2", 1, 10, 100),
			NewBin("C1", 2, 6, 30), NewBin("C2", 2, 6, 30),
		},
		Budget: 500,
	}
	start, err := FromAssignment(inst, map[string]string{"c1": "A1", "c2": "A2"})
	require.NoError(t, err)

	var one Stats
	sol := improve(start, inst, substitutions, 1, &one)
	assert.Equal(t, 1, one.Iterations)
	assert.InDelta(t, 130.0, sol.Objective(inst.Items), 1e-9)

	var full Stats
	sol = improve(start, inst, substitutions, 0, &full)
	assert.InDelta(t, 60.0, sol.Objective(inst.Items), 1e-9)
	assert.Equal(t, 2, full.Improvements)
	assert.LessOrEqual(t, full.Iterations, DefaultMaxIter)
}

func TestDestroyRepairRefillsByProfit(t *testing.T) {
	inst := Instance{
		Items: []Item{
			{ID: "c", Weight: 4, Compulsory: true},
			{ID: "o1", Profit: 1, Weight: 6},
			{ID: "o2", Profit: 50, Weight: 6},
		},
		Bins:   []Bin{NewBin("A", 1, 10, 5)},
		Budget: 100,
	}
	sol, err := FromAssignment(inst, map[string]string{"c": "A", "o1": "A"})
	require.NoError(t, err)

	ns := destroyRepair(sol, inst)
	require.Len(t, ns, 1)
	n := ns[0]
	assert.True(t, n.Has("c"))
	assert.True(t, n.Has("o2"))
	assert.False(t, n.Has("o1"))
	assert.InDelta(t, -45.0, n.Objective(inst.Items), 1e-9)
	assert.InDelta(t, sol.BudgetRes, n.BudgetRes, 1e-9)
	for _, b := range n.Bins {
		assert.LessOrEqual(t, b.Load(), b.Capacity)
	}
}

func TestDestroyRepairReleasesEmptiedBin(t *testing.T) {
	inst := Instance{
		Items: []Item{
			{ID: "o1", Profit: 1, Weight: 5},
			{ID: "o2", Profit: 100, Weight: 10},
		},
		Bins:   []Bin{NewBin("A", 1, 5, 5)},
		Budget: 20,
	}
	sol, err := FromAssignment(inst, map[string]string{"o1": "A"})
	require.NoError(t, err)

	var st Stats
	out := improve(sol, inst, destroyRepair, 0, &st)
	assert.Empty(t, out.Bins)
	assert.InDelta(t, 20.0, out.BudgetRes, 1e-9)
	assert.InDelta(t, 0.0, out.Objective(inst.Items), 1e-9)
}

func TestMultiStartParallelMatchesSequential(t *testing.T) {
	inst := mixedInstance()
	for _, nb := range []neighborhood{substitutions, destroyRepair} {
		seq, seqStats := multiStart(inst, nb, 0, 1)
		par, parStats := multiStart(inst, nb, 0, 4)
		assert.Equal(t, seq, par)
		assert.Equal(t, seqStats, parStats)
		assert.Equal(t, len(startOrders)+1, seqStats.Starts)
	}
}

func TestMultiStartBeatsEveryStart(t *testing.T) {
	inst := mixedInstance()
	grasp := GRASP(inst.Items, inst.Bins, inst.Budget, 0)
	lns := LNS(inst.Items, inst.Bins, inst.Budget, 0)
	for _, s := range startingPoints(inst) {
		assert.LessOrEqual(t, grasp.Objective(inst.Items), s.Objective(inst.Items))
		assert.LessOrEqual(t, lns.Objective(inst.Items), s.Objective(inst.Items))
	}
	assert.True(t, grasp.IsValid(inst.Items))
	assert.True(t, lns.IsValid(inst.Items))

	assert.LessOrEqual(t,
		GRASPLargeSearch(inst.Items, inst.Bins, inst.Budget, 0).Objective(inst.Items),
		grasp.Objective(inst.Items))
	assert.LessOrEqual(t,
		LNSLocalSearch(inst.Items, inst.Bins, inst.Budget, 0).Objective(inst.Items),
		lns.Objective(inst.Items))
}
