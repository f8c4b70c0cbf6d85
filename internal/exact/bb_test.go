package exact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"binrent/internal/opt"
)

func TestSolveFindsKnownOptimum(t *testing.T) {
	// Best plan: rent C (cost 30) for c1 and o2; o1 is not worth a bin.
	inst := opt.Instance{
		Items: []opt.Item{
			{ID: "c1", Weight: 4, Compulsory: true},
			{ID: "o1", Profit: 10, Weight: 6},
			{ID: "o2", Profit: 25, Weight: 4},
		},
		Bins: []opt.Bin{
			opt.NewBin("A", 1, 20, 100),
			opt.NewBin("B", 2, 6, 40),
			opt.NewBin("C", 3, 8, 30),
		},
		Budget: 200,
	}
	empty := opt.Solution{}
	res, err := Solve(context.Background(), inst, Options{Incumbent: &empty})
	require.NoError(t, err)
	assert.True(t, res.Optimal)
	assert.InDelta(t, 5.0, res.Objective, 1e-9)
	assert.Equal(t, "C", res.Solution.Assign["c1"])
	assert.Equal(t, "C", res.Solution.Assign["o2"])
	assert.False(t, res.Solution.Has("o1"))
}

func catalog() opt.Instance {
	return opt.Instance{
		Items: []opt.Item{
			{ID: "c1", Profit: 110, Weight: 8, Compulsory: true},
			{ID: "c2", Profit: 105, Weight: 5, Compulsory: true},
			{ID: "o1", Profit: 120, Weight: 3},
			{ID: "o2", Profit: 115, Weight: 7},
			{ID: "o3", Profit: 101, Weight: 6},
			{ID: "o4", Profit: 119, Weight: 4},
		},
		Bins: []opt.Bin{
			opt.NewBin("b1", 1, 20, 250),
			opt.NewBin("b2", 2, 12, 210),
			opt.NewBin("b3", 3, 9, 205),
			opt.NewBin("b4", 2, 12, 210),
			opt.NewBin("b5", 4, 6, 200),
			opt.NewBin("b6", 5, 18, 230),
		},
		Budget: 2500,
	}
}

func TestSolveNotWorseThanHeuristics(t *testing.T) {
	inst := catalog()
	res, err := Solve(context.Background(), inst, Options{})
	require.NoError(t, err)
	require.True(t, res.Optimal)
	assert.True(t, res.Solution.IsValid(inst.Items))

	for _, a := range opt.Algorithms() {
		h, err := opt.Solve(a.Name, inst, opt.Options{})
		require.NoError(t, err)
		assert.LessOrEqual(t, res.Objective, h.Objective+1e-9, a.Name)
	}
}

func TestSolveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	empty := opt.Solution{}
	_, err := Solve(ctx, catalog(), Options{Incumbent: &empty})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSolveInfeasible(t *testing.T) {
	inst := opt.Instance{
		Items:  []opt.Item{{ID: "c1", Weight: 50, Compulsory: true}},
		Bins:   []opt.Bin{opt.NewBin("A", 1, 10, 5)},
		Budget: 100,
	}
	_, err := Solve(context.Background(), inst, Options{})
	assert.ErrorIs(t, err, ErrNoSolution)
}

func TestSolveNodeLimit(t *testing.T) {
	res, err := Solve(context.Background(), catalog(), Options{NodeLimit: 5})
	require.NoError(t, err, "the GRASP incumbent is feasible")
	assert.False(t, res.Optimal)
	assert.LessOrEqual(t, res.Nodes, 5)
}
