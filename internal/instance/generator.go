package instance

import (
	"fmt"
	"math/rand/v2"

	"binrent/internal/opt"
)

// Sampling ranges. Every draw is uniform in [lo, hi).
const (
	costLo, costHi         = 200.0, 300.0
	capacityLo, capacityHi = 6.0, 20.0
	profitLo, profitHi     = 100.0, 120.0
	weightLo, weightHi     = 3.0, 8.0
	budgetLo, budgetHi     = 2000.0, 3000.0
)

// Params sizes a generated instance. The same params always produce the same
// instance.
type Params struct {
	Bins       int    `json:"bins" yaml:"bins" validate:"min=1,max=10000"`
	BinTypes   int    `json:"binTypes" yaml:"binTypes" validate:"min=1,max=1000"`
	Compulsory int    `json:"compulsory" yaml:"compulsory" validate:"min=0,max=10000"`
	Optional   int    `json:"optional" yaml:"optional" validate:"min=0,max=10000"`
	Seed       uint64 `json:"seed" yaml:"seed"`
}

// DefaultParams is the small instance: 10 bins over 10 types, 3 compulsory
// and 4 optional items.
func DefaultParams() Params {
	return Params{Bins: 10, BinTypes: 10, Compulsory: 3, Optional: 4, Seed: 1}
}

// BenchmarkParams is the instance used by the benchmark command.
func BenchmarkParams() Params {
	return Params{Bins: 25, BinTypes: 9, Compulsory: 9, Optional: 12, Seed: 2}
}

// Generate draws bin types (cost, capacity), items (profit, weight) and a
// budget. Compulsory items come first; item and bin ids are 1-based
// ("item1", "bin1"). Each bin picks its type uniformly.
func Generate(p Params) opt.Instance {
	r := rand.New(rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15))
	uniform := func(lo, hi float64) float64 { return lo + (hi-lo)*r.Float64() }

	types := max(p.BinTypes, 1)
	costs := make([]float64, types)
	caps := make([]float64, types)
	for j := range costs {
		costs[j] = uniform(costLo, costHi)
	}
	for j := range caps {
		caps[j] = uniform(capacityLo, capacityHi)
	}

	n := p.Compulsory + p.Optional
	items := make([]opt.Item, n)
	for i := range items {
		items[i] = opt.Item{
			ID:         fmt.Sprintf("item%d", i+1),
			Profit:     uniform(profitLo, profitHi),
			Weight:     uniform(weightLo, weightHi),
			Compulsory: i < p.Compulsory,
		}
	}

	bins := make([]opt.Bin, p.Bins)
	for i := range bins {
		j := r.IntN(types)
		bins[i] = opt.NewBin(fmt.Sprintf("bin%d", i+1), j+1, caps[j], costs[j])
	}

	return opt.Instance{Items: items, Bins: bins, Budget: uniform(budgetLo, budgetHi)}
}
