package opt

import "slices"

// BinStatus is the rental state of a catalog bin during construction.
type BinStatus int

const (
	Free BinStatus = iota
	Rented
)

func (s BinStatus) String() string {
	if s == Rented {
		return "rented"
	}
	return "free"
}

// binPool is the single registry of catalog bins used by the constructive
// heuristics. Bins sit in scan order; status and rental sequence are kept per
// slot so the rented set can be walked in the order bins were opened.
type binPool struct {
	bins   []Bin
	status []BinStatus
	seq    []int
	index  map[string]int
	next   int
	budget float64
}

// newPool takes ownership of bins, which must already be fresh copies.
func newPool(bins []Bin, budget float64) *binPool {
	p := &binPool{
		bins:   bins,
		status: make([]BinStatus, len(bins)),
		seq:    make([]int, len(bins)),
		index:  make(map[string]int, len(bins)),
		budget: budget,
	}
	for i, b := range bins {
		p.index[b.ID] = i
	}
	return p
}

func (p *binPool) affordable(i int) bool { return p.bins[i].Cost <= p.budget }

// rent marks slot i rented and charges its cost. Renting a rented bin is a
// no-op.
func (p *binPool) rent(i int) {
	if p.status[i] == Rented {
		return
	}
	p.status[i] = Rented
	p.next++
	p.seq[i] = p.next
	p.budget -= p.bins[i].Cost
}

// release empties slot i, returns it to the pool and refunds its cost.
func (p *binPool) release(i int) {
	if p.status[i] != Rented {
		return
	}
	p.bins[i].Reset()
	p.status[i] = Free
	p.seq[i] = 0
	p.budget += p.bins[i].Cost
}

func (p *binPool) place(i int, it Item) { p.bins[i].Add(it) }

// rented lists rented slots in rental order.
func (p *binPool) rented() []int {
	var out []int
	for i, s := range p.status {
		if s == Rented {
			out = append(out, i)
		}
	}
	slices.SortFunc(out, func(a, b int) int { return p.seq[a] - p.seq[b] })
	return out
}

// free lists free slots in scan order.
func (p *binPool) free() []int {
	var out []int
	for i, s := range p.status {
		if s == Free {
			out = append(out, i)
		}
	}
	return out
}

// lookup returns the slot holding the bin id.
func (p *binPool) lookup(id string) (int, bool) {
	i, ok := p.index[id]
	return i, ok
}

func (p *binPool) solution() Solution {
	return NewSolution(p.bins, p.budget)
}
