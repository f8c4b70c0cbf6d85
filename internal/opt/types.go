package opt

// Item is a packable unit. Compulsory items must be placed in every feasible
// solution; the others only contribute profit.
type Item struct {
	ID         string  `json:"id" yaml:"id"`
	Profit     float64 `json:"profit" yaml:"profit"`
	Weight     float64 `json:"weight" yaml:"weight"`
	Compulsory bool    `json:"compulsory" yaml:"compulsory"`
}

// Ratio returns profit per unit of weight.
func (it Item) Ratio() float64 { return it.Profit / it.Weight }

// Bin is a rentable container. Residual always equals Capacity minus the
// weight of Items.
type Bin struct {
	ID       string  `json:"id" yaml:"id"`
	Type     int     `json:"type" yaml:"type"`
	Capacity float64 `json:"capacity" yaml:"capacity"`
	Residual float64 `json:"residual" yaml:"-"`
	Cost     float64 `json:"cost" yaml:"cost"`
	Items    []Item  `json:"items,omitempty" yaml:"-"`
}

// NewBin returns an empty bin with full residual capacity.
func NewBin(id string, typ int, capacity, cost float64) Bin {
	return Bin{ID: id, Type: typ, Capacity: capacity, Residual: capacity, Cost: cost}
}

// Value returns capacity per unit of rental cost.
func (b *Bin) Value() float64 { return b.Capacity / b.Cost }

// Load is the packed weight.
func (b *Bin) Load() float64 { return b.Capacity - b.Residual }

// Fits reports whether it fits in the residual capacity.
func (b *Bin) Fits(it Item) bool { return b.Residual+capacityEps >= it.Weight }

// Add appends it and consumes its weight. Capacity is not checked here;
// callers test Fits first.
func (b *Bin) Add(it Item) {
	b.Items = append(b.Items, it)
	b.Residual -= it.Weight
}

// Reset returns the bin to the pool: no items, full residual capacity.
func (b *Bin) Reset() {
	b.Items = nil
	b.Residual = b.Capacity
}

// Clone returns a deep copy that shares no item storage with b.
func (b Bin) Clone() Bin {
	out := b
	out.Items = append([]Item(nil), b.Items...)
	return out
}

// Fresh returns an empty copy of the bin template.
func (b Bin) Fresh() Bin {
	return NewBin(b.ID, b.Type, b.Capacity, b.Cost)
}

// Instance is a problem: the item and bin catalogs plus the total budget.
type Instance struct {
	Items  []Item  `json:"items" yaml:"items"`
	Bins   []Bin   `json:"bins" yaml:"bins"`
	Budget float64 `json:"budget" yaml:"budget"`
}

// Clone copies the catalogs. Bins come back empty.
func (in Instance) Clone() Instance {
	return Instance{Items: cloneItems(in.Items), Bins: freshBins(in.Bins), Budget: in.Budget}
}

func cloneItems(items []Item) []Item {
	return append([]Item(nil), items...)
}

// freshBins copies the bin templates with no items and full capacity, so a
// heuristic run never observes state left by another run.
func freshBins(bins []Bin) []Bin {
	out := make([]Bin, len(bins))
	for i, b := range bins {
		out[i] = b.Fresh()
	}
	return out
}
