package opt

// FirstFit is the parametrised constructive heuristic. Compulsory items go to
// the first bin, rented or not, that has room and whose cost the remaining
// budget covers. Optional items first try the rented bins; failing that, a
// free bin is opened only when the optional items still to be placed that it
// could take are worth more than its own rent. Each pending item is tested
// alone against the bin's residual capacity and counts with its own profit,
// so the estimate is optimistic and a bin may open for items it cannot hold
// together. A final cheapen pass swaps each rented bin for a cheaper free one
// that can hold its load.
//
// Items that cannot be placed are left out. A missing compulsory item shows
// up as an infeasible solution.
func FirstFit(items []Item, bins []Bin, budget float64, itemOrder ItemOrder, binOrder BinOrder) Solution {
	order := orderItems(cloneItems(items), itemOrder)
	pool := newPool(orderBins(freshBins(bins), binOrder), budget)
	for k, it := range order {
		if it.Compulsory {
			pool.placeCompulsory(it)
			continue
		}
		if pool.placeRented(it) {
			continue
		}
		pool.openFor(it, order[k:])
	}
	pool.cheapen()
	return pool.solution()
}

func (p *binPool) placeCompulsory(it Item) bool {
	for i := range p.bins {
		if p.bins[i].Fits(it) && p.affordable(i) {
			p.rent(i)
			p.place(i, it)
			return true
		}
	}
	return false
}

func (p *binPool) placeRented(it Item) bool {
	for _, i := range p.rented() {
		if p.bins[i].Fits(it) && p.affordable(i) {
			p.place(i, it)
			return true
		}
	}
	return false
}

// openFor rents the first affordable free bin that fits it and whose
// achievable profit over pending beats its cost. pending starts with it.
func (p *binPool) openFor(it Item, pending []Item) bool {
	for _, i := range p.free() {
		if !p.bins[i].Fits(it) || !p.affordable(i) {
			continue
		}
		if achievableProfit(p.bins[i].Residual, pending) > p.bins[i].Cost {
			p.rent(i)
			p.place(i, it)
			return true
		}
	}
	return false
}

// achievableProfit sums the profit of the optional items in pending that
// fit, each on its own, in residual. Items are not packed against each
// other, so two that only fit one at a time both count.
func achievableProfit(residual float64, pending []Item) float64 {
	total := 0.0
	for _, it := range pending {
		if it.Compulsory || it.Weight > residual+capacityEps {
			continue
		}
		total += it.Profit
	}
	return total
}

// cheapen makes one pass over the bins rented so far. Each is replaced by
// the first free bin, in scan order, with capacity for its load and a
// strictly lower cost; the difference is credited to the budget.
func (p *binPool) cheapen() {
	for _, i := range p.rented() {
		load := p.bins[i].Load()
		for _, j := range p.free() {
			if p.bins[j].Capacity+capacityEps < load || p.bins[j].Cost >= p.bins[i].Cost {
				continue
			}
			moved := p.bins[i].Items
			p.release(i)
			p.rent(j)
			for _, it := range moved {
				p.place(j, it)
			}
			break
		}
	}
}
