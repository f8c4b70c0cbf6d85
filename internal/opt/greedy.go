package opt

// Greedy packs compulsory items heaviest first, then optional items by
// descending profit per weight, each into the first bin (by descending
// capacity per cost) with room for it. Opening an empty bin charges its cost
// and is skipped when the remaining budget cannot pay for it; bins that are
// already rented take items without a budget check. An item is never placed
// by overdrawing the budget, so an unaffordable start yields a missing item
// rather than a negative BudgetRes.
//
// The W/C rule is followed literally, so the result is not cost-optimal: a
// large expensive bin can win over a small cheap one.
func Greedy(items []Item, bins []Bin, budget float64) Solution {
	order := orderItems(cloneItems(items), ItemsByRatio)
	pool := newPool(orderBins(freshBins(bins), BinsByValue), budget)
	for _, it := range order {
		for i := range pool.bins {
			if !pool.bins[i].Fits(it) {
				continue
			}
			if pool.status[i] == Free {
				if !pool.affordable(i) {
					continue
				}
				pool.rent(i)
			}
			pool.place(i, it)
			break
		}
	}
	return pool.solution()
}
