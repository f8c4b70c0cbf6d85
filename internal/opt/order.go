package opt

import (
	"cmp"
	"fmt"
	"slices"
)

// ItemOrder selects the sort key for optional items. Compulsory items are
// always placed first, heaviest first.
type ItemOrder string

const (
	ItemsByWeight ItemOrder = "w"   // descending weight
	ItemsByRatio  ItemOrder = "p/w" // descending profit per weight
	ItemsByProfit ItemOrder = "p"   // descending profit
)

// BinOrder selects the order in which bins are scanned.
type BinOrder string

const (
	BinsByCapacity BinOrder = "W"   // descending capacity
	BinsByValue    BinOrder = "W/C" // descending capacity per cost
	BinsByCost     BinOrder = "C"   // ascending cost
)

// ParseItemOrder accepts "w", "p/w" or "p". Empty means the default, "p/w".
func ParseItemOrder(s string) (ItemOrder, error) {
	switch o := ItemOrder(s); o {
	case "":
		return ItemsByRatio, nil
	case ItemsByWeight, ItemsByRatio, ItemsByProfit:
		return o, nil
	}
	return "", fmt.Errorf("unknown item order %q (want w, p/w or p)", s)
}

// ParseBinOrder accepts "W", "W/C" or "C". Empty means the default, "W".
func ParseBinOrder(s string) (BinOrder, error) {
	switch o := BinOrder(s); o {
	case "":
		return BinsByCapacity, nil
	case BinsByCapacity, BinsByValue, BinsByCost:
		return o, nil
	}
	return "", fmt.Errorf("unknown bin order %q (want W, W/C or C)", s)
}

// orderItems returns compulsory items by descending weight followed by the
// optional items sorted by key. Sorts are stable so equal keys keep catalog
// order and runs stay reproducible.
func orderItems(items []Item, key ItemOrder) []Item {
	var comp, opt []Item
	for _, it := range items {
		if it.Compulsory {
			comp = append(comp, it)
		} else {
			opt = append(opt, it)
		}
	}
	slices.SortStableFunc(comp, func(a, b Item) int { return cmp.Compare(b.Weight, a.Weight) })
	switch key {
	case ItemsByWeight:
		slices.SortStableFunc(opt, func(a, b Item) int { return cmp.Compare(b.Weight, a.Weight) })
	case ItemsByRatio:
		slices.SortStableFunc(opt, func(a, b Item) int { return cmp.Compare(b.Ratio(), a.Ratio()) })
	case ItemsByProfit:
		slices.SortStableFunc(opt, func(a, b Item) int { return cmp.Compare(b.Profit, a.Profit) })
	}
	return append(comp, opt...)
}

func orderBins(bins []Bin, key BinOrder) []Bin {
	switch key {
	case BinsByCapacity:
		slices.SortStableFunc(bins, func(a, b Bin) int { return cmp.Compare(b.Capacity, a.Capacity) })
	case BinsByValue:
		slices.SortStableFunc(bins, func(a, b Bin) int { return cmp.Compare(b.Value(), a.Value()) })
	case BinsByCost:
		slices.SortStableFunc(bins, func(a, b Bin) int { return cmp.Compare(a.Cost, b.Cost) })
	}
	return bins
}
