package instance

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"binrent/internal/opt"
)

// ErrInvalid marks a malformed instance.
var ErrInvalid = errors.New("invalid instance")

// ValidationError lists every problem found in an instance.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return ErrInvalid.Error() + ": " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// Validate rejects input the solvers do not accept: empty or duplicate ids,
// negative or non-finite profits, non-positive weights, capacities or costs,
// and a negative budget.
func Validate(inst opt.Instance) error {
	var probs []string
	add := func(format string, args ...any) { probs = append(probs, fmt.Sprintf(format, args...)) }

	seen := map[string]bool{}
	for i, it := range inst.Items {
		switch {
		case it.ID == "":
			add("items[%d]: empty id", i)
		case seen[it.ID]:
			add("items[%d]: duplicate id %q", i, it.ID)
		}
		seen[it.ID] = true
		if !finite(it.Profit) || it.Profit < 0 {
			add("item %s: profit must be >= 0", it.ID)
		}
		if !finite(it.Weight) || it.Weight <= 0 {
			add("item %s: weight must be > 0", it.ID)
		}
	}

	seen = map[string]bool{}
	for i, b := range inst.Bins {
		switch {
		case b.ID == "":
			add("bins[%d]: empty id", i)
		case seen[b.ID]:
			add("bins[%d]: duplicate id %q", i, b.ID)
		}
		seen[b.ID] = true
		if !finite(b.Capacity) || b.Capacity <= 0 {
			add("bin %s: capacity must be > 0", b.ID)
		}
		if !finite(b.Cost) || b.Cost <= 0 {
			add("bin %s: cost must be > 0", b.ID)
		}
	}

	if !finite(inst.Budget) || inst.Budget < 0 {
		add("budget must be >= 0")
	}
	if len(probs) > 0 {
		return &ValidationError{Problems: probs}
	}
	return nil
}

func finite(f float64) bool { return !math.IsInf(f, 0) && !math.IsNaN(f) }
