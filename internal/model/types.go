package model

import (
	"math"
	"time"

	"binrent/internal/instance"
	"binrent/internal/opt"
)

// Run states.
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// SolveOptions are the per-request solver knobs. Zero values fall back to
// the configured defaults.
type SolveOptions struct {
	MaxIter   int    `json:"maxIter,omitempty" validate:"omitempty,min=1,max=1000000"`
	ItemOrder string `json:"itemOrder,omitempty" validate:"omitempty,oneof=w p/w p"`
	BinOrder  string `json:"binOrder,omitempty" validate:"omitempty,oneof=W W/C C"`
	Workers   int    `json:"workers,omitempty" validate:"omitempty,min=1,max=64"`
}

type SolveRequest struct {
	Instance       opt.Instance `json:"instance"`
	Algorithm      string       `json:"algorithm,omitempty"`
	Options        SolveOptions `json:"options"`
	CallbackURL    string       `json:"callbackUrl,omitempty" validate:"omitempty,url"`
	CallbackSecret string       `json:"callbackSecret,omitempty" validate:"excluded_without=CallbackURL"`
}

// Run is a stored solve.
type Run struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	Algorithm   string     `json:"algorithm"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Result      *RunResult `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
}

type RunResult struct {
	Objective   *float64         `json:"objective"` // null when infeasible
	Feasible    bool             `json:"feasible"`
	TotalCost   float64          `json:"totalCost"`
	Profit      float64          `json:"profit"`
	BudgetRes   float64          `json:"budgetRes"`
	Assignments []opt.Assignment `json:"assignments"`
	Bins        []BinLoad        `json:"bins"`
	Unassigned  []string         `json:"unassigned"`
	Stats       StatsOut         `json:"stats"`
	ElapsedMs   float64          `json:"elapsedMs"`
}

type BinLoad struct {
	ID       string   `json:"id"`
	Type     int      `json:"type"`
	Capacity float64  `json:"capacity"`
	Load     float64  `json:"load"`
	Cost     float64  `json:"cost"`
	Items    []string `json:"items"`
}

type StatsOut struct {
	Starts             int      `json:"starts"`
	Iterations         int      `json:"iterations"`
	Improvements       int      `json:"improvements"`
	NeighborsEvaluated int      `json:"neighborsEvaluated"`
	StartObjective     *float64 `json:"startObjective"`
	BestObjective      *float64 `json:"bestObjective"`
}

// Objective maps +Inf to nil so an infeasible score encodes as JSON null.
func Objective(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// NewRunResult flattens a solver result for the wire.
func NewRunResult(items []opt.Item, res opt.Result) *RunResult {
	out := &RunResult{
		Objective:   Objective(res.Objective),
		Feasible:    res.Feasible,
		TotalCost:   res.Solution.TotalCost(),
		Profit:      res.Solution.Profit(),
		BudgetRes:   res.Solution.BudgetRes,
		Assignments: res.Solution.Pairs(),
		Bins:        BinLoads(res.Solution),
		Unassigned:  Unassigned(items, res.Solution),
		Stats: StatsOut{
			Starts:             res.Stats.Starts,
			Iterations:         res.Stats.Iterations,
			Improvements:       res.Stats.Improvements,
			NeighborsEvaluated: res.Stats.NeighborsEvaluated,
			StartObjective:     Objective(res.Stats.StartObjective),
			BestObjective:      Objective(res.Stats.BestObjective),
		},
		ElapsedMs: float64(res.Elapsed.Microseconds()) / 1000,
	}
	return out
}

func BinLoads(s opt.Solution) []BinLoad {
	out := make([]BinLoad, 0, len(s.Bins))
	for _, b := range s.Bins {
		ids := make([]string, len(b.Items))
		for i, it := range b.Items {
			ids[i] = it.ID
		}
		out = append(out, BinLoad{ID: b.ID, Type: b.Type, Capacity: b.Capacity, Load: b.Load(), Cost: b.Cost, Items: ids})
	}
	return out
}

// Unassigned lists item ids the solution leaves out, in catalog order.
func Unassigned(items []opt.Item, s opt.Solution) []string {
	out := []string{}
	for _, it := range items {
		if !s.Has(it.ID) {
			out = append(out, it.ID)
		}
	}
	return out
}

type EvaluateRequest struct {
	Instance    opt.Instance     `json:"instance"`
	Assignments []opt.Assignment `json:"assignments" validate:"dive"`
}

type EvaluateResponse struct {
	Valid      bool      `json:"valid"`
	Objective  *float64  `json:"objective"`
	TotalCost  float64   `json:"totalCost"`
	Profit     float64   `json:"profit"`
	BudgetRes  float64   `json:"budgetRes"`
	Bins       []BinLoad `json:"bins"`
	Violations []string  `json:"violations"`
}

// BenchmarkRequest carries either an instance or generator parameters.
type BenchmarkRequest struct {
	Instance   *opt.Instance    `json:"instance,omitempty" validate:"required_without=Generate"`
	Generate   *instance.Params `json:"generate,omitempty"`
	Algorithms []string         `json:"algorithms,omitempty"`
	Exact      bool             `json:"exact"`
	Options    SolveOptions     `json:"options"`
}

type BenchmarkRow struct {
	Algorithm string   `json:"algorithm"`
	Objective *float64 `json:"objective"`
	Feasible  bool     `json:"feasible"`
	Optimal   bool     `json:"optimal,omitempty"`
	Gap       *float64 `json:"gap,omitempty"` // objective minus the exact objective
	ElapsedMs float64  `json:"elapsedMs"`
	Error     string   `json:"error,omitempty"`
}

type BenchmarkResponse struct {
	Items int            `json:"items"`
	Bins  int            `json:"bins"`
	Rows  []BenchmarkRow `json:"rows"`
}

// CallbackOut is the admin view of a callback delivery.
type CallbackOut struct {
	ID            string     `json:"id"`
	RunID         string     `json:"runId"`
	EventType     string     `json:"eventType"`
	URL           string     `json:"url"`
	Status        string     `json:"status"`
	Attempts      int        `json:"attempts"`
	NextAttemptAt *time.Time `json:"nextAttemptAt,omitempty"`
	LastError     string     `json:"lastError,omitempty"`
	ResponseCode  int        `json:"responseCode,omitempty"`
	DeliveredAt   *time.Time `json:"deliveredAt,omitempty"`
}
