// Package bench runs several solvers on one instance and lines their scores
// up against the exact oracle.
package bench

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"go.opentelemetry.io/otel/attribute"

	"binrent/internal/exact"
	"binrent/internal/metrics"
	"binrent/internal/model"
	"binrent/internal/opt"
	"binrent/internal/telemetry"
)

// ExactName labels the oracle row.
const ExactName = "exact"

type Config struct {
	Algorithms []string // empty means every registered heuristic
	Exact      bool
	ExactOpts  exact.Options
	Options    opt.Options
	Log        *slog.Logger
}

// Run solves inst with the oracle first (when enabled) and then each
// heuristic in order. Gap is a heuristic's objective minus the oracle's,
// set only when both are finite.
func Run(ctx context.Context, inst opt.Instance, cfg Config) ([]model.BenchmarkRow, error) {
	algos := cfg.Algorithms
	if len(algos) == 0 {
		for _, a := range opt.Algorithms() {
			algos = append(algos, a.Name)
		}
	}
	for _, a := range algos {
		if !opt.Known(a) {
			return nil, errors.Join(opt.ErrUnknownAlgorithm, errors.New(a))
		}
	}
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}

	rows := make([]model.BenchmarkRow, 0, len(algos)+1)
	best := math.Inf(1)
	if cfg.Exact {
		row, obj, err := runExact(ctx, inst, cfg.ExactOpts)
		if err != nil && !errors.Is(err, exact.ErrNoSolution) {
			return nil, err
		}
		best = obj
		rows = append(rows, row)
		log.InfoContext(ctx, "exact done", "objective", obj, "optimal", row.Optimal, "elapsed_ms", row.ElapsedMs)
	}

	for _, a := range algos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		_, span := telemetry.Start(ctx, "bench."+a, attribute.String("algorithm", a))
		res, err := opt.Solve(a, inst, cfg.Options)
		span.End()
		if err != nil {
			return nil, err
		}
		metrics.ObserveSolve(a, res.Feasible, res.Elapsed, res.Stats.Iterations)
		row := model.BenchmarkRow{
			Algorithm: a,
			Objective: model.Objective(res.Objective),
			Feasible:  res.Feasible,
			ElapsedMs: ms(res.Elapsed.Microseconds()),
		}
		if res.Feasible && !math.IsInf(best, 0) {
			gap := res.Objective - best
			row.Gap = &gap
		}
		rows = append(rows, row)
		log.DebugContext(ctx, "heuristic done", "algorithm", a, "objective", res.Objective, "elapsed_ms", row.ElapsedMs)
	}
	return rows, nil
}

func runExact(ctx context.Context, inst opt.Instance, o exact.Options) (model.BenchmarkRow, float64, error) {
	ctx, span := telemetry.Start(ctx, "bench.exact")
	defer span.End()
	res, err := exact.Solve(ctx, inst, o)
	row := model.BenchmarkRow{Algorithm: ExactName, ElapsedMs: ms(res.Elapsed.Microseconds())}
	if err != nil {
		telemetry.Fail(span, err)
		row.Error = err.Error()
		return row, math.Inf(1), err
	}
	span.SetAttributes(attribute.Int("nodes", res.Nodes), attribute.Bool("optimal", res.Optimal))
	row.Objective = model.Objective(res.Objective)
	row.Feasible = !math.IsInf(res.Objective, 0)
	row.Optimal = res.Optimal
	return row, res.Objective, nil
}

func ms(us int64) float64 { return float64(us) / 1000 }
