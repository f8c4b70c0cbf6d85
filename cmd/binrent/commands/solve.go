package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"binrent/internal/instance"
	"binrent/internal/instance/csvdir"
	"binrent/internal/metrics"
	"binrent/internal/model"
	"binrent/internal/opt"
	"binrent/internal/telemetry"
)

type solveFlags struct {
	file      string
	budget    float64
	algorithm string
	maxIter   int
	itemOrder string
	binOrder  string
	workers   int
	asJSON    bool
}

func newSolveCmd(a *app) *cobra.Command {
	var f solveFlags
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve one instance with a heuristic",
		Example: `  binrent solve -f inst.yaml -a grasp
  binrent solve -f ./catalog --budget 2500 -a lns_local_search --workers 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			inst, err := loadInstance(cmd.Context(), f.file, f.budget)
			if err != nil {
				return err
			}
			solver := a.cfg.Solver
			if cmd.Flags().Changed("algorithm") {
				solver.Algorithm = f.algorithm
			}
			if cmd.Flags().Changed("max-iter") {
				solver.MaxIter = f.maxIter
			}
			if cmd.Flags().Changed("item-order") {
				solver.ItemOrder = f.itemOrder
			}
			if cmd.Flags().Changed("bin-order") {
				solver.BinOrder = f.binOrder
			}
			if cmd.Flags().Changed("workers") {
				solver.Workers = f.workers
			}
			if err := solver.Validate(); err != nil {
				return err
			}
			o, err := solver.Options()
			if err != nil {
				return err
			}

			_, span := telemetry.Start(cmd.Context(), "solve")
			res, err := opt.Solve(solver.Algorithm, inst, o)
			span.End()
			if err != nil {
				return err
			}
			metrics.ObserveSolve(solver.Algorithm, res.Feasible, res.Elapsed, res.Stats.Iterations)
			a.log.Debug("solved", "algorithm", solver.Algorithm, "objective", res.Objective, "iterations", res.Stats.Iterations)

			if f.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(model.NewRunResult(inst.Items, res))
			}
			printSolve(cmd.OutOrStdout(), inst, res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "instance file (.yaml/.json) or a directory with items.csv and bins.csv")
	cmd.Flags().Float64Var(&f.budget, "budget", 0, "rental budget for a CSV directory")
	cmd.Flags().StringVarP(&f.algorithm, "algorithm", "a", opt.AlgGRASP, "heuristic to run")
	cmd.Flags().IntVar(&f.maxIter, "max-iter", opt.DefaultMaxIter, "improvement loop cap")
	cmd.Flags().StringVar(&f.itemOrder, "item-order", "p/w", "construction item order: w, p/w or p")
	cmd.Flags().StringVar(&f.binOrder, "bin-order", "W", "construction bin order: W, W/C or C")
	cmd.Flags().IntVar(&f.workers, "workers", 1, "parallel multi-start refinements")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print the result as JSON")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// loadInstance reads a single instance file, or a CSV catalog directory
// with the budget given on the command line.
func loadInstance(ctx context.Context, path string, budget float64) (opt.Instance, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	fi, err := os.Stat(path)
	if err != nil {
		return opt.Instance{}, err
	}
	var src instance.Source = instance.FileSource{Path: path}
	if fi.IsDir() {
		if budget <= 0 {
			return opt.Instance{}, errors.New("--budget is required for a CSV directory")
		}
		src = csvdir.Source{Dir: path, Budget: budget}
	}
	inst, err := src.Fetch(ctx)
	if err != nil {
		return opt.Instance{}, fmt.Errorf("%s source: %w", src.Name(), err)
	}
	if err := instance.Validate(inst); err != nil {
		return opt.Instance{}, err
	}
	return inst, nil
}
