package commands

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"binrent/internal/bench"
	"binrent/internal/exact"
	"binrent/internal/instance"
	"binrent/internal/opt"
)

func newBenchCmd(a *app) *cobra.Command {
	p := instance.BenchmarkParams()
	var (
		file       string
		budget     float64
		algorithms []string
		noExact    bool
		nodeLimit  int
		timeLimit  time.Duration
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Compare the exact oracle with every heuristic on one instance",
		Long: `bench solves one instance with the branch and bound oracle and then with
each heuristic, and prints objective, gap to the oracle and wall time. Without
-f it draws the benchmark instance (seed 2, 25 bins of 9 types, 9 compulsory
and 12 optional items).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var inst opt.Instance
			if file != "" {
				var err error
				if inst, err = loadInstance(cmd.Context(), file, budget); err != nil {
					return err
				}
			} else {
				inst = instance.Generate(p)
			}
			o, err := a.cfg.Solver.Options()
			if err != nil {
				return err
			}
			eo := exact.Options{NodeLimit: a.cfg.Exact.NodeLimit, TimeLimit: a.cfg.Exact.TimeLimit}
			if cmd.Flags().Changed("node-limit") {
				eo.NodeLimit = nodeLimit
			}
			if cmd.Flags().Changed("time-limit") {
				eo.TimeLimit = timeLimit
			}
			rows, err := bench.Run(cmd.Context(), inst, bench.Config{
				Algorithms: algorithms,
				Exact:      !noExact,
				ExactOpts:  eo,
				Options:    o,
				Log:        a.log,
			})
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			printBench(cmd.OutOrStdout(), inst, rows)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "instance file or CSV directory (default: generated)")
	cmd.Flags().Float64Var(&budget, "budget", 0, "rental budget for a CSV directory")
	cmd.Flags().StringSliceVarP(&algorithms, "algorithms", "a", nil, "heuristics to run (default: all)")
	cmd.Flags().BoolVar(&noExact, "no-exact", false, "skip the branch and bound oracle")
	cmd.Flags().IntVar(&nodeLimit, "node-limit", exact.DefaultNodes, "oracle node budget")
	cmd.Flags().DurationVar(&timeLimit, "time-limit", exact.DefaultTimeout, "oracle time budget")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print rows as JSON")
	cmd.Flags().Uint64Var(&p.Seed, "seed", p.Seed, "seed of the generated instance")
	cmd.Flags().IntVar(&p.Bins, "bins", p.Bins, "bins of the generated instance")
	cmd.Flags().IntVar(&p.BinTypes, "bin-types", p.BinTypes, "bin types of the generated instance")
	cmd.Flags().IntVar(&p.Compulsory, "compulsory", p.Compulsory, "compulsory items of the generated instance")
	cmd.Flags().IntVar(&p.Optional, "optional", p.Optional, "optional items of the generated instance")
	return cmd
}
