package commands

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"binrent/internal/instance"
)

func newGenerateCmd(a *app) *cobra.Command {
	p := instance.BenchmarkParams()
	var out, format string
	cmd := &cobra.Command{
		Use:     "generate",
		Short:   "Draw a random instance",
		Example: "  binrent generate --seed 2 --bins 25 --bin-types 9 --compulsory 9 --optional 12 -o inst.yaml",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validator.New().Struct(p); err != nil {
				return err
			}
			inst := instance.Generate(p)
			if out != "" {
				if err := instance.Save(out, inst); err != nil {
					return err
				}
				a.log.Info("instance written", "path", out, "items", len(inst.Items), "bins", len(inst.Bins), "budget", inst.Budget)
				return nil
			}
			b, err := instance.Encode(inst, format)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), string(b))
			return err
		},
	}
	cmd.Flags().Uint64Var(&p.Seed, "seed", p.Seed, "random seed")
	cmd.Flags().IntVar(&p.Bins, "bins", p.Bins, "number of bins")
	cmd.Flags().IntVar(&p.BinTypes, "bin-types", p.BinTypes, "number of bin types")
	cmd.Flags().IntVar(&p.Compulsory, "compulsory", p.Compulsory, "number of compulsory items")
	cmd.Flags().IntVar(&p.Optional, "optional", p.Optional, "number of optional items")
	cmd.Flags().StringVarP(&out, "output", "o", "", "write to a .yaml or .json file instead of stdout")
	cmd.Flags().StringVar(&format, "format", "yaml", "stdout encoding: yaml or json")
	return cmd
}
