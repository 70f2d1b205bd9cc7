package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/family"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/generator"
)

// generateCommand creates the generate command for random trees.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		output string
		cfg    generator.Config
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random family tree",
		Long: `Generate a structurally plausible random family tree.

The same seed always yields the same tree, ids included. Output is JSON unless
the file name ends in .yaml or .yml. Without -o the tree is written to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := generator.Generate(cfg)
			if output == "" {
				return family.WriteJSON(t, cmd.OutOrStdout())
			}
			if err := family.WriteFile(t, output); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Generated house %s", StyleHighlight.Render(t.HouseName))
			printFile(output)
			printDetail("%d persons, %d edges, %d special relations",
				len(t.Persons), len(t.FamilyEdges), len(t.SpecialRelations))
			printNewline()
			printNextStep("Render", appName+" render "+output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&cfg.HouseName, "house", "", "house name")
	cmd.Flags().StringVar(&cfg.HouseMotto, "motto", "", "house motto")
	cmd.Flags().IntVarP(&cfg.Generations, "generations", "g", generator.DefaultGenerations, "number of generations")
	cmd.Flags().Float64Var(&cfg.AvgChildren, "avg-children", generator.DefaultAvgChildren, "average children per couple")
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&cfg.MaxPersons, "max-persons", 0, "stop adding children at this many persons (0: no limit)")
	cmd.Flags().BoolVar(&cfg.NoUnknowns, "no-unknowns", false, "never generate unknown persons")

	return cmd
}
