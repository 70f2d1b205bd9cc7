package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/family"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/search"
)

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search [tree.json] [query]",
		Short: "Find persons by name or title",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := family.ReadFile(args[0])
			if err != nil {
				return err
			}
			query := strings.Join(args[1:], " ")
			hits := search.Find(t.Persons, query, limit)
			if len(hits) == 0 {
				printInfo("No persons match %q", strings.TrimSpace(query))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), searchTable(hits))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", search.DefaultLimit, "maximum number of results")

	return cmd
}

// searchTable renders hits as a bordered table.
func searchTable(hits []family.Person) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, len(hits))
	for _, p := range hits {
		name := p.Name
		if p.IsUnknown {
			name = "?"
		}
		rows = append(rows, []string{p.ID, name, p.Title, strconv.Itoa(p.Generation)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Title", "Gen").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorDim)
			case col == 1:
				return lipgloss.NewStyle().Foreground(colorCyan)
			default:
				return lipgloss.NewStyle().Foreground(colorWhite)
			}
		})
	return t.Render()
}
