package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/collapse"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/errors"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/family"
)

// collapseCommand creates the collapse-state management command.
func (c *CLI) collapseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collapse",
		Short: "Manage collapsed branches",
		Long: `Manage which persons are collapsed.

A collapsed person stays visible while their descendants are hidden. State is
kept per tree in the configured store, keyed by the tree's share id or content
hash. Each subcommand accepts either a tree file or a tree id.`,
	}

	cmd.AddCommand(c.collapseGetCommand())
	cmd.AddCommand(c.collapseSetCommand())
	cmd.AddCommand(c.collapseToggleCommand())
	cmd.AddCommand(c.collapseClearCommand())

	return cmd
}

func (c *CLI) collapseGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get [tree]",
		Short: "Print the collapsed person ids",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), args[0], func(ctx context.Context, s collapse.Store, treeID string) error {
				ids, err := collapse.Load(ctx, s, treeID)
				if err != nil {
					return err
				}
				for _, id := range collapse.Normalize(ids) {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			})
		},
	}
}

func (c *CLI) collapseSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set [tree] [id...]",
		Short: "Replace the collapsed set",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), args[0], func(ctx context.Context, s collapse.Store, treeID string) error {
				ids := collapse.Normalize(args[1:])
				if err := s.Set(ctx, treeID, ids); err != nil {
					return err
				}
				printSuccess("Collapsed %d persons in %s", len(ids), StyleHighlight.Render(treeID))
				return nil
			})
		},
	}
}

func (c *CLI) collapseToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle [tree] [id]",
		Short: "Collapse or expand one person",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), args[0], func(ctx context.Context, s collapse.Store, treeID string) error {
				id := strings.TrimSpace(args[1])
				ids, err := collapse.Toggle(ctx, s, treeID, id)
				if err != nil {
					return err
				}
				state := "Expanded"
				for _, x := range ids {
					if x == id {
						state = "Collapsed"
						break
					}
				}
				printSuccess("%s %s", state, StyleHighlight.Render(id))
				printDetail("%d collapsed in %s", len(ids), treeID)
				return nil
			})
		},
	}
}

func (c *CLI) collapseClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [tree]",
		Short: "Expand everything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), args[0], func(ctx context.Context, s collapse.Store, treeID string) error {
				if err := s.Delete(ctx, treeID); err != nil {
					return err
				}
				printSuccess("Cleared collapse state for %s", StyleHighlight.Render(treeID))
				return nil
			})
		},
	}
}

// withStore resolves arg to a tree id, opens the store and runs fn.
func (c *CLI) withStore(ctx context.Context, arg string, fn func(context.Context, collapse.Store, string) error) error {
	treeID, err := resolveTreeID(arg)
	if err != nil {
		return err
	}
	s, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s, treeID)
}

// resolveTreeID returns the identity of the tree file at arg, or arg itself
// when no such file exists.
func resolveTreeID(arg string) (string, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		t, err := family.ReadFile(arg)
		if err != nil {
			return "", err
		}
		return family.Identity(t), nil
	}
	if err := errors.ValidateTreeID(arg); err != nil {
		return "", err
	}
	return arg, nil
}
