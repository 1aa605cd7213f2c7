package main

import (
	"fmt"

	"github.com/aretw0/scripter"
	"github.com/aretw0/scripter/internal/cli"
	"github.com/aretw0/scripter/internal/presentation/tui"
	"github.com/aretw0/scripter/pkg/domain"
	"github.com/spf13/cobra"
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Find nodes on the current page",
	Long:  `Runs a find traversal over the current page of the tree and lists the matching nodes in document order.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, _ := cmd.Flags().GetString("type")
		name, _ := cmd.Flags().GetString("name")
		includeHidden, _ := cmd.Flags().GetBool("include-hidden")

		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		tree, err := loadTree(cmd)
		if err != nil {
			return err
		}

		var found []domain.NodeRef
		r := cli.NewRunner(cli.RunOptions{Tree: tree, Output: cmd.OutOrStdout(), Debug: debugEnabled(cmd)}, logger)
		rec, err := r.Run(cmd.Context(), "find", func(env *scripter.Env) error {
			tr, err := env.FindInPage(cli.Filter(tree, typ, name), domain.FindOptions{IncludeHidden: includeHidden})
			if err != nil {
				return err
			}
			v, err := env.Await(tr)
			if err != nil {
				return err
			}
			found, _ = v.([]domain.NodeRef)
			return nil
		})
		if err != nil {
			return err
		}

		entries := make([]tui.Entry, 0, len(found))
		for _, n := range found {
			info, err := tree.Info(n)
			if err != nil {
				continue
			}
			entries = append(entries, tui.Entry{
				Ref:    string(n),
				Name:   info.Name,
				Type:   info.Type,
				Depth:  cli.Depth(tree, n) - 1,
				Hidden: info.Hidden,
			})
		}
		tui.PrintNodes(cmd.OutOrStdout(), entries)
		if rec.Status == domain.RunCanceled {
			fmt.Fprintln(cmd.ErrOrStderr(), "canceled: results are partial")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(findCmd)

	findCmd.Flags().String("type", "", "Only match nodes of this type")
	findCmd.Flags().String("name", "", "Only match nodes whose name contains this text")
	findCmd.Flags().Bool("include-hidden", false, "Descend into hidden nodes")
}
