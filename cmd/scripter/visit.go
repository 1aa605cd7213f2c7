package main

import (
	"fmt"

	"github.com/aretw0/scripter"
	"github.com/aretw0/scripter/internal/cli"
	"github.com/aretw0/scripter/internal/presentation/graph"
	"github.com/aretw0/scripter/internal/presentation/tui"
	"github.com/aretw0/scripter/pkg/domain"
	"github.com/spf13/cobra"
)

var visitCmd = &cobra.Command{
	Use:   "visit",
	Short: "Print the visit order of the whole document",
	Long: `Visits every node of the document in pre-order, hidden nodes included.
Nodes of the pruned type are visited but their subtrees are not.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pruneType, _ := cmd.Flags().GetString("prune-type")
		mermaid, _ := cmd.Flags().GetBool("mermaid")

		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		tree, err := loadTree(cmd)
		if err != nil {
			return err
		}

		var visited []domain.NodeRef
		r := cli.NewRunner(cli.RunOptions{Tree: tree, Output: cmd.OutOrStdout(), Debug: debugEnabled(cmd)}, logger)
		rec, err := r.Run(cmd.Context(), "visit", func(env *scripter.Env) error {
			tr := env.Visit(domain.Container(tree.Root()), func(n domain.NodeRef) (bool, error) {
				visited = append(visited, n)
				info, err := tree.Info(n)
				if err != nil {
					return false, err
				}
				return pruneType == "" || info.Type != pruneType, nil
			})
			_, err := env.Await(tr)
			return err
		})
		if err != nil {
			return err
		}

		if mermaid {
			nodes := []graph.Node{{Ref: string(tree.Root()), Type: "document"}}
			refs := make([]string, 0, len(visited))
			for _, n := range visited {
				info, err := tree.Info(n)
				if err != nil {
					continue
				}
				parent, _ := tree.Parent(n)
				nodes = append(nodes, graph.Node{
					Ref:    string(n),
					Parent: string(parent),
					Name:   info.Name,
					Type:   info.Type,
					Hidden: info.Hidden,
				})
				refs = append(refs, string(n))
			}
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(nodes, &graph.Overlay{Visited: refs}))
			return nil
		}

		entries := make([]tui.Entry, 0, len(visited))
		for _, n := range visited {
			info, err := tree.Info(n)
			if err != nil {
				continue
			}
			entries = append(entries, tui.Entry{
				Ref:    string(n),
				Name:   info.Name,
				Type:   info.Type,
				Depth:  cli.Depth(tree, n),
				Hidden: info.Hidden,
			})
		}
		tui.PrintNodes(cmd.OutOrStdout(), entries)
		if rec.Status == domain.RunCanceled {
			fmt.Fprintln(cmd.ErrOrStderr(), "canceled: visit incomplete")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(visitCmd)

	visitCmd.Flags().String("prune-type", "", "Do not descend into nodes of this type")
	visitCmd.Flags().Bool("mermaid", false, "Print the visited tree as a Mermaid graph")
}
