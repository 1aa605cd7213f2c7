package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/scripter/internal/cli"
	"github.com/aretw0/scripter/internal/logging"
	"github.com/aretw0/scripter/pkg/adapters/memory"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "scripter",
	Short:        "Scripter runs asynchronous scripts against a document tree",
	Long:         `Scripter runs scripts that wait on timers, drive animations and walk a host document tree, all cancellable through one controller.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("tree", "", "Tree file (YAML or JSON); defaults to scripter.yaml or the demo document")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
}

func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	levelFlag, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")
	level, err := logging.ParseLevel(levelFlag)
	if err != nil {
		return nil, err
	}
	return logging.NewWriter(cmd.ErrOrStderr(), level, logging.Format(format)), nil
}

func loadTree(cmd *cobra.Command) (*memory.Tree, error) {
	path, _ := cmd.Flags().GetString("tree")
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	tree, err := cli.ResolveTree(path, dir)
	if err != nil {
		return nil, fmt.Errorf("load tree: %w", err)
	}
	return tree, nil
}

func debugEnabled(cmd *cobra.Command) bool {
	levelFlag, _ := cmd.Flags().GetString("log-level")
	level, err := logging.ParseLevel(levelFlag)
	return err == nil && level <= slog.LevelDebug
}
