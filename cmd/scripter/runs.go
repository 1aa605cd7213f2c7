package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect run history",
	Long:  `Lists, inspects and removes run records kept in Redis or in a history directory.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("redis")
		dir, _ := cmd.Flags().GetString("history-dir")
		if addr == "" && dir == "" {
			return errors.New("no run history: set --redis or --history-dir")
		}
		return nil
	},
}

var runsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored runs, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, closeStore, err := runStore(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		ids, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs found.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSCRIPT\tSTATUS\tSTARTED\tDURATION")
		for _, id := range ids {
			rec, err := store.Load(cmd.Context(), id)
			if err != nil {
				continue
			}
			duration := "-"
			if !rec.EndedAt.IsZero() {
				duration = rec.EndedAt.Sub(rec.StartedAt).Round(time.Millisecond).String()
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", rec.ID, rec.Script, rec.Status, rec.StartedAt.Format(time.RFC3339), duration)
		}
		return w.Flush()
	},
}

var runsInspectCmd = &cobra.Command{
	Use:   "inspect <run-id>",
	Short: "Print a run record as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, closeStore, err := runStore(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		rec, err := store.Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("load run '%s': %w", args[0], err)
		}
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var runsRmCmd = &cobra.Command{
	Use:   "rm <run-id>...",
	Short: "Remove one or more run records",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, closeStore, err := runStore(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		failed := 0
		for _, id := range args {
			if err := store.Delete(cmd.Context(), id); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error removing '%s': %v\n", id, err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed run '%s'\n", id)
		}
		if failed > 0 {
			return fmt.Errorf("%d run(s) could not be removed", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	for _, c := range []*cobra.Command{runsLsCmd, runsInspectCmd, runsRmCmd} {
		addStoreFlags(c)
		runsCmd.AddCommand(c)
	}
}
