package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/flemzord/toolclaw/internal/memory"
	"github.com/spf13/cobra"
)

func historyCmd(flags *globalFlags) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent executions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 {
				return fmt.Errorf("history: limit must not be negative")
			}
			rt, err := buildRuntime(cmd.Context(), cmd, flags, oneShotSkip...)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close(context.Background()) }()

			records, err := rt.Agent.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), records)
			}
			printHistory(cmd.OutOrStdout(), records)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of records to show (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON")
	cmd.AddCommand(historyShowCmd(flags))
	return cmd
}

func historyShowCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one execution record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := buildRuntime(cmd.Context(), cmd, flags, oneShotSkip...)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close(context.Background()) }()

			rec, err := rt.Agent.HistoryStore().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), rec)
		},
	}
}

func printHistory(w io.Writer, records []memory.ExecutionRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "no executions recorded")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tSTEPS\tSTATUS\tDURATION\tINPUT")
	for _, rec := range records {
		status := "ok"
		if rec.Failed {
			status = "failed"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			rec.ID,
			rec.Timestamp.Local().Format(time.DateTime),
			rec.StepsExecuted,
			status,
			rec.Duration.Round(time.Millisecond),
			abbreviate(rec.Input, 48))
	}
	_ = tw.Flush()
}

func abbreviate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
