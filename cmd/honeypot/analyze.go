package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gosuda/honeypot/internal/detect"
	"github.com/gosuda/honeypot/internal/honeypot"
	"github.com/gosuda/honeypot/internal/intel"
	"github.com/gosuda/honeypot/internal/store/memory"
)

func newAnalyzeCmd() *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "analyze <text>",
		Short: "Score a message and print extracted identifiers",
		Long: `Score a single message offline and print the verdict and extracted
identifiers as JSON. No session is created and nothing is delivered.

Examples:
  honeypot analyze "URGENT! Your account is blocked, verify now"
  honeypot analyze --threshold 0.4 "send 500 to pay@ybl"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if threshold <= 0 || threshold > 1 {
				return fmt.Errorf("analyze: threshold %.2f must be in (0, 1]", threshold)
			}

			engine := honeypot.New(
				memory.NewSessionStore(),
				detect.NewScorer(threshold),
				intel.NewExtractor(),
				nil,
				nil,
			)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(engine.Analyze(strings.Join(args, " "))); err != nil {
				return fmt.Errorf("analyze: encode: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", detect.DefaultThreshold, "scam confidence threshold")
	return cmd
}
