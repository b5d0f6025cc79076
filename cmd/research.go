package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"forge-research/internal/research"

	"github.com/spf13/cobra"
)

var (
	researchCompany   string
	researchTraceFlag bool
)

// researchCmd runs the pipeline once and prints the result as JSON.
var researchCmd = &cobra.Command{
	Use:   "research <prompt>",
	Short: "Run one research-enrichment pass for a topic prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		pipeline, err := buildPipeline(cfg)
		if err != nil {
			return err
		}

		result, trace := pipeline.Run(context.Background(), research.Request{
			Prompt:         args[0],
			Company:        researchCompany,
			EnableResearch: true,
		})

		out := cmd.OutOrStdout()
		if researchTraceFlag {
			for _, e := range trace.Entries {
				fmt.Fprintf(out, "%s  [%s] %s\n", e.At.Format("15:04:05.000"), e.Stage, e.Message)
			}
		}
		b, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(b))
		return nil
	},
}

func init() {
	researchCmd.Flags().StringVar(&researchCompany, "company", "", "short description of the requesting organization")
	researchCmd.Flags().BoolVar(&researchTraceFlag, "trace", false, "print the per-stage trace before the result")
	_ = researchCmd.MarkFlagRequired("company")
	rootCmd.AddCommand(researchCmd)
}
