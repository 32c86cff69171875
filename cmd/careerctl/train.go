package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var trainMinSamples int

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train and publish a next-role classifier",
	Long: `Train a classifier on the transitions inside the training window,
evaluate it on a held-out split and publish it as a new model version.
Exits non-zero when there is not enough data.`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().IntVar(&trainMinSamples, "min-samples", 0,
		"Minimum usable samples (default: min_samples from config)")
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, _ []string) error {
	ctx, _, c, err := open(cmd, false)
	if err != nil {
		return err
	}
	defer closeComponents(ctx, c)

	out, err := c.Service.Train(ctx, trainMinSamples)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}
	if err := render(cmd, out, func(w io.Writer) {
		if !out.Success {
			fmt.Fprintf(w, "Not trained: %s\n", out.Message)
			return
		}
		fmt.Fprintf(w, "Published model %s\n", out.Version)
		fmt.Fprintf(w, "  samples:   %d (required %d)\n", out.CurrentSamples, out.RequiredSamples)
		fmt.Fprintf(w, "  search:    %s, stratified=%t\n", out.Strategy.Kind, out.Stratified)
		if out.Metrics != nil {
			fmt.Fprintf(w, "  accuracy:  %.3f\n", out.Metrics.Accuracy)
			fmt.Fprintf(w, "  f1:        %.3f\n", out.Metrics.F1)
		}
	}); err != nil {
		return err
	}
	return out.Err()
}
