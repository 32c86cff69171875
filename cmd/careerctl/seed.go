package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Ritik-JS/alumni-careerpath/internal/seed"
)

var (
	seedAlumni  int
	seedValue   int64
	seedWorkers int
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write synthetic alumni histories",
	Long: `Generate synthetic alumni profiles and the role transitions that led
to them, and write them to the configured data source. The same --seed
always produces the same histories.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedAlumni, "alumni", seed.DefaultAlumni, "Number of alumni to generate")
	seedCmd.Flags().Int64Var(&seedValue, "seed", 0, "Random seed (default: random_seed from config)")
	seedCmd.Flags().IntVar(&seedWorkers, "workers", seed.DefaultWorkers, "Concurrent writers")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx, cfg, c, err := open(cmd, true)
	if err != nil {
		return err
	}
	defer closeComponents(ctx, c)

	value := cfg.RandomSeed
	if cmd.Flags().Changed("seed") {
		value = seedValue
	}
	stats, err := seed.Run(ctx, c.Store, seed.Config{
		Alumni:  seedAlumni,
		Seed:    value,
		Workers: seedWorkers,
	})
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	return render(cmd, stats, func(w io.Writer) {
		fmt.Fprintf(w, "Seeded %s profiles and %s transitions in %s\n",
			humanize.Comma(int64(stats.Profiles)),
			humanize.Comma(int64(stats.Transitions)),
			stats.Duration.Round(time.Millisecond))
	})
}
