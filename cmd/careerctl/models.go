package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Ritik-JS/alumni-careerpath/internal/adapters/artifact"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List published model versions",
	Long:  `List complete model versions in the artifact directory, newest first.`,
	Args:  cobra.NoArgs,
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, _ []string) error {
	ctx, _, c, err := open(cmd, false)
	if err != nil {
		return err
	}
	defer closeComponents(ctx, c)

	manifests, err := c.Artifacts.List(ctx)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	if manifests == nil {
		manifests = []artifact.Manifest{}
	}
	return render(cmd, manifests, func(w io.Writer) {
		if len(manifests) == 0 {
			fmt.Fprintln(w, "No models published")
			return
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "VERSION\tCREATED\tSIZE\tSAMPLES\tACCURACY\tSEARCH")
		for i := range manifests {
			m := &manifests[i]
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%.3f\t%s\n",
				m.Version,
				humanize.Time(m.CreatedAt),
				humanize.Bytes(uint64(m.SizeBytes())),
				m.TrainSamples, m.TestSamples,
				m.Metrics.Accuracy,
				m.Strategy.Kind)
		}
		_ = tw.Flush()
	})
}
