package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Rebuild the transition matrix",
	Long: `Read role transitions inside the training window and replace the
stored transition matrix with a freshly computed one.`,
	Args: cobra.NoArgs,
	RunE: runAggregate,
}

func init() {
	rootCmd.AddCommand(aggregateCmd)
}

func runAggregate(cmd *cobra.Command, _ []string) error {
	ctx, _, c, err := open(cmd, false)
	if err != nil {
		return err
	}
	defer closeComponents(ctx, c)

	res, err := c.Service.Aggregate(ctx)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}
	return render(cmd, res, func(w io.Writer) {
		fmt.Fprintf(w, "Matrix %s\n", res.Version)
		fmt.Fprintf(w, "  transitions read: %s\n", humanize.Comma(int64(res.Facts)))
		fmt.Fprintf(w, "  entries:          %s\n", humanize.Comma(int64(res.Entries)))
		fmt.Fprintf(w, "  source roles:     %s\n", humanize.Comma(int64(res.FromRoles)))
	})
}
