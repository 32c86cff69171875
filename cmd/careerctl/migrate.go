package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the engine's tables",
	Long: `Create any missing tables and indexes in the configured data source.
Existing tables are left as they are.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

type migrateResponse struct {
	Status string `json:"status"`
	Driver string `json:"driver"`
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx, cfg, c, err := open(cmd, true)
	if err != nil {
		return err
	}
	defer closeComponents(ctx, c)

	resp := migrateResponse{Status: "migrated", Driver: cfg.DatabaseDriver}
	return render(cmd, resp, func(w io.Writer) {
		fmt.Fprintf(w, "Schema is up to date (%s)\n", resp.Driver)
	})
}
