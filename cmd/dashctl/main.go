// Command dashctl inspects and prepares signaldesk data from the shell.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"signaldesk/internal/cli"
)

func main() {
	cli.LoadEnvFile()

	root := &cobra.Command{
		Use:   "dashctl",
		Short: "Inspect and prepare signaldesk data",
		Long: `dashctl reads the same backends as the signaldesk server.

Examples:
  dashctl list users --search jane
  dashctl list transactions --filter direction=BUY,range=week
  dashctl summary --filter range=today
  dashctl migrate --db ./data/signaldesk.db
  dashctl seed --db ./data/signaldesk.db --seed-file ./data/seed.yaml`,
		SilenceUsage: true,
	}
	root.AddCommand(newListCommand(), newSummaryCommand(), newSeedCommand(), newMigrateCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
