package main

import (
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

type globalFlags struct {
	dbDriver   string
	sqlitePath string
	logMode    string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "estimatectl",
		Short: "Import, reconcile and review construction estimates",
		Long: "estimatectl drives the reconciliation engine directly against the database:\n" +
			"import baselines and contractor offers, merge baselines, review alerts and export workbooks.",
		SilenceUsage: true,
		Version:      version,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&g.dbDriver, "db-driver", "", "Database driver: postgres or sqlite (default $DB_DRIVER, then sqlite)")
	f.StringVar(&g.sqlitePath, "sqlite-path", "", "SQLite file (default $SQLITE_PATH, then tenderbridge.db)")
	f.StringVar(&g.logMode, "log-mode", "quiet", "Logger mode: quiet, development or production")

	root.AddCommand(
		newProjectCmd(g),
		newBaselineCmd(g),
		newOfferCmd(g),
		newMergeCmd(g),
		newAlertsCmd(g),
		newExportCmd(g),
	)
	return root
}
