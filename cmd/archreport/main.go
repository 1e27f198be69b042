package main

import (
	"fmt"
	"os"

	"archreport/internal/config"
	"archreport/internal/job"
	"archreport/internal/logging"
	"archreport/internal/report"
	"archreport/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose    bool
	configPath string

	cfg    *config.Config
	logger *zap.Logger
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "archreport",
		Short: "Generate item and file list reports from an archival description tree",
		Long: `archreport walks the descendants of an archival description (a fonds,
series or file), collects every description at the requested level and
writes them as CSV or HTML, grouped under their top-level description.

Reports are written to <downloads>/<slug>-<reportType>.<format>.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			opts := logging.Options{
				Level:      cfg.Logging.Level,
				Format:     cfg.Logging.Format,
				File:       cfg.Logging.File,
				DebugMode:  cfg.Logging.DebugMode || verbose,
				Categories: cfg.Logging.Categories,
			}
			if err := logging.Initialize(opts); err != nil {
				return err
			}
			logger = logging.Base()
			logger.Debug("configuration loaded",
				zap.String("config", configPath),
				zap.String("db", cfg.Database.Path),
				zap.String("downloads", cfg.Reports.DownloadsDir))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Sync()
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "archreport.yaml", "Configuration file")

	root.AddCommand(
		newReportCmd(),
		newBatchCmd(),
		newImportCmd(),
		newJobsCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", cfg.Name, cfg.Version)
			return nil
		},
	}
}

// openStore opens the configured description database.
func openStore() (*store.Store, error) {
	return store.Open(cfg.Database.Driver, cfg.Database.Path)
}

// newRunner builds a job runner over st reporting to exec.
func newRunner(st *store.Store, exec job.Executor) *job.Runner {
	return job.NewRunner(st, report.DirSink{Root: cfg.Reports.DownloadsDir}, exec, job.Options{
		Culture: cfg.Reports.Culture,
		ReferenceCode: report.ReferenceCodeOptions{
			Inherit:        cfg.ReferenceCode.Inherit,
			Separator:      cfg.ReferenceCode.Separator,
			RepositoryCode: cfg.ReferenceCode.RepositoryCode,
		},
	})
}
