package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"

	"archreport/internal/job"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// reportFlags are the job parameters shared by report, batch and watch.
type reportFlags struct {
	reportType    string
	format        string
	sortBy        string
	thumbnails    bool
	authenticated bool
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.reportType, "type", "t", "itemList", "Report type: itemList, fileList, storageLocations, boxLabelCsv")
	cmd.Flags().StringVarP(&f.format, "format", "f", "csv", "Report format: csv or html")
	cmd.Flags().StringVarP(&f.sortBy, "sort-by", "s", "", "Sort field: referenceCode, title, startDate, locations (default referenceCode)")
	cmd.Flags().BoolVar(&f.thumbnails, "thumbnails", false, "Include thumbnails (HTML only)")
	cmd.Flags().BoolVar(&f.authenticated, "authenticated", false, "Run as an authenticated user (drafts and locations visible)")
}

func (f *reportFlags) params(resource string) job.Params {
	return job.Params{
		ResourceID:        resource,
		ReportType:        f.reportType,
		ReportFormat:      f.format,
		SortBy:            f.sortBy,
		IncludeThumbnails: f.thumbnails,
		Authenticated:     f.authenticated,
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func printJob(w io.Writer, j *job.Job) {
	switch {
	case j.State == job.StateFailed:
		fmt.Fprintf(w, "%s  failed     %s: %s\n", j.ID, j.Params.ResourceID, job.Message(j.Err))
	case j.Output == "":
		fmt.Fprintf(w, "%s  completed  %s: nothing to report\n", j.ID, j.Params.ResourceID)
	default:
		fmt.Fprintf(w, "%s  completed  %s: %s\n", j.ID, j.Params.ResourceID, filepath.Join(cfg.Reports.DownloadsDir, j.Output))
	}
}

func newReportCmd() *cobra.Command {
	var flags reportFlags
	cmd := &cobra.Command{
		Use:   "report <resource>",
		Short: "Generate a report for one description (id or slug)",
		Example: `  archreport report alpha-fonds --type itemList --format csv --sort-by title
  archreport report 2 --type fileList --format html --authenticated`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			j, err := newRunner(st, job.StoreExecutor{Log: st}).Run(ctx, flags.params(args[0]))
			printJob(cmd.OutOrStdout(), j)
			if err != nil {
				return fmt.Errorf("report failed: %w", err)
			}
			logger.Debug("report finished", zap.String("job", j.ID.String()), zap.Duration("took", j.Duration()))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newBatchCmd() *cobra.Command {
	var (
		flags       reportFlags
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "batch <resource>...",
		Short: "Generate the same report for several descriptions concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			limit := cfg.GetBatchConcurrency()
			if concurrency > 0 {
				limit = concurrency
			}
			jobs, err := newRunner(st, job.StoreExecutor{Log: st}).RunBatch(ctx, flags.params(""), args, limit)
			for _, j := range jobs {
				if j != nil {
					printJob(cmd.OutOrStdout(), j)
				}
			}
			if err != nil {
				return fmt.Errorf("batch failed: %w", err)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Maximum concurrent jobs (default from config)")
	return cmd
}
