package main

import (
	"context"
	"fmt"

	"archreport/internal/job"
	"archreport/internal/watch"

	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var flags reportFlags
	cmd := &cobra.Command{
		Use:   "watch <resource>",
		Short: "Regenerate a report whenever the database changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			// Job rows are not persisted here: writing them would retrigger the watcher.
			runner := newRunner(st, job.NopExecutor{})
			params := flags.params(args[0])
			regenerate := func(ctx context.Context) error {
				j, err := runner.Run(ctx, params)
				printJob(cmd.OutOrStdout(), j)
				return err
			}
			if err := regenerate(ctx); err != nil {
				return fmt.Errorf("initial report failed: %w", err)
			}

			w, err := watch.NewDBWatcher(st.Path(), cfg.GetWatchDebounce(), regenerate)
			if err != nil {
				return err
			}
			if err := w.Start(ctx); err != nil {
				return err
			}
			defer w.Stop()

			fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl-C to stop)\n", st.Path())
			<-w.Done()
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
