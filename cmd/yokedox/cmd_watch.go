package main

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mongodb-university/yokedox/config"
	"github.com/mongodb-university/yokedox/observability"
	"github.com/mongodb-university/yokedox/watch"
)

func newWatchCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run again whenever the sources change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			shutdown, err := observability.SetupTracing(ctx, cfg.Tracing.Endpoint, cfg.Tracing.Insecure)
			if err != nil {
				return err
			}
			defer shutdown(context.WithoutCancel(ctx))

			r := &runner{cfg: cfg, metrics: observability.NewMetrics(), stdout: cmd.OutOrStdout()}
			return watchAndRun(ctx, r)
		},
	}
	flags.register(cmd)
	return cmd
}

// watchAndRun runs once, then again after every batch of changes, until ctx
// is done. Failed runs are logged and do not stop watching.
func watchAndRun(ctx context.Context, r *runner) error {
	root, opts, err := watchTarget(r.cfg)
	if err != nil {
		return err
	}

	runOnce := func() {
		if err := r.run(ctx); err != nil && ctx.Err() == nil {
			log.Errorf("run failed: %s", err)
		}
	}
	w, err := watch.New(root, opts, func(paths []string) {
		log.Infof("%d files changed: %s", len(paths), strings.Join(paths, ", "))
		runOnce()
	})
	if err != nil {
		return err
	}

	runOnce()
	log.Infof("watching %s", root)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// watchTarget is the directory to watch and the files in it that trigger a
// run. The files a run writes never trigger one.
func watchTarget(cfg *config.Config) (string, watch.Options, error) {
	exclude, err := config.NewPathFilter(cfg.Watch.Exclude)
	if err != nil {
		return "", watch.Options{}, err
	}
	opts := watch.Options{Debounce: cfg.Watch.Debounce, Exclude: exclude}
	if cfg.Output != "" && cfg.Output != "-" {
		opts.Ignore = append(opts.Ignore, cfg.Output)
	}
	if cfg.Metrics.Textfile != "" {
		opts.Ignore = append(opts.Ignore, cfg.Metrics.Textfile)
	}
	if cfg.Tree != "" {
		if cfg.Tree == "-" {
			return "", opts, errors.New("cannot watch a tree read from stdin")
		}
		opts.Extensions = []string{filepath.Ext(cfg.Tree)}
		return filepath.Dir(cfg.Tree), opts, nil
	}
	opts.Extensions = []string{".java"}
	return cfg.Source, opts, nil
}
