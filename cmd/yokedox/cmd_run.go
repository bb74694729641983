package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mongodb-university/yokedox/config"
	"github.com/mongodb-university/yokedox/doclet"
	"github.com/mongodb-university/yokedox/host/javasrc"
	"github.com/mongodb-university/yokedox/host/treefile"
	"github.com/mongodb-university/yokedox/java"
	"github.com/mongodb-university/yokedox/observability"
)

// runFlags are the settings shared by run and watch. Flags that were set
// override the configuration file.
type runFlags struct {
	configPath string
	source     string
	tree       string
	output     string
	filters    []string
	keepGoing  bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "configuration file (default "+config.FileName+" when present)")
	cmd.Flags().StringVar(&f.source, "source", "", "directory of .java sources")
	cmd.Flags().StringVar(&f.tree, "tree", "", "YAML or JSON element tree, - for stdin")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file, - for stdout")
	cmd.Flags().StringArrayVar(&f.filters, "filter", nil, "only document packages and types matching this glob (repeatable)")
	cmd.Flags().BoolVar(&f.keepGoing, "keep-going", false, "write the partial document when some types are malformed")
}

func (f *runFlags) load(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if f.configPath != "" {
		cfg, err = config.Load(f.configPath)
	} else {
		cfg, err = config.LoadOptional(config.FileName)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Source, cfg.Tree = f.source, ""
	}
	if flags.Changed("tree") {
		cfg.Tree, cfg.Source = f.tree, ""
	}
	if flags.Changed("output") {
		cfg.Output = f.output
	}
	if flags.Changed("filter") {
		cfg.Filter = f.filters
	}
	if flags.Changed("keep-going") {
		cfg.KeepGoing = f.keepGoing
	}
	if flags.Changed("source") && flags.Changed("tree") {
		return nil, errors.New("--source and --tree are mutually exclusive")
	}
	if cfg.Source == "" && cfg.Tree == "" {
		return nil, errors.New("one of --source or --tree is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newRunCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compile the documentation model of a source tree",
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

			r := &runner{cfg: cfg, metrics: observability.NewMetrics(), stdin: cmd.InOrStdin(), stdout: cmd.OutOrStdout()}
			return r.run(ctx)
		},
	}
	flags.register(cmd)
	return cmd
}

// runner executes pipeline runs. Each run works on its own copy of cfg.
type runner struct {
	cfg     *config.Config
	metrics *observability.Metrics
	stdin   io.Reader // tree input when the tree path is "-"
	stdout  io.Writer
}

func (r *runner) run(ctx context.Context) error {
	runID := uuid.NewString()
	start := time.Now()
	cfg := r.cfg.Clone()
	log.Info("run started", "run", runID)

	err := r.compile(ctx, cfg, runID)

	result := "ok"
	var structural *java.StructuralError
	switch {
	case err == nil:
	case errors.As(err, &structural):
		result = "structural"
	default:
		result = "error"
	}
	r.metrics.Runs.WithLabelValues(result).Inc()
	r.metrics.LastRun.SetToCurrentTime()
	if path := cfg.Metrics.Textfile; path != "" {
		if werr := r.metrics.WriteTextfile(path); werr != nil {
			log.Error("write metrics", "run", runID, "error", werr)
		}
	}
	log.Info("run finished", "run", runID, "result", result, "elapsed", time.Since(start).String())
	return err
}

func (r *runner) compile(ctx context.Context, cfg *config.Config, runID string) error {
	opts, err := doclet.OptionsFromConfig(cfg, runID)
	if err != nil {
		return err
	}
	opts.Metrics = r.metrics

	roots, err := loadRoots(ctx, cfg, r.stdin)
	if err != nil {
		return err
	}
	doc, err := doclet.Compile(ctx, roots, opts)
	if doc == nil {
		return err
	}
	if err != nil && !cfg.KeepGoing {
		return fmt.Errorf("%d malformed types, nothing written: %w", len(doclet.StructuralErrors(err)), err)
	}
	if werr := doclet.Write(doc, cfg.Output, cfg.Indent, r.stdout); werr != nil {
		return werr
	}
	if err != nil {
		log.Warningf("wrote partial document without %d malformed types", len(doclet.StructuralErrors(err)))
	}
	return nil
}

// loadRoots builds the host element tree from the configured source.
func loadRoots(ctx context.Context, cfg *config.Config, stdin io.Reader) ([]*java.Element, error) {
	switch {
	case cfg.Tree == "-" && stdin != nil:
		return treefile.Decode(stdin)
	case cfg.Tree != "":
		return treefile.Load(cfg.Tree)
	}
	exclude, err := config.NewPathFilter(cfg.Watch.Exclude)
	if err != nil {
		return nil, err
	}
	return javasrc.Load(ctx, cfg.Source, javasrc.Options{Exclude: exclude, Parallelism: cfg.Parallelism})
}
