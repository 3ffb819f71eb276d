// Package runner orchestrates a conformance run: discover and load
// specification documents, execute each against its scope, and report
// outcomes. Documents are independent of each other; features within one
// document execute strictly in declaration order.
package runner

import (
	"log/slog"

	"github.com/c360studio/packcheck/config"
	"github.com/c360studio/packcheck/loader"
	"github.com/c360studio/packcheck/report"
	"github.com/c360studio/packcheck/spec"
	"github.com/google/uuid"
)

// Runner executes conformance runs for one configuration.
type Runner struct {
	cfg      *config.Config
	loader   *loader.Loader
	reporter *report.Reporter
	logger   *slog.Logger
}

// New creates a runner. A nil logger falls back to slog.Default.
func New(cfg *config.Config, reporter *report.Reporter, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg: cfg,
		loader: loader.NewLoader(loader.Options{
			HostTag:  cfg.Run.HostTag,
			Patterns: cfg.Specs.Patterns,
			Logger:   logger,
		}),
		reporter: reporter,
		logger:   logger,
	}
}

// Run loads every specification document under root and executes them
// sequentially. The returned success is the logical AND across documents; a
// constant violation aborts only the offending document's run.
func (r *Runner) Run(root string) (bool, error) {
	runID := uuid.New().String()
	r.logger.Info("Starting conformance run",
		slog.String("run_id", runID), slog.String("root", root))

	docs, err := r.loader.Load(root)
	if err != nil {
		return false, err
	}
	if len(docs) == 0 {
		r.logger.Warn("No specification documents found",
			slog.String("run_id", runID), slog.String("root", root))
	}

	executor := spec.NewExecutor(r.logger)
	success := true
	for _, doc := range docs {
		r.reporter.BeginDocument(doc)
		ok, err := executor.RunDocument(doc, r.reporter)
		if err != nil {
			// Fatal to this document only; the run continues.
			ok = false
		}
		if !ok {
			success = false
		}
		r.reporter.EndDocument(doc)
	}
	r.reporter.Summary(docs)

	r.logger.Info("Conformance run finished",
		slog.String("run_id", runID),
		slog.Int("documents", len(docs)),
		slog.Bool("success", success))
	return success, nil
}
