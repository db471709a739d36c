// Package analysis runs the dead code analysis for a project root: it merges
// configuration with per-run options, discovers files, aggregates them and
// classifies every definition.
package analysis

import (
	"context"
	"io"
	"log/slog"

	"github.com/panbanda/gdcf/internal/progress"
	"github.com/panbanda/gdcf/internal/service/scanner"
	"github.com/panbanda/gdcf/pkg/analyzer/deadcode"
	"github.com/panbanda/gdcf/pkg/config"
	"github.com/panbanda/gdcf/pkg/models"
	"github.com/panbanda/gdcf/pkg/source"
)

// Service orchestrates dead code analysis runs.
type Service struct {
	config   *config.Config
	logger   *slog.Logger
	source   source.ContentSource
	progress io.Writer
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithLogger sets the logger for discovery and skipped files.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithSource sets where file contents are read from (for testing).
func WithSource(src source.ContentSource) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithProgress draws a progress bar to w while files are read.
func WithProgress(w io.Writer) Option {
	return func(s *Service) {
		s.progress = w
	}
}

// New creates a new analysis service.
func New(opts ...Option) *Service {
	s := &Service{
		config: config.DefaultConfig(),
		logger: slog.Default(),
		source: source.NewFilesystem(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.config == nil {
		s.config = config.DefaultConfig()
	}
	return s
}

// Options overrides configuration for a single run.
type Options struct {
	// TestDirs replaces every other test path rule when set.
	TestDirs []string
	// ExcludeDirs replaces the configured exclusions when set.
	ExcludeDirs []string
	// NoDefaultExcludes drops the configured exclusions, keeping ExcludeDirs.
	NoDefaultExcludes bool
	// Gitignore enables .gitignore filtering in addition to the config.
	Gitignore bool
}

// Result is the outcome of one run.
type Result struct {
	Report   *models.DeadCodeReport
	Scan     *models.ScanResult
	Analyzer *deadcode.Analyzer
}

// Run scans root and classifies its definitions. A missing or non-directory
// root is reported as a *scanner.RootError before any file is read.
func (s *Service) Run(ctx context.Context, root string, opts Options) (*Result, error) {
	cfg := opts.Apply(s.config)

	disc, err := scanner.New(scanner.WithConfig(cfg), scanner.WithLogger(s.logger)).Discover(root)
	if err != nil {
		return nil, err
	}

	tests, err := testMatcher(cfg, disc.Root, opts)
	if err != nil {
		return nil, err
	}

	scan, err := s.aggregate(ctx, disc)
	if err != nil {
		return nil, err
	}

	a := deadcode.New(scan,
		deadcode.WithTestPaths(tests),
		deadcode.WithExtraCallbacks(cfg.Analysis.ExtraCallbacks...),
	)
	return &Result{
		Report:   models.NewDeadCodeReport(scan, a.Unused(), a.TestOnly()),
		Scan:     scan,
		Analyzer: a,
	}, nil
}

// Explain scans root and describes the definitions and references of name.
func (s *Service) Explain(ctx context.Context, root, name string, opts Options) (*models.FunctionExplanation, error) {
	res, err := s.Run(ctx, root, opts)
	if err != nil {
		return nil, err
	}
	return res.Analyzer.Explain(name), nil
}

func (s *Service) aggregate(ctx context.Context, disc *scanner.Discovery) (*models.ScanResult, error) {
	var tracker *progress.Tracker
	if s.progress != nil && len(disc.Scripts)+len(disc.Scenes) > 0 {
		tracker = progress.NewWriterTracker(s.progress, "Scanning", len(disc.Scripts)+len(disc.Scenes))
	}

	agg := deadcode.NewAggregator(
		deadcode.WithSource(s.source),
		deadcode.WithLogger(s.logger),
		deadcode.WithFileHook(func(string) { tracker.Tick() }),
	)
	scan, err := agg.ScanFiles(ctx, disc.Root, disc.Scripts, disc.Scenes)
	if err != nil {
		tracker.FinishError(err)
		return nil, err
	}
	tracker.FinishSuccess()
	return scan, nil
}

// Apply returns a copy of base with the options applied.
func (opts Options) Apply(base *config.Config) *config.Config {
	if base == nil {
		base = config.DefaultConfig()
	}
	cfg := *base
	switch {
	case opts.NoDefaultExcludes:
		cfg.Exclude.Dirs = append([]string(nil), opts.ExcludeDirs...)
	case len(opts.ExcludeDirs) > 0:
		cfg.Exclude.Dirs = opts.ExcludeDirs
	}
	cfg.Exclude.Gitignore = cfg.Exclude.Gitignore || opts.Gitignore
	return &cfg
}

// testMatcher picks the test path rule: explicit test dirs first, then the
// configured dirs and patterns, then the default naming rule.
func testMatcher(cfg *config.Config, root string, opts Options) (deadcode.TestPathMatcher, error) {
	if len(opts.TestDirs) > 0 {
		return deadcode.NewDirTestPaths(root, opts.TestDirs...), nil
	}

	var matchers deadcode.AnyTestPaths
	if len(cfg.Tests.Dirs) > 0 {
		matchers = append(matchers, deadcode.NewDirTestPaths(root, cfg.Tests.Dirs...))
	}
	if len(cfg.Tests.Patterns) > 0 {
		g, err := deadcode.NewGlobTestPaths(root, cfg.Tests.Patterns...)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, g)
	}
	if len(matchers) == 0 {
		return deadcode.DefaultTestPaths{Root: root}, nil
	}
	return matchers, nil
}
