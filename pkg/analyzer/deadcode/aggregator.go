package deadcode

import (
	"context"
	"log/slog"

	"github.com/panbanda/gdcf/internal/scanner"
	"github.com/panbanda/gdcf/pkg/models"
	"github.com/panbanda/gdcf/pkg/parser"
	"github.com/panbanda/gdcf/pkg/source"
)

// Aggregator scans a project into a single ScanResult.
type Aggregator struct {
	scanner   *scanner.Scanner
	source    source.ContentSource
	extractor *parser.Extractor
	logger    *slog.Logger
	onFile    func(path string)
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithScanner sets the file discovery used by Scan.
func WithScanner(s *scanner.Scanner) AggregatorOption {
	return func(a *Aggregator) {
		a.scanner = s
	}
}

// WithSource sets where file contents are read from.
func WithSource(src source.ContentSource) AggregatorOption {
	return func(a *Aggregator) {
		a.source = src
	}
}

// WithLogger sets the logger for skipped files.
func WithLogger(l *slog.Logger) AggregatorOption {
	return func(a *Aggregator) {
		a.logger = l
	}
}

// WithFileHook registers a function called after each file is processed,
// whether or not it could be read.
func WithFileHook(fn func(path string)) AggregatorOption {
	return func(a *Aggregator) {
		a.onFile = fn
	}
}

// NewAggregator creates an aggregator reading from the filesystem with the
// default scanner.
func NewAggregator(opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		source:    source.NewFilesystem(),
		extractor: parser.NewExtractor(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.scanner == nil {
		a.scanner = scanner.NewScanner(nil, scanner.WithLogger(a.logger))
	}
	return a
}

// Scan discovers the scripts and scenes under root and aggregates them.
func (a *Aggregator) Scan(ctx context.Context, root string) (*models.ScanResult, error) {
	scripts, scenes, err := a.scanner.ScanProject(root)
	if err != nil {
		return nil, err
	}
	return a.ScanFiles(ctx, root, scripts, scenes)
}

// ScanFiles aggregates the given files in order: every script, then every
// scene. Files that cannot be read are recorded in Skipped and the run
// continues. The context is checked between files.
func (a *Aggregator) ScanFiles(ctx context.Context, root string, scripts, scenes []string) (*models.ScanResult, error) {
	result := models.NewScanResult(root)
	result.Files = make([]string, 0, len(scripts))
	result.Scenes = make([]string, 0, len(scenes))

	for _, path := range scripts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		a.addScript(result, path)
		a.fileDone(path)
	}
	for _, path := range scenes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		a.addScene(result, path)
		a.fileDone(path)
	}
	return result, nil
}

func (a *Aggregator) addScript(result *models.ScanResult, path string) {
	doc, ok := a.read(result, path)
	if !ok {
		return
	}
	result.Files = append(result.Files, path)
	result.Definitions = append(result.Definitions, a.extractor.Definitions(doc)...)
	for _, ref := range a.extractor.References(doc) {
		result.AddReference(ref.Name, path, ref.Line)
	}
}

func (a *Aggregator) addScene(result *models.ScanResult, path string) {
	doc, ok := a.read(result, path)
	if !ok {
		return
	}
	result.Scenes = append(result.Scenes, path)
	for _, ref := range a.extractor.SceneReferences(doc) {
		result.AddReference(ref.Name, path, ref.Line)
	}
}

func (a *Aggregator) read(result *models.ScanResult, path string) (*parser.Document, bool) {
	text, err := source.ReadText(a.source, path)
	if err != nil {
		a.logger.Debug("skipping unreadable file", "path", path, "error", err)
		result.Skipped = append(result.Skipped, models.SkippedFile{Path: path, Reason: err.Error()})
		return nil, false
	}
	return parser.NewDocument(path, text), true
}

func (a *Aggregator) fileDone(path string) {
	if a.onFile != nil {
		a.onFile(path)
	}
}
