// Package scanner resolves a project root and discovers its scripts and
// scenes.
package scanner

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/panbanda/gdcf/internal/scanner"
	"github.com/panbanda/gdcf/pkg/config"
)

// ErrNotDirectory is wrapped by RootError when the root exists but is a file.
var ErrNotDirectory = errors.New("not a directory")

// Discovery contains the result of a file scan.
type Discovery struct {
	Root    string
	Scripts []string
	Scenes  []string
}

// Service provides file discovery.
type Service struct {
	config *config.Config
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithLogger sets the logger passed to the directory walk.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// New creates a new scanner service.
func New(opts ...Option) *Service {
	s := &Service{
		config: config.DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.config == nil {
		s.config = config.DefaultConfig()
	}
	return s
}

// Scanner returns the file scanner configured from the service settings.
func (s *Service) Scanner() *scanner.Scanner {
	return scanner.NewScanner(s.config, scanner.WithLogger(s.logger))
}

// ResolveRoot makes path absolute and resolves symlinks, keeping the
// absolute path when resolution fails. The empty path is the working
// directory. A missing root or one that is not a directory is a *RootError.
func ResolveRoot(path string) (string, error) {
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &RootError{Path: path, Err: err}
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", &RootError{Path: abs, Err: err}
	}
	if !info.IsDir() {
		return "", &RootError{Path: abs, Err: ErrNotDirectory}
	}
	return abs, nil
}

// Discover resolves path and lists the scripts and scenes beneath it.
func (s *Service) Discover(path string) (*Discovery, error) {
	root, err := ResolveRoot(path)
	if err != nil {
		return nil, err
	}
	scripts, scenes, err := s.Scanner().ScanProject(root)
	if err != nil {
		return nil, &ScanError{Path: root, Err: err}
	}
	return &Discovery{Root: root, Scripts: scripts, Scenes: scenes}, nil
}

// RootError indicates the project root is missing or not a directory.
type RootError struct {
	Path string
	Err  error
}

func (e *RootError) Error() string {
	return "invalid project root " + e.Path + ": " + e.Err.Error()
}

func (e *RootError) Unwrap() error {
	return e.Err
}

// ScanError indicates a scanning failure.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return "failed to scan directory " + e.Path + ": " + e.Err.Error()
}

func (e *ScanError) Unwrap() error {
	return e.Err
}
