// Package scanner discovers GDScript and scene files under a project root.
package scanner

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/panbanda/gdcf/pkg/config"
	"github.com/panbanda/gdcf/pkg/parser"
)

// Scanner finds files by extension, skipping excluded directories.
type Scanner struct {
	excludeDirs map[string]struct{}
	gitignore   bool
	logger      *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger used for walk diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) {
		s.logger = l
	}
}

// NewScanner creates a new file scanner.
func NewScanner(cfg *config.Config, opts ...Option) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Scanner{
		excludeDirs: make(map[string]struct{}, len(cfg.Exclude.Dirs)),
		gitignore:   cfg.Exclude.Gitignore,
		logger:      slog.Default(),
	}
	for _, d := range cfg.Exclude.Dirs {
		if name := NormalizeExcludeDir(d); name != "" {
			s.excludeDirs[name] = struct{}{}
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeExcludeDir reduces an exclusion entry to the directory name it
// matches: "**/addons", "foo/addons", "addons/" and "foo\addons" all
// become "addons".
func NormalizeExcludeDir(dir string) string {
	d := strings.TrimSpace(strings.ReplaceAll(dir, `\`, "/"))
	d = strings.TrimRight(d, "/")
	if i := strings.LastIndex(d, "/"); i >= 0 {
		d = d[i+1:]
	}
	if d == "**" || d == "*" {
		return ""
	}
	return d
}

// IsExcludedDir reports whether a directory with this base name is skipped.
func (s *Scanner) IsExcludedDir(name string) bool {
	_, ok := s.excludeDirs[name]
	return ok
}

// ScanDir recursively collects files under root whose extension equals ext,
// compared case-insensitively. Excluded subtrees are never entered. Symlinks
// are followed when their target lies inside root; a file reachable through
// several links is reported once, under the path walked first. A root that
// is not a directory yields no files.
func (s *Scanner) ScanDir(root, ext string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, nil
	}

	// Resolve root to absolute path for symlink containment
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if resolved, err := filepath.EvalSymlinks(absRoot); err == nil {
		absRoot = resolved
	}

	w := &walk{
		root:    absRoot,
		ext:     ext,
		ignore:  s.loadGitignore(absRoot),
		seen:    make(map[string]struct{}),
		entered: map[string]struct{}{absRoot: {}},
	}
	err = s.walkDir(w, root, root)
	return w.files, err
}

// walk is the state of one ScanDir call.
type walk struct {
	root    string
	ext     string
	ignore  *ignoreMatcher
	files   []string
	seen    map[string]struct{} // real paths of collected files
	entered map[string]struct{} // real directories walked so far through links
}

// walkDir walks the real directory base, reporting paths under shown.
func (s *Scanner) walkDir(w *walk, base, shown string) error {
	return filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Debug("walk error", "path", path, "error", err)
			return nil
		}
		if path == base {
			return nil
		}
		display := path
		if base != shown {
			rel, err := filepath.Rel(base, path)
			if err != nil {
				return nil
			}
			display = filepath.Join(shown, rel)
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return s.followLink(w, display, path)
		}

		if d.IsDir() {
			if s.skipDir(w, display) {
				return filepath.SkipDir
			}
			return nil
		}

		s.collect(w, display, path)
		return nil
	})
}

func (s *Scanner) followLink(w *walk, display, path string) error {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil || !isWithinRoot(resolved, w.root) {
		s.logger.Debug("skipping symlink", "path", display)
		return nil
	}
	target, err := os.Stat(resolved)
	if err != nil {
		return nil
	}
	if !target.IsDir() {
		s.collect(w, display, resolved)
		return nil
	}

	if s.skipDir(w, display) {
		return nil
	}
	if _, ok := w.entered[resolved]; ok {
		s.logger.Debug("skipping symlink cycle", "path", display, "target", resolved)
		return nil
	}
	w.entered[resolved] = struct{}{}
	s.logger.Debug("following symlink", "path", display, "target", resolved)
	return s.walkDir(w, resolved, display)
}

func (s *Scanner) skipDir(w *walk, display string) bool {
	if s.IsExcludedDir(filepath.Base(display)) {
		s.logger.Debug("skipping excluded directory", "path", display)
		return true
	}
	if w.ignore.match(display, true) {
		s.logger.Debug("skipping ignored directory", "path", display)
		return true
	}
	return false
}

func (s *Scanner) collect(w *walk, display, path string) {
	if !strings.EqualFold(filepath.Ext(display), w.ext) {
		return
	}
	if w.ignore.match(display, false) {
		s.logger.Debug("skipping ignored file", "path", display)
		return
	}
	realPath := path
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		realPath = resolved
	}
	if _, dup := w.seen[realPath]; dup {
		s.logger.Debug("skipping file already reached", "path", display, "target", realPath)
		return
	}
	w.seen[realPath] = struct{}{}
	s.logger.Debug("discovered", "path", display)
	w.files = append(w.files, display)
}

// ScanProject returns the GDScript files and the scene files under root.
func (s *Scanner) ScanProject(root string) (scripts, scenes []string, err error) {
	if scripts, err = s.ScanDir(root, parser.ExtGDScript); err != nil {
		return nil, nil, err
	}
	if scenes, err = s.ScanDir(root, parser.ExtScene); err != nil {
		return nil, nil, err
	}
	return scripts, scenes, nil
}

// ignoreMatcher applies .gitignore rules relative to base.
type ignoreMatcher struct {
	base    string
	matcher gitignore.Matcher
}

// loadGitignore reads every .gitignore under the enclosing git repository,
// or under root when it is not inside one.
func (s *Scanner) loadGitignore(absRoot string) *ignoreMatcher {
	if !s.gitignore {
		return nil
	}
	base := findGitRoot(absRoot)
	if base == "" {
		base = absRoot
	}
	patterns, err := gitignore.ReadPatterns(osfs.New(base), nil)
	if err != nil {
		s.logger.Debug("reading gitignore failed", "root", base, "error", err)
		return nil
	}
	if len(patterns) == 0 {
		return nil
	}
	return &ignoreMatcher{base: base, matcher: gitignore.NewMatcher(patterns)}
}

func (m *ignoreMatcher) match(path string, isDir bool) bool {
	if m == nil {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	rel, err := filepath.Rel(m.base, abs)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}
	return m.matcher.Match(strings.Split(rel, string(filepath.Separator)), isDir)
}

// findGitRoot finds the root of the git repository by looking for .git directory.
// Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir := start
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// isWithinRoot checks if a path is contained within the root directory.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)

	// Add separator to prevent "/root2" matching "/root"
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}
