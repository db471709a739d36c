package deadcode

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// TestPathMatcher decides whether a file is test code.
type TestPathMatcher interface {
	IsTestPath(path string) bool
}

// TestPathFunc adapts a plain function to TestPathMatcher.
type TestPathFunc func(path string) bool

// IsTestPath calls f(path).
func (f TestPathFunc) IsTestPath(path string) bool {
	return f(path)
}

// DefaultTestPaths classifies a file under Root as test code when a
// directory between Root and the file is named test or tests, or when the
// file's base name without extension starts with test_ or ends with _test.
// Comparisons are case-insensitive. Files outside Root are never test code.
type DefaultTestPaths struct {
	Root string
}

// IsTestPath implements TestPathMatcher.
func (d DefaultTestPaths) IsTestPath(path string) bool {
	rel, ok := relativeTo(d.Root, path)
	if !ok {
		return false
	}

	parts := strings.Split(rel, "/")
	for _, dir := range parts[:len(parts)-1] {
		if strings.EqualFold(dir, "test") || strings.EqualFold(dir, "tests") {
			return true
		}
	}

	base := parts[len(parts)-1]
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
	return strings.HasPrefix(stem, "test_") || strings.HasSuffix(stem, "_test")
}

// DirTestPaths classifies files under any of a set of directories as test
// code. Relative directories are resolved against the root.
type DirTestPaths struct {
	dirs []string
}

// NewDirTestPaths creates a matcher for dirs under root.
func NewDirTestPaths(root string, dirs ...string) *DirTestPaths {
	m := &DirTestPaths{dirs: make([]string, 0, len(dirs))}
	for _, d := range dirs {
		if !filepath.IsAbs(d) {
			d = filepath.Join(root, d)
		}
		m.dirs = append(m.dirs, canonicalPath(d))
	}
	return m
}

// IsTestPath implements TestPathMatcher.
func (m *DirTestPaths) IsTestPath(path string) bool {
	p := canonicalPath(path)
	for _, d := range m.dirs {
		if strings.HasPrefix(p, d+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// GlobTestPaths classifies files by glob patterns matched against the
// slash-separated path relative to the root, e.g. "**/*_spec.gd".
type GlobTestPaths struct {
	root     string
	patterns []glob.Glob
}

// NewGlobTestPaths compiles patterns for files under root.
func NewGlobTestPaths(root string, patterns ...string) (*GlobTestPaths, error) {
	m := &GlobTestPaths{root: root, patterns: make([]glob.Glob, 0, len(patterns))}
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid test pattern %q: %w", p, err)
		}
		m.patterns = append(m.patterns, g)
	}
	return m, nil
}

// IsTestPath implements TestPathMatcher.
func (m *GlobTestPaths) IsTestPath(path string) bool {
	rel, ok := relativeTo(m.root, path)
	if !ok {
		return false
	}
	for _, g := range m.patterns {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// AnyTestPaths matches when any of its matchers does.
type AnyTestPaths []TestPathMatcher

// IsTestPath implements TestPathMatcher.
func (a AnyTestPaths) IsTestPath(path string) bool {
	for _, m := range a {
		if m.IsTestPath(path) {
			return true
		}
	}
	return false
}

// relativeTo returns the slash-separated path of path relative to root after
// canonicalizing both, or false when path is not inside root.
func relativeTo(root, path string) (string, bool) {
	r := canonicalPath(root)
	p := canonicalPath(path)
	rel, err := filepath.Rel(r, p)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// canonicalPath resolves path to an absolute path with symlinks evaluated.
// When symlinks cannot be evaluated (the file is gone, a link is broken) the
// absolute path is returned, and when even that fails, the input.
func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return abs
	}
	return resolved
}
