// Package deadcode classifies GDScript functions as unused or referenced only
// from test code.
//
// A run has two phases. The Aggregator walks a project and folds every
// file's definitions and reference sites into one models.ScanResult. The
// Analyzer then answers, per definition, whether any qualifying reference
// exists and where those references live. References are matched by name
// across the whole tree; there is no scope or type resolution.
package deadcode

import (
	"github.com/panbanda/gdcf/pkg/models"
)

// Analyzer classifies the definitions of one scan.
type Analyzer struct {
	scan      *models.ScanResult
	tests     TestPathMatcher
	callbacks map[string]struct{}

	defSites   map[defSite]struct{}
	canonical  map[string]string
	testCache  map[string]bool
	qualifying map[string][]models.ReferenceSite
}

// defSite identifies a declaration line. A reference landing on one is the
// declaration matching itself, not a use.
type defSite struct {
	path string
	line uint32
	name string
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithTestPaths replaces the default test path rule.
func WithTestPaths(m TestPathMatcher) Option {
	return func(a *Analyzer) {
		if m != nil {
			a.tests = m
		}
	}
}

// WithExtraCallbacks treats names as engine callbacks in addition to the
// built-in list.
func WithExtraCallbacks(names ...string) Option {
	return func(a *Analyzer) {
		for _, n := range names {
			a.callbacks[n] = struct{}{}
		}
	}
}

// New creates an analyzer over scan.
func New(scan *models.ScanResult, opts ...Option) *Analyzer {
	if scan == nil {
		scan = models.NewScanResult("")
	}
	if scan.References == nil {
		scan.References = models.NewReferenceSet()
	}

	a := &Analyzer{
		scan:       scan,
		tests:      DefaultTestPaths{Root: scan.Root},
		callbacks:  make(map[string]struct{}, len(engineCallbacks)),
		canonical:  make(map[string]string),
		testCache:  make(map[string]bool),
		qualifying: make(map[string][]models.ReferenceSite),
	}
	for _, cb := range engineCallbacks {
		a.callbacks[cb] = struct{}{}
	}
	for _, opt := range opts {
		opt(a)
	}

	a.defSites = make(map[defSite]struct{}, len(scan.Definitions))
	for _, d := range scan.Definitions {
		a.defSites[defSite{path: a.canonicalPath(d.File), line: d.Line, name: d.Name}] = struct{}{}
	}
	return a
}

// Unused returns definitions with no qualifying reference, in definition
// order. Engine callbacks, GUT hooks, test_ functions and opted-out
// definitions are never unused.
func (a *Analyzer) Unused() []models.FunctionDefinition {
	unused := make([]models.FunctionDefinition, 0)
	for _, d := range a.scan.Definitions {
		if a.IsCallback(d.Name) || IsGUTHook(d.Name) || IsTestFunctionName(d.Name) || d.IgnoreDeadCode {
			continue
		}
		if len(a.References(d.Name)) == 0 {
			unused = append(unused, d)
		}
	}
	return unused
}

// TestOnly returns non-test definitions whose qualifying references all lie
// in test code, in definition order.
func (a *Analyzer) TestOnly() []models.FunctionDefinition {
	testOnly := make([]models.FunctionDefinition, 0)
	for _, d := range a.scan.Definitions {
		if a.IsCallback(d.Name) || d.IgnoreDeadCode || a.IsTestPath(d.File) {
			continue
		}
		refs := a.References(d.Name)
		if len(refs) == 0 {
			continue
		}
		if a.allInTests(refs) {
			testOnly = append(testOnly, d)
		}
	}
	return testOnly
}

func (a *Analyzer) allInTests(refs []models.ReferenceSite) bool {
	for _, r := range refs {
		if !a.IsTestPath(r.Path) {
			return false
		}
	}
	return true
}

// References returns the sites referencing name, excluding sites on the
// declaration line of a same-named definition.
func (a *Analyzer) References(name string) []models.ReferenceSite {
	if refs, ok := a.qualifying[name]; ok {
		return refs
	}
	if !a.scan.References.Has(name) {
		a.qualifying[name] = nil
		return nil
	}

	var refs []models.ReferenceSite
	for _, site := range a.scan.References.Sites(name) {
		if _, own := a.defSites[defSite{path: a.canonicalPath(site.Path), line: site.Line, name: name}]; own {
			continue
		}
		refs = append(refs, site)
	}
	a.qualifying[name] = refs
	return refs
}

// Definitions returns every definition named name.
func (a *Analyzer) Definitions(name string) []models.FunctionDefinition {
	return a.scan.DefinitionsNamed(name)
}

// IsCallback reports whether name is treated as an engine callback.
func (a *Analyzer) IsCallback(name string) bool {
	_, ok := a.callbacks[name]
	return ok
}

// IsTestPath classifies path with the configured matcher, once per path.
func (a *Analyzer) IsTestPath(path string) bool {
	if v, ok := a.testCache[path]; ok {
		return v
	}
	v := a.tests.IsTestPath(path)
	a.testCache[path] = v
	return v
}

func (a *Analyzer) canonicalPath(path string) string {
	if c, ok := a.canonical[path]; ok {
		return c
	}
	c := canonicalPath(path)
	a.canonical[path] = c
	return c
}

// Status is the classification of a single definition.
type Status string

const (
	StatusUsed      Status = "used"
	StatusUnused    Status = "unused"
	StatusTestOnly  Status = "test_only"
	StatusCallback  Status = "engine_callback"
	StatusIgnored   Status = "ignored"
	StatusTestEntry Status = "test_entry"
)

// Classify returns the status of d. StatusUnused and StatusTestOnly agree
// with Unused and TestOnly; the other statuses say why neither applies.
func (a *Analyzer) Classify(d models.FunctionDefinition) Status {
	switch {
	case a.IsCallback(d.Name):
		return StatusCallback
	case d.IgnoreDeadCode:
		return StatusIgnored
	}

	refs := a.References(d.Name)
	if len(refs) == 0 {
		if IsGUTHook(d.Name) || IsTestFunctionName(d.Name) {
			return StatusTestEntry
		}
		return StatusUnused
	}
	if !a.IsTestPath(d.File) && a.allInTests(refs) {
		return StatusTestOnly
	}
	return StatusUsed
}

// Explain collects the definitions and every recorded reference of name.
// Paths are shown relative to the scan root.
func (a *Analyzer) Explain(name string) *models.FunctionExplanation {
	root := a.scan.Root
	ex := &models.FunctionExplanation{
		Name:        name,
		Definitions: make([]models.DefinitionStatus, 0),
		References:  make([]models.ReferenceDetail, 0),
		Qualifying:  len(a.References(name)),
	}
	for _, d := range a.scan.DefinitionsNamed(name) {
		ex.Definitions = append(ex.Definitions, models.DefinitionStatus{
			File:     models.DisplayPath(root, d.File),
			Line:     d.Line,
			IsStatic: d.IsStatic,
			Status:   string(a.Classify(d)),
		})
	}
	for _, site := range a.scan.References.Sites(name) {
		_, own := a.defSites[defSite{path: a.canonicalPath(site.Path), line: site.Line, name: name}]
		ex.References = append(ex.References, models.ReferenceDetail{
			File:        models.DisplayPath(root, site.Path),
			Line:        site.Line,
			Declaration: own,
			TestCode:    a.IsTestPath(site.Path),
		})
	}
	return ex
}
