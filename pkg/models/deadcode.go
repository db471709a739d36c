package models

import (
	"fmt"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// FunctionDefinition is one textual function declaration in a GDScript file.
// Declarations sharing a name are distinct definitions.
type FunctionDefinition struct {
	Name           string `json:"name" toon:"name"`
	File           string `json:"file" toon:"file"`
	Line           uint32 `json:"line" toon:"line"`
	IsStatic       bool   `json:"is_static" toon:"is_static"`
	IgnoreDeadCode bool   `json:"ignore_dead_code" toon:"ignore_dead_code"`
}

// Location returns "file:line".
func (d FunctionDefinition) Location() string {
	return fmt.Sprintf("%s:%d", d.File, d.Line)
}

// ReferenceSite is a file and line where a name is used in a call-like or
// value-like shape.
type ReferenceSite struct {
	Path string `json:"path" toon:"path"`
	Line uint32 `json:"line" toon:"line"`
}

// ReferenceSet holds reference sites keyed by referenced name with set
// semantics: a (name, path, line) triple is stored once however many times
// it is added. Lines are kept per path in a roaring bitmap.
type ReferenceSet struct {
	byName map[string]map[string]*roaring.Bitmap
}

// NewReferenceSet creates an empty set.
func NewReferenceSet() *ReferenceSet {
	return &ReferenceSet{byName: make(map[string]map[string]*roaring.Bitmap)}
}

// Add records that name is referenced at path:line.
func (s *ReferenceSet) Add(name, path string, line uint32) {
	if s.byName == nil {
		s.byName = make(map[string]map[string]*roaring.Bitmap)
	}
	paths, ok := s.byName[name]
	if !ok {
		paths = make(map[string]*roaring.Bitmap)
		s.byName[name] = paths
	}
	lines, ok := paths[path]
	if !ok {
		lines = roaring.New()
		paths[path] = lines
	}
	lines.Add(line)
}

// Has reports whether name has at least one reference site.
func (s *ReferenceSet) Has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Len returns the number of distinct sites referencing name.
func (s *ReferenceSet) Len(name string) int {
	n := 0
	for _, lines := range s.byName[name] {
		n += int(lines.GetCardinality())
	}
	return n
}

// Sites returns the sites referencing name ordered by path, then line.
func (s *ReferenceSet) Sites(name string) []ReferenceSite {
	paths := s.byName[name]
	if len(paths) == 0 {
		return nil
	}
	ordered := make([]string, 0, len(paths))
	for p := range paths {
		ordered = append(ordered, p)
	}
	sort.Strings(ordered)

	sites := make([]ReferenceSite, 0, s.Len(name))
	for _, p := range ordered {
		it := paths[p].Iterator()
		for it.HasNext() {
			sites = append(sites, ReferenceSite{Path: p, Line: it.Next()})
		}
	}
	return sites
}

// Names returns every referenced name in sorted order.
func (s *ReferenceSet) Names() []string {
	names := make([]string, 0, len(s.byName))
	for name := range s.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Total returns the number of distinct (name, path, line) triples.
func (s *ReferenceSet) Total() int {
	n := 0
	for name := range s.byName {
		n += s.Len(name)
	}
	return n
}

// SkippedFile is a discovered file that could not be read.
type SkippedFile struct {
	Path   string `json:"path" toon:"path"`
	Reason string `json:"reason" toon:"reason"`
}

// ScanResult is the corpus-wide result of scanning one tree. It is built
// once per run and read-only afterwards.
type ScanResult struct {
	Root        string               `json:"root" toon:"root"`
	Definitions []FunctionDefinition `json:"definitions" toon:"definitions"`
	References  *ReferenceSet        `json:"-" toon:"-"`
	Files       []string             `json:"files" toon:"files"`
	Scenes      []string             `json:"scenes" toon:"scenes"`
	Skipped     []SkippedFile        `json:"skipped,omitempty" toon:"skipped,omitempty"`
}

// NewScanResult creates an empty result for root.
func NewScanResult(root string) *ScanResult {
	return &ScanResult{
		Root:        root,
		Definitions: make([]FunctionDefinition, 0),
		References:  NewReferenceSet(),
	}
}

// AddReference records a reference site for name.
func (r *ScanResult) AddReference(name, path string, line uint32) {
	if r.References == nil {
		r.References = NewReferenceSet()
	}
	r.References.Add(name, path, line)
}

// DefinitionsNamed returns every definition called name, in scan order.
func (r *ScanResult) DefinitionsNamed(name string) []FunctionDefinition {
	var defs []FunctionDefinition
	for _, d := range r.Definitions {
		if d.Name == name {
			defs = append(defs, d)
		}
	}
	return defs
}

// DeadCodeSummary provides aggregate statistics for a run.
type DeadCodeSummary struct {
	FilesScanned     int `json:"files_scanned" toon:"files_scanned"`
	ScenesScanned    int `json:"scenes_scanned" toon:"scenes_scanned"`
	FilesSkipped     int `json:"files_skipped" toon:"files_skipped"`
	TotalDefinitions int `json:"total_definitions" toon:"total_definitions"`
	TotalReferences  int `json:"total_references" toon:"total_references"`
	TotalUnused      int `json:"total_unused" toon:"total_unused"`
	TotalTestOnly    int `json:"total_test_only" toon:"total_test_only"`
}

// NewDeadCodeSummary summarizes a scan before classification counts are known.
func NewDeadCodeSummary(scan *ScanResult) DeadCodeSummary {
	s := DeadCodeSummary{
		FilesScanned:     len(scan.Files),
		ScenesScanned:    len(scan.Scenes),
		FilesSkipped:     len(scan.Skipped),
		TotalDefinitions: len(scan.Definitions),
	}
	if scan.References != nil {
		s.TotalReferences = scan.References.Total()
	}
	return s
}
