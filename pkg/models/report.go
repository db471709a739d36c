package models

import (
	"encoding/hex"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"
)

// FindingKind classifies a reported definition.
type FindingKind string

const (
	FindingUnused   FindingKind = "unused"
	FindingTestOnly FindingKind = "test_only"
)

// String implements fmt.Stringer. toon-go encodes named string types only
// through it.
func (k FindingKind) String() string {
	return string(k)
}

// Finding is a reported definition in display form.
type Finding struct {
	ID       string      `json:"id" toon:"id"`
	Kind     FindingKind `json:"kind" toon:"kind"`
	Name     string      `json:"name" toon:"name"`
	File     string      `json:"file" toon:"file"`
	Line     uint32      `json:"line" toon:"line"`
	IsStatic bool        `json:"is_static" toon:"is_static"`
}

// NewFinding converts a definition into a finding with its path shown
// relative to root.
func NewFinding(kind FindingKind, root string, d FunctionDefinition) Finding {
	file := DisplayPath(root, d.File)
	return Finding{
		ID:       FindingID(kind, file, d.Line, d.Name),
		Kind:     kind,
		Name:     d.Name,
		File:     file,
		Line:     d.Line,
		IsStatic: d.IsStatic,
	}
}

// FindingID returns a stable identifier for a finding: the first 16 hex
// characters of the BLAKE3 hash of "kind:path:line:name".
func FindingID(kind FindingKind, path string, line uint32, name string) string {
	data := string(kind) + ":" + path + ":" + strconv.FormatUint(uint64(line), 10) + ":" + name
	hash := blake3.Sum256([]byte(data))
	return hex.EncodeToString(hash[:8])
}

// DisplayPath returns path relative to root with forward slashes, or path
// itself when it is not under root.
func DisplayPath(root, path string) string {
	if root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// DeadCodeReport is the presentation-ready result of one run.
type DeadCodeReport struct {
	Root     string          `json:"root" toon:"root"`
	Unused   []Finding       `json:"unused" toon:"unused"`
	TestOnly []Finding       `json:"test_only" toon:"test_only"`
	Summary  DeadCodeSummary `json:"summary" toon:"summary"`
}

// NewDeadCodeReport builds a report, sorting findings by path then line.
func NewDeadCodeReport(scan *ScanResult, unused, testOnly []FunctionDefinition) *DeadCodeReport {
	r := &DeadCodeReport{
		Root:     scan.Root,
		Unused:   findings(FindingUnused, scan.Root, unused),
		TestOnly: findings(FindingTestOnly, scan.Root, testOnly),
		Summary:  NewDeadCodeSummary(scan),
	}
	r.Summary.TotalUnused = len(r.Unused)
	r.Summary.TotalTestOnly = len(r.TestOnly)
	return r
}

// HasFindings reports whether anything was reported.
func (r *DeadCodeReport) HasFindings() bool {
	return len(r.Unused) > 0 || len(r.TestOnly) > 0
}

func findings(kind FindingKind, root string, defs []FunctionDefinition) []Finding {
	out := make([]Finding, 0, len(defs))
	for _, d := range defs {
		out = append(out, NewFinding(kind, root, d))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].Line < out[j].Line
	})
	return out
}

// DefinitionStatus is one declaration of an explained function.
type DefinitionStatus struct {
	File     string `json:"file" toon:"file"`
	Line     uint32 `json:"line" toon:"line"`
	IsStatic bool   `json:"is_static" toon:"is_static"`
	Status   string `json:"status" toon:"status"`
}

// ReferenceDetail is one recorded reference site of an explained function.
// Declaration sites are listed but do not count as uses.
type ReferenceDetail struct {
	File        string `json:"file" toon:"file"`
	Line        uint32 `json:"line" toon:"line"`
	Declaration bool   `json:"declaration" toon:"declaration"`
	TestCode    bool   `json:"test_code" toon:"test_code"`
}

// FunctionExplanation describes everything known about one function name.
type FunctionExplanation struct {
	Name        string             `json:"name" toon:"name"`
	Definitions []DefinitionStatus `json:"definitions" toon:"definitions"`
	References  []ReferenceDetail  `json:"references" toon:"references"`
	Qualifying  int                `json:"qualifying_references" toon:"qualifying_references"`
}
