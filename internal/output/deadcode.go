package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/panbanda/gdcf/pkg/models"
)

const (
	unusedTitle   = "Unused (never called)"
	testOnlyTitle = "Only called from test code (not from main app)"
	noFindings    = "No unused functions found."
)

// DeadCodeView renders a dead code report.
type DeadCodeView struct {
	Report *models.DeadCodeReport
}

// NewDeadCodeView wraps r for rendering.
func NewDeadCodeView(r *models.DeadCodeReport) *DeadCodeView {
	return &DeadCodeView{Report: r}
}

func (v *DeadCodeView) RenderData() any {
	return v.Report
}

func (v *DeadCodeView) RenderText(w io.Writer, colored bool) error {
	if !v.Report.HasFindings() {
		if colored {
			color.New(color.FgGreen).Fprintln(w, noFindings)
		} else {
			fmt.Fprintln(w, noFindings)
		}
		return nil
	}

	for _, t := range v.tables() {
		if err := t.RenderText(w, colored); err != nil {
			return err
		}
	}

	s := v.Report.Summary
	fmt.Fprintf(w, "%d unused, %d test-only (%d scripts, %d scenes scanned)\n",
		s.TotalUnused, s.TotalTestOnly, s.FilesScanned, s.ScenesScanned)
	return nil
}

func (v *DeadCodeView) RenderMarkdown(w io.Writer) error {
	fmt.Fprintf(w, "# Dead code report\n\n")
	if !v.Report.HasFindings() {
		fmt.Fprintf(w, "%s\n", noFindings)
		return nil
	}
	for _, t := range v.tables() {
		if err := t.RenderMarkdown(w); err != nil {
			return err
		}
	}
	return nil
}

func (v *DeadCodeView) tables() []*Table {
	var tables []*Table
	if len(v.Report.Unused) > 0 {
		tables = append(tables, findingsTable(unusedTitle, v.Report.Unused))
	}
	if len(v.Report.TestOnly) > 0 {
		tables = append(tables, findingsTable(testOnlyTitle, v.Report.TestOnly))
	}
	return tables
}

func findingsTable(title string, findings []models.Finding) *Table {
	rows := make([][]string, 0, len(findings))
	for _, f := range findings {
		name := f.Name
		if f.IsStatic {
			name += " (static)"
		}
		rows = append(rows, []string{f.File, strconv.FormatUint(uint64(f.Line), 10), name})
	}
	return NewTable(title, []string{"File", "Line", "Function"}, rows, nil, findings)
}

// ExplanationView renders the definitions and references of one function.
type ExplanationView struct {
	Explanation *models.FunctionExplanation
}

// NewExplanationView wraps ex for rendering.
func NewExplanationView(ex *models.FunctionExplanation) *ExplanationView {
	return &ExplanationView{Explanation: ex}
}

func (v *ExplanationView) RenderData() any {
	return v.Explanation
}

func (v *ExplanationView) RenderText(w io.Writer, colored bool) error {
	ex := v.Explanation
	title := fmt.Sprintf("References to '%s'", ex.Name)
	if colored {
		color.New(color.Bold).Fprintln(w, title)
	} else {
		fmt.Fprintln(w, title)
	}

	fmt.Fprintf(w, "  Definitions found: %d\n", len(ex.Definitions))
	for _, d := range ex.Definitions {
		fmt.Fprintf(w, "    %s:%d: %s [%s]\n", d.File, d.Line, ex.Name, d.Status)
	}
	fmt.Fprintf(w, "  References found: %d (%d qualifying)\n", len(ex.References), ex.Qualifying)
	for _, r := range ex.References {
		fmt.Fprintf(w, "    %s:%d%s\n", r.File, r.Line, referenceNote(r))
	}

	warn := func(msg string) {
		if colored {
			color.New(color.FgYellow).Fprintln(w, "  Warning: "+msg)
		} else {
			fmt.Fprintln(w, "  Warning: "+msg)
		}
	}
	if len(ex.Definitions) == 0 {
		warn(fmt.Sprintf("no definition found for '%s'", ex.Name))
	}
	if ex.Qualifying == 0 && len(ex.Definitions) > 0 {
		warn(fmt.Sprintf("no references found for '%s'", ex.Name))
	}
	return nil
}

func (v *ExplanationView) RenderMarkdown(w io.Writer) error {
	ex := v.Explanation
	fmt.Fprintf(w, "# References to `%s`\n\n", ex.Name)

	defs := make([][]string, 0, len(ex.Definitions))
	for _, d := range ex.Definitions {
		defs = append(defs, []string{d.File, strconv.FormatUint(uint64(d.Line), 10), d.Status})
	}
	if err := NewTable("Definitions", []string{"File", "Line", "Status"}, defs, nil, nil).RenderMarkdown(w); err != nil {
		return err
	}

	refs := make([][]string, 0, len(ex.References))
	for _, r := range ex.References {
		refs = append(refs, []string{r.File, strconv.FormatUint(uint64(r.Line), 10), referenceKind(r)})
	}
	return NewTable("References", []string{"File", "Line", "Kind"}, refs, nil, nil).RenderMarkdown(w)
}

func referenceKind(r models.ReferenceDetail) string {
	switch {
	case r.Declaration:
		return "declaration"
	case r.TestCode:
		return "test"
	default:
		return "code"
	}
}

func referenceNote(r models.ReferenceDetail) string {
	if k := referenceKind(r); k != "code" {
		return " (" + k + ")"
	}
	return ""
}
