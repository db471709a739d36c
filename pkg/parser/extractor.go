package parser

import (
	"regexp"

	"github.com/panbanda/gdcf/pkg/models"
)

const ident = `[A-Za-z_][A-Za-z0-9_]*`

// keywords are identifiers that look like calls or values but never name a
// user function.
var keywords = []string{
	"if", "elif", "else", "for", "while", "match", "when", "return", "pass",
	"break", "continue", "and", "or", "not", "in", "is", "as", "await",
	"func", "class", "static", "const", "var", "signal", "extends", "super",
	"true", "false", "null", "self", "print", "assert", "preload",
}

// Extractor owns the compiled patterns for definitions and references.
// It is immutable after construction and safe to reuse across files.
type Extractor struct {
	definition *regexp.Regexp
	ignore     *regexp.Regexp

	dynamicCall *regexp.Regexp
	callable    *regexp.Regexp
	connect     *regexp.Regexp
	methodCall  *regexp.Regexp
	indexedCall *regexp.Regexp
	bareCall    *regexp.Regexp
	nestedCall  *regexp.Regexp
	assignment  *regexp.Regexp
	firstArg    *regexp.Regexp
	sceneMethod *regexp.Regexp

	keywords map[string]struct{}
}

// NewExtractor compiles every pattern once.
func NewExtractor() *Extractor {
	kw := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		kw[k] = struct{}{}
	}

	return &Extractor{
		definition: regexp.MustCompile(`(?m)^[ \t]*(static\s+)?func\s+(` + ident + `)\s*\([^)]*\)\s*(?:->[^:\n]+)?\s*:`),
		ignore:     regexp.MustCompile(`(?i)#\s*(?:gdcf-ignore|dead-code-ignore|TODO:\s*dead-code)`),

		dynamicCall: regexp.MustCompile(`call(?:_deferred)?\s*\(\s*["'](` + ident + `)["']`),
		callable:    regexp.MustCompile(`Callable\s*\(\s*(?:self|[A-Za-z_][A-Za-z0-9_.]*)\s*,\s*["'](` + ident + `)["']`),
		connect:     regexp.MustCompile(`\.connect\s*\(\s*(?:self\.)?(` + ident + `)`),
		methodCall:  regexp.MustCompile(`\.\s*(` + ident + `)\s*\(`),
		indexedCall: regexp.MustCompile(`\[\s*["'](` + ident + `)["']\s*\]\s*\(`),
		bareCall:    regexp.MustCompile(`(` + ident + `)\s*\(`),
		nestedCall:  regexp.MustCompile(`\(\s*(` + ident + `)\s*\(`),
		assignment:  regexp.MustCompile(`(?m)=[ \t]*(` + ident + `)[ \t]*(?:$|[,)\]};#])`),
		firstArg:    regexp.MustCompile(`\(\s*(` + ident + `)\s*[,)]`),
		sceneMethod: regexp.MustCompile(`method\s*=\s*["'](` + ident + `)["']`),

		keywords: kw,
	}
}

// IsKeyword reports whether name is in the excluded keyword set.
func (e *Extractor) IsKeyword(name string) bool {
	_, ok := e.keywords[name]
	return ok
}

// Definitions returns every function declaration in doc in text order.
func (e *Extractor) Definitions(doc *Document) []models.FunctionDefinition {
	text := doc.Text
	var defs []models.FunctionDefinition

	for _, m := range e.definition.FindAllStringSubmatchIndex(text, -1) {
		nameStart, nameEnd := m[4], m[5]

		rest, next := trailingLines(text, m[1])
		defs = append(defs, models.FunctionDefinition{
			Name:           text[nameStart:nameEnd],
			File:           doc.Path,
			Line:           doc.Lines.Line(nameStart),
			IsStatic:       m[2] >= 0,
			IgnoreDeadCode: e.ignore.MatchString(rest) || e.ignore.MatchString(next),
		})
	}
	return defs
}

// trailingLines returns the remainder of the line containing offset and the
// whole line after it.
func trailingLines(text string, offset int) (rest, next string) {
	end := indexNewline(text, offset)
	rest = text[offset:end]
	if end >= len(text) {
		return rest, ""
	}
	nextEnd := indexNewline(text, end+1)
	return rest, text[end+1 : nextEnd]
}

func indexNewline(text string, from int) int {
	for i := from; i < len(text); i++ {
		if text[i] == '\n' {
			return i
		}
	}
	return len(text)
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// precededBy reports whether the byte before offset satisfies pred.
// The start of text satisfies nothing.
func precededBy(text string, offset int, pred func(byte) bool) bool {
	return offset > 0 && pred(text[offset-1])
}
