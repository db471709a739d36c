package parser

import "regexp"

// References runs every rule over doc and concatenates the results.
// The same name and line may appear more than once.
func (e *Extractor) References(doc *Document) []Reference {
	var refs []Reference
	for _, rule := range []func(*Document) []Reference{
		e.DynamicCalls,
		e.CallableRefs,
		e.Connects,
		e.MethodCalls,
		e.IndexedCalls,
		e.BareCalls,
		e.NestedCalls,
		e.Assignments,
		e.FirstArguments,
	} {
		refs = append(refs, rule(doc)...)
	}
	return refs
}

// DynamicCalls finds call("name") and call_deferred("name"), with or
// without a receiver. The name is literal content, so the unmasked text is
// searched.
func (e *Extractor) DynamicCalls(doc *Document) []Reference {
	return e.collect(doc, doc.Text, e.dynamicCall, func(m []int) bool {
		return !precededBy(doc.Text, m[0], isIdentByte)
	})
}

// CallableRefs finds Callable(self, "name") and Callable(obj.path, "name").
func (e *Extractor) CallableRefs(doc *Document) []Reference {
	return e.collect(doc, doc.Text, e.callable, nil)
}

// Connects finds .connect(name) and .connect(self.name).
func (e *Extractor) Connects(doc *Document) []Reference {
	return e.collect(doc, doc.Masked, e.connect, nil)
}

// MethodCalls finds .name(.
func (e *Extractor) MethodCalls(doc *Document) []Reference {
	return e.collect(doc, doc.Masked, e.methodCall, nil)
}

// IndexedCalls finds ["name"]( and ['name'](. Masking blanks the key, so
// the unmasked text is searched.
func (e *Extractor) IndexedCalls(doc *Document) []Reference {
	return e.collect(doc, doc.Text, e.indexedCall, nil)
}

// BareCalls finds name( not preceded by a dot or identifier character, in
// both the masked and unmasked text.
func (e *Extractor) BareCalls(doc *Document) []Reference {
	var refs []Reference
	for _, text := range []string{doc.Masked, doc.Text} {
		refs = append(refs, e.collect(doc, text, e.bareCall, func(m []int) bool {
			if precededBy(text, m[0], func(b byte) bool { return b == '.' || isIdentByte(b) }) {
				return false
			}
			return !e.IsKeyword(text[m[2]:m[3]])
		})...)
	}
	return refs
}

// NestedCalls finds (name( where a call is the first argument of another.
func (e *Extractor) NestedCalls(doc *Document) []Reference {
	return e.collect(doc, doc.Masked, e.nestedCall, e.notKeyword(doc.Masked))
}

// Assignments finds a name stored as a value: = name followed by the end of
// the line or one of , ) ] } ; #.
func (e *Extractor) Assignments(doc *Document) []Reference {
	return e.collect(doc, doc.Masked, e.assignment, e.notKeyword(doc.Masked))
}

// FirstArguments finds a name passed as the first positional argument:
// (name, or (name).
func (e *Extractor) FirstArguments(doc *Document) []Reference {
	return e.collect(doc, doc.Masked, e.firstArg, e.notKeyword(doc.Masked))
}

// SceneReferences finds method="name" attributes in scene text.
func (e *Extractor) SceneReferences(doc *Document) []Reference {
	return e.collect(doc, doc.Text, e.sceneMethod, nil)
}

func (e *Extractor) notKeyword(text string) func([]int) bool {
	return func(m []int) bool {
		return !e.IsKeyword(text[m[2]:m[3]])
	}
}

// collect returns the first capture group of every match of re in text that
// keep accepts. Lines are resolved against the unmasked text.
func (e *Extractor) collect(doc *Document, text string, re *regexp.Regexp, keep func([]int) bool) []Reference {
	var refs []Reference
	for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
		if keep != nil && !keep(m) {
			continue
		}
		refs = append(refs, Reference{
			Name: text[m[2]:m[3]],
			Line: doc.Lines.Line(m[2]),
		})
	}
	return refs
}
