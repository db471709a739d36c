package mcpserver

// Tool descriptions with interpretation guidance for LLMs.
// Each description explains what the tool does, when to use it,
// how to interpret results, and what is returned.

func describeUnused() string {
	return `Lists GDScript functions that are defined but never referenced anywhere in a Godot project.

USE WHEN:
- Cleaning up a project before a release
- Finding handlers orphaned after a scene or node was removed
- Checking that a refactor did not leave old entry points behind

INTERPRETING RESULTS:
- Matching is by name across the whole project, with no scope or type resolution
- A function is used if any recognized call shape names it: direct calls, .method(), call("name"), Callable(self, "name"), .connect(name), scene [connection] method="name", or passing the name as a value
- Engine callbacks (_ready, _process, ...), GUT hooks (before_each, ...) and test_* functions are never reported
- Definitions tagged with "# gdcf-ignore" on the same or the next line are never reported
- Results are heuristic: confirm before deleting, especially for names built at runtime

METRICS RETURNED:
- unused: id, name, file (relative to the root), line, is_static
- summary: files and scenes scanned, files skipped, total definitions and references`
}

func describeTestOnly() string {
	return `Lists GDScript functions whose only references come from test code.

USE WHEN:
- Finding production code kept alive only by its tests
- Reviewing test suites that test dead features

INTERPRETING RESULTS:
- Test code is any file under a test/ or tests/ directory, or named test_*.gd or *_test.gd, unless test_dirs is given
- Functions defined in test code are never reported here
- A result is either dead production code or a public API missing its caller

METRICS RETURNED:
- test_only: id, name, file (relative to the root), line, is_static
- summary: files and scenes scanned, files skipped, total definitions and references`
}

func describeExplain() string {
	return `Shows every definition and recorded reference of one function name, with the classification of each definition.

USE WHEN:
- Understanding why a function is (or is not) reported as unused
- Finding all call sites of a function across scripts and scenes

INTERPRETING RESULTS:
- status per definition: used, unused, test_only, engine_callback, ignored, test_entry
- declaration references are the definition line matching itself and do not count as uses
- test_code marks references that live in test code

METRICS RETURNED:
- definitions: file, line, is_static, status
- references: file, line, declaration, test_code
- qualifying_references: count of references that count as uses`
}
