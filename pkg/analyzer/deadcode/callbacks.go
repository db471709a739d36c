package deadcode

import "strings"

// engineCallbacks are invoked implicitly by the engine and never appear as
// explicit calls in scripts.
var engineCallbacks = []string{
	"_init",
	"_ready",
	"_enter_tree",
	"_exit_tree",
	"_process",
	"_physics_process",
	"_input",
	"_gui_input",
	"_unhandled_input",
	"_unhandled_key_input",
	"_draw",
	"_notification",
	"_get",
	"_set",
	"_get_property_list",
	"_validate_property",
	"_to_string",
}

// gutHooks are setup and teardown methods run by the GUT test framework.
var gutHooks = []string{
	"before_each",
	"after_each",
	"before_all",
	"after_all",
	"before_test",
	"after_test",
}

// testFunctionPrefix marks a GUT test method. Compared case-insensitively.
const testFunctionPrefix = "test_"

// EngineCallbacks returns a copy of the built-in engine callback names.
func EngineCallbacks() []string {
	return append([]string(nil), engineCallbacks...)
}

// IsEngineCallback reports whether name is a built-in engine callback.
func IsEngineCallback(name string) bool {
	for _, cb := range engineCallbacks {
		if name == cb {
			return true
		}
	}
	return false
}

// IsGUTHook reports whether name is a GUT lifecycle hook.
func IsGUTHook(name string) bool {
	for _, h := range gutHooks {
		if name == h {
			return true
		}
	}
	return false
}

// IsTestFunctionName reports whether name follows the GUT test naming
// convention.
func IsTestFunctionName(name string) bool {
	return len(name) >= len(testFunctionPrefix) &&
		strings.EqualFold(name[:len(testFunctionPrefix)], testFunctionPrefix)
}
