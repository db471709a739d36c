package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func referencedNames(refs []Reference) []string {
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		names = append(names, r.Name)
	}
	return names
}

func references(text string) []string {
	return referencedNames(NewExtractor().References(NewDocument("a.gd", text)))
}

func TestReferences_DirectCall(t *testing.T) {
	names := references(`
func _ready():
    do_thing()

func do_thing():
    pass
`)
	assert.Contains(t, names, "do_thing")
	assert.Contains(t, names, "_ready")
}

func TestReferences_Connect(t *testing.T) {
	names := references(`
func _ready():
    $Button.pressed.connect(_on_button_pressed)

func _on_button_pressed():
    pass
`)
	assert.Contains(t, names, "_on_button_pressed")
}

func TestReferences_CallString(t *testing.T) {
	names := references(`
func _ready():
    call("dynamic_method")
`)
	assert.Contains(t, names, "dynamic_method")
}

func TestReferences_NestedCall(t *testing.T) {
	names := references(`
func _load_settings() -> void:
    for p in players:
        player.volume_db = _linear_to_db(_get_effective_music_volume())

func _linear_to_db(linear: float) -> float:
    return linear

func _get_effective_music_volume() -> float:
    return music_volume * global_volume
`)
	assert.Contains(t, names, "_get_effective_music_volume")
	assert.Contains(t, names, "_linear_to_db")
}

func TestReferences_TweenMethodCallback(t *testing.T) {
	names := references(`
const TWEEN_FADE_AUDIO_DURATION = 0.5

func set_master_volume(volume_db: float) -> void:
    master_volume = volume_db
    master_volume_changed.emit(master_volume)

func transition_master_volume(from_volume: float, to_volume: float) -> void:
    if _fade_tween != null:
        _fade_tween.kill()
    _fade_tween = create_tween()
    _fade_tween.tween_method(set_master_volume, from_volume, to_volume, TWEEN_FADE_AUDIO_DURATION)
`)
	assert.Contains(t, names, "set_master_volume")
}

func TestReferences_AssignedToDict(t *testing.T) {
	names := references(`
func _ready() -> void:
    context["print"] = _console_print

func _console_print(arg) -> void:
    output.append_text(str(arg) + "\n")
`)
	assert.Contains(t, names, "_console_print")
}

func TestReferences_Lines(t *testing.T) {
	refs := NewExtractor().References(NewDocument("a.gd", "func a():\n\tb()\n\n\tc.d()\n"))
	assert.Contains(t, refs, Reference{Name: "b", Line: 2})
	assert.Contains(t, refs, Reference{Name: "d", Line: 4})
	assert.Contains(t, refs, Reference{Name: "a", Line: 1})
}

func TestReferenceRules(t *testing.T) {
	e := NewExtractor()

	tests := []struct {
		name string
		rule func(*Document) []Reference
		text string
		want []Reference
	}{
		{"dynamic call with receiver", e.DynamicCalls, `obj.call("jump")`, []Reference{{"jump", 1}}},
		{"dynamic call deferred bare", e.DynamicCalls, `call_deferred('land')`, []Reference{{"land", 1}}},
		{"dynamic call lines", e.DynamicCalls, "x.call_deferred(\"a\")\ncall( \"b\" )", []Reference{{"a", 1}, {"b", 2}}},
		{"dynamic call inside identifier", e.DynamicCalls, `recall("x")`, nil},
		{"dynamic call non literal", e.DynamicCalls, `call(name)`, nil},

		{"callable self", e.CallableRefs, `var c = Callable(self, "on_hit")`, []Reference{{"on_hit", 1}}},
		{"callable dotted receiver", e.CallableRefs, `Callable(player.weapon, 'fire')`, []Reference{{"fire", 1}}},
		{"callable without name", e.CallableRefs, `Callable(self.on_hit)`, nil},

		{"connect bare", e.Connects, `timer.timeout.connect(_on_timeout)`, []Reference{{"_on_timeout", 1}}},
		{"connect self", e.Connects, `btn.pressed.connect(self._on_pressed)`, []Reference{{"_on_pressed", 1}}},
		{"connect inside string", e.Connects, `var s = "x.connect(fake)"`, nil},

		{"method call", e.MethodCalls, `player.jump()`, []Reference{{"jump", 1}}},
		{"method call spaced", e.MethodCalls, `player . jump (1)`, []Reference{{"jump", 1}}},
		{"method call inside string", e.MethodCalls, `var s = "player.fly()"`, nil},

		{"indexed call double quote", e.IndexedCalls, `handlers["on_a"](1)`, []Reference{{"on_a", 1}}},
		{"indexed call single quote", e.IndexedCalls, `handlers[ 'on_b' ] ()`, []Reference{{"on_b", 1}}},
		{"indexed read", e.IndexedCalls, `var h = handlers["on_a"]`, nil},

		{"bare call both passes", e.BareCalls, `helper()`, []Reference{{"helper", 1}, {"helper", 1}}},
		{"bare call keyword", e.BareCalls, `if (ready):`, nil},
		{"bare call print", e.BareCalls, `print("hi")`, nil},
		{"bare call after dot", e.BareCalls, `obj.method()`, nil},
		{"bare call after digit", e.BareCalls, `3foo()`, nil},
		{"bare call string content", e.BareCalls, `var s = "fake()"`, []Reference{{"fake", 1}}},

		{"nested call", e.NestedCalls, `outer(inner())`, []Reference{{"inner", 1}}},
		{"nested keyword", e.NestedCalls, `x((preload("a")))`, nil},

		{"assignment end of line", e.Assignments, "var cb = on_done\n", []Reference{{"on_done", 1}}},
		{"assignment before comment", e.Assignments, `a = b # note`, []Reference{{"b", 1}}},
		{"assignment in collection", e.Assignments, `var m = {k = v}`, []Reference{{"v", 1}}},
		{"assignment of call", e.Assignments, `x = foo()`, nil},
		{"assignment of expression", e.Assignments, `x = y + z`, nil},
		{"assignment keyword", e.Assignments, `x = null`, nil},

		{"first argument with more", e.FirstArguments, `some_call(callback_name, x, y)`, []Reference{{"callback_name", 1}}},
		{"first argument only", e.FirstArguments, `f(a)`, []Reference{{"a", 1}}},
		{"first argument keyword", e.FirstArguments, `f(true)`, nil},
		{"first argument member", e.FirstArguments, `f(a.b)`, nil},
		{"no arguments", e.FirstArguments, `f()`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule(NewDocument("a.gd", tt.text)))
		})
	}
}

func TestSceneReferences(t *testing.T) {
	e := NewExtractor()

	doc := NewDocument("ui.tscn", `[connection signal="pressed" from="Button" to="." method="_on_quit_dialog_confirmed"]`)
	refs := e.SceneReferences(doc)
	assert.Equal(t, []Reference{{"_on_quit_dialog_confirmed", 1}}, refs)

	doc = NewDocument("main.tscn", "[gd_scene format=3]\n\n[connection signal=\"a\" from=\".\" to=\".\" method = 'on_a']\n[connection signal=\"b\" from=\".\" to=\".\" method=\"on_b\"]\n")
	assert.Equal(t, []Reference{{"on_a", 3}, {"on_b", 4}}, e.SceneReferences(doc))
}
