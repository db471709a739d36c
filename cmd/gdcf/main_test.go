package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/panbanda/gdcf/internal/testutil"
	"github.com/panbanda/gdcf/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	cleanPlayer = "extends Node\n\nfunc _ready():\n\thelper()\n\nfunc helper():\n\tpass\n"
	deadPlayer  = "extends Node\n\nfunc _ready():\n\tpass\n\nfunc never_called():\n\tpass\n"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	argv := append([]string{"gdcf", "--no-color"}, args...)
	code := run(context.Background(), argv, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_ExitCodes(t *testing.T) {
	clean := testutil.Project(t, map[string]string{"player.gd": cleanPlayer})
	dead := testutil.Project(t, map[string]string{"player.gd": deadPlayer})
	file := filepath.Join(clean, "player.gd")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"clean project", []string{clean}, exitClean},
		{"findings", []string{dead}, exitFindings},
		{"quiet findings", []string{"-q", dead}, exitFindings},
		{"quiet clean", []string{"-q", clean}, exitClean},
		{"missing root", []string{filepath.Join(clean, "nope")}, exitRoot},
		{"root is a file", []string{file}, exitRoot},
		{"too many paths", []string{clean, dead}, exitFindings},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := runCLI(t, tt.args...)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestRun_TextReport(t *testing.T) {
	dead := testutil.Project(t, map[string]string{"player.gd": deadPlayer})

	code, stdout, _ := runCLI(t, dead)
	assert.Equal(t, exitFindings, code)
	assert.Contains(t, stdout, "Unused (never called)")
	assert.Contains(t, stdout, "never_called")
	assert.NotContains(t, stdout, "_ready")
}

func TestRun_CleanMessage(t *testing.T) {
	clean := testutil.Project(t, map[string]string{"player.gd": cleanPlayer})

	code, stdout, _ := runCLI(t, clean)
	assert.Equal(t, exitClean, code)
	assert.Contains(t, stdout, "No unused functions found.")
}

func TestRun_QuietPrintsNothing(t *testing.T) {
	dead := testutil.Project(t, map[string]string{"player.gd": deadPlayer})

	_, stdout, stderr := runCLI(t, "-q", dead)
	assert.Empty(t, stdout)
	assert.Empty(t, stderr)
}

func TestRun_RootErrorMessage(t *testing.T) {
	root := t.TempDir()

	_, _, stderr := runCLI(t, filepath.Join(root, "missing"))
	assert.Contains(t, stderr, "Error: invalid project root")
}

func TestRun_JSONFormat(t *testing.T) {
	dead := testutil.Project(t, map[string]string{"player.gd": deadPlayer})

	code, stdout, _ := runCLI(t, "-f", "json", dead)
	require.Equal(t, exitFindings, code)

	var report models.DeadCodeReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	require.Len(t, report.Unused, 1)
	assert.Equal(t, "never_called", report.Unused[0].Name)
	assert.Empty(t, report.TestOnly)
}

func TestRun_UnknownFormat(t *testing.T) {
	clean := testutil.Project(t, map[string]string{"player.gd": cleanPlayer})

	code, _, stderr := runCLI(t, "-f", "xml", clean)
	assert.Equal(t, exitFindings, code)
	assert.Contains(t, stderr, "Error:")
}

func TestRun_TestOnly(t *testing.T) {
	root := testutil.Project(t, map[string]string{
		"player.gd":            "extends Node\n\nfunc _ready():\n\tpass\n\nfunc helper():\n\tpass\n",
		"tests/test_player.gd": "extends GutTest\n\nfunc test_helper():\n\thelper()\n",
	})

	code, stdout, _ := runCLI(t, root)
	assert.Equal(t, exitFindings, code)
	assert.Contains(t, stdout, "Only called from test code (not from main app)")
	assert.Contains(t, stdout, "helper")
	assert.NotContains(t, stdout, "test_helper")
}

func TestRun_TestDirOverride(t *testing.T) {
	root := testutil.Project(t, map[string]string{
		"player.gd":            "extends Node\n\nfunc _ready():\n\tpass\n\nfunc helper():\n\tpass\n",
		"spec/player_check.gd": "extends Node\n\nfunc _ready():\n\thelper()\n",
	})

	// Without the override spec/ is ordinary code and helper is used.
	code, _, _ := runCLI(t, root)
	assert.Equal(t, exitClean, code)

	code, stdout, _ := runCLI(t, "--test-dir", "spec", root)
	assert.Equal(t, exitFindings, code)
	assert.Contains(t, stdout, "Only called from test code")
}

func TestRun_ExcludeDirs(t *testing.T) {
	files := map[string]string{
		"player.gd":             cleanPlayer,
		"addons/plugin/tool.gd": "extends Node\n\nfunc plugin_only():\n\tpass\n",
		"vendor/lib.gd":         "extends Node\n\nfunc vendored():\n\tpass\n",
	}

	tests := []struct {
		name     string
		args     []string
		wantCode int
		found    []string
		missing  []string
	}{
		{
			name:     "addons excluded by default",
			wantCode: exitFindings,
			found:    []string{"vendored"},
			missing:  []string{"plugin_only"},
		},
		{
			name:     "no default excludes",
			args:     []string{"--no-default-excludes"},
			wantCode: exitFindings,
			found:    []string{"vendored", "plugin_only"},
		},
		{
			name:     "explicit list replaces defaults",
			args:     []string{"--exclude-dir", "vendor"},
			wantCode: exitFindings,
			found:    []string{"plugin_only"},
			missing:  []string{"vendored"},
		},
		{
			name:     "both excluded",
			args:     []string{"--exclude-dir", "vendor", "--exclude-dir", "**/addons"},
			wantCode: exitClean,
			missing:  []string{"vendored", "plugin_only"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := testutil.Project(t, files)
			code, stdout, _ := runCLI(t, append(tt.args, root)...)
			assert.Equal(t, tt.wantCode, code)
			for _, name := range tt.found {
				assert.Contains(t, stdout, name)
			}
			for _, name := range tt.missing {
				assert.NotContains(t, stdout, name)
			}
		})
	}
}

func TestRun_ConfigFile(t *testing.T) {
	root := testutil.Project(t, map[string]string{
		"player.gd": "extends Node\n\nfunc _ready():\n\tpass\n\nfunc on_signal_fired():\n\tpass\n",
	})
	cfgPath := filepath.Join(t.TempDir(), "gdcf.toml")
	testutil.WriteFile(t, cfgPath, "[analysis]\nextra_callbacks = [\"on_signal_fired\"]\n")

	code, _, _ := runCLI(t, root)
	assert.Equal(t, exitFindings, code)

	code, _, _ = runCLI(t, "-c", cfgPath, root)
	assert.Equal(t, exitClean, code)
}

func TestRun_InvalidConfigFile(t *testing.T) {
	root := testutil.Project(t, map[string]string{"player.gd": cleanPlayer})
	cfgPath := filepath.Join(t.TempDir(), "gdcf.toml")
	testutil.WriteFile(t, cfgPath, "[output]\nformat = \"xml\"\n")

	code, _, stderr := runCLI(t, "-c", cfgPath, root)
	assert.Equal(t, exitFindings, code)
	assert.Contains(t, stderr, "Error:")
}

func TestRun_OutputFile(t *testing.T) {
	dead := testutil.Project(t, map[string]string{"player.gd": deadPlayer})
	out := filepath.Join(t.TempDir(), "report.md")

	code, stdout, _ := runCLI(t, "-f", "markdown", "-o", out, dead)
	assert.Equal(t, exitFindings, code)
	assert.Empty(t, stdout)

	content := testutil.ReadFile(t, out)
	assert.Contains(t, content, "# Dead code report")
	assert.Contains(t, content, "never_called")
}

func TestRun_DebugFunction(t *testing.T) {
	root := testutil.Project(t, map[string]string{"player.gd": cleanPlayer})

	code, stdout, _ := runCLI(t, "--debug-function", "helper", root)
	assert.Equal(t, exitClean, code)
	assert.Contains(t, stdout, "References to 'helper'")
	assert.Contains(t, stdout, "Definitions found: 1")
	assert.Contains(t, stdout, "player.gd:6")
}

func TestRun_DebugFunctionUnknown(t *testing.T) {
	root := testutil.Project(t, map[string]string{"player.gd": deadPlayer})

	code, stdout, _ := runCLI(t, "--debug-function", "missing_fn", root)
	assert.Equal(t, exitClean, code)
	assert.Contains(t, stdout, "Definitions found: 0")
}

func TestRun_Verbose(t *testing.T) {
	root := testutil.Project(t, map[string]string{
		"player.gd":        cleanPlayer,
		"scenes/main.tscn": "[gd_scene format=3]\n",
	})

	_, _, stderr := runCLI(t, "-v", root)
	assert.Contains(t, stderr, "Found 1 .gd file(s) and 1 .tscn file(s)")
	assert.Contains(t, stderr, "Total function definitions: 2")

	_, _, stderr = runCLI(t, "-vv", root)
	assert.Contains(t, stderr, "Recursive .gd search (case-insensitive) matched 1 path(s):")
	assert.Contains(t, stderr, "player.gd")
	assert.Contains(t, stderr, "scenes/main.tscn")
	assert.NotContains(t, stderr, "Referenced names")

	_, _, stderr = runCLI(t, "-vvv", root)
	assert.Contains(t, stderr, "Referenced names (")
	// Raw sites include the declaration line.
	assert.Contains(t, stderr, "    helper: 2 site(s)")
}

func TestRun_VerbosityAndVersionFlags(t *testing.T) {
	root := testutil.Project(t, map[string]string{"player.gd": cleanPlayer})

	for _, args := range [][]string{{"-v", root}, {"-vvv", root}, {"--verbose", root}} {
		assert.NotPanics(t, func() {
			code, _, stderr := runCLI(t, args...)
			assert.Equal(t, exitClean, code)
			assert.Contains(t, stderr, "Total function definitions: 2")
		}, "args %v", args)
	}

	code, stdout, _ := runCLI(t, "--version")
	assert.Equal(t, exitClean, code)
	assert.Contains(t, stdout, "gdcf version "+version)
}

func TestRun_TOONFormat(t *testing.T) {
	dead := testutil.Project(t, map[string]string{"player.gd": deadPlayer})

	code, stdout, stderr := runCLI(t, "-f", "toon", dead)
	assert.Equal(t, exitFindings, code)
	assert.Empty(t, stderr)
	assert.Contains(t, stdout, "never_called")
	assert.Contains(t, stdout, "unused")
}

func TestRun_NoScripts(t *testing.T) {
	root := t.TempDir()

	code, _, stderr := runCLI(t, root)
	assert.Equal(t, exitClean, code)
	assert.Contains(t, stderr, "No .gd files found in")
}

func TestConfigCommands(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "gdcf.toml")
	testutil.WriteFile(t, valid, "[exclude]\ndirs = [\"vendor\"]\n")
	invalid := filepath.Join(dir, "bad.toml")
	testutil.WriteFile(t, invalid, "[exclude]\nunknown_key = true\n")

	t.Run("validate valid", func(t *testing.T) {
		code, stdout, _ := runCLI(t, "-c", valid, "config", "validate")
		assert.Equal(t, exitClean, code)
		assert.Contains(t, stdout, "Configuration valid: "+valid)
	})

	t.Run("validate invalid", func(t *testing.T) {
		code, stdout, _ := runCLI(t, "-c", invalid, "config", "validate")
		assert.Equal(t, exitFindings, code)
		assert.Contains(t, stdout, "Configuration validation failed:")
	})

	t.Run("show toml", func(t *testing.T) {
		code, stdout, _ := runCLI(t, "-c", valid, "config", "show")
		assert.Equal(t, exitClean, code)
		assert.Contains(t, stdout, "# Configuration from: "+valid)
		assert.Contains(t, stdout, "vendor")
	})

	t.Run("show yaml", func(t *testing.T) {
		code, stdout, _ := runCLI(t, "-c", valid, "config", "show", "--format", "yaml")
		assert.Equal(t, exitClean, code)
		assert.Contains(t, stdout, "exclude:")
	})

	t.Run("show unknown format", func(t *testing.T) {
		code, _, _ := runCLI(t, "-c", valid, "config", "show", "--format", "ini")
		assert.Equal(t, exitFindings, code)
	})
}

func TestInitCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "tools", "gdcf.toml")

	code, stdout, _ := runCLI(t, "init", "-o", out)
	require.Equal(t, exitClean, code)
	assert.Contains(t, stdout, "Created "+out)

	content := testutil.ReadFile(t, out)
	assert.True(t, strings.HasPrefix(content, "# gdcf configuration"))
	assert.Contains(t, content, "addons")

	// The generated file loads cleanly.
	code, _, _ = runCLI(t, "-c", out, "config", "validate")
	assert.Equal(t, exitClean, code)

	code, _, stderr := runCLI(t, "init", "-o", out)
	assert.Equal(t, exitFindings, code)
	assert.Contains(t, stderr, "already exists")

	code, _, _ = runCLI(t, "init", "-o", out, "--force")
	assert.Equal(t, exitClean, code)
}

func TestMCPManifest(t *testing.T) {
	code, stdout, _ := runCLI(t, "mcp", "manifest")
	require.Equal(t, exitClean, code)

	var manifest map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &manifest))
	assert.Equal(t, "io.github.panbanda/gdcf", manifest["name"])
	assert.Equal(t, "Find functions that are never called in a Godot GDScript codebase", manifest["description"])
	assert.Contains(t, stdout, `"value": "mcp"`)
	assert.Contains(t, stdout, "find_unused_functions")
}

func TestExitCode(t *testing.T) {
	var stderr bytes.Buffer
	assert.Equal(t, exitClean, exitCode(nil, &stderr))
	assert.Equal(t, exitFindings, exitCode(&exitError{code: exitFindings}, &stderr))
	assert.Empty(t, stderr.String())
}
