package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/panbanda/gdcf/internal/testutil"
	"github.com/panbanda/gdcf/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rel(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		r, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(r))
	}
	return out
}

func withExcludes(dirs ...string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Exclude.Dirs = dirs
	return cfg
}

func TestNormalizeExcludeDir(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"addons", "addons"},
		{"**/addons", "addons"},
		{"foo/addons", "addons"},
		{"addons/", "addons"},
		{`foo\addons`, "addons"},
		{"  vendor  ", "vendor"},
		{"**", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeExcludeDir(tt.in))
		})
	}
}

func TestScanDir(t *testing.T) {
	root := testutil.Project(t, map[string]string{
		"main.gd":              "extends Node\n",
		"player/player.gd":     "extends Node\n",
		"player/Enemy.GD":      "extends Node\n",
		"ui/menu.tscn":         "[gd_scene]\n",
		"tools/readme.md":      "# tools\n",
		"tools/script.gd.bak":  "extends Node\n",
		"tests/test_player.gd": "extends Node\n",
	})

	files, err := NewScanner(nil).ScanDir(root, ".gd")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"main.gd",
		"player/Enemy.GD",
		"player/player.gd",
		"tests/test_player.gd",
	}, rel(t, root, files))

	scenes, err := NewScanner(nil).ScanDir(root, ".TSCN")
	require.NoError(t, err)
	assert.Equal(t, []string{"ui/menu.tscn"}, rel(t, root, scenes))
}

func TestScanDir_Excludes(t *testing.T) {
	root := testutil.Project(t, map[string]string{
		"main.gd":                    "",
		"addons/gut/gut.gd":          "",
		"game/addons/plugin.gd":      "",
		"vendor/lib.gd":              "",
		"my_addons/keep.gd":          "",
		"game/vendored/also_keep.gd": "",
	})

	tests := []struct {
		name string
		cfg  *config.Config
		want []string
	}{
		{
			name: "default excludes addons at any depth",
			cfg:  nil,
			want: []string{"game/vendored/also_keep.gd", "main.gd", "my_addons/keep.gd", "vendor/lib.gd"},
		},
		{
			name: "no excludes",
			cfg:  withExcludes(),
			want: []string{
				"addons/gut/gut.gd",
				"game/addons/plugin.gd",
				"game/vendored/also_keep.gd",
				"main.gd",
				"my_addons/keep.gd",
				"vendor/lib.gd",
			},
		},
		{
			name: "segment names only",
			cfg:  withExcludes("vendor/", "**/addons"),
			want: []string{"game/vendored/also_keep.gd", "main.gd", "my_addons/keep.gd"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := NewScanner(tt.cfg).ScanDir(root, ".gd")
			require.NoError(t, err)
			assert.Equal(t, tt.want, rel(t, root, files))
		})
	}
}

func TestScanDir_RootNotDirectory(t *testing.T) {
	root := testutil.Project(t, map[string]string{"main.gd": ""})
	s := NewScanner(nil)

	files, err := s.ScanDir(filepath.Join(root, "main.gd"), ".gd")
	require.NoError(t, err)
	assert.Empty(t, files)

	files, err = s.ScanDir(filepath.Join(root, "missing"), ".gd")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestScanDir_Gitignore(t *testing.T) {
	root := testutil.Project(t, map[string]string{
		".gitignore":            "generated/\n*.tmp.gd\n",
		"main.gd":               "",
		"scratch.tmp.gd":        "",
		"generated/bindings.gd": "",
	})

	files, err := NewScanner(nil).ScanDir(root, ".gd")
	require.NoError(t, err)
	assert.Len(t, files, 3, "gitignore is off by default")

	cfg := config.DefaultConfig()
	cfg.Exclude.Gitignore = true
	files, err = NewScanner(cfg).ScanDir(root, ".gd")
	require.NoError(t, err)
	assert.Equal(t, []string{"main.gd"}, rel(t, root, files))
}

func TestScanDir_SymlinkOutsideRoot(t *testing.T) {
	outside := t.TempDir()
	testutil.WriteFile(t, filepath.Join(outside, "external.gd"), "")

	root := testutil.Project(t, map[string]string{"main.gd": ""})
	if err := os.Symlink(filepath.Join(outside, "external.gd"), filepath.Join(root, "external.gd")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	files, err := NewScanner(nil).ScanDir(root, ".gd")
	require.NoError(t, err)
	assert.Equal(t, []string{"main.gd"}, rel(t, root, files))
}

func TestScanDir_SymlinkedDirectories(t *testing.T) {
	outside := t.TempDir()
	testutil.WriteFile(t, filepath.Join(outside, "vendor.gd"), "")

	root := testutil.Project(t, map[string]string{
		"main.gd":          "",
		"shared/util.gd":   "",
		"scenes/hud/ui.gd": "",
	})
	links := map[string]string{
		filepath.Join(root, "linked_hud"):       filepath.Join(root, "scenes", "hud"),
		filepath.Join(root, "shared", "up"):     root,
		filepath.Join(root, "external"):         outside,
		filepath.Join(root, "addons_link"):      filepath.Join(root, "shared"),
		filepath.Join(root, "shared", "z_loop"): filepath.Join(root, "shared"),
	}
	for link, target := range links {
		if err := os.Symlink(target, link); err != nil {
			t.Skipf("symlinks unsupported: %v", err)
		}
	}

	files, err := NewScanner(withExcludes("addons_link")).ScanDir(root, ".gd")
	require.NoError(t, err)

	// linked_hud sorts before scenes, so ui.gd is reported through the link.
	assert.Equal(t, []string{"linked_hud/ui.gd", "main.gd", "shared/util.gd"}, rel(t, root, files))
}

func TestScanProject(t *testing.T) {
	root := testutil.Project(t, map[string]string{
		"main.gd":         "",
		"main.tscn":       "",
		"addons/x/x.tscn": "",
		"levels/one.tscn": "",
		"levels/one.gd":   "",
	})

	scripts, scenes, err := NewScanner(nil).ScanProject(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"levels/one.gd", "main.gd"}, rel(t, root, scripts))
	assert.Equal(t, []string{"levels/one.tscn", "main.tscn"}, rel(t, root, scenes))
}

func TestIsExcludedDir(t *testing.T) {
	s := NewScanner(withExcludes("**/addons", "build/"))
	assert.True(t, s.IsExcludedDir("addons"))
	assert.True(t, s.IsExcludedDir("build"))
	assert.False(t, s.IsExcludedDir("Addons"))
	assert.False(t, s.IsExcludedDir("src"))
}
