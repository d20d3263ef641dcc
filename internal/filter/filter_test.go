package filter

import (
	"errors"
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wizzomafizzo/filefilter/internal/module"
)

func mappings(f *Filter) map[string]string {
	return maps.Collect(f.All())
}

func TestPackagingScenario(t *testing.T) {
	t.Parallel()

	f := New(nil, nil, "Windows", []string{"src/Foo.cs", "src/Bar.cs", "docs/readme.md"})

	matched, err := f.ApplyInclude(`\.cs$`)
	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, map[string]string{
		"src/Foo.cs": "src/Foo.cs",
		"src/Bar.cs": "src/Bar.cs",
	}, mappings(f))

	matched, err = f.ApplyExclude("Bar")
	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, map[string]string{"src/Foo.cs": "src/Foo.cs"}, mappings(f))

	matched, err = f.ApplyRewrite("^src/", "lib/")
	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, map[string]string{"src/Foo.cs": "lib/Foo.cs"}, mappings(f))

	require.NoError(t, f.ImplyDirectories())
	assert.Equal(t, map[string]string{
		"src/Foo.cs": "lib/Foo.cs",
		"lib":        "lib/",
	}, mappings(f))
}

func TestApplyInclude(t *testing.T) {
	t.Parallel()

	candidates := []string{"src/a.go", "src/a_test.go", "README.md", `win\path\b.go`}

	tests := []struct {
		name    string
		pattern string
		want    map[string]string
		matched bool
	}{
		{
			name:    "substring match anywhere",
			pattern: "a_",
			want:    map[string]string{"src/a_test.go": "src/a_test.go"},
			matched: true,
		},
		{
			name:    "anchored suffix",
			pattern: `\.go$`,
			want: map[string]string{
				"src/a.go":      "src/a.go",
				"src/a_test.go": "src/a_test.go",
				`win\path\b.go`: `win\path\b.go`,
			},
			matched: true,
		},
		{
			name:    "no match is not an error",
			pattern: `\.rs$`,
			want:    map[string]string{},
			matched: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := New(nil, nil, "Linux", candidates)
			matched, err := f.ApplyInclude(tt.pattern)
			require.NoError(t, err)

			assert.Equal(t, tt.matched, matched)
			assert.Equal(t, tt.want, mappings(f))
		})
	}
}

func TestApplyIncludeDuplicateKey(t *testing.T) {
	t.Parallel()

	f := New(nil, nil, "Linux", []string{"a.txt", "b.txt"})

	_, err := f.ApplyInclude(`^a`)
	require.NoError(t, err)

	_, err = f.ApplyInclude(`\.txt$`)
	require.ErrorIs(t, err, ErrDuplicateKey)

	// The failing include leaves the mapping set untouched.
	assert.Equal(t, map[string]string{"a.txt": "a.txt"}, mappings(f))
}

func TestApplyIncludeDuplicateCandidates(t *testing.T) {
	t.Parallel()

	f := New(nil, nil, "Linux", []string{"dup.txt", "other.txt", "dup.txt"})

	matched, err := f.ApplyInclude("other")
	require.NoError(t, err)
	assert.True(t, matched)

	_, err = f.ApplyInclude("dup")
	require.ErrorIs(t, err, ErrDuplicateKey)
	assert.Equal(t, 1, f.Len())
}

func TestApplyIncludeAfterExcludeReinserts(t *testing.T) {
	t.Parallel()

	f := New(nil, nil, "Linux", []string{"a.txt"})

	_, err := f.ApplyInclude("a")
	require.NoError(t, err)
	_, err = f.ApplyExclude("a")
	require.NoError(t, err)
	assert.Equal(t, 0, f.Len())

	matched, err := f.ApplyInclude("a")
	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, map[string]string{"a.txt": "a.txt"}, mappings(f))
}

func TestApplyExcludeObservesCurrentDestination(t *testing.T) {
	t.Parallel()

	newFilter := func(t *testing.T) *Filter {
		t.Helper()
		f := New(nil, nil, "Linux", []string{"src/Foo.cs"})
		_, err := f.ApplyInclude(`^src/`)
		require.NoError(t, err)
		_, err = f.ApplyRewrite(`^src/`, "lib/")
		require.NoError(t, err)
		return f
	}

	t.Run("original source pattern does not remove", func(t *testing.T) {
		t.Parallel()

		f := newFilter(t)
		matched, err := f.ApplyExclude(`^src/`)
		require.NoError(t, err)
		assert.False(t, matched)
		assert.Equal(t, map[string]string{"src/Foo.cs": "lib/Foo.cs"}, mappings(f))
	})

	t.Run("rewritten destination pattern removes", func(t *testing.T) {
		t.Parallel()

		f := newFilter(t)
		matched, err := f.ApplyExclude(`^lib/`)
		require.NoError(t, err)
		assert.True(t, matched)
		assert.Equal(t, 0, f.Len())
	})
}

func TestApplyRewriteConverging(t *testing.T) {
	t.Parallel()

	f := New(nil, nil, "Linux", []string{"src/a.c", "src/b.c"})
	_, err := f.ApplyInclude(".")
	require.NoError(t, err)

	matched, err := f.ApplyRewrite("^src/", "lib/")
	require.NoError(t, err)
	assert.True(t, matched)
	once := mappings(f)

	matched, err = f.ApplyRewrite("^src/", "lib/")
	require.NoError(t, err)
	assert.False(t, matched)
	assert.Equal(t, once, mappings(f))
}

func TestApplyRewriteNonConverging(t *testing.T) {
	t.Parallel()

	f := New(nil, nil, "Linux", []string{"a"})
	_, err := f.ApplyInclude("a")
	require.NoError(t, err)

	_, err = f.ApplyRewrite("a", "aa")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "aa"}, mappings(f))

	_, err = f.ApplyRewrite("a", "aa")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "aaaa"}, mappings(f))
}

func TestApplyRewriteSubstitution(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		find    string
		replace string
		want    string
	}{
		{name: "numbered group", find: `^src/(\w+)\.cs$`, replace: "lib/$1.txt", want: "lib/Foo.txt"},
		{name: "named group", find: `(?<name>Foo)`, replace: "${name}Bar", want: "src/FooBar.cs"},
		{name: "unmatched text preserved", find: "Foo", replace: "Baz", want: "src/Baz.cs"},
		{name: "backslashes", find: `/`, replace: `\`, want: `src\Foo.cs`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := New(nil, nil, "Linux", []string{"src/Foo.cs"})
			_, err := f.ApplyInclude(".")
			require.NoError(t, err)

			matched, err := f.ApplyRewrite(tt.find, tt.replace)
			require.NoError(t, err)
			assert.True(t, matched)

			destination, ok := f.Lookup("src/Foo.cs")
			require.True(t, ok)
			assert.Equal(t, tt.want, destination)
		})
	}
}

func TestApplyRewriteAllowsSharedDestinations(t *testing.T) {
	t.Parallel()

	f := New(nil, nil, "Linux", []string{"x/readme.md", "y/readme.md"})
	_, err := f.ApplyInclude("readme")
	require.NoError(t, err)

	_, err = f.ApplyRewrite(`^[xy]/`, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"x/readme.md": "readme.md",
		"y/readme.md": "readme.md",
	}, mappings(f))
}

func TestAddManualMapping(t *testing.T) {
	t.Parallel()

	f := New(nil, nil, "Linux", nil)

	require.NoError(t, f.AddManualMapping("generated/info.txt", "info.txt"))

	err := f.AddManualMapping("generated/info.txt", "other.txt")
	require.ErrorIs(t, err, ErrDuplicateKey)

	destination, ok := f.Lookup("generated/info.txt")
	require.True(t, ok)
	assert.Equal(t, "info.txt", destination, "manual mapping must never overwrite")
}

func TestInvalidPattern(t *testing.T) {
	t.Parallel()

	f := New(nil, nil, "Linux", []string{"a"})

	_, err := f.ApplyInclude("(")
	require.ErrorIs(t, err, ErrInvalidPattern)
	_, err = f.ApplyExclude("[")
	require.ErrorIs(t, err, ErrInvalidPattern)
	_, err = f.ApplyRewrite("(?<", "x")
	require.ErrorIs(t, err, ErrInvalidPattern)
}

func TestImplyDirectories(t *testing.T) {
	t.Parallel()

	f := New(nil, nil, "Linux", []string{"a/b/c.txt"})
	_, err := f.ApplyInclude(".")
	require.NoError(t, err)

	require.NoError(t, f.ImplyDirectories())
	want := map[string]string{
		"a/b/c.txt": "a/b/c.txt",
		"a":         "a/",
		"a/b":       "a/b/",
	}
	assert.Equal(t, want, mappings(f))

	require.NoError(t, f.ImplyDirectories(), "second run must be idempotent")
	assert.Equal(t, want, mappings(f))
}

func TestImplyDirectoriesMixedSeparators(t *testing.T) {
	t.Parallel()

	f := New(nil, nil, "Windows", nil)
	require.NoError(t, f.AddManualMapping("x", `out\bin/tool.exe`))
	require.NoError(t, f.AddManualMapping("y", "top.txt"))

	require.NoError(t, f.ImplyDirectories())
	assert.Equal(t, map[string]string{
		"x":       `out\bin/tool.exe`,
		"y":       "top.txt",
		"out":     "out/",
		"out/bin": "out/bin/",
	}, mappings(f))
}

func TestImplyDirectoriesCollision(t *testing.T) {
	t.Parallel()

	f := New(nil, nil, "Linux", nil)
	require.NoError(t, f.AddManualMapping("docs", "docs.txt"))
	require.NoError(t, f.AddManualMapping("guide.md", "docs/guide.md"))

	err := f.ImplyDirectories()
	require.ErrorIs(t, err, ErrDuplicateKey)
	assert.Equal(t, 2, f.Len(), "failed imply must not insert anything")
}

func TestApplyAutoProjectWithoutModule(t *testing.T) {
	t.Parallel()

	called := false
	packager := AutoProjectFunc(func(Directives, *module.Module, string) error {
		called = true
		return nil
	})

	f := New(packager, nil, "Linux", []string{"a.cs"})
	_, err := f.ApplyInclude(".")
	require.NoError(t, err)

	err = f.ApplyAutoProject()
	require.ErrorIs(t, err, ErrNotInModule)
	assert.False(t, called)
	assert.Equal(t, map[string]string{"a.cs": "a.cs"}, mappings(f))
}

func TestApplyAutoProjectWithoutPackager(t *testing.T) {
	t.Parallel()

	f := New(nil, &module.Module{Name: "Core"}, "Linux", nil)
	require.ErrorIs(t, f.ApplyAutoProject(), ErrNoAutoProjecter)
}

func TestApplyAutoProjectDelegates(t *testing.T) {
	t.Parallel()

	mod := &module.Module{Name: "Core", Path: "/src/core"}
	var gotModule *module.Module
	var gotPlatform string

	packager := AutoProjectFunc(func(d Directives, m *module.Module, platform string) error {
		gotModule, gotPlatform = m, platform

		_, isFilter := d.(*Filter)
		assert.False(t, isFilter, "collaborator must only see the directive surface")

		if _, err := d.ApplyInclude(`\.cs$`); err != nil {
			return err
		}
		return d.AddManualMapping("Core.definition", "Build/Projects/Core.definition")
	})

	f := New(packager, mod, "MacOS", []string{"Program.cs", "notes.txt"})
	require.NoError(t, f.ApplyAutoProject())

	assert.Same(t, mod, gotModule)
	assert.Equal(t, "MacOS", gotPlatform)
	assert.Equal(t, map[string]string{
		"Program.cs":      "Program.cs",
		"Core.definition": "Build/Projects/Core.definition",
	}, mappings(f))
}

func TestApplyAutoProjectPropagatesError(t *testing.T) {
	t.Parallel()

	boom := errors.New("detection failed")
	f := New(AutoProjectFunc(func(Directives, *module.Module, string) error {
		return boom
	}), &module.Module{Name: "Core"}, "Linux", nil)

	require.ErrorIs(t, f.ApplyAutoProject(), boom)
}

func TestCandidatesAreImmutable(t *testing.T) {
	t.Parallel()

	input := []string{"a", "b", "a"}
	f := New(nil, nil, "Linux", input)
	input[0] = "changed"

	got := f.Candidates()
	assert.Equal(t, []string{"a", "b", "a"}, got)

	got[1] = "mutated"
	assert.Equal(t, []string{"a", "b", "a"}, f.Candidates())
}

func TestEntriesSortedBySource(t *testing.T) {
	t.Parallel()

	f := New(nil, nil, "Linux", []string{"c", "a", "b"})
	_, err := f.ApplyInclude(".")
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{Source: "a", Destination: "a"},
		{Source: "b", Destination: "b"},
		{Source: "c", Destination: "c"},
	}, f.Entries())

	var visited []string
	for source := range f.All() {
		visited = append(visited, source)
		if source == "b" {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, visited)
}

func TestAccessors(t *testing.T) {
	t.Parallel()

	mod := &module.Module{Name: "Core"}
	f := New(nil, mod, "Android", nil)

	assert.Equal(t, "Android", f.Platform())
	assert.Same(t, mod, f.Module())
	assert.Equal(t, 0, f.Len())
}
