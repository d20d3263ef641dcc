package rules

import (
	"maps"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wizzomafizzo/filefilter/internal/filter"
	"github.com/wizzomafizzo/filefilter/internal/module"
	"github.com/wizzomafizzo/filefilter/internal/testutil"
)

const scenarioYAML = `rules:
  - include: '\.cs$'
  - exclude: Bar
  - rewrite:
      find: '^src/'
      replace: lib/
  - imply_directories: true
`

const scenarioTOML = `[[rules]]
include = '\.cs$'

[[rules]]
exclude = 'Bar'

[[rules]]
rewrite = { find = '^src/', replace = 'lib/' }

[[rules]]
imply_directories = true
`

func scenarioFilter() *filter.Filter {
	return filter.New(nil, nil, "Windows", []string{"src/Foo.cs", "src/Bar.cs", "docs/readme.md"})
}

func TestParseFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{name: "yaml", data: scenarioYAML, format: FormatYAML},
		{name: "toml", data: scenarioTOML, format: FormatTOML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, err := Parse([]byte(tt.data), tt.format)
			require.NoError(t, err)
			require.Len(t, doc.Rules, 4)

			assert.Equal(t, `\.cs$`, doc.Rules[0].Include)
			assert.Equal(t, "Bar", doc.Rules[1].Exclude)
			assert.Equal(t, &Rewrite{Find: "^src/", Replace: "lib/"}, doc.Rules[2].Rewrite)
			assert.True(t, doc.Rules[3].ImplyDirectories)
		})
	}
}

func TestParseRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{name: "empty document", data: "", wantErr: ErrEmptyDocument},
		{name: "empty rules", data: "rules: []\n", wantErr: ErrEmptyDocument},
		{name: "no directive", data: "rules:\n  - platforms: [Linux]\n", wantErr: ErrInvalidRule},
		{name: "two directives", data: "rules:\n  - include: a\n    exclude: b\n", wantErr: ErrInvalidRule},
		{name: "bad pattern", data: "rules:\n  - include: '('\n", wantErr: filter.ErrInvalidPattern},
		{name: "rewrite without find", data: "rules:\n  - rewrite: {replace: x}\n", wantErr: ErrInvalidRule},
		{name: "map without destination", data: "rules:\n  - map: {source: a}\n", wantErr: ErrInvalidRule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.data), FormatYAML)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseUnknownField(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("rules:\n  - inclde: a\n"), FormatYAML)
	require.Error(t, err)

	_, err = Parse([]byte("[[rules]]\ninclde = 'a'\n"), FormatTOML)
	require.Error(t, err)
}

func TestFormatFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{path: "Build/Rules.yml", want: FormatYAML},
		{path: "rules.YAML", want: FormatYAML},
		{path: "rules.toml", want: FormatTOML},
		{path: "rules.xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			got, err := FormatFor(tt.path)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	fs := testutil.NewMemTree(t, "/mod", map[string]string{
		"Build/Rules.yml":  scenarioYAML,
		"Build/Rules.toml": scenarioTOML,
	})

	yamlDoc, err := Load(fs, "/mod/Build/Rules.yml")
	require.NoError(t, err)
	tomlDoc, err := Load(fs, "/mod/Build/Rules.toml")
	require.NoError(t, err)
	assert.Equal(t, yamlDoc, tomlDoc)

	_, err = Load(afero.NewMemMapFs(), "/missing.yml")
	assert.Error(t, err)
}

func TestApplyScenario(t *testing.T) {
	t.Parallel()

	ctx, getLogOutput := testutil.NewTestContext(t)
	doc, err := Parse([]byte(scenarioYAML), FormatYAML)
	require.NoError(t, err)

	f := scenarioFilter()
	report, err := Apply(ctx, f, doc, Options{})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"src/Foo.cs": "lib/Foo.cs",
		"lib":        "lib/",
	}, maps.Collect(f.All()))

	require.Len(t, report.Results, 4)
	assert.Empty(t, report.NoOps())
	assert.Contains(t, getLogOutput(), "Applied rule")
}

func TestApplyNoOpRule(t *testing.T) {
	t.Parallel()

	doc := &Document{Rules: []Rule{
		{Include: `\.cs$`},
		{Exclude: `\.txt$`},
	}}

	t.Run("warns", func(t *testing.T) {
		t.Parallel()

		ctx, getLogOutput := testutil.NewTestContext(t)
		report, err := Apply(ctx, scenarioFilter(), doc, Options{})
		require.NoError(t, err)

		noOps := report.NoOps()
		require.Len(t, noOps, 1)
		assert.Equal(t, 2, noOps[0].Index)
		assert.Equal(t, DirectiveExclude, noOps[0].Directive)
		assert.Contains(t, getLogOutput(), "Rule matched nothing")
	})

	t.Run("strict fails", func(t *testing.T) {
		t.Parallel()

		ctx, _ := testutil.NewTestContext(t)
		f := scenarioFilter()
		_, err := Apply(ctx, f, doc, Options{Strict: true})
		require.ErrorIs(t, err, ErrRuleNoMatch)
		assert.Equal(t, 2, f.Len(), "rules before the failure stay applied")
	})
}

func TestApplyPlatformRestriction(t *testing.T) {
	t.Parallel()

	ctx, _ := testutil.NewTestContext(t)
	doc := &Document{Rules: []Rule{
		{Include: "."},
		{Exclude: "Bar", Platforms: []string{"linux"}},
		{Rewrite: &Rewrite{Find: "^src/", Replace: "win/"}, Platforms: []string{"WINDOWS"}},
	}}

	f := scenarioFilter()
	report, err := Apply(ctx, f, doc, Options{Strict: true})
	require.NoError(t, err)

	assert.True(t, report.Results[1].Skipped)
	assert.False(t, report.Results[2].Skipped)
	assert.Equal(t, map[string]string{
		"src/Foo.cs":     "win/Foo.cs",
		"src/Bar.cs":     "win/Bar.cs",
		"docs/readme.md": "docs/readme.md",
	}, maps.Collect(f.All()))
}

func TestApplyMapAndAutoProject(t *testing.T) {
	t.Parallel()

	ctx, _ := testutil.NewTestContext(t)
	packager := filter.AutoProjectFunc(func(d filter.Directives, _ *module.Module, _ string) error {
		_, err := d.ApplyInclude(`^src/`)
		return err
	})
	f := filter.New(packager, &module.Module{Name: "M"}, "Linux", []string{"src/a.c", "b.c"})

	doc := &Document{Rules: []Rule{
		{AutoProject: true},
		{Map: &Mapping{Source: "gen/version.h", Destination: "include/version.h"}},
	}}

	_, err := Apply(ctx, f, doc, Options{})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"src/a.c":       "src/a.c",
		"gen/version.h": "include/version.h",
	}, maps.Collect(f.All()))
}

func TestApplyPropagatesFilterErrors(t *testing.T) {
	t.Parallel()

	ctx, _ := testutil.NewTestContext(t)

	tests := []struct {
		name    string
		rules   []Rule
		wantErr error
	}{
		{
			name:    "overlapping includes",
			rules:   []Rule{{Include: "Foo"}, {Include: `\.cs$`}},
			wantErr: filter.ErrDuplicateKey,
		},
		{
			name:    "autoproject outside module",
			rules:   []Rule{{AutoProject: true}},
			wantErr: filter.ErrNotInModule,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Apply(ctx, scenarioFilter(), &Document{Rules: tt.rules}, Options{})
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRuleDirective(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DirectiveInclude, (&Rule{Include: "a"}).Directive())
	assert.Equal(t, DirectiveMap, (&Rule{Map: &Mapping{}}).Directive())
	assert.Equal(t, DirectiveAutoProject, (&Rule{AutoProject: true}).Directive())
	assert.Equal(t, "", (&Rule{}).Directive())
}
