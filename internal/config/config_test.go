package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eluv-io/errctx-go/internal/config"
	"github.com/eluv-io/errctx-go/internal/diag"
)

func writeFile(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	want := &config.Config{
		Directive: "myerr:ctx",
		Output:    "gen_errctx.go",
		Import:    "example.com/errctx",
		Types:     []string{"MathError", "IOError"},
		Tags:      []string{"linux"},
		BuildTags: []string{"integration"},
	}

	t.Run("yaml", func(t *testing.T) {
		path := writeFile(t, dir, "c.yaml", `
directive: myerr:ctx
output: gen_errctx.go
import: example.com/errctx
types: [MathError, IOError]
tags: [linux]
build_tags: [integration]
`)
		c, err := config.Load(path)
		require.NoError(t, err)
		require.Equal(t, want, c)
	})
	t.Run("toml", func(t *testing.T) {
		path := writeFile(t, dir, "c.toml", `
directive = "myerr:ctx"
output = "gen_errctx.go"
import = "example.com/errctx"
types = ["MathError", "IOError"]
tags = ["linux"]
build_tags = ["integration"]
`)
		c, err := config.Load(path)
		require.NoError(t, err)
		require.Equal(t, want, c)
	})
	t.Run("empty yaml", func(t *testing.T) {
		c, err := config.Load(writeFile(t, dir, "empty.yml", "\n"))
		require.NoError(t, err)
		require.Equal(t, &config.Config{}, c)
	})
}

func TestLoad_invalid(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		file    string
		content string
		kind    diag.Kind
	}{
		{"missing file", "missing.yaml", "", diag.K.IO},
		{"unknown yaml key", "a.yaml", "directiv: x\n", diag.K.Invalid},
		{"bad yaml", "b.yaml", "types: [a\n", diag.K.Invalid},
		{"unknown toml key", "a.toml", "directiv = \"x\"\n", diag.K.Invalid},
		{"bad toml", "b.toml", "types = [\n", diag.K.Invalid},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(dir, test.file)
			if test.content != "" {
				path = writeFile(t, dir, test.file, test.content)
			}
			_, err := config.Load(path)
			require.Error(t, err)
			require.True(t, diag.IsKind(test.kind, err), err.Error())
			require.Equal(t, path, err.(*diag.Error).Field("file"))
		})
	}
}

func TestFind(t *testing.T) {
	dir := t.TempDir()

	c, err := config.Find(dir)
	require.NoError(t, err)
	require.Nil(t, c)

	writeFile(t, dir, ".errctx.toml", `output = "from_toml.go"`)
	c, err = config.Find(dir)
	require.NoError(t, err)
	require.Equal(t, "from_toml.go", c.Output)

	// yaml takes precedence
	writeFile(t, dir, ".errctx.yaml", `output: from_yaml.go`)
	c, err = config.Find(dir)
	require.NoError(t, err)
	require.Equal(t, "from_yaml.go", c.Output)
}

func TestMerge(t *testing.T) {
	base := config.Default()
	require.Equal(t, base, base.Merge(nil))
	require.NotSame(t, base, base.Merge(nil))

	merged := base.Merge(&config.Config{Output: "x.go", Tags: []string{"linux"}})
	require.Equal(t, &config.Config{
		Directive: config.DefaultDirective,
		Import:    config.DefaultImport,
		Output:    "x.go",
		Tags:      []string{"linux"},
	}, merged)
	// the receiver is not modified
	require.Equal(t, "", base.Output)
}

func TestValidate(t *testing.T) {
	require.NoError(t, config.Default().Validate())

	tests := []struct {
		name   string
		config config.Config
		reason string
	}{
		{"empty directive", config.Config{Import: "x"}, "empty directive"},
		{"whitespace", config.Config{Directive: "a b", Import: "x"}, "whitespace"},
		{"slashes", config.Config{Directive: "//a", Import: "x"}, "must not start with //"},
		{"empty import", config.Config{Directive: "a"}, "empty import path"},
		{"extension", config.Config{Directive: "a", Import: "x", Output: "x.txt"}, "extension .go"},
		{"test file", config.Config{Directive: "a", Import: "x", Output: "x_test.go"}, "test file"},
		{"path", config.Config{Directive: "a", Import: "x", Output: "sub/x.go"}, "not a path"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.config.Validate()
			require.Error(t, err)
			require.True(t, diag.IsKind(diag.K.Invalid, err))
			require.Contains(t, err.Error(), test.reason)
		})
	}
}

func TestOutputFileAndConstraint(t *testing.T) {
	c := config.Default()
	require.Equal(t, "mathx_errctx.go", c.OutputFile("mathx"))
	require.Equal(t, "", c.Constraint())

	c.Output = "errors_gen.go"
	c.Tags = []string{"linux", "!errnostack"}
	require.Equal(t, "errors_gen.go", c.OutputFile("mathx"))
	require.Equal(t, "linux && !errnostack", c.Constraint())
}

func TestResolver(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".errctx.yml", "output: from_file.go\ntags: [linux]\n")

	c, err := (&config.Resolver{}).For(dir)
	require.NoError(t, err)
	require.Equal(t, config.Default(), c)

	c, err = (&config.Resolver{Lookup: true}).For(dir)
	require.NoError(t, err)
	require.Equal(t, "from_file.go", c.Output)
	require.Equal(t, []string{"linux"}, c.Tags)

	c, err = (&config.Resolver{
		Lookup:    true,
		Overrides: &config.Config{Output: "flag.go"},
	}).For(dir)
	require.NoError(t, err)
	require.Equal(t, "flag.go", c.Output)
	require.Equal(t, []string{"linux"}, c.Tags)

	_, err = (&config.Resolver{Overrides: &config.Config{Output: "bad.txt"}}).For(dir)
	require.Error(t, err)

	writeFile(t, dir, ".errctx.yml", "unknown: 1\n")
	_, err = (&config.Resolver{Lookup: true}).For(dir)
	require.Error(t, err)
}
