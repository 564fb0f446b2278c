package gen_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eluv-io/errctx-go/internal/config"
	"github.com/eluv-io/errctx-go/internal/diag"
	"github.com/eluv-io/errctx-go/internal/gen"
)

func TestGenerator_Run(t *testing.T) {
	dir := writePackage(t, map[string]string{
		"math.go":      mathSource,
		"math_test.go": "package errs\n\n//errctx:context \"ignored {0}\"\ntype testOnly int\n",
	})
	output := filepath.Join(dir, "errs_errctx.go")
	g := gen.New(nil, nil)

	res, err := g.Run(dir)
	require.NoError(t, err)
	require.True(t, res.Changed)
	require.Equal(t, output, res.Output)
	require.Equal(t, []string{"MathError"}, res.Types)

	written, err := os.ReadFile(output)
	require.NoError(t, err)
	require.Equal(t, res.Source, written)
	require.True(t, strings.HasPrefix(string(written), gen.Header))

	// the generated file is skipped when loading, so a second run yields the same file
	res, err = g.Run(dir)
	require.NoError(t, err)
	require.False(t, res.Changed)

	res, err = g.Check(dir)
	require.NoError(t, err)
	require.False(t, res.Changed)
}

func TestGenerator_Check(t *testing.T) {
	dir := writePackage(t, map[string]string{"math.go": mathSource})
	g := gen.New(nil, nil)

	// missing file
	_, err := g.Check(dir)
	require.Error(t, err)
	require.True(t, diag.IsKind(diag.K.Invalid, err))
	require.NoFileExists(t, filepath.Join(dir, "errs_errctx.go"))

	_, err = g.Run(dir)
	require.NoError(t, err)
	_, err = g.Check(dir)
	require.NoError(t, err)

	// outdated file
	src := strings.Replace(mathSource, "Custom context message: {0}", "while {0}", 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "math.go"), []byte(src), 0o644))
	_, err = g.Check(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "out of date")
}

func TestGenerator_removesStaleFile(t *testing.T) {
	dir := writePackage(t, map[string]string{"math.go": mathSource})
	output := filepath.Join(dir, "errs_errctx.go")
	g := gen.New(nil, nil)

	_, err := g.Run(dir)
	require.NoError(t, err)
	require.FileExists(t, output)

	src := strings.Replace(mathSource, "//errctx:context \"Custom context message: {0}\"\n", "", 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "math.go"), []byte(src), 0o644))

	res, err := g.Run(dir)
	require.NoError(t, err)
	require.True(t, res.Changed)
	require.Empty(t, res.Types)
	require.Nil(t, res.Source)
	require.NoFileExists(t, output)

	// nothing to do without annotations
	res, err = g.Run(dir)
	require.NoError(t, err)
	require.False(t, res.Changed)
}

func TestGenerator_keepsForeignFile(t *testing.T) {
	foreign := "package errs\n\n// hand-written\nvar x = 1\n"
	dir := writePackage(t, map[string]string{
		"math.go":        mathSource,
		"errs_errctx.go": foreign,
	})

	_, err := gen.New(nil, nil).Run(dir)
	require.Error(t, err)
	require.True(t, diag.IsKind(diag.K.Conflict, err))

	content, err := os.ReadFile(filepath.Join(dir, "errs_errctx.go"))
	require.NoError(t, err)
	require.Equal(t, foreign, string(content))
}

func TestGenerator_invalidWritesNothing(t *testing.T) {
	src := mathSource + `
//errctx:context "{0}"
type Broken struct{}

func (Broken) Error() string { return "" }
`
	dir := writePackage(t, map[string]string{"math.go": src})

	_, err := gen.New(nil, nil).Run(dir)
	requireDiag(t, err, diag.K.Shape, "struct types are not supported")
	require.NoFileExists(t, filepath.Join(dir, "errs_errctx.go"))
}

func TestGenerator_config(t *testing.T) {
	dir := writePackage(t, map[string]string{
		"math.go": mathSource,
		".errctx.yaml": `
output: errors_gen.go
import: example.com/errctx
tags: [linux]
`,
	})

	res, err := gen.New(nil, nil).Run(dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "errors_gen.go"), res.Output)

	content, err := os.ReadFile(res.Output)
	require.NoError(t, err)
	require.Contains(t, string(content), "//go:build linux\n")
	require.Contains(t, string(content), `import errctx "example.com/errctx"`)

	// command line overrides win over the config file
	r := &config.Resolver{
		Lookup:    true,
		Overrides: &config.Config{Output: "override_errctx.go"},
	}
	res, err = gen.New(r, nil).Generate(dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "override_errctx.go"), res.Output)
	require.True(t, res.Changed)
}

func TestGenerator_customDirective(t *testing.T) {
	src := strings.Replace(mathSource, "//errctx:context", "//myerr:ctx", 1)
	dir := writePackage(t, map[string]string{"math.go": src})

	r := &config.Resolver{Overrides: &config.Config{Directive: "myerr:ctx"}}
	res, err := gen.New(r, nil).Generate(dir)
	require.NoError(t, err)
	require.Equal(t, []string{"MathError"}, res.Types)

	res, err = gen.New(nil, nil).Generate(dir)
	require.NoError(t, err)
	require.Empty(t, res.Types)
}

func TestGenerator_exampleUpToDate(t *testing.T) {
	res, err := gen.New(nil, nil).Check(filepath.Join("..", "..", "example", "mathx"))
	require.NoError(t, err)
	require.Equal(t, []string{"MathError"}, res.Types)
}

func TestLoad(t *testing.T) {
	_, err := gen.Load(t.TempDir(), nil)
	require.Error(t, err)
	require.True(t, diag.IsKind(diag.K.IO, err))

	dir := writePackage(t, map[string]string{
		"ok.go":     "package errs\n",
		"broken.go": "package errs\n\nfunc {\n",
	})
	_, err = gen.Load(dir, nil)
	require.Error(t, err)
	d := diag.Flatten(err)[0]
	require.True(t, diag.IsKind(diag.K.Parse, d))
	require.Equal(t, "broken.go", filepath.Base(diag.PosOf(d).Filename))

	dir = writePackage(t, map[string]string{
		"a.go":        "package errs\n",
		"tagged.go":   "//go:build special\n\npackage errs\n\nvar Special = 1\n",
		"errs_gen.go": gen.Header + "\n\npackage errs\n",
	})
	pkg, err := gen.Load(dir, nil)
	require.NoError(t, err)
	require.Equal(t, "errs", pkg.Name)
	require.Len(t, pkg.Files, 1)

	pkg, err = gen.Load(dir, []string{"special"})
	require.NoError(t, err)
	require.Len(t, pkg.Files, 2)
}

func TestRunAll(t *testing.T) {
	good := writePackage(t, map[string]string{"math.go": mathSource})
	bad1 := writePackage(t, map[string]string{"math.go": strings.Replace(mathSource, "{0}", "", 1)})
	bad2 := t.TempDir()

	g := gen.New(nil, nil)
	results, err := gen.RunAll(context.Background(), []string{bad1, good, bad2}, 2, g.Run)
	require.Error(t, err)
	require.Len(t, results, 3)
	require.Nil(t, results[0])
	require.NotNil(t, results[1])
	require.Nil(t, results[2])
	require.Len(t, diag.Flatten(err), 2)
	require.FileExists(t, filepath.Join(good, "errs_errctx.go"))

	results, err = gen.RunAll(context.Background(), []string{good}, 0, g.Check)
	require.NoError(t, err)
	require.Equal(t, []string{"MathError"}, results[0].Types)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = gen.RunAll(ctx, []string{good}, 1, g.Check)
	require.Error(t, err)
}
