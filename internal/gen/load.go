package gen

import (
	"errors"
	"go/ast"
	"go/build"
	"go/parser"
	goscanner "go/scanner"
	"go/token"
	"path/filepath"
	"strings"

	"github.com/eluv-io/errctx-go/internal/diag"
)

// Header is the first line of every generated file. Files starting with it are ignored when loading a package.
const Header = "// Code generated by errctx; DO NOT EDIT."

// Package is a parsed Go package.
type Package struct {
	Name  string
	Dir   string
	Fset  *token.FileSet
	Files []*ast.File
}

// Load parses the non-test Go files of the package in dir that match the given build tags. Files previously generated
// by errctx are skipped.
func Load(dir string, tags []string) (*Package, error) {
	e := diag.Template("load", "dir", dir)

	ctx := build.Default
	ctx.BuildTags = append(append([]string{}, ctx.BuildTags...), tags...)
	bp, err := ctx.ImportDir(dir, 0)
	if err != nil {
		var noGo *build.NoGoError
		if errors.As(err, &noGo) {
			return nil, e(diag.K.IO, "reason", "no Go files")
		}
		return nil, e(diag.K.Parse, err)
	}

	pkg := &Package{
		Name: bp.Name,
		Dir:  dir,
		Fset: token.NewFileSet(),
	}
	var diags diag.List
	for _, name := range bp.GoFiles {
		f, err := parser.ParseFile(pkg.Fset, filepath.Join(dir, name), nil, parser.ParseComments|parser.SkipObjectResolution)
		if err != nil {
			var list goscanner.ErrorList
			if errors.As(err, &list) {
				for _, se := range list {
					diags.Append(e(diag.K.Parse, se.Pos, "reason", se.Msg))
				}
			} else {
				diags.Append(e(diag.K.Parse, "file", name, err))
			}
			continue
		}
		if IsGenerated(f) {
			continue
		}
		pkg.Files = append(pkg.Files, f)
	}
	if diags.Len() > 0 {
		return nil, diags.ErrorOrNil()
	}
	return pkg, nil
}

// IsGenerated reports whether f was generated by errctx.
func IsGenerated(f *ast.File) bool {
	for _, cg := range f.Comments {
		if cg.Pos() > f.Package {
			return false
		}
		for _, c := range cg.List {
			if strings.TrimSpace(c.Text) == Header {
				return true
			}
		}
	}
	return false
}
