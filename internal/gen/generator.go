// Package gen implements the errctx code generator: it finds the error enums of a package that are annotated with the
// errctx directive, validates them and writes the extended types and their Definitions to a single generated file.
//
// Generation is all-or-nothing: if any annotated type of a package is invalid, no file is written for the package.
package gen

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/eluv-io/errctx-go/internal/config"
	"github.com/eluv-io/errctx-go/internal/diag"
	"github.com/eluv-io/errctx-go/internal/logger"
)

// Result describes the outcome of generating the file of one package directory.
type Result struct {
	// Dir is the package directory.
	Dir string
	// Output is the path of the generated file.
	Output string
	// Types are the names of the generated types. Empty if the package has no annotated types.
	Types []string
	// Source is the generated source; nil if the package has no annotated types.
	Source []byte
	// Changed is true if the file on disk differs from Source (or exists although nothing is generated).
	Changed bool
}

// Generator runs the generation pipeline on package directories.
type Generator struct {
	resolver *config.Resolver
	log      *slog.Logger
}

// New creates a generator. A nil resolver uses the defaults and looks up config files in each package directory. A
// nil logger discards all logs.
func New(resolver *config.Resolver, log *slog.Logger) *Generator {
	if resolver == nil {
		resolver = &config.Resolver{Lookup: true}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Generator{resolver: resolver, log: log}
}

// Generate loads, scans and renders the package in dir without writing anything.
func (g *Generator) Generate(dir string) (*Result, error) {
	log := g.log.With("dir", dir)

	cfg, err := g.resolver.For(dir)
	if err != nil {
		return nil, err
	}

	pkg, err := Load(dir, cfg.BuildTags)
	if err != nil {
		return nil, err
	}
	log.Debug("package loaded", "package", pkg.Name, "files", len(pkg.Files))

	descs, err := Scan(pkg, cfg.Directive, cfg.Types)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Dir:    dir,
		Output: filepath.Join(dir, cfg.OutputFile(pkg.Name)),
	}
	for _, d := range descs {
		res.Types = append(res.Types, d.Name)
		log.Debug("type validated", "type", d.Name, "variants", len(d.Variants), "template", d.Template)
	}

	if len(descs) > 0 {
		res.Source, err = Generate(&File{
			Package:    pkg.Name,
			Import:     cfg.Import,
			Constraint: cfg.Constraint(),
			Types:      descs,
		})
		if err != nil {
			return nil, err
		}
	}

	current, err := os.ReadFile(res.Output)
	switch {
	case err == nil:
		if !bytes.HasPrefix(current, []byte(Header)) {
			return nil, diag.E("generate", diag.K.Conflict, "file", res.Output,
				"reason", "output file exists and was not generated by errctx")
		}
		res.Changed = res.Source == nil || !bytes.Equal(current, res.Source)
	case os.IsNotExist(err):
		res.Changed = res.Source != nil
	default:
		return nil, diag.E("generate", diag.K.IO, "file", res.Output, err)
	}
	return res, nil
}

// Run generates the file of the package in dir and writes it if it changed. A previously generated file is removed if
// the package no longer has annotated types.
func (g *Generator) Run(dir string) (*Result, error) {
	res, err := g.Generate(dir)
	if err != nil {
		return nil, err
	}
	log := g.log.With("dir", dir, "file", res.Output)
	if !res.Changed {
		log.Debug("generated file up to date")
		return res, nil
	}

	if res.Source == nil {
		if err = os.Remove(res.Output); err != nil {
			return nil, diag.E("remove", diag.K.IO, "file", res.Output, err)
		}
		log.Info("stale generated file removed")
		return res, nil
	}

	if err = os.WriteFile(res.Output, res.Source, 0o644); err != nil {
		return nil, diag.E("write", diag.K.IO, "file", res.Output, err)
	}
	log.Info("generated file written", "types", res.Types)
	return res, nil
}

// Check generates the file of the package in dir and fails if the file on disk is missing or out of date.
func (g *Generator) Check(dir string) (*Result, error) {
	res, err := g.Generate(dir)
	if err != nil {
		return nil, err
	}
	if res.Changed {
		return res, diag.E("check", diag.K.Invalid, "file", res.Output,
			"reason", "generated file is out of date, run errctx")
	}
	g.log.Debug("generated file up to date", "dir", dir, "file", res.Output)
	return res, nil
}

// RunAll calls fn for every directory, running up to limit calls concurrently (no limit if limit <= 0). Packages are
// independent: a failing directory does not stop the others. Results are returned in the order of dirs - nil for
// failed directories - together with all diagnostics combined in a *diag.List.
func RunAll(ctx context.Context, dirs []string, limit int, fn func(dir string) (*Result, error)) ([]*Result, error) {
	results := make([]*Result, len(dirs))
	errs := make([]error, len(dirs))

	grp, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		grp.SetLimit(limit)
	}
	for i, dir := range dirs {
		i, dir := i, dir
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i], errs[i] = fn(dir)
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return results, diag.E("run", diag.K.Other, err)
	}

	var list diag.List
	for _, err := range errs {
		list.Append(err)
	}
	list.Sort()
	return results, list.ErrorOrNil()
}
