package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/eluv-io/errctx-go/internal/config"
	"github.com/eluv-io/errctx-go/internal/diag"
	"github.com/eluv-io/errctx-go/internal/gen"
	"github.com/eluv-io/errctx-go/internal/logger"
)

type options struct {
	configFile string
	noLookup   bool
	directive  string
	output     string
	importPath string
	types      []string
	tags       []string
	buildTags  []string
	jobs       int
	jsonOut    bool
	noColor    bool
	logLevel   string
	logFormat  string
	verbose    bool
}

// reportedError marks an error whose diagnostics have already been printed.
type reportedError struct {
	err error
}

func (r reportedError) Error() string { return r.err.Error() }
func (r reportedError) Unwrap() error { return r.err }

func isReported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "errctx [flags] [dir...]",
		Short: "Generate context-carrying extensions of error enums",
		Long: `errctx scans the Go packages in the given directories (default: the current directory) for error enums
annotated with the errctx:context directive and writes their extended types to <package>_errctx.go.

	//errctx:context "Custom context message: {0}"
	type MathError int`,
		Version:       fmt.Sprintf("%s (commit: %s)", Version, CommitSHA),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, args, stdout, stderr, false)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (.yaml, .yml or .toml); disables per-package lookup")
	flags.BoolVar(&opts.noLookup, "no-config-lookup", false, "do not look for .errctx.{yaml,yml,toml} in package directories")
	flags.StringVar(&opts.directive, "directive", "", "directive annotating error enums (default \""+config.DefaultDirective+"\")")
	flags.StringVarP(&opts.output, "output", "o", "", "name of the generated file (default <package>_errctx.go)")
	flags.StringVar(&opts.importPath, "import", "", "import path of the runtime package (default \""+config.DefaultImport+"\")")
	flags.StringSliceVarP(&opts.types, "type", "t", nil, "generate only the given types")
	flags.StringSliceVar(&opts.tags, "tags", nil, "build constraint terms written to the generated file")
	flags.StringSliceVar(&opts.buildTags, "build-tags", nil, "build tags used to select the package files")
	flags.IntVarP(&opts.jobs, "jobs", "j", 0, "number of packages processed concurrently (0: no limit)")
	flags.BoolVar(&opts.jsonOut, "json", false, "print diagnostics as JSON")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored diagnostics")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", "text", "log format (text, json)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output (sets log level to debug)")

	root.AddCommand(&cobra.Command{
		Use:   "check [dir...]",
		Short: "Verify that the generated files are up to date without writing them",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, args, stdout, stderr, true)
		},
	})

	return root
}

func run(ctx context.Context, opts *options, dirs []string, stdout, stderr io.Writer, check bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(dirs) == 0 {
		dirs = []string{"."}
	}

	log, err := opts.logger(stderr)
	if err != nil {
		return err
	}
	resolver, err := opts.resolver()
	if err != nil {
		printDiagnostics(stderr, err, opts.jsonOut, opts.noColor)
		return reportedError{err}
	}

	g := gen.New(resolver, log)
	fn := g.Run
	if check {
		fn = g.Check
	}

	results, err := gen.RunAll(ctx, dirs, opts.jobs, fn)
	if opts.verbose {
		for _, res := range results {
			if res != nil && len(res.Types) > 0 {
				_, _ = fmt.Fprintf(stdout, "%s: %v\n", res.Output, res.Types)
			}
		}
	}
	if err != nil {
		printDiagnostics(stderr, err, opts.jsonOut, opts.noColor)
		return reportedError{err}
	}
	return nil
}

func (o *options) logger(w io.Writer) (*slog.Logger, error) {
	level, err := logger.ParseLevel(o.logLevel)
	if err != nil {
		return nil, err
	}
	if o.verbose {
		level = logger.LevelDebug
	}
	format, err := logger.ParseFormat(o.logFormat)
	if err != nil {
		return nil, err
	}
	return logger.New(logger.Config{Level: level, Format: format, Output: w}), nil
}

func (o *options) resolver() (*config.Resolver, error) {
	r := &config.Resolver{
		Base:   config.Default(),
		Lookup: !o.noLookup,
		Overrides: &config.Config{
			Directive: o.directive,
			Output:    o.output,
			Import:    o.importPath,
			Types:     o.types,
			Tags:      o.tags,
			BuildTags: o.buildTags,
		},
	}
	if o.configFile != "" {
		file, err := config.Load(o.configFile)
		if err != nil {
			return nil, err
		}
		r.Base = r.Base.Merge(file)
		r.Lookup = false
	}
	return r, nil
}

// printDiagnostics prints every diagnostic of err on its own line, or all of them as a JSON document.
func printDiagnostics(w io.Writer, err error, jsonOut, noColor bool) {
	if jsonOut {
		list := &diag.List{}
		list.Append(err)
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(list)
		return
	}

	label := color.New(color.FgRed, color.Bold)
	if noColor {
		label.DisableColor()
	}
	for _, d := range diag.Flatten(err) {
		_, _ = fmt.Fprintf(w, "%s: %s\n", label.Sprint("error"), d.Error())
	}
}
