// Package config holds the settings of the errctx generator. Settings are layered: built-in defaults, then a config
// file (.errctx.yaml, .errctx.yml or .errctx.toml in the package directory, or an explicit file), then command line
// flags.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/eluv-io/errctx-go/internal/diag"
)

const (
	// DefaultDirective is the name of the comment directive annotating error enums.
	DefaultDirective = "errctx:context"
	// DefaultImport is the import path of the errctx runtime package.
	DefaultImport = "github.com/eluv-io/errctx-go"
	// DefaultOutputSuffix is appended to the package name to form the default output file name.
	DefaultOutputSuffix = "_errctx.go"
)

// FileNames are the config file names looked up in a package directory, in order of precedence.
var FileNames = []string{".errctx.yaml", ".errctx.yml", ".errctx.toml"}

// Config is the generator configuration. Zero values mean "not set" when merging.
type Config struct {
	// Directive is the comment directive (without the leading "//") that annotates an error enum.
	Directive string `yaml:"directive" toml:"directive"`
	// Output is the name of the generated file, relative to the package directory. Defaults to <package>_errctx.go.
	Output string `yaml:"output" toml:"output"`
	// Import is the import path of the runtime package referenced by generated code.
	Import string `yaml:"import" toml:"import"`
	// Types restricts generation to the named types. All annotated types are generated if empty.
	Types []string `yaml:"types" toml:"types"`
	// Tags are build constraint terms written to the generated file, joined with "&&".
	Tags []string `yaml:"tags" toml:"tags"`
	// BuildTags are the build tags used to select the package's source files.
	BuildTags []string `yaml:"build_tags" toml:"build_tags"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Directive: DefaultDirective,
		Import:    DefaultImport,
	}
}

// Load reads the config file at path. The format is chosen by the file extension: .toml for TOML, YAML otherwise.
// Unknown keys are rejected.
func Load(path string) (*Config, error) {
	e := diag.Template("load config", "file", path)

	bts, err := os.ReadFile(path)
	if err != nil {
		return nil, e(diag.K.IO, err)
	}

	c := &Config{}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		md, err := toml.Decode(string(bts), c)
		if err != nil {
			return nil, e(diag.K.Invalid, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, e(diag.K.Invalid, "reason", "unknown key", "key", undecoded[0].String())
		}
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(bts))
		dec.KnownFields(true)
		// an empty file yields io.EOF - treat it as an empty config
		if err = dec.Decode(c); err != nil && len(bytes.TrimSpace(bts)) > 0 {
			return nil, e(diag.K.Invalid, err)
		}
	}
	return c, nil
}

// Find looks for a config file in dir and loads the first one found. Returns nil, nil if there is none.
func Find(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return nil, nil
}

// Merge returns a copy of c with all fields that are set in o replacing those of c. o may be nil.
func (c *Config) Merge(o *Config) *Config {
	res := *c
	if o == nil {
		return &res
	}
	if o.Directive != "" {
		res.Directive = o.Directive
	}
	if o.Output != "" {
		res.Output = o.Output
	}
	if o.Import != "" {
		res.Import = o.Import
	}
	if len(o.Types) > 0 {
		res.Types = o.Types
	}
	if len(o.Tags) > 0 {
		res.Tags = o.Tags
	}
	if len(o.BuildTags) > 0 {
		res.BuildTags = o.BuildTags
	}
	return &res
}

// Validate checks that the config can be used for generation.
func (c *Config) Validate() error {
	e := diag.Template("validate config", diag.K.Invalid)
	switch {
	case c.Directive == "":
		return e("reason", "empty directive")
	case strings.ContainsAny(c.Directive, " \t\n"):
		return e("reason", "directive contains whitespace", "directive", c.Directive)
	case strings.HasPrefix(c.Directive, "//"):
		return e("reason", "directive must not start with //", "directive", c.Directive)
	case c.Import == "":
		return e("reason", "empty import path")
	case c.Output != "" && !strings.HasSuffix(c.Output, ".go"):
		return e("reason", "output file must have extension .go", "output", c.Output)
	case c.Output != "" && strings.HasSuffix(c.Output, "_test.go"):
		return e("reason", "output file must not be a test file", "output", c.Output)
	case strings.ContainsAny(c.Output, `/\`):
		return e("reason", "output must be a file name, not a path", "output", c.Output)
	}
	return nil
}

// OutputFile returns the name of the generated file for the given package.
func (c *Config) OutputFile(pkgName string) string {
	if c.Output != "" {
		return c.Output
	}
	return pkgName + DefaultOutputSuffix
}

// Constraint returns the build constraint expression for the generated file, or "" if there is none.
func (c *Config) Constraint() string {
	return strings.Join(c.Tags, " && ")
}

// Resolver produces the effective config of a package directory.
type Resolver struct {
	// Base holds the defaults, merged with an explicitly given config file.
	Base *Config
	// Overrides holds the settings from command line flags.
	Overrides *Config
	// Lookup enables searching each package directory for a config file.
	Lookup bool
}

// For returns the validated config for the package in dir.
func (r *Resolver) For(dir string) (*Config, error) {
	c := r.Base
	if c == nil {
		c = Default()
	}
	if r.Lookup {
		found, err := Find(dir)
		if err != nil {
			return nil, err
		}
		c = c.Merge(found)
	}
	c = c.Merge(r.Overrides)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
