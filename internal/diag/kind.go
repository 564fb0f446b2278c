package diag

// Kind is the Go type for diagnostic kinds. Use the pre-defined kinds in diag.K.
type Kind string

// K defines the kinds of diagnostics.
var K = struct {
	Other     Kind // Unclassified diagnostic.
	Invalid   Kind // Invalid argument to an API call.
	Directive Kind // The errctx directive is malformed, misplaced or repeated.
	Template  Kind // The context template cannot be parsed or has the wrong number of placeholders.
	Shape     Kind // The annotated type is not an error enum.
	Conflict  Kind // A generated identifier collides with an existing one.
	Parse     Kind // Go source cannot be parsed.
	IO        Kind // Reading sources or writing the generated file failed.
	Internal  Kind // Generic internal error
}{
	Other:     "unclassified error",
	Invalid:   "invalid",
	Directive: "malformed directive",
	Template:  "invalid template",
	Shape:     "unsupported type",
	Conflict:  "name conflict",
	Parse:     "syntax error",
	IO:        "I/O error",
	Internal:  "internal error",
}
