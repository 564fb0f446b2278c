package errctx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
)

// populateStacktrace controls whether the call site of a context attachment is captured. Use the "errnostack" build
// tag to disable stacktrace captures at compile time.
var populateStacktrace = atomic.Bool{}

func init() {
	SetPopulateStacktrace(true)
}

func SetPopulateStacktrace(b bool) {
	populateStacktrace.Store(b)
}

func PopulateStacktrace() bool {
	return populateStacktrace.Load()
}

// PrintStacktrace controls whether "%+v" appends the stacktrace of the context attachment to the report.
var PrintStacktrace = false

// PrintStacktracePretty enables additional formatting of stacktraces by aligning functions to the longest source
// filename.
var PrintStacktracePretty = true

// Error is the extended form of the error enum E: either one of E's values unchanged, or a value of E together with a
// context string. The second form is the synthetic variant named by WithContextName.
//
// Error values are created with a Definition and taken apart with UnwrapContext. Callers match on the enum value,
// never on the synthetic variant:
//
//	ctx, e := err.UnwrapContext()
//	switch e {
//	case Underflow:
//	...
type Error[E error] struct {
	def     *Definition[E]
	context string
	wrapped bool
	err     E
	// call site of the context attachment; nil if not captured
	stack *stack
}

// compile-time guarantee that Error implements the interfaces generic error consumers rely on
var (
	_ error          = Error[error]{}
	_ fmt.Formatter  = Error[error]{}
	_ json.Marshaler = Error[error]{}
)

// Error renders the enum value unchanged, or the context template for the context-carrying form.
func (e Error[E]) Error() string {
	if !e.wrapped {
		return e.err.Error()
	}
	return e.template().Render(e.context, e.err)
}

func (e Error[E]) template() *Template {
	if e.def == nil || e.def.tmpl == nil {
		return defaultTemplate
	}
	return e.def.tmpl
}

// HasContext reports whether this is the context-carrying form.
func (e Error[E]) HasContext() bool {
	return e.wrapped
}

// Context returns the context string and true for the context-carrying form, "" and false otherwise.
func (e Error[E]) Context() (string, bool) {
	return e.context, e.wrapped
}

// Err returns the enum value.
func (e Error[E]) Err() E {
	return e.err
}

// UnwrapContext separates the context from the enum value. It returns a pointer to the context string and the enum
// value for the context-carrying form, nil and the unchanged enum value otherwise.
func (e Error[E]) UnwrapContext() (*string, E) {
	if !e.wrapped {
		return nil, e.err
	}
	ctx := e.context
	return &ctx, e.err
}

// Unwrap returns the cause: the enum value for the context-carrying form, the enum value's own cause otherwise.
func (e Error[E]) Unwrap() error {
	if e.wrapped {
		return e.err
	}
	return errors.Unwrap(e.err)
}

// Is reports whether the enum value matches target. An Error[E] target matches if its enum value matches and, if it
// carries a context, the contexts are equal.
func (e Error[E]) Is(target error) bool {
	if t, ok := target.(Error[E]); ok {
		if t.wrapped && (!e.wrapped || t.context != e.context) {
			return false
		}
		return errors.Is(e.err, t.err)
	}
	return errors.Is(e.err, target)
}

// As finds the first error in the enum value's chain that matches target.
func (e Error[E]) As(target any) bool {
	return errors.As(e.err, target)
}

// Stacktrace returns the call stack of the context attachment, or "" if none was captured.
func (e Error[E]) Stacktrace() string {
	if e.stack == nil {
		return ""
	}
	b := new(bytes.Buffer)
	e.stack.print(b)
	return b.String()
}

// Format implements fmt.Formatter. "%+v" prints the full report (see Report), followed by the stacktrace if
// PrintStacktrace is enabled. "%v" and "%s" print Error(), "%q" a quoted Error().
func (e Error[E]) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = io.WriteString(s, Report(e))
			if PrintStacktrace && e.stack != nil {
				_, _ = io.WriteString(s, "\n")
				_, _ = io.WriteString(s, e.Stacktrace())
			}
			return
		}
		_, _ = io.WriteString(s, e.Error())
	case 's':
		_, _ = io.WriteString(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	default:
		_, _ = fmt.Fprintf(s, "%%!%c(%s)", verb, e.Error())
	}
}

// MarshalJSON marshals the enum value as its JSON representation (its Error() text if it has none). The
// context-carrying form marshals as {"context": "...", "error": ...}.
func (e Error[E]) MarshalJSON() ([]byte, error) {
	inner, _ := convertForJSONMarshalling(e.err)
	if !e.wrapped {
		return json.Marshal(inner)
	}
	return json.Marshal(struct {
		Context string      `json:"context"`
		Error   interface{} `json:"error"`
	}{
		Context: e.context,
		Error:   inner,
	})
}
