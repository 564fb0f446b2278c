package errctx

import (
	"github.com/eluv-io/errctx-go/internal/diag"
)

// Definition binds an error enum type E to its context template. Generated code declares one Definition per annotated
// type:
//
//	var MathErrorContext = errctx.MustDefine[MathError]("MathError", "Custom context message: {0}")
//
// A Definition is immutable and safe for concurrent use.
type Definition[E error] struct {
	name string
	tmpl *Template
}

// Define creates the Definition of the error enum with the given type name and context template.
func Define[E error](name, template string) (*Definition[E], error) {
	if name == "" {
		return nil, diag.E("define", diag.K.Invalid, "reason", "empty type name")
	}
	t, err := ParseTemplate(template)
	if err != nil {
		return nil, diag.E("define", "type", name, err)
	}
	return &Definition[E]{name: name, tmpl: t}, nil
}

// MustDefine is like Define but panics on error.
func MustDefine[E error](name, template string) *Definition[E] {
	d, err := Define[E](name, template)
	if err != nil {
		panic(err)
	}
	return d
}

// Name returns the name of the error enum type.
func (d *Definition[E]) Name() string {
	return d.name
}

// Template returns the context template.
func (d *Definition[E]) Template() *Template {
	return d.tmpl
}

// Plain converts err to the extended type without attaching any context.
func (d *Definition[E]) Plain(err E) Error[E] {
	return Error[E]{def: d, err: err}
}

// Wrap returns the context-carrying form of err.
func (d *Definition[E]) Wrap(context string, err E) Error[E] {
	return d.wrap(context, err, 1)
}

func (d *Definition[E]) wrap(context string, err E, skip int) Error[E] {
	return Error[E]{
		def:     d,
		context: context,
		wrapped: true,
		err:     err,
		stack:   newStack(skip + 1),
	}
}

// Attach attaches the context produced by fn to err:
//   - nil is returned unchanged and fn is not called
//   - an E or an Error[E] is wrapped with the context returned by fn; fn is called exactly once. An existing context
//     is replaced, there is never more than one layer.
//   - any other error is returned unchanged and fn is not called
func (d *Definition[E]) Attach(err error, fn func() string) error {
	return d.attach(err, fn, 1)
}

func (d *Definition[E]) attach(err error, fn func() string, skip int) error {
	if err == nil {
		return nil
	}
	inner, ok := into[E](err)
	if !ok {
		return err
	}
	return d.wrap(fn(), inner, skip+1)
}

// Extract separates the optional context from the enum value held by err. See the package function Extract.
func (d *Definition[E]) Extract(err error) (*string, E, bool) {
	return Extract[E](err)
}

// into converts err to the enum type if it is one, or the extended form of one.
func into[E error](err error) (E, bool) {
	switch e := err.(type) {
	case E:
		return e, true
	case Error[E]:
		return e.err, true
	}
	var zero E
	return zero, false
}
