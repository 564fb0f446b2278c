// Package diag provides the structured errors reported while generating context-aware error enums. Every
// diagnostic carries the operation that failed, a kind, the source position of the offending construct and optional
// key-value fields:
//
//	pkg/math.go:12:6: op [scan] kind [name conflict] type [MathError] name [MathErrorWithContext]
package diag

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"go/token"
)

// Separator is the string used to separate nested diagnostics. By default, nested diagnostics are indented on a new
// line.
var Separator = ":\n\t"

// Error is a single diagnostic. Create instances with E() or a TemplateFn.
type Error struct {
	// the operation
	op string
	// the diagnostic kind
	kind Kind
	// position of the offending construct - may be invalid
	pos token.Position
	// the optional cause
	cause error
	// additional fields
	fields fields
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Op returns the diagnostic's operation or "" if no op is set.
func (e *Error) Op() string {
	return e.op
}

// Kind returns the diagnostic's kind. If no kind is set, the kind of a nested *Error is returned, or K.Other if there
// is none.
func (e *Error) Kind() Kind {
	if e.kind != "" {
		return e.kind
	}
	var cause *Error
	if errors.As(e.cause, &cause) {
		return cause.Kind()
	}
	return K.Other
}

// Pos returns the source position of the diagnostic. If it has none, the position of a nested *Error is returned.
func (e *Error) Pos() token.Position {
	if e.pos.IsValid() {
		return e.pos
	}
	var cause *Error
	if errors.As(e.cause, &cause) {
		return cause.Pos()
	}
	return e.pos
}

// Cause returns the diagnostic's cause or nil if no cause is set.
func (e *Error) Cause() error {
	return e.cause
}

// WithOp sets the given operation and returns this error instance for call chaining.
func (e *Error) WithOp(op string) *Error {
	if op != "" {
		e.op = op
	}
	return e
}

// WithKind sets the given kind and returns this error instance for call chaining.
func (e *Error) WithKind(kind Kind) *Error {
	if kind != "" {
		e.kind = kind
	}
	return e
}

// WithPos sets the source position and returns this error instance for call chaining. Invalid positions are ignored.
func (e *Error) WithPos(pos token.Position) *Error {
	if pos.IsValid() {
		e.pos = pos
	}
	return e
}

// WithCause sets the given original error and returns this error instance for call chaining.
func (e *Error) WithCause(err error) *Error {
	if err != nil {
		e.cause = err
	}
	return e
}

// With adds additional fields in the form of key value pairs and returns this error instance for call chaining. Kinds,
// positions and errors among the args are treated as if passed to WithKind, WithPos and WithCause.
func (e *Error) With(args ...interface{}) *Error {
	if len(args) == 1 {
		if slice, ok := args[0].([]interface{}); ok {
			// a single []interface{} is most probably a forgotten ellipsis: With(slice...)
			args = slice
		}
	}

	for idx := 0; idx < len(args); idx++ {
		switch a := args[idx].(type) {
		case nil:
			continue
		case Kind:
			_ = e.WithKind(a)
			continue
		case token.Position:
			_ = e.WithPos(a)
			continue
		case error:
			_ = e.WithCause(a)
			continue
		}

		if idx+1 < len(args) {
			e.fields.Append(args[idx], args[idx+1])
			idx++
		} else {
			e.fields.Append(args[idx])
		}
	}
	return e
}

// Field returns the given field from this error or any nested *Error. Returns nil if the field does not exist.
func (e *Error) Field(key string) interface{} {
	var err error = e
	for {
		ex, ok := err.(*Error)
		if !ok || ex == nil {
			return nil
		}
		switch key {
		case "op":
			if ex.op != "" {
				return ex.op
			}
		case "kind":
			return ex.Kind()
		case "cause":
			return ex.cause
		default:
			if val, ok := ex.fields.Get(key); ok {
				return val
			}
		}
		err = ex.cause
	}
}

// E creates a new diagnostic initialized with the given (optional) operation, kind, position, cause and key-value
// fields. If the first argument is a string, it is used as op.
//
// Examples:
//
//	diag.E("scan")                               --> op [scan] kind [unclassified error]
//	diag.E("scan", diag.K.Shape, pos)            --> pos: op [scan] kind [unsupported type]
//	diag.E("scan", diag.K.Shape, "type", "Math") --> op [scan] kind [unsupported type] type [Math]
func E(args ...interface{}) *Error {
	e := &Error{}

	if len(args) == 1 {
		if slice, ok := args[0].([]interface{}); ok {
			args = slice
		}
	}
	if len(args) > 0 {
		if op, ok := args[0].(string); ok {
			_ = e.WithOp(op)
			args = args[1:]
		}
	}

	return e.With(args...)
}

// Template returns a function that creates diagnostics with an initial set of fields. When called, additional fields
// can be passed that complement the template:
//
//	e := diag.Template("scan", diag.K.Shape, "type", name)
//	...
//	return e(pos, "reason", "no variants")
func Template(fields ...interface{}) TemplateFn {
	return func(f ...interface{}) *Error {
		args := make([]interface{}, 0, len(fields)+len(f))
		args = append(args, fields...)
		return E(append(args, f...)...)
	}
}

// TemplateFn creates diagnostics from a template. See Template.
type TemplateFn func(fields ...interface{}) *Error

// IfNotNil returns a diagnostic based on this template iff 'err' is not nil. Otherwise returns nil.
func (t TemplateFn) IfNotNil(err error, fields ...interface{}) error {
	if err == nil {
		return nil
	}
	return t(append(fields, err)...)
}

// Add adds additional fields to this template.
func (t TemplateFn) Add(fields ...interface{}) TemplateFn {
	return func(f ...interface{}) *Error {
		args := make([]interface{}, 0, len(fields)+len(f))
		args = append(args, fields...)
		return t(append(args, f...)...)
	}
}

// Error returns the string presentation of this diagnostic, prefixed with its position if available.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.toString(token.Position{})
}

func (e *Error) toString(parent token.Position) string {
	b := new(bytes.Buffer)
	if e.pos.IsValid() && e.pos != parent {
		b.WriteString(e.pos.String())
		b.WriteString(":")
	}
	_ = e.writeFields(func(key string, val interface{}) error {
		e.writeKeyVal(b, key, val)
		return nil
	})
	return b.String()
}

// writeFields calls writeKV for op, kind, the custom fields and the cause - in that order.
func (e *Error) writeFields(writeKV func(key string, val interface{}) error) error {
	if e.op != "" {
		if err := writeKV("op", e.op); err != nil {
			return err
		}
	}
	if err := writeKV("kind", e.Kind()); err != nil {
		return err
	}
	for _, fd := range e.fields {
		if err := writeKV(fd.key, fd.val); err != nil {
			return err
		}
	}
	if e.cause != nil {
		return writeKV("cause", e.cause)
	}
	return nil
}

func (e *Error) writeKeyVal(b *bytes.Buffer, key string, val interface{}) {
	if key == "cause" {
		if cause, ok := e.cause.(*Error); ok {
			pad(b, " ")
			b.WriteString("cause")
			b.WriteString(Separator)
			b.WriteString(cause.toString(e.pos))
			return
		}
	}
	pad(b, " ")
	b.WriteString(key)
	b.WriteString(" [")
	b.WriteString(fmt.Sprint(val))
	b.WriteString("]")
}

// MarshalJSON marshals this diagnostic as a JSON object. The position is emitted as "pos" in file:line:col form.
func (e *Error) MarshalJSON() ([]byte, error) {
	b := &bytes.Buffer{}
	needSep := false

	kv := func(key string, val interface{}) error {
		if needSep {
			b.WriteByte(',')
		}
		needSep = true

		bts, err := json.Marshal(key)
		if err != nil {
			return err
		}
		b.Write(bts)
		b.WriteByte(':')

		if key == "cause" {
			val, _ = convertForJSONMarshalling(val)
		}
		bts, err = json.Marshal(val)
		if err != nil {
			return err
		}
		b.Write(bts)
		return nil
	}

	b.WriteByte('{')
	if e.pos.IsValid() {
		if err := kv("pos", e.pos.String()); err != nil {
			return nil, err
		}
	}
	if err := e.writeFields(kv); err != nil {
		return nil, err
	}
	b.WriteByte('}')

	return b.Bytes(), nil
}

// IsKind reports whether err is an *Error of the given Kind, or wraps one. Returns false if err is nil.
func IsKind(expected Kind, err error) bool {
	for {
		e, ok := err.(*Error)
		if !ok || e == nil {
			return false
		}
		if e.Kind() == expected {
			return true
		}
		err = e.cause
	}
}

// Wrap wraps the given error in an Error instance with E(err) if err is not an *Error itself - otherwise returns err as
// *Error unchanged. Returns nil if err is nil.
func Wrap(err error, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	e, ok := err.(*Error)
	if !ok {
		e = E(err)
	}
	if len(args) > 0 {
		_ = e.With(args...)
	}
	return e
}
