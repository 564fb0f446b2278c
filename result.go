package errctx

// WithContext attaches context to the outcome (v, err) of a fallible call whose error is the enum E, evaluating fn
// only if err is not nil:
//
//	res, err := compute(41)
//	res, err = errctx.WithContext(MathErrorContext, res, err, func() string {
//		return "Crashing with value 41"
//	})
//
// v is returned unchanged in all cases. See Definition.Attach for how err is treated.
func WithContext[V any, E error](d *Definition[E], v V, err error, fn func() string) (V, error) {
	if err == nil {
		return v, nil
	}
	return v, d.attach(err, fn, 1)
}

// Extract separates the optional context from the enum value held by err:
//   - for an Error[E] it returns the result of UnwrapContext and true
//   - for an E it returns nil, the unchanged value and true
//   - for any other error (including nil) it returns nil, the zero E and false
//
// Extract does not search err's chain: err must be the value returned by Attach, Wrap or Plain, or an E.
func Extract[E error](err error) (*string, E, bool) {
	switch e := err.(type) {
	case Error[E]:
		ctx, inner := e.UnwrapContext()
		return ctx, inner, true
	case E:
		return nil, e, true
	}
	var zero E
	return nil, zero, false
}
