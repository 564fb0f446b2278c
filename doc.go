/*
Package errctx attaches a string context to the values of error enums at the point where an operation fails, without
changing the enums themselves.

An error enum is a named integer or string type with an Error() method, whose values are declared as constants. The
errctx command generates, for every enum annotated with the errctx:context directive, an extended type and a
Definition:

	//go:generate errctx

	//errctx:context "Custom context message: {0}"
	type MathError int

	const (
		Underflow MathError = iota
		Overflow
		TooFar
	)

produces

	type MathErrorWithContext = errctx.Error[MathError]

	var MathErrorContext = errctx.MustDefine[MathError]("MathError", "Custom context message: {0}")

Context is attached lazily - the closure is only called on failure - and stripped again before matching on the enum:

	err := MathErrorContext.Attach(compute(41), func() string { return "Crashing with value 41" })
	fmt.Println(errctx.Report(err))
	// Custom context message: Crashing with value 41
	// caused by: Slight underflow happened!

	ctx, e, _ := MathErrorContext.Extract(err)
	switch e {
	case Underflow:
		...
	}

The placeholder {0} (also {} or {context}) is replaced with the context string, {1} (or {cause}) with the enum value's
Error() text. A template holds exactly one placeholder.
*/
package errctx
