// Package mathx demonstrates errctx on a small error enum.
package mathx

//go:generate go run github.com/eluv-io/errctx-go/cmd/errctx

// MathError is the error returned by Compute.
//
//errctx:context "Custom context message: {0}"
type MathError int

const (
	Underflow MathError = iota
	Overflow
	TooFar
)

func (e MathError) Error() string {
	switch e {
	case Underflow:
		return "Slight underflow happened!"
	case Overflow:
		return "Overflow happened!"
	case TooFar:
		return "Way too far!"
	}
	return "unknown math error"
}

// Compute succeeds for 42 only. Values just below 42 underflow, values just above overflow, everything else is too far
// off.
func Compute(n int) (int, error) {
	switch {
	case n == 42:
		return n, nil
	case n >= 40 && n < 42:
		return 0, Underflow
	case n > 42 && n <= 44:
		return 0, Overflow
	}
	return 0, TooFar
}
