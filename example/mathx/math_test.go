package mathx_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	errctx "github.com/eluv-io/errctx-go"
	"github.com/eluv-io/errctx-go/example/mathx"
)

func TestCompute_WithContext(t *testing.T) {
	_, err := mathx.Compute(41)
	err = mathx.MathErrorContext.Attach(err, func() string {
		return "Crashing with value 41"
	})
	require.Error(t, err)

	lines := strings.Split(errctx.Report(err), "\n")
	require.Equal(t, []string{
		"Custom context message: Crashing with value 41",
		"caused by: Slight underflow happened!",
	}, lines)
	require.Equal(t, strings.Join(lines, "\n"), fmt.Sprintf("%+v", err))

	require.True(t, errors.Is(err, mathx.Underflow))
	var wrapped mathx.MathErrorWithContext
	require.True(t, errors.As(err, &wrapped))

	ctx, e := wrapped.UnwrapContext()
	require.NotNil(t, ctx)
	require.Equal(t, "Crashing with value 41", *ctx)
	require.Equal(t, mathx.Underflow, e)
}

func TestCompute_Success(t *testing.T) {
	calls := 0
	res, err := mathx.Compute(42)
	res, err = errctx.WithContext(mathx.MathErrorContext, res, err, func() string {
		calls++
		return "unused"
	})
	require.NoError(t, err)
	require.Equal(t, 42, res)
	require.Equal(t, 0, calls)
}

func TestCompute_Match(t *testing.T) {
	tests := []struct {
		n    int
		want mathx.MathError
	}{
		{n: 41, want: mathx.Underflow},
		{n: 43, want: mathx.Overflow},
		{n: 7, want: mathx.TooFar},
	}
	for _, test := range tests {
		t.Run(fmt.Sprint(test.n), func(t *testing.T) {
			_, err := mathx.Compute(test.n)
			err = mathx.MathErrorContext.Attach(err, func() string {
				return fmt.Sprintf("computing %d", test.n)
			})

			ctx, e, ok := mathx.MathErrorContext.Extract(err)
			require.True(t, ok)
			require.Equal(t, test.want, e)
			require.NotNil(t, ctx)
			require.Equal(t, fmt.Sprintf("computing %d", test.n), *ctx)
		})
	}
}

func ExampleMathError() {
	_, err := mathx.Compute(41)
	err = mathx.MathErrorContext.Attach(err, func() string {
		return "Crashing with value 41"
	})
	fmt.Println(errctx.Report(err))

	// Output:
	//
	// Custom context message: Crashing with value 41
	// caused by: Slight underflow happened!
}
