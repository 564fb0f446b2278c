//go:build errnostack

package errctx

import "bytes"

// stack is a noop implementation that disables stack collection & printing when the errnostack build tag is set. See
// stack.go for further information.
type stack struct{}

func newStack(int) *stack            { return nil }
func (s *stack) print(*bytes.Buffer) {}
