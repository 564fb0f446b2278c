//go:build !errnostack

package errctx

import (
	"bytes"
	"fmt"

	gostack "github.com/eluv-io/stack"
)

// stack holds the call stack of a context attachment.
type stack struct {
	pcs   []uintptr         // the program counters returned by runtime.Callers()
	trace gostack.CallStack // the call stack - only filled in when needed.
}

// newStack captures the current call stack, dropping newStack itself and the given number of frames above it.
// Returns nil if stacktrace population is disabled.
func newStack(skip int) *stack {
	if !PopulateStacktrace() {
		return nil
	}
	return &stack{pcs: gostack.Callers(skip + 1)}
}

// print formats and prints the stack to the given buffer.
func (s *stack) print(b *bytes.Buffer) {
	if s.trace == nil && s.pcs != nil {
		s.trace = gostack.TraceFrom(s.pcs).TrimRuntime()
	}
	if PrintStacktracePretty {
		filenames := make([]string, len(s.trace))
		max := 0
		for i, call := range s.trace {
			filenames[i] = fmt.Sprintf("%+v", call)
			if fl := len(filenames[i]); max < fl {
				max = fl
			}
		}
		for i, call := range s.trace {
			fmt.Fprintf(b, "\t%-*s %n()\n", max, filenames[i], call)
		}
		return
	}
	for _, call := range s.trace {
		fmt.Fprintf(b, "\t%+v\t%[1]n()\n", call)
	}
}
