package diag

import (
	"encoding/json"
	"errors"
	"go/token"
	"sort"
	"strconv"
	"strings"
)

// Append appends the given errs to err.
//
// If err is not a *List, then a new one is created and err added to it. Then all additional errs are appended,
// unwrapping them if any of them are Lists themselves.
//
// Any nil errors within errs will be ignored. If the resulting list holds a single error, that error is returned.
func Append(err error, errs ...error) error {
	list, ok := err.(*List)
	if !ok || list == nil {
		list = new(List)
		list.Append(err)
	}
	list.Append(errs...)
	return list.ErrorOrNil()
}

// List is a collection of diagnostics.
type List struct {
	Errors []error
}

// Append adds the given errors to the list. Nil errors are skipped, nested lists are flattened.
func (l *List) Append(errs ...error) {
	for _, err := range errs {
		switch err := err.(type) {
		case nil:
		case *List:
			if err != nil {
				l.Errors = append(l.Errors, err.Errors...)
			}
		default:
			l.Errors = append(l.Errors, err)
		}
	}
}

// Len returns the number of diagnostics in the list.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Errors)
}

// Sort orders the diagnostics by source position, the way a compiler reports them. Diagnostics without position come
// last, in their original order.
func (l *List) Sort() {
	sort.SliceStable(l.Errors, func(i, j int) bool {
		pi, pj := PosOf(l.Errors[i]), PosOf(l.Errors[j])
		if !pi.IsValid() || !pj.IsValid() {
			return pi.IsValid() && !pj.IsValid()
		}
		if pi.Filename != pj.Filename {
			return pi.Filename < pj.Filename
		}
		if pi.Line != pj.Line {
			return pi.Line < pj.Line
		}
		return pi.Column < pj.Column
	})
}

// Error returns the list as a formatted, multi-line string.
func (l *List) Error() string {
	switch len(l.Errors) {
	case 0:
		return ""
	case 1:
		return l.Errors[0].Error()
	}
	sb := strings.Builder{}
	sb.WriteString("diagnostics count [")
	sb.WriteString(strconv.Itoa(len(l.Errors)))
	sb.WriteString("]\n")
	for idx, err := range l.Errors {
		sb.WriteString("\t")
		sb.WriteString(strconv.Itoa(idx))
		sb.WriteString(": ")
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}

// ErrorOrNil returns an error interface if this list holds any errors, or returns nil if the list is empty. A list
// with a single error returns that error.
func (l *List) ErrorOrNil() error {
	if l == nil || len(l.Errors) == 0 {
		return nil
	}
	if len(l.Errors) == 1 {
		return l.Errors[0]
	}
	return l
}

func (l *List) MarshalJSON() ([]byte, error) {
	res := make([]interface{}, len(l.Errors))
	for idx, err := range l.Errors {
		res[idx], _ = convertForJSONMarshalling(err)
	}
	return json.Marshal(map[string]interface{}{"errors": res})
}

// Flatten returns the individual diagnostics of err: the elements of a *List or err itself. Returns nil for nil.
func Flatten(err error) []error {
	if err == nil {
		return nil
	}
	var list *List
	if errors.As(err, &list) {
		return list.Errors
	}
	return []error{err}
}

// PosOf returns the source position of err if it is (or wraps) an *Error, the zero position otherwise.
func PosOf(err error) token.Position {
	var e *Error
	if errors.As(err, &e) {
		return e.Pos()
	}
	return token.Position{}
}
