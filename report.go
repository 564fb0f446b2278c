package errctx

import (
	"errors"
	"strings"
)

// CausedBy is the string used to separate the levels of an error chain in Report.
var CausedBy = "\ncaused by: "

// Report renders err followed by every cause in its chain (as returned by errors.Unwrap), separated by CausedBy. A
// context-carrying Error renders as two lines:
//
//	Custom context message: Crashing with value 41
//	caused by: Slight underflow happened!
//
// Returns "" if err is nil.
func Report(err error) string {
	sb := strings.Builder{}
	for level := 0; err != nil; level++ {
		if level > 0 {
			sb.WriteString(CausedBy)
		}
		sb.WriteString(err.Error())
		err = errors.Unwrap(err)
	}
	return sb.String()
}
