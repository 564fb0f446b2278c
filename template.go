package errctx

import (
	"strings"

	"github.com/eluv-io/errctx-go/internal/diag"
)

// Placeholder identifies the value substituted into a Template.
type Placeholder int

const (
	// PlaceholderContext is the context string: {}, {0} or {context}.
	PlaceholderContext Placeholder = iota
	// PlaceholderCause is the Error() text of the wrapped enum value: {1} or {cause}.
	PlaceholderCause
)

func (p Placeholder) String() string {
	switch p {
	case PlaceholderContext:
		return "context"
	case PlaceholderCause:
		return "cause"
	}
	return "unknown"
}

var placeholders = map[string]Placeholder{
	"":        PlaceholderContext,
	"0":       PlaceholderContext,
	"context": PlaceholderContext,
	"1":       PlaceholderCause,
	"cause":   PlaceholderCause,
}

// DefaultTemplate renders the context string alone.
const DefaultTemplate = "{0}"

var defaultTemplate = MustParseTemplate(DefaultTemplate)

// Template is a parsed context message template. A template contains exactly one placeholder; "{{" and "}}" stand
// for literal braces.
//
//	"Custom context message: {0}"   --> context string substituted
//	"{context} (cause: {cause})"    --> rejected: two placeholders
//	"while {}: {{literal}}"         --> "while <context>: {literal}"
type Template struct {
	raw    string
	prefix string
	suffix string
	arg    Placeholder
}

// ParseTemplate parses the given template. It fails with a diag error of kind diag.K.Template if the template has no
// placeholder, more than one placeholder, an unknown placeholder or unbalanced braces.
func ParseTemplate(s string) (*Template, error) {
	e := diag.Template("parse template", diag.K.Template, "template", s)

	t := &Template{raw: s}
	b := strings.Builder{}
	count := 0

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '{':
			if i+1 < len(s) && s[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(s[i+1:], '}')
			if end < 0 {
				return nil, e("reason", "unterminated placeholder", "offset", i)
			}
			name := s[i+1 : i+1+end]
			arg, ok := placeholders[strings.TrimSpace(name)]
			if !ok {
				return nil, e("reason", "unknown placeholder", "placeholder", "{"+name+"}", "offset", i)
			}
			count++
			if count > 1 {
				return nil, e("reason", "more than one placeholder", "offset", i)
			}
			t.prefix = b.String()
			t.arg = arg
			b.Reset()
			i += end + 1
		case '}':
			if i+1 < len(s) && s[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return nil, e("reason", "unmatched '}'", "offset", i)
		default:
			b.WriteByte(c)
		}
	}

	if count == 0 {
		return nil, e("reason", "no placeholder")
	}
	t.suffix = b.String()
	return t, nil
}

// MustParseTemplate is like ParseTemplate but panics if the template is invalid.
func MustParseTemplate(s string) *Template {
	t, err := ParseTemplate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the template as it was parsed.
func (t *Template) String() string {
	return t.raw
}

// Placeholder returns what the template's placeholder refers to.
func (t *Template) Placeholder() Placeholder {
	return t.arg
}

// Render substitutes the placeholder. cause.Error() is only called if the template refers to the cause.
func (t *Template) Render(context string, cause error) string {
	val := context
	if t.arg == PlaceholderCause {
		val = ""
		if cause != nil {
			val = cause.Error()
		}
	}
	return t.prefix + val + t.suffix
}
