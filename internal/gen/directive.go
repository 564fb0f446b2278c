package gen

import (
	"go/ast"
	goscanner "go/scanner"
	"go/token"
	"strconv"
	"strings"

	"github.com/eluv-io/errctx-go/internal/diag"
)

// directive is a parsed errctx directive comment:
//
//	//errctx:context "Custom context message: {0}"
type directive struct {
	comment  *ast.Comment
	pos      token.Position
	template string
}

// matchDirective reports whether the comment c is an instance of the directive with the given name. Only line
// comments starting with "//" + name, followed by whitespace or the end of the comment, qualify.
func matchDirective(c *ast.Comment, name string) bool {
	rest, ok := strings.CutPrefix(c.Text, "//"+name)
	if !ok {
		return false
	}
	return rest == "" || rest[0] == ' ' || rest[0] == '\t'
}

// parseDirective extracts the template argument of the directive comment c. The argument must be a single Go string
// literal - interpreted or raw - and nothing else may follow it.
func parseDirective(fset *token.FileSet, c *ast.Comment, name string) (*directive, error) {
	pos := fset.Position(c.Slash)
	e := diag.Template("parse directive", diag.K.Directive, pos, "directive", name)

	arg := strings.TrimSpace(strings.TrimPrefix(c.Text, "//"+name))
	if arg == "" {
		return nil, e("reason", "missing template argument")
	}

	var scanErr error
	src := []byte(arg)
	file := token.NewFileSet().AddFile("", -1, len(src))
	var s goscanner.Scanner
	s.Init(file, src, func(p token.Position, msg string) {
		if scanErr == nil {
			scanErr = e("reason", msg, "offset", p.Offset)
		}
	}, 0)

	_, tok, lit := s.Scan()
	if scanErr != nil {
		return nil, scanErr
	}
	if tok != token.STRING {
		return nil, e("reason", "template must be a string literal", "argument", arg)
	}
	tmpl, err := strconv.Unquote(lit)
	if err != nil {
		return nil, e("reason", "invalid string literal", "argument", arg, err)
	}

	for {
		_, next, nextLit := s.Scan()
		if scanErr != nil {
			return nil, scanErr
		}
		if next == token.EOF {
			break
		}
		if next == token.SEMICOLON && nextLit == "\n" {
			// automatically inserted after the literal
			continue
		}
		return nil, e("reason", "unexpected token after template", "token", tokenText(next, nextLit))
	}

	return &directive{comment: c, pos: pos, template: tmpl}, nil
}

func tokenText(tok token.Token, lit string) string {
	if lit != "" {
		return lit
	}
	return tok.String()
}

// directivesIn returns the directive comments of the comment group.
func directivesIn(cg *ast.CommentGroup, name string) []*ast.Comment {
	if cg == nil {
		return nil
	}
	var res []*ast.Comment
	for _, c := range cg.List {
		if matchDirective(c, name) {
			res = append(res, c)
		}
	}
	return res
}
