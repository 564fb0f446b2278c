package gen

import (
	"go/ast"
	"go/token"
	"sort"
	"strings"

	errctx "github.com/eluv-io/errctx-go"
	"github.com/eluv-io/errctx-go/internal/diag"
)

// runtimeName is the file-scope name under which generated code imports the runtime package.
const runtimeName = "errctx"

// basicTypes are the predeclared types an error enum may be based on.
var basicTypes = map[string]bool{
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true, "uintptr": true,
	"byte": true, "rune": true, "string": true,
}

// Variant is a constant of an error enum.
type Variant struct {
	Name string
	Pos  token.Position
}

// Descriptor describes an annotated error enum.
type Descriptor struct {
	// Name is the name of the enum type.
	Name string
	// Underlying is the predeclared type the enum is based on.
	Underlying string
	// Template is the context template from the directive.
	Template string
	// Variants are the enum's constants in declaration order.
	Variants []Variant
	// Pos is the position of the type name.
	Pos token.Position
}

// WithContextName returns the name of the generated extended type.
func (d *Descriptor) WithContextName() string {
	return errctx.WithContextName(d.Name)
}

// DefinitionName returns the name of the generated Definition variable.
func (d *Descriptor) DefinitionName() string {
	return errctx.DefinitionName(d.Name)
}

// VariantNames returns the names of all variants.
func (d *Descriptor) VariantNames() []string {
	res := make([]string, len(d.Variants))
	for i, v := range d.Variants {
		res[i] = v.Name
	}
	return res
}

// scanner collects the package-level facts needed to validate annotated types.
type scanner struct {
	pkg       *Package
	directive string
	// package-level identifiers
	decls map[string]token.Position
	// constants per type name
	variants map[string][]Variant
	// receiver kind of Error() string methods per type name: "value" or "pointer"
	errorMethods map[string]string
	// generated identifiers and the type they belong to
	generated map[string]string
	diags     diag.List
}

// Scan finds the error enums annotated with the given directive in pkg and validates them. If only is not empty,
// annotated types not listed in it are skipped. Every invalid annotation is reported; no descriptor is returned for a
// type with errors. The returned error is a *diag.Error or a *diag.List sorted by position.
func Scan(pkg *Package, directive string, only []string) ([]*Descriptor, error) {
	s := &scanner{
		pkg:          pkg,
		directive:    directive,
		decls:        map[string]token.Position{},
		variants:     map[string][]Variant{},
		errorMethods: map[string]string{},
		generated:    map[string]string{},
	}
	for _, f := range pkg.Files {
		s.collect(f)
	}

	var include map[string]bool
	if len(only) > 0 {
		include = map[string]bool{}
		for _, name := range only {
			include[name] = true
		}
	}

	used := map[*ast.Comment]bool{}
	var res []*Descriptor
	for _, f := range pkg.Files {
		for _, decl := range f.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, d := range s.typeDecl(gd, used) {
				if include != nil && !include[d.Name()] {
					continue
				}
				if desc := s.analyze(d); desc != nil {
					res = append(res, desc)
				}
			}
		}
	}

	// directives that annotate anything but a type declaration
	for _, f := range pkg.Files {
		for _, cg := range f.Comments {
			for _, c := range directivesIn(cg, directive) {
				if !used[c] {
					s.diags.Append(diag.E("scan", diag.K.Directive, s.pos(c.Slash),
						"reason", "directive must annotate a type declaration"))
				}
			}
		}
	}

	if include != nil {
		found := map[string]bool{}
		for _, d := range res {
			found[d.Name] = true
		}
		for _, name := range only {
			if !found[name] && !hasErrorFor(&s.diags, name) {
				s.diags.Append(diag.E("scan", diag.K.Invalid, "type", name,
					"reason", "type not found or not annotated"))
			}
		}
	}

	if s.diags.Len() > 0 {
		s.diags.Sort()
		return nil, s.diags.ErrorOrNil()
	}

	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func hasErrorFor(l *diag.List, typeName string) bool {
	for _, err := range l.Errors {
		if e, ok := err.(*diag.Error); ok && e.Field("type") == typeName {
			return true
		}
	}
	return false
}

func (s *scanner) pos(p token.Pos) token.Position {
	return s.pkg.Fset.Position(p)
}

// collect records the package-level declarations, constants and Error methods of f.
func (s *scanner) collect(f *ast.File) {
	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Recv == nil {
				if d.Name.Name != "init" {
					s.declare(d.Name)
				}
				continue
			}
			if d.Name.Name == "Error" && isStringer(d.Type) && len(d.Recv.List) == 1 {
				if name, ptr := receiverType(d.Recv.List[0].Type); name != "" {
					kind := "value"
					if ptr {
						kind = "pointer"
					}
					s.errorMethods[name] = kind
				}
			}
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				switch sp := spec.(type) {
				case *ast.TypeSpec:
					s.declare(sp.Name)
				case *ast.ValueSpec:
					for _, n := range sp.Names {
						s.declare(n)
					}
				}
			}
			if d.Tok == token.CONST {
				s.collectConsts(d)
			}
		}
	}
}

func (s *scanner) declare(id *ast.Ident) {
	if id.Name == "_" {
		return
	}
	if _, ok := s.decls[id.Name]; !ok {
		s.decls[id.Name] = s.pos(id.Pos())
	}
}

// collectConsts assigns the constants of a const declaration to their types, following implicit repetition of the
// previous type and values within a parenthesized declaration.
func (s *scanner) collectConsts(d *ast.GenDecl) {
	var prevType ast.Expr
	var prevValues []ast.Expr
	for _, spec := range d.Specs {
		vs, ok := spec.(*ast.ValueSpec)
		if !ok {
			continue
		}
		typ, values := vs.Type, vs.Values
		if typ == nil && len(values) == 0 {
			typ, values = prevType, prevValues
		} else {
			prevType, prevValues = typ, values
		}
		for i, n := range vs.Names {
			if n.Name == "_" {
				continue
			}
			var tname string
			if id, ok := typ.(*ast.Ident); ok {
				tname = id.Name
			} else if typ == nil && i < len(values) {
				tname = conversionType(values[i])
			}
			if tname != "" {
				s.variants[tname] = append(s.variants[tname], Variant{Name: n.Name, Pos: s.pos(n.Pos())})
			}
		}
	}
}

// conversionType returns T for a constant expression of the form T(x), "" otherwise.
func conversionType(x ast.Expr) string {
	for {
		p, ok := x.(*ast.ParenExpr)
		if !ok {
			break
		}
		x = p.X
	}
	call, ok := x.(*ast.CallExpr)
	if !ok || len(call.Args) != 1 {
		return ""
	}
	if id, ok := call.Fun.(*ast.Ident); ok {
		return id.Name
	}
	return ""
}

// isStringer reports whether ft is the signature "() string".
func isStringer(ft *ast.FuncType) bool {
	if ft.TypeParams != nil || (ft.Params != nil && len(ft.Params.List) > 0) {
		return false
	}
	if ft.Results == nil || len(ft.Results.List) != 1 || len(ft.Results.List[0].Names) > 1 {
		return false
	}
	id, ok := ft.Results.List[0].Type.(*ast.Ident)
	return ok && id.Name == "string"
}

// receiverType returns the type name of a method receiver and whether it is a pointer receiver.
func receiverType(x ast.Expr) (string, bool) {
	ptr := false
	if star, ok := x.(*ast.StarExpr); ok {
		ptr = true
		x = star.X
	}
	for {
		p, ok := x.(*ast.ParenExpr)
		if !ok {
			break
		}
		x = p.X
	}
	if id, ok := x.(*ast.Ident); ok {
		return id.Name, ptr
	}
	return "", ptr
}

// annotated is a type spec together with its directive.
type annotated struct {
	spec *ast.TypeSpec
	dir  *directive
}

func (a *annotated) Name() string {
	return a.spec.Name.Name
}

// typeDecl returns the annotated type specs of a type declaration. Directives on a parenthesized declaration with
// more than one spec are rejected, as are repeated directives.
func (s *scanner) typeDecl(gd *ast.GenDecl, used map[*ast.Comment]bool) []*annotated {
	declDirs := directivesIn(gd.Doc, s.directive)
	for _, c := range declDirs {
		used[c] = true
	}
	if len(declDirs) > 0 && len(gd.Specs) != 1 {
		s.diags.Append(diag.E("scan", diag.K.Directive, s.pos(declDirs[0].Slash),
			"reason", "directive applies to more than one type declaration",
			"count", len(gd.Specs)))
		declDirs = nil
	}

	var res []*annotated
	for _, spec := range gd.Specs {
		ts := spec.(*ast.TypeSpec)
		dirs := append([]*ast.Comment{}, declDirs...)
		for _, c := range directivesIn(ts.Doc, s.directive) {
			used[c] = true
			dirs = append(dirs, c)
		}
		if len(dirs) == 0 {
			continue
		}
		if len(dirs) > 1 {
			s.diags.Append(diag.E("scan", diag.K.Directive, s.pos(dirs[1].Slash), "type", ts.Name.Name,
				"reason", "directive present more than once"))
			continue
		}
		d, err := parseDirective(s.pkg.Fset, dirs[0], s.directive)
		if err != nil {
			s.diags.Append(diag.Wrap(err, "type", ts.Name.Name))
			continue
		}
		res = append(res, &annotated{spec: ts, dir: d})
	}
	return res
}

// analyze validates an annotated type. Returns nil if the type cannot be generated; all problems found are recorded.
func (s *scanner) analyze(a *annotated) *Descriptor {
	name := a.Name()
	pos := s.pos(a.spec.Name.Pos())
	e := diag.Template("scan", "type", name)
	failed := false
	fail := func(args ...interface{}) {
		s.diags.Append(e(args...))
		failed = true
	}

	underlying := ""
	switch {
	case a.spec.TypeParams != nil:
		fail(diag.K.Shape, pos, "reason", "generic types are not supported")
	case a.spec.Assign.IsValid():
		fail(diag.K.Shape, pos, "reason", "type aliases are not supported")
	default:
		switch t := a.spec.Type.(type) {
		case *ast.Ident:
			if basicTypes[t.Name] {
				underlying = t.Name
			} else {
				fail(diag.K.Shape, pos, "reason", "underlying type must be a predeclared integer or string type",
					"underlying", t.Name)
			}
		case *ast.StructType:
			fail(diag.K.Shape, pos, "reason", "struct types are not supported, declare the variants as constants")
		default:
			fail(diag.K.Shape, pos, "reason", "not a variant-style type")
		}
	}

	variants := s.variants[name]
	if underlying != "" && len(variants) == 0 {
		fail(diag.K.Shape, pos, "reason", "no variants, declare at least one constant of the type")
	}

	switch s.errorMethods[name] {
	case "value":
	case "pointer":
		fail(diag.K.Shape, pos, "reason", "Error() string must have a value receiver")
	default:
		fail(diag.K.Shape, pos, "reason", "missing method Error() string")
	}

	if _, err := errctx.ParseTemplate(a.dir.template); err != nil {
		fail(a.dir.pos, err)
	}

	if s.conflicts(name, pos, variants) {
		failed = true
	}

	if failed {
		return nil
	}
	return &Descriptor{
		Name:       name,
		Underlying: underlying,
		Template:   a.dir.template,
		Variants:   variants,
		Pos:        pos,
	}
}

// conflicts records a diagnostic for every generated identifier of the type that is already in use. Returns true if
// there was any.
func (s *scanner) conflicts(name string, pos token.Position, variants []Variant) bool {
	e := diag.Template("scan", diag.K.Conflict, "type", name)
	found := false
	for _, reserved := range errctx.ReservedNames(name) {
		if v, ok := findVariant(variants, reserved); ok {
			s.diags.Append(e(v.Pos, "reason", "variant uses the reserved name of the context variant",
				"name", reserved))
			found = true
			continue
		}
		if p, ok := s.decls[reserved]; ok {
			s.diags.Append(e(p, "reason", "identifier reserved for generated code is already declared",
				"name", reserved))
			found = true
			continue
		}
		if other, ok := s.generated[reserved]; ok && other != name {
			s.diags.Append(e(pos, "reason", "identifier is also generated for another type",
				"name", reserved, "other", other))
			found = true
			continue
		}
		s.generated[reserved] = name
	}
	if p, ok := s.decls[runtimeName]; ok {
		s.diags.Append(e(p, "reason", "identifier shadows the import of the runtime package",
			"name", runtimeName))
		found = true
	}
	return found
}

func findVariant(variants []Variant, name string) (Variant, bool) {
	for _, v := range variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

// variantList renders variant names as "A, B or C".
func variantList(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
}
