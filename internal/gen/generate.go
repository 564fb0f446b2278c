package gen

import (
	"bytes"
	"go/format"
	"text/template"

	"github.com/eluv-io/errctx-go/internal/diag"
)

var fileTemplate = template.Must(template.New("file").Parse(`{{.Header}}
{{if .Constraint}}
//go:build {{.Constraint}}
{{end}}
package {{.Package}}

import {{.RuntimeName}} "{{.Import}}"
{{range .Types}}
// {{.WithContextName}} is {{.Name}} extended with an optional context string. It holds {{.Variants}}
// unchanged, or such a value together with the context attached by {{.DefinitionName}}.
type {{.WithContextName}} = {{$.RuntimeName}}.Error[{{.Name}}]

// {{.DefinitionName}} attaches context to {{.Name}} values and strips it again. Values with context render as
// {{printf "%q" .Template}}.
var {{.DefinitionName}} = {{$.RuntimeName}}.MustDefine[{{.Name}}]({{printf "%q" .Name}}, {{printf "%q" .Template}})
{{end}}`))

// File is the input of the generated file.
type File struct {
	Package    string
	Import     string
	Constraint string
	Types      []*Descriptor
}

type fileData struct {
	Header      string
	Constraint  string
	Package     string
	RuntimeName string
	Import      string
	Types       []typeData
}

type typeData struct {
	Name            string
	WithContextName string
	DefinitionName  string
	Template        string
	Variants        string
}

// Generate renders the gofmt-ed source of the generated file.
func Generate(f *File) ([]byte, error) {
	e := diag.Template("generate", "package", f.Package)
	if len(f.Types) == 0 {
		return nil, e(diag.K.Invalid, "reason", "no types")
	}

	data := fileData{
		Header:      Header,
		Constraint:  f.Constraint,
		Package:     f.Package,
		RuntimeName: runtimeName,
		Import:      f.Import,
	}
	for _, d := range f.Types {
		data.Types = append(data.Types, typeData{
			Name:            d.Name,
			WithContextName: d.WithContextName(),
			DefinitionName:  d.DefinitionName(),
			Template:        d.Template,
			Variants:        variantList(d.VariantNames()),
		})
	}

	buf := &bytes.Buffer{}
	if err := fileTemplate.Execute(buf, data); err != nil {
		return nil, e(diag.K.Internal, err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, e(diag.K.Internal, "reason", "generated code does not parse", err)
	}
	return src, nil
}
