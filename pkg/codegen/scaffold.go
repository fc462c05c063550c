package codegen

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed scaffold
var scaffoldFS embed.FS

// Brackets keep template actions apart from JSX expression braces.
var scaffold = template.Must(
	template.New("scaffold").Delims("[[", "]]").ParseFS(scaffoldFS, "scaffold/*.tmpl"),
)

// projectVars feeds the scaffold templates.
type projectVars struct {
	Name string
	// NameLiteral is Name as a quoted source literal.
	NameLiteral string
	Imports     string
	Data        string
	Markup      string
}

func renderScaffold(name string, vars projectVars) string {
	var buf bytes.Buffer
	if err := scaffold.ExecuteTemplate(&buf, name, vars); err != nil {
		// templates are embedded and only read string fields
		panic(fmt.Sprintf("codegen: render %s: %v", name, err))
	}
	return buf.String()
}

func staticFile(name string) string {
	content, err := scaffoldFS.ReadFile("scaffold/" + name)
	if err != nil {
		panic(fmt.Sprintf("codegen: read %s: %v", name, err))
	}
	return string(content)
}
