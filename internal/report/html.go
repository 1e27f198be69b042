package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"
)

//go:embed templates
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"heading": func(l Labels, t Type) string { return l.Heading(t) },
	"stamp":   func(t time.Time) string { return t.Format("2006-01-02 15:04") },
}

var listTemplate = template.Must(
	template.New("itemOrFileList.html.tmpl").Funcs(templateFuncs).ParseFS(templateFS, "templates/itemOrFileList.html.tmpl"),
)

// templates maps report types to their layouts.
var templates = map[Type]*template.Template{
	TypeItemList: listTemplate,
	TypeFileList: listTemplate,
}

// WriteHTML renders doc through the template of its report type. The output
// is rendered in full before anything reaches w.
func WriteHTML(doc *Document, w io.Writer) error {
	if doc.Empty() {
		return nil
	}
	tmpl, ok := templates[doc.Type]
	if !ok {
		return fmt.Errorf("no html template for report type %s", doc.Type)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, doc); err != nil {
		return fmt.Errorf("render %s: %w", doc.Type, err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
