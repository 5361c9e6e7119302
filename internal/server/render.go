package server

import (
	"html/template"
	"io"

	"github.com/we-zayed/results-portal/internal/roster"
)

// DocumentRenderer turns one student record into a downloadable result
// document. PDF rasterization lives behind this interface as an external
// collaborator; the built-in implementation emits a printable HTML sheet.
type DocumentRenderer interface {
	ContentType() string
	RenderResult(w io.Writer, student roster.Student) error
}

// HTMLRenderer renders a printable result sheet.
type HTMLRenderer struct {
	tmpl *template.Template
}

// NewHTMLRenderer creates the built-in renderer.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{tmpl: template.Must(template.New("result").Parse(resultTemplate))}
}

func (r *HTMLRenderer) ContentType() string { return "text/html; charset=utf-8" }

func (r *HTMLRenderer) RenderResult(w io.Writer, student roster.Student) error {
	return r.tmpl.Execute(w, student)
}

const resultTemplate = `<!DOCTYPE html>
<html lang="ar" dir="rtl">
<head>
<meta charset="utf-8">
<title>نتيجة {{.Name}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #222; }
h1 { color: #4b0082; }
table { border-collapse: collapse; width: 100%; margin-top: 1rem; }
th, td { border: 1px solid #ccc; padding: .5rem .75rem; text-align: right; }
th { background: #4b0082; color: #fff; }
.fail { color: #e60000; font-weight: bold; }
.pass { color: #0a7d32; font-weight: bold; }
.meta { margin: .25rem 0; }
</style>
</head>
<body>
<h1>بيان درجات الطالب</h1>
<p class="meta">الاسم: {{.Name}}</p>
<p class="meta">الرقم القومي: {{.NationalID}}</p>
<p class="meta">رقم الجلوس: {{.SeatingNumber}}</p>
<p class="meta">الفصل: {{.Class}}</p>
<table>
<tr><th>المادة</th><th>الدرجة</th><th>النهاية العظمى</th><th>الحالة</th></tr>
{{range .Grades}}
<tr>
<td>{{.Name}}</td>
<td>{{.Score}}</td>
<td>{{.MaxScore}}</td>
{{if eq .Status "Pass"}}<td class="pass">ناجح</td>{{else}}<td class="fail">راسب</td>{{end}}
</tr>
{{end}}
</table>
{{if .GPA}}<p class="meta">المعدل التراكمي: {{.GPA}}</p>{{end}}
</body>
</html>`
