package mailer

import (
	"bytes"
	"html/template"
)

// Branding is the tenant look used in every mail.
type Branding struct {
	SchoolName string
	LogoURL    string
}

var layout = template.Must(template.New("layout").Parse(`<!doctype html>
<html><body style="font-family:Arial,sans-serif;color:#222">
{{if .Brand.LogoURL}}<img src="{{.Brand.LogoURL}}" alt="{{.Brand.SchoolName}}" style="max-height:60px"><br>{{end}}
<h2 style="margin:8px 0">{{.Brand.SchoolName}}</h2>
<h3>{{.Title}}</h3>
{{range .Paragraphs}}<p>{{.}}</p>{{end}}
{{if .Link}}<p><a href="{{.Link}}">Ver en la plataforma</a></p>{{end}}
<hr><small>Este es un mensaje automático, por favor no responder.</small>
</body></html>`))

type page struct {
	Brand      Branding
	Title      string
	Paragraphs []string
	Link       string
}

// Render builds the HTML body. Paragraphs are escaped.
func Render(b Branding, title string, paragraphs []string, link string) (string, error) {
	var buf bytes.Buffer
	if err := layout.Execute(&buf, page{Brand: b, Title: title, Paragraphs: paragraphs, Link: link}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
