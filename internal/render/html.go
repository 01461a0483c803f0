package render

import (
	"bytes"
	"html/template"
	"strings"
)

// actionSchemes are trusted in hrefs; anything else is left to the
// template's own URL filtering.
var actionSchemes = []string{"http:", "https:", "ftp:", "mailto:", "tel:", "sms:"}

func safeHref(href string) any {
	lower := strings.ToLower(href)
	for _, s := range actionSchemes {
		if strings.HasPrefix(lower, s) {
			return template.URL(href)
		}
	}
	return href
}

var fragmentTmpl = template.Must(template.New("fragment").Funcs(template.FuncMap{"href": safeHref}).Parse(`<div class="payload payload-{{.Kind}}">
<div class="payload-header"><span class="icon">{{.Icon}}</span> <span class="label">{{.Label}}:</span> <span class="name">{{.DisplayName}}</span></div>
{{- range .Items}}
<div class="item">
{{- if .Label}}<strong>{{.Label}}:</strong> {{end -}}
{{- if .Href}}<a href="{{href .Href}}"{{if .External}} target="_blank" rel="noopener noreferrer"{{end}}>{{.Value}}</a>
{{- else if .Code}}<code>{{.Value}}</code>
{{- else}}{{.Value}}{{end -}}
</div>
{{- end}}
</div>
`))

// HTML renders the fragment as escaped markup.
func (f Fragment) HTML() (string, error) {
	var buf bytes.Buffer
	if err := fragmentTmpl.Execute(&buf, f); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Text renders the fragment as plain lines for terminals.
func (f Fragment) Text() string {
	var b strings.Builder
	b.WriteString(f.Icon + " " + f.DisplayName + "\n")
	for _, it := range f.Items {
		b.WriteString("  ")
		if it.Label != "" {
			b.WriteString(it.Label + ": ")
		}
		b.WriteString(it.Value)
		if it.Href != "" && it.Href != it.Value {
			b.WriteString(" <" + it.Href + ">")
		}
		b.WriteString("\n")
	}
	return b.String()
}
