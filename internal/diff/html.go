// html.go renders diff sections as a standalone HTML page.
package diff

import (
	"html/template"
	"strings"
)

type htmlLine struct {
	Class string
	Text  string
}

type htmlSection struct {
	Name  string
	Lines []htmlLine
}

const htmlPage = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>stackup diff</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; margin: 24px; color: #0f172a; background: #f8fafc; }
    .panel { background: rgba(255,255,255,0.95); border: 1px solid rgba(15,23,42,0.12); border-radius: 16px; padding: 16px; margin-bottom: 16px; }
    h2 { font-size: 14px; margin: 0 0 8px; text-transform: uppercase; letter-spacing: .14em; color: rgba(15,23,42,0.65); }
    pre { font-family: ui-monospace, SFMono-Regular, Menlo, Consolas, monospace; white-space: pre-wrap; word-break: break-word; background: rgba(15,23,42,0.04); border-radius: 12px; padding: 12px; font-size: 12px; margin: 0; }
    .add { color: #15803d; }
    .del { color: #b91c1c; }
    .meta { color: #0e7490; }
  </style>
</head>
<body>
  {{ if not .Sections }}
  <div class="panel"><h2>Diff</h2><pre>No differences.</pre></div>
  {{ end }}
  {{ range .Sections }}
  <div class="panel">
    <h2>{{ .Name }}</h2>
    <pre>{{ range .Lines }}<span class="{{ .Class }}">{{ .Text }}</span>
{{ end }}</pre>
  </div>
  {{ end }}
</body>
</html>
`

var htmlTemplate = template.Must(template.New("diff").Parse(htmlPage))

func renderHTML(sections []Section) (string, error) {
	data := struct {
		Sections []htmlSection
	}{}
	for _, section := range sections {
		if !section.Changed() {
			continue
		}
		hs := htmlSection{Name: section.Name}
		for _, line := range strings.Split(strings.TrimRight(section.Unified, "\n"), "\n") {
			hs.Lines = append(hs.Lines, htmlLine{Class: lineClass(line), Text: line})
		}
		data.Sections = append(data.Sections, hs)
	}
	var sb strings.Builder
	if err := htmlTemplate.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func lineClass(line string) string {
	switch {
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"), strings.HasPrefix(line, "@@"):
		return "meta"
	case strings.HasPrefix(line, "+"):
		return "add"
	case strings.HasPrefix(line, "-"):
		return "del"
	default:
		return "ctx"
	}
}
