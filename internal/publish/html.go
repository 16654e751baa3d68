package publish

import (
	"bytes"
	"html/template"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Raw HTML in card text is escaped: html.WithUnsafe is not set.
var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		emoji.Emoji,
	),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

// Relative links to sibling .md pages point at the .html pages instead.
var mdLinkRe = regexp.MustCompile(`href="([^":#?]+)\.md"`)

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body{font-family:system-ui,sans-serif;max-width:46rem;margin:2rem auto;padding:0 1rem;line-height:1.5}
code,pre{background:#f4f4f5;border-radius:4px}pre{padding:.75rem;overflow:auto}
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// RenderHTML converts a rendered markdown page into a standalone HTML document.
func RenderHTML(title, md string) ([]byte, error) {
	var body bytes.Buffer
	if err := markdownRenderer.Convert([]byte(md), &body); err != nil {
		return nil, err
	}
	linked := mdLinkRe.ReplaceAllString(body.String(), `href="$1.html"`)

	var out bytes.Buffer
	err := pageTemplate.Execute(&out, struct {
		Title string
		// goldmark output is trusted only because raw HTML is disabled above.
		Body template.HTML
	}{
		Title: strings.TrimSpace(title),
		Body:  template.HTML(linked),
	})
	if err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
