package viz

import (
	"fmt"
	"os"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"gridsig/internal/errors"
)

const pageShell = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>%s</title>
<style>body{font-family:sans-serif;max-width:60em;margin:2em auto}table{border-collapse:collapse}td,th{border:1px solid #999;padding:0.3em 0.6em}</style>
</head>
<body>
%s
</body>
</html>
`

// WriteHTMLReport converts a markdown report summary into a standalone HTML
// page.
func WriteHTMLReport(path, title, md string) error {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	body := markdown.ToHTML([]byte(md), p, renderer)

	page := fmt.Sprintf(pageShell, title, body)
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		return errors.IOError("failed to write HTML report", err)
	}
	return nil
}
