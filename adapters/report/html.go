package report

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"goassoc/domain/assoc"
	"goassoc/internal/errors"
)

const htmlHeader = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Association Analysis Report</title>
<style>
body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; max-width: 960px; margin: 2rem auto; padding: 0 1rem; color: #1c1e21; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #d0d4d9; padding: 0.35rem 0.7rem; text-align: left; }
th { background: #f3f5f7; }
code { background: #f3f5f7; padding: 0.1rem 0.3rem; border-radius: 3px; }
h1, h2 { border-bottom: 1px solid #e3e6e9; padding-bottom: 0.3rem; }
</style>
</head>
<body>
`

const htmlFooter = `</body>
</html>
`

// RenderHTML renders the markdown report through gomarkdown and wraps it in
// a standalone page.
func RenderHTML(bundle *assoc.ResultBundle) []byte {
	md := RenderMarkdown(bundle)

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse(md)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	body := markdown.Render(doc, renderer)

	var b bytes.Buffer
	b.WriteString(htmlHeader)
	b.Write(body)
	b.WriteString(htmlFooter)
	return b.Bytes()
}

// Sink renders bundles into an output directory, implementing
// ports.ReportSinkPort.
type Sink struct{}

// NewSink creates the file-backed report sink
func NewSink() *Sink {
	return &Sink{}
}

// WriteHTML writes the standalone HTML report and returns its path
func (s *Sink) WriteHTML(ctx context.Context, bundle *assoc.ResultBundle, outputDir string) (string, error) {
	if bundle == nil {
		return "", errors.InvalidInput("result bundle is required")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", errors.IOError(outputDir, err)
	}
	path := filepath.Join(outputDir, fmt.Sprintf("report_%s.html", bundle.RunID))
	if err := os.WriteFile(path, RenderHTML(bundle), 0o644); err != nil {
		return "", errors.IOError(path, err)
	}
	log.Printf("[ReportSink] HTML report written to %s", path)
	return path, nil
}

// WriteWorkbook writes the multi-sheet Excel workbook and returns its path
func (s *Sink) WriteWorkbook(ctx context.Context, bundle *assoc.ResultBundle, outputDir string) (string, error) {
	if bundle == nil {
		return "", errors.InvalidInput("result bundle is required")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", errors.IOError(outputDir, err)
	}
	f, err := BuildWorkbook(bundle)
	if err != nil {
		return "", err
	}
	defer f.Close()

	path := filepath.Join(outputDir, fmt.Sprintf("report_%s.xlsx", bundle.RunID))
	if err := f.SaveAs(path); err != nil {
		return "", errors.IOError(path, err)
	}
	log.Printf("[ReportSink] Workbook written to %s", path)
	return path, nil
}
