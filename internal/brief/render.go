package brief

import (
	"bytes"
	"errors"
	"strings"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/PratikDhanave/campaign-analytics-service/internal/metrics"
)

// Format is an output encoding for a brief.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatPDF      Format = "pdf"
)

// ParseFormat maps user input to a Format. Unknown values select Markdown.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return FormatPDF
	default:
		return FormatMarkdown
	}
}

// Document is a rendered brief ready for download.
type Document struct {
	Format      Format
	Data        []byte
	ContentType string
	Filename    string
}

// Renderer turns brief Markdown into a paginated document.
type Renderer interface {
	Render(markdown string) ([]byte, error)
}

// PDFRenderer lays out brief Markdown on US Letter pages.
type PDFRenderer struct{}

func (PDFRenderer) Render(markdown string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "# "):
			pdf.SetFont("Helvetica", "B", 18)
			pdf.MultiCell(0, 9, tr(line[2:]), "", "C", false)
		case strings.HasPrefix(line, "## "):
			pdf.Ln(3)
			pdf.SetFont("Helvetica", "B", 14)
			pdf.MultiCell(0, 7, tr(line[3:]), "", "L", false)
		case trimmed == "":
			continue
		default:
			pdf.SetFont("Helvetica", "", 11)
			pdf.MultiCell(0, 6, tr(line), "", "L", false)
		}
		pdf.Ln(2)
	}

	if err := pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var errPDFUnavailable = errors.New("pdf renderer unavailable")

// Exporter renders briefs. A nil pdf renderer means PDF output is unavailable.
type Exporter struct {
	pdf Renderer
	log *zap.Logger
}

// NewExporter creates an Exporter.
func NewExporter(pdf Renderer, log *zap.Logger) *Exporter {
	return &Exporter{pdf: pdf, log: log}
}

// Export renders b in format f. PDF failures fall back to Markdown so a brief
// is always produced.
func (e *Exporter) Export(b Brief, f Format) Document {
	if f == FormatPDF {
		doc, err := e.exportPDF(b)
		if err == nil {
			metrics.BriefsRendered.WithLabelValues(string(FormatPDF)).Inc()
			return doc
		}
		metrics.BriefFallbacks.Inc()
		e.log.Warn("PDF brief unavailable, serving Markdown", zap.Error(err))
	}

	metrics.BriefsRendered.WithLabelValues(string(FormatMarkdown)).Inc()
	return Document{
		Format:      FormatMarkdown,
		Data:        []byte(b.Markdown),
		ContentType: "text/markdown; charset=utf-8",
		Filename:    "executive_brief.md",
	}
}

func (e *Exporter) exportPDF(b Brief) (doc Document, err error) {
	if e.pdf == nil {
		return Document{}, errPDFUnavailable
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.Join(errPDFUnavailable, errors.New("renderer panicked"))
		}
	}()

	data, err := e.pdf.Render(b.Markdown)
	if err != nil {
		return Document{}, err
	}
	return Document{
		Format:      FormatPDF,
		Data:        data,
		ContentType: "application/pdf",
		Filename:    "executive_brief.pdf",
	}, nil
}
