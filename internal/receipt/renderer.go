package receipt

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/solara-pms/solara/report"
	"github.com/solara-pms/solara/web"
)

// Receipts render on 80mm thermal stock. Chromium expects inches and sizes
// the single page to the content height.
const (
	paperWidthInches     = 3.15
	maxPaperHeightInches = 16.5
)

// PDFClient exposes the subset of the report client used by the renderer.
type PDFClient interface {
	RenderHTMLWithPaper(ctx context.Context, html string, paper report.PaperOptions) ([]byte, error)
}

// Renderer transforms receipt documents into PDF artefacts via
// html/template + PDF conversion.
type Renderer struct {
	tpl    *template.Template
	client PDFClient
}

// NewRenderer parses the thermal receipt template and wires the PDF client.
func NewRenderer(client PDFClient) (*Renderer, error) {
	if client == nil {
		return nil, fmt.Errorf("receipt renderer: pdf client required")
	}
	funcMap := template.FuncMap{
		"formatDateTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
		"formatAmount": func(v decimal.Decimal) string {
			return v.StringFixed(2)
		},
	}
	tpl, err := template.New("thermal.html").Funcs(funcMap).ParseFS(web.Templates, "templates/receipts/thermal.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tpl: tpl, client: client}, nil
}

// Render executes the template and converts the HTML to PDF bytes.
func (r *Renderer) Render(ctx context.Context, doc Document) ([]byte, error) {
	if r == nil || r.tpl == nil || r.client == nil {
		return nil, fmt.Errorf("receipt renderer not initialised")
	}
	buf := &bytes.Buffer{}
	if err := r.tpl.Execute(buf, doc); err != nil {
		return nil, err
	}
	return r.client.RenderHTMLWithPaper(ctx, buf.String(), report.PaperOptions{
		Width:      paperWidthInches,
		Height:     maxPaperHeightInches,
		SinglePage: true,
	})
}
