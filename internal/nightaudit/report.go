package nightaudit

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/solara-pms/solara/internal/ledger"
	"github.com/solara-pms/solara/internal/orders"
	"github.com/solara-pms/solara/internal/rooms"
	"github.com/solara-pms/solara/web"
)

// ReportData is the view model handed to the night audit report template.
type ReportData struct {
	BusinessDate     string
	NextBusinessDate string
	RunID            int64
	RunBy            string
	GeneratedAt      time.Time
	Summary          Summary
	Totals           ledger.DayTotals
	RoomCharges      []ChargeLine
	Orders           []OrderLine
	RoomStatuses     []RoomStatusLine
}

// ChargeLine is one posted room charge on the report.
type ChargeLine struct {
	Reference string
	GuestName string
	Rooms     string
	Amount    decimal.Decimal
}

// OrderLine is one food or bar order on the report.
type OrderLine struct {
	Number   string
	MenuType string
	Status   string
	Total    decimal.Decimal
}

// RoomStatusLine is one housekeeping row on the report.
type RoomStatusLine struct {
	RoomNumber string
	Status     string
}

// OrderRows maps orders into report lines.
func OrderRows(list []orders.Order) []OrderLine {
	out := make([]OrderLine, 0, len(list))
	for _, o := range list {
		out = append(out, OrderLine{
			Number:   o.OrderNumber,
			MenuType: string(o.MenuType),
			Status:   string(o.Status),
			Total:    o.Total,
		})
	}
	return out
}

// RoomStatusRows maps housekeeping statuses into report lines.
func RoomStatusRows(list []rooms.RoomStatus) []RoomStatusLine {
	out := make([]RoomStatusLine, 0, len(list))
	for _, rs := range list {
		out = append(out, RoomStatusLine{
			RoomNumber: rs.RoomNumber,
			Status:     string(rs.Status),
		})
	}
	return out
}

// PDFClient exposes the subset of the report client used by the renderer.
type PDFClient interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Renderer transforms ReportData into PDF artefacts via html/template + PDF
// conversion.
type Renderer struct {
	tpl    *template.Template
	client PDFClient
}

// NewRenderer parses the night audit report template and wires the PDF client.
func NewRenderer(client PDFClient) (*Renderer, error) {
	if client == nil {
		return nil, fmt.Errorf("nightaudit renderer: pdf client required")
	}
	printer := message.NewPrinter(language.English)
	funcMap := template.FuncMap{
		"formatDateTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
		"formatAmount": func(v decimal.Decimal) string {
			f, _ := v.Float64()
			return printer.Sprintf("%.2f", f)
		},
	}
	tpl, err := template.New("night_audit.html").Funcs(funcMap).ParseFS(web.Templates, "templates/reports/night_audit.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tpl: tpl, client: client}, nil
}

// Render executes the template and converts the HTML to PDF bytes.
func (r *Renderer) Render(ctx context.Context, data ReportData) ([]byte, error) {
	if r == nil || r.tpl == nil || r.client == nil {
		return nil, fmt.Errorf("nightaudit renderer not initialised")
	}
	buf := &bytes.Buffer{}
	if err := r.tpl.Execute(buf, data); err != nil {
		return nil, err
	}
	return r.client.RenderHTML(ctx, buf.String())
}
