// Package export renders printable order documents.
package export

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/diewo77/go-printshop/internal/balance"
	"github.com/diewo77/go-printshop/internal/config"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	mconfig "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// ErrUnavailable means PDF export is switched off; callers fall back to the print view.
var ErrUnavailable = errors.New("pdf export unavailable")

// Document is everything printed for one order. Order must have Client,
// Seller and Descriptions loaded.
type Document struct {
	Company models.CompanyConfig
	Order   models.Order
	Summary balance.Summary
}

// Exporter renders an order to PDF bytes.
type Exporter interface {
	OrderPDF(doc Document) ([]byte, error)
}

// New returns the maroto exporter, or one that always fails with ErrUnavailable.
func New(cfg config.ExportConfig) Exporter {
	if !cfg.PDFEnabled {
		return Disabled{}
	}
	return PDF{}
}

type Disabled struct{}

func (Disabled) OrderPDF(Document) ([]byte, error) { return nil, ErrUnavailable }

// PDF renders with maroto.
type PDF struct{}

var (
	bold  = props.Text{Style: fontstyle.Bold, Size: 10}
	plain = props.Text{Size: 10}
	right = props.Text{Size: 10, Align: align.Right}
)

func (PDF) OrderPDF(doc Document) ([]byte, error) {
	m := maroto.New(mconfig.NewBuilder().
		WithLeftMargin(15).
		WithRightMargin(15).
		WithTopMargin(15).
		Build())

	o := doc.Order
	m.AddRows(text.NewRow(10, doc.Company.Name, props.Text{Size: 16, Style: fontstyle.Bold}))
	if doc.Company.TaxID != "" {
		m.AddRow(5, text.NewCol(12, "RUC "+doc.Company.TaxID, plain))
	}
	m.AddRow(5, text.NewCol(12, joinNonEmpty(doc.Company.Address, doc.Company.Phone, doc.Company.Email), plain))
	m.AddRows(line.NewRow(6))

	m.AddRow(8,
		text.NewCol(6, fmt.Sprintf("Orden #%d", o.ID), props.Text{Size: 13, Style: fontstyle.Bold}),
		text.NewCol(6, o.Date.Format("2006-01-02"), props.Text{Size: 11, Align: align.Right}),
	)
	if o.Client != nil {
		m.AddRow(6, text.NewCol(3, "Cliente", bold), text.NewCol(9, o.Client.Name, plain))
		if o.Client.TaxID != "" {
			m.AddRow(6, text.NewCol(3, "RUC/DNI", bold), text.NewCol(9, o.Client.TaxID, plain))
		}
	}
	if o.Seller != nil {
		m.AddRow(6, text.NewCol(3, "Vendedor", bold), text.NewCol(9, o.Seller.Name, plain))
	}
	m.AddRow(6,
		text.NewCol(3, "Estado", bold),
		text.NewCol(9, fmt.Sprintf("%s / %s", o.WorkStatus, o.DispatchStatus), plain),
	)
	m.AddRows(line.NewRow(6))

	m.AddRow(7,
		text.NewCol(6, "Descripción", bold),
		text.NewCol(2, "Cant.", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
		text.NewCol(2, "P. unit.", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
		text.NewCol(2, "Subtotal", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
	)
	for _, d := range o.Descriptions {
		m.AddRow(6,
			text.NewCol(6, d.Text, plain),
			text.NewCol(2, strconv.Itoa(d.Quantity), right),
			text.NewCol(2, d.UnitPrice.StringFixed(2), right),
			text.NewCol(2, d.Subtotal.StringFixed(2), right),
		)
	}
	m.AddRows(line.NewRow(6))

	totals := []struct {
		label string
		value string
	}{
		{"Neto", o.NetPrice.StringFixed(2)},
		{"IGV", o.Tax.StringFixed(2)},
		{"Total", o.Total.StringFixed(2)},
		{"Pagado", doc.Summary.Paid.StringFixed(2)},
		{"Saldo", doc.Summary.Balance.StringFixed(2)},
	}
	for _, t := range totals {
		m.AddRow(6, text.NewCol(8, "", plain), text.NewCol(2, t.label, bold), text.NewCol(2, t.value, right))
	}
	m.AddRow(6, text.NewCol(8, "", plain), text.NewCol(2, "Pago", bold), text.NewCol(2, string(doc.Summary.State), right))

	if o.Notes != "" {
		m.AddRows(line.NewRow(6))
		m.AddRow(12, text.NewCol(12, o.Notes, plain))
	}

	pdf, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return pdf.GetBytes(), nil
}

func joinNonEmpty(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += " · "
		}
		out += p
	}
	return out
}
