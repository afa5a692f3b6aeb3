// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/eticaret/storefront/internal/config"
	"github.com/eticaret/storefront/internal/domain/order"
)

var invoiceTmpl = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"money": FormatMoney,
}).Parse(invoiceTemplate))

// Service handles PDF generation
type Service struct {
	invoice  config.InvoiceConfig
	currency string
	now      func() time.Time
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	if cfg.Invoice.WkhtmltopdfBin != "" {
		wkhtmltopdf.SetPath(cfg.Invoice.WkhtmltopdfBin)
	}
	return &Service{
		invoice:  cfg.Invoice,
		currency: cfg.Store.Currency,
		now:      time.Now,
	}
}

// InvoiceData represents the data passed to the invoice template
type InvoiceData struct {
	InvoiceNumber string
	InvoiceDate   string
	Currency      string
	Order         *order.Order
	Company       CompanyInfo
}

// CompanyInfo represents company information
type CompanyInfo struct {
	Name    string
	Address string
	Phone   string
	Email   string
	Website string
}

// GenerateInvoice renders an order invoice and converts it to PDF
func (s *Service) GenerateInvoice(o *order.Order) (*bytes.Buffer, error) {
	htmlContent, err := s.RenderInvoiceHTML(o)
	if err != nil {
		return nil, err
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(htmlContent))
	page.Encoding.Set("utf-8")
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// RenderInvoiceHTML renders the invoice page
func (s *Service) RenderInvoiceHTML(o *order.Order) ([]byte, error) {
	if o.Address == nil {
		return nil, fmt.Errorf("order %s has no delivery address loaded", o.OrderNumber)
	}

	data := InvoiceData{
		InvoiceNumber: "INV-" + o.OrderNumber,
		InvoiceDate:   s.now().Format("02.01.2006"),
		Currency:      s.currency,
		Order:         o,
		Company: CompanyInfo{
			Name:    s.invoice.CompanyName,
			Address: s.invoice.CompanyAddress,
			Phone:   s.invoice.CompanyPhone,
			Email:   s.invoice.CompanyEmail,
			Website: s.invoice.CompanyWebsite,
		},
	}

	var buf bytes.Buffer
	if err := invoiceTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatMoney renders minor units with a decimal comma, e.g. 22500 -> "225,00 TRY"
func FormatMoney(minor int64, currency string) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d,%02d %s", sign, minor/100, minor%100, currency)
}

const invoiceTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Fatura {{.InvoiceNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { display: flex; justify-content: space-between; margin-bottom: 30px; border-bottom: 2px solid #eee; padding-bottom: 20px; }
        .invoice-title { font-size: 28px; font-weight: bold; color: #2563eb; margin-bottom: 10px; }
        .section-title { font-size: 16px; font-weight: bold; margin-bottom: 10px; color: #374151; }
        .items-table { width: 100%; border-collapse: collapse; margin-bottom: 30px; }
        .items-table th, .items-table td { border: 1px solid #ddd; padding: 10px 8px; text-align: left; }
        .items-table th { background-color: #f8f9fa; }
        .num { text-align: right; }
        .totals { float: right; width: 320px; }
        .totals td { padding: 8px; border-bottom: 1px solid #eee; text-align: right; }
        .total-row { font-size: 18px; font-weight: bold; }
        .footer { margin-top: 50px; padding-top: 20px; border-top: 1px solid #eee; text-align: center; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="header">
        <div>
            <h1>{{.Company.Name}}</h1>
            {{if .Company.Address}}<p>{{.Company.Address}}</p>{{end}}
            {{if .Company.Phone}}<p>Tel: {{.Company.Phone}}</p>{{end}}
            <p>E-posta: {{.Company.Email}}</p>
            {{if .Company.Website}}<p>{{.Company.Website}}</p>{{end}}
        </div>
        <div>
            <div class="invoice-title">FATURA</div>
            <p><strong>Fatura No:</strong> {{.InvoiceNumber}}</p>
            <p><strong>Fatura Tarihi:</strong> {{.InvoiceDate}}</p>
            <p><strong>Sipariş No:</strong> {{.Order.OrderNumber}}</p>
            <p><strong>Sipariş Tarihi:</strong> {{.Order.CreatedAt.Format "02.01.2006 15:04"}}</p>
            <p><strong>Durum:</strong> {{.Order.Status.Label}}</p>
            <p><strong>Ödeme:</strong> {{.Order.PaymentMethod.Label}}</p>
        </div>
    </div>

    <div>
        <div class="section-title">Teslimat Adresi</div>
        <p><strong>{{.Order.Address.FullName}}</strong></p>
        <p>{{.Order.Address.OneLine}}</p>
        <p>Tel: {{.Order.Address.Phone}}</p>
    </div>

    <table class="items-table">
        <thead>
            <tr>
                <th>Ürün</th>
                <th class="num">Adet</th>
                <th class="num">Birim Fiyat</th>
                <th class="num">Tutar</th>
            </tr>
        </thead>
        <tbody>
            {{range .Order.Items}}
            <tr>
                <td>{{.ProductName}}</td>
                <td class="num">{{.Quantity}}</td>
                <td class="num">{{money .Price $.Currency}}</td>
                <td class="num">{{money .TotalPrice $.Currency}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <div class="totals">
        <table>
            <tr><td>Ara Toplam:</td><td>{{money .Order.TotalAmount .Currency}}</td></tr>
            <tr><td>Kargo:</td><td>{{if eq .Order.ShippingCost 0}}Ücretsiz{{else}}{{money .Order.ShippingCost .Currency}}{{end}}</td></tr>
            <tr class="total-row"><td>Genel Toplam:</td><td>{{money .Order.GrandTotal .Currency}}</td></tr>
        </table>
    </div>

    <div style="clear: both;"></div>
    {{if .Order.Notes}}<p><strong>Not:</strong> {{.Order.Notes}}</p>{{end}}

    <div class="footer">
        <p>Bizi tercih ettiğiniz için teşekkür ederiz.</p>
        <p>Sorularınız için {{.Company.Email}}</p>
    </div>
</body>
</html>
`
