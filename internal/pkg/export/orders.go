// Package export writes admin reports as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/eticaret/storefront/internal/domain/order"
	"github.com/tealeg/xlsx"
)

// ContentType is the MIME type of the generated workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var orderHeaders = []string{
	"Sipariş No", "Tarih", "Müşteri No", "Durum", "Ödeme",
	"Ürün Adedi", "Ara Toplam", "Kargo", "Genel Toplam", "Şehir", "Not",
}

var itemHeaders = []string{
	"Sipariş No", "Ürün No", "Ürün", "Adet", "Birim Fiyat", "Tutar",
}

// OrdersWorkbook builds a workbook with an order sheet and a line sheet.
// Amounts are written in major units.
func OrdersWorkbook(orders []order.Order) (*xlsx.File, error) {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet("Siparişler")
	if err != nil {
		return nil, fmt.Errorf("failed to create order sheet: %w", err)
	}
	addHeader(sheet, orderHeaders)

	lines, err := file.AddSheet("Kalemler")
	if err != nil {
		return nil, fmt.Errorf("failed to create item sheet: %w", err)
	}
	addHeader(lines, itemHeaders)

	for i := range orders {
		o := &orders[i]

		row := sheet.AddRow()
		row.AddCell().SetString(o.OrderNumber)
		row.AddCell().SetString(o.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetInt(int(o.UserID))
		row.AddCell().SetString(o.Status.Label())
		row.AddCell().SetString(o.PaymentMethod.Label())
		row.AddCell().SetInt(o.ItemCount())
		row.AddCell().SetFloat(major(o.TotalAmount))
		row.AddCell().SetFloat(major(o.ShippingCost))
		row.AddCell().SetFloat(major(o.GrandTotal()))
		city := ""
		if o.Address != nil {
			city = o.Address.City
		}
		row.AddCell().SetString(city)
		row.AddCell().SetString(o.Notes)

		for j := range o.Items {
			item := &o.Items[j]
			line := lines.AddRow()
			line.AddCell().SetString(o.OrderNumber)
			line.AddCell().SetInt(int(item.ProductID))
			line.AddCell().SetString(item.ProductName)
			line.AddCell().SetInt(item.Quantity)
			line.AddCell().SetFloat(major(item.Price))
			line.AddCell().SetFloat(major(item.TotalPrice()))
		}
	}

	return file, nil
}

// WriteOrders writes the order workbook to w
func WriteOrders(w io.Writer, orders []order.Order) error {
	file, err := OrdersWorkbook(orders)
	if err != nil {
		return err
	}
	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func addHeader(sheet *xlsx.Sheet, headers []string) {
	row := sheet.AddRow()
	for _, h := range headers {
		row.AddCell().SetString(h)
	}
}

func major(minor int64) float64 {
	return float64(minor) / 100
}
