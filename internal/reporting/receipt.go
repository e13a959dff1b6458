package reporting

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/go-pdf/fpdf"

	"backoffice-service/internal/models"
	"backoffice-service/internal/observability"
	"backoffice-service/internal/repository"
	"backoffice-service/internal/sales"
)

const (
	receiptMargin  = 50.0
	receiptBottom  = 100.0
	receiptRow     = 15.0
	receiptFooter  = 105.0
	fontSize       = 10.0
	fontSizeSmall  = 8.0
	fontSizeLarge  = 14.0
	colQuantity    = receiptMargin + 250
	colUnitPrice   = receiptMargin + 350
	colLineTotal   = receiptMargin + 450
	missingAddress = "No especificada"
)

// Document is a rendered file ready for download.
type Document struct {
	Filename    string
	ContentType string
	Content     []byte
}

func ReceiptFilename(transactionID int) string {
	return fmt.Sprintf("Comprobante_Venta_%d.pdf", transactionID)
}

// Receipt renders the A4 sale receipt of one transaction.
func (s *Service) Receipt(ctx context.Context, transactionID int) (*Document, error) {
	items, err := s.store.Sales().GetByTransaction(ctx, transactionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: transaction %d", repository.ErrNotFound, transactionID)
		}
		return nil, err
	}
	sale := sales.Group(items)[0]

	pdf := renderReceipt(sale, s.company)
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt %d: %w", transactionID, err)
	}

	observability.Logger(ctx, s.logger).Debug("receipt rendered",
		"transaction_id", transactionID,
		"pages", pdf.PageCount(),
		"bytes", buf.Len(),
	)
	return &Document{
		Filename:    ReceiptFilename(transactionID),
		ContentType: "application/pdf",
		Content:     buf.Bytes(),
	}, nil
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// renderReceipt lays the receipt out top-down in points. Rows continue on
// a fresh page once the cursor passes the bottom margin.
func renderReceipt(sale models.Sale, company Company) *fpdf.Fpdf {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(fmt.Sprintf("Comprobante de venta %d", sale.TransactionID), true)
	pdf.SetCreator(company.Name, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()
	rule := func(y, width float64) {
		pdf.SetLineWidth(width)
		pdf.Line(receiptMargin, y, pageW-receiptMargin, y)
	}
	text := func(x, y float64, style string, size float64, s string) {
		pdf.SetFont("Helvetica", style, size)
		pdf.Text(x, y, tr(s))
	}

	pdf.AddPage()
	y := receiptMargin

	text(receiptMargin, y, "B", fontSizeLarge, "COMPROBANTE DE VENTA")
	y += 30

	text(receiptMargin, y, "", fontSize, "Empresa: "+company.Name)
	y += receiptRow
	if company.Address != "" {
		text(receiptMargin, y, "", fontSize, "Dirección: "+company.Address)
		y += receiptRow
	}
	if company.Phone != "" {
		text(receiptMargin, y, "", fontSize, "Teléfono: "+company.Phone)
		y += receiptRow
	}
	rule(y, 1)
	y += 20

	text(receiptMargin, y, "B", fontSize, fmt.Sprintf("N° Comprobante: %d", sale.TransactionID))
	text(300, y, "B", fontSize, "Fecha: "+sale.Date)
	y += 20

	address := sale.CustomerAddress
	if address == "" {
		address = missingAddress
	}
	text(receiptMargin, y, "B", fontSize, "Cliente:")
	y += receiptRow
	text(receiptMargin+20, y, "", fontSize, "Nombre: "+sale.CustomerName)
	y += receiptRow
	text(receiptMargin+20, y, "", fontSize, "Dirección: "+address)
	y += 20

	text(receiptMargin, y, "B", fontSize, "Vendedor: "+sale.SellerName)
	y += 30

	text(receiptMargin, y, "B", fontSize, "Producto")
	text(colQuantity, y, "B", fontSize, "Cantidad")
	text(colUnitPrice, y, "B", fontSize, "Precio Unit.")
	text(colLineTotal, y, "B", fontSize, "Total")
	y += 20
	rule(y, 0.5)
	y += receiptRow

	for _, item := range sale.Items {
		if y > pageH-receiptBottom {
			pdf.AddPage()
			y = receiptMargin
		}
		text(receiptMargin, y, "", fontSize, item.ProductName)
		text(colQuantity, y, "", fontSize, fmt.Sprintf("%d", item.Quantity))
		text(colUnitPrice, y, "", fontSize, money(item.UnitPrice))
		text(colLineTotal, y, "", fontSize, money(item.LineTotal))
		y += receiptRow
	}
	if y+receiptFooter > pageH-receiptMargin {
		pdf.AddPage()
		y = receiptMargin
	}

	y += 10
	rule(y, 0.5)
	y += 20

	text(colUnitPrice, y, "B", fontSize, "Total:")
	text(colLineTotal, y, "B", fontSize, money(sale.Total))
	y += 30

	if sale.Status == models.StatusDelivered {
		pdf.SetTextColor(0, 128, 0)
		text(receiptMargin, y, "B", fontSize, "Estado: COMPLETADA")
	} else {
		pdf.SetTextColor(204, 128, 0)
		text(receiptMargin, y, "B", fontSize, "Estado: PENDIENTE")
	}
	pdf.SetTextColor(0, 0, 0)
	y += 30

	text(receiptMargin, y, "B", fontSize, "Gracias por su compra!")
	y += receiptRow
	pdf.SetTextColor(128, 128, 128)
	text(receiptMargin, y, "", fontSizeSmall, "Este comprobante no es válido como factura")

	return pdf
}
