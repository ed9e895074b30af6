// package formatter renders records as display cells and CSV exports.
//
// Display rows feed the TUI tables and stay short: a handful of columns,
// currency as $0.00, translated status labels. CSV records carry every
// column so an export round-trips the full record.
package formatter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/desertthunder/tally/internal/i18n"
	"github.com/desertthunder/tally/internal/models"
)

// Currency renders an amount as dollars with two decimals.
func Currency(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

// DateTime renders a timestamp as a short local date and time.
func DateTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

// Date renders a timestamp as a local calendar date.
func Date(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

// StatusLabel translates a stored debit status for display. Unknown values
// pass through untouched.
func StatusLabel(tr *i18n.Translator, status string) string {
	switch status {
	case models.DebitPaid:
		return tr.T("status.paid")
	case models.DebitUnpaid:
		return tr.T("status.unpaid")
	default:
		return status
	}
}

// ProductRow maps a product to its table cells:
// id, name, price, stock, category.
func ProductRow(p models.Product) []string {
	return []string{
		strconv.FormatInt(p.RecordID, 10),
		p.Name,
		Currency(p.SellingPrice),
		strconv.Itoa(p.Stock),
		p.Category,
	}
}

// DebitRow maps a debit to its table cells:
// id, customer, amount, remaining, status, date.
func DebitRow(tr *i18n.Translator, d models.Debit) []string {
	return []string{
		strconv.FormatInt(d.RecordID, 10),
		d.Name,
		Currency(d.Amount),
		Currency(d.Remaining()),
		StatusLabel(tr, d.Status),
		DateTime(d.CreatedAt),
	}
}

// InvoiceRow maps an invoice to its table cells:
// id, date, method, total, discount, employee.
func InvoiceRow(inv models.Invoice) []string {
	return []string{
		strconv.FormatInt(inv.RecordID, 10),
		DateTime(inv.CreatedAt),
		inv.PaymentMethod,
		Currency(inv.TotalAmount),
		Currency(inv.Discount),
		inv.Employee,
	}
}

// TopProductRow maps a best-seller entry to its table cells:
// name, quantity, revenue.
func TopProductRow(tp models.TopProduct) []string {
	return []string{
		tp.Name,
		strconv.Itoa(tp.Quantity),
		Currency(tp.Revenue),
	}
}

// CSV headers for the exportable entities.
var (
	ProductCSVHeader = []string{"ID", "Name", "Selling Price", "Buying Price", "Stock", "Category", "Barcode", "Created At"}
	DebitCSVHeader   = []string{"ID", "Name", "Phone", "Invoice ID", "Amount", "Amount Paid", "Status", "Created At", "Notes"}
	InvoiceCSVHeader = []string{"ID", "Created At", "Payment Method", "Total Amount", "Discount", "Employee"}
)

// ProductCSVRecord maps a product to one CSV record matching
// ProductCSVHeader.
func ProductCSVRecord(p models.Product) []string {
	return []string{
		strconv.FormatInt(p.RecordID, 10),
		p.Name,
		decimal(p.SellingPrice),
		decimal(p.BuyingPrice),
		strconv.Itoa(p.Stock),
		p.Category,
		p.Barcode,
		timestamp(p.CreatedAt),
	}
}

// DebitCSVRecord maps a debit to one CSV record matching DebitCSVHeader.
func DebitCSVRecord(d models.Debit) []string {
	invoiceID := ""
	if d.InvoiceID != 0 {
		invoiceID = strconv.FormatInt(d.InvoiceID, 10)
	}
	return []string{
		strconv.FormatInt(d.RecordID, 10),
		d.Name,
		d.Phone,
		invoiceID,
		decimal(d.Amount),
		decimal(d.AmountPaid),
		d.Status,
		timestamp(d.CreatedAt),
		d.Notes,
	}
}

// InvoiceCSVRecord maps an invoice to one CSV record matching
// InvoiceCSVHeader.
func InvoiceCSVRecord(inv models.Invoice) []string {
	return []string{
		strconv.FormatInt(inv.RecordID, 10),
		timestamp(inv.CreatedAt),
		inv.PaymentMethod,
		decimal(inv.TotalAmount),
		decimal(inv.Discount),
		inv.Employee,
	}
}

// WriteCSV writes a header and records to w in CSV format.
func WriteCSV(w io.Writer, header []string, records [][]string) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}

	return nil
}

// decimal renders an amount without the currency marker for CSV files.
func decimal(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

// timestamp renders a full timestamp for CSV files.
func timestamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}
