package models

import (
	"fmt"
	"time"

	"github.com/desertthunder/tally/internal/shared"
)

// Debit status values as stored in the database.
const (
	DebitUnpaid = "Unpaid"
	DebitPaid   = "Paid"
)

var (
	_ Model = &Product{}
	_ Model = &Debit{}
	_ Model = &Invoice{}
)

// Product is an inventory item.
type Product struct {
	RecordID     int64
	Name         string
	SellingPrice float64
	BuyingPrice  float64
	Stock        int
	Category     string
	Barcode      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (p *Product) ID() int64 { return p.RecordID }

func (p *Product) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: product name required", shared.ErrInvalidInput)
	}
	if p.SellingPrice < 0 || p.BuyingPrice < 0 {
		return fmt.Errorf("%w: product prices must be non-negative", shared.ErrInvalidInput)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: product stock must be non-negative", shared.ErrInvalidInput)
	}
	return nil
}

// Debit is money a customer still owes, usually tied to an invoice.
type Debit struct {
	RecordID   int64
	Name       string
	Phone      string
	InvoiceID  int64
	Amount     float64
	AmountPaid float64
	Status     string
	CreatedAt  time.Time
	Notes      string
}

func (d *Debit) ID() int64 { return d.RecordID }

func (d *Debit) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: debit customer name required", shared.ErrInvalidInput)
	}
	if d.Amount < 0 {
		return fmt.Errorf("%w: debit amount must be non-negative", shared.ErrInvalidInput)
	}
	if d.AmountPaid < 0 {
		return fmt.Errorf("%w: debit amount paid must be non-negative", shared.ErrInvalidInput)
	}
	if d.AmountPaid > d.Amount {
		return fmt.Errorf("%w: debit amount paid exceeds amount", shared.ErrInvalidInput)
	}
	if d.Status != DebitPaid && d.Status != DebitUnpaid {
		return fmt.Errorf("%w: debit status must be %q or %q", shared.ErrInvalidInput, DebitPaid, DebitUnpaid)
	}
	return nil
}

// Remaining returns the balance the customer still owes.
func (d *Debit) Remaining() float64 {
	return d.Amount - d.AmountPaid
}

// Invoice is a completed sale.
type Invoice struct {
	RecordID      int64
	CreatedAt     time.Time
	PaymentMethod string
	TotalAmount   float64
	Discount      float64
	Employee      string
	Items         []InvoiceItem
}

func (i *Invoice) ID() int64 { return i.RecordID }

func (i *Invoice) Validate() error {
	if i.TotalAmount < 0 {
		return fmt.Errorf("%w: invoice total must be non-negative", shared.ErrInvalidInput)
	}
	if i.Discount < 0 {
		return fmt.Errorf("%w: invoice discount must be non-negative", shared.ErrInvalidInput)
	}
	for idx, item := range i.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: invoice item %d quantity must be positive", shared.ErrInvalidInput, idx)
		}
		if item.Price < 0 {
			return fmt.Errorf("%w: invoice item %d price must be non-negative", shared.ErrInvalidInput, idx)
		}
	}
	return nil
}

// InvoiceItem is one line of an invoice.
type InvoiceItem struct {
	RecordID  int64
	InvoiceID int64
	ProductID int64
	Quantity  int
	Price     float64
}

// DebitStats aggregates all debits into paid/unpaid totals.
type DebitStats struct {
	TotalCount  int
	PaidCount   int
	UnpaidCount int
	TotalAmount float64
	TotalPaid   float64
	TotalUnpaid float64
}

// SalesSummary aggregates the invoices of a single day.
type SalesSummary struct {
	InvoiceCount int
	Total        float64
	Discounts    float64
}

// TopProduct is one row of the best-seller ranking.
type TopProduct struct {
	Name     string
	Quantity int
	Revenue  float64
}
