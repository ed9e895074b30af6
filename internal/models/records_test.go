package models

import (
	"errors"
	"testing"

	"github.com/desertthunder/tally/internal/shared"
)

func TestProductValidate(t *testing.T) {
	tc := []struct {
		name    string
		product Product
		wantErr bool
	}{
		{
			name:    "valid product",
			product: Product{Name: "Sugar 1kg", SellingPrice: 2.5, BuyingPrice: 1.8, Stock: 40, Category: "Groceries"},
			wantErr: false,
		},
		{
			name:    "missing name",
			product: Product{SellingPrice: 2.5},
			wantErr: true,
		},
		{
			name:    "negative price",
			product: Product{Name: "Sugar", SellingPrice: -1},
			wantErr: true,
		},
		{
			name:    "negative stock",
			product: Product{Name: "Sugar", Stock: -3},
			wantErr: true,
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.product.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected error to wrap ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestDebitValidate(t *testing.T) {
	tc := []struct {
		name    string
		debit   Debit
		wantErr bool
	}{
		{
			name:    "valid unpaid debit",
			debit:   Debit{Name: "Ahmed", Amount: 120, AmountPaid: 30, Status: DebitUnpaid},
			wantErr: false,
		},
		{
			name:    "valid paid debit",
			debit:   Debit{Name: "Ahmed", Amount: 120, AmountPaid: 120, Status: DebitPaid},
			wantErr: false,
		},
		{
			name:    "missing customer name",
			debit:   Debit{Amount: 10, Status: DebitUnpaid},
			wantErr: true,
		},
		{
			name:    "paid more than owed",
			debit:   Debit{Name: "Ahmed", Amount: 50, AmountPaid: 60, Status: DebitUnpaid},
			wantErr: true,
		},
		{
			name:    "unknown status",
			debit:   Debit{Name: "Ahmed", Amount: 50, Status: "Pending"},
			wantErr: true,
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.debit.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDebitRemaining(t *testing.T) {
	d := Debit{Amount: 100, AmountPaid: 35}
	if got := d.Remaining(); got != 65 {
		t.Errorf("Remaining() = %v, want 65", got)
	}
}

func TestInvoiceValidate(t *testing.T) {
	tc := []struct {
		name    string
		invoice Invoice
		wantErr bool
	}{
		{
			name: "valid invoice",
			invoice: Invoice{
				PaymentMethod: "cash",
				TotalAmount:   45,
				Items:         []InvoiceItem{{ProductID: 1, Quantity: 3, Price: 15}},
			},
			wantErr: false,
		},
		{
			name:    "heavily discounted sale",
			invoice: Invoice{TotalAmount: 10, Discount: 20},
			wantErr: false,
		},
		{
			name:    "negative discount",
			invoice: Invoice{TotalAmount: 10, Discount: -5},
			wantErr: true,
		},
		{
			name: "zero quantity item",
			invoice: Invoice{
				TotalAmount: 10,
				Items:       []InvoiceItem{{ProductID: 1, Quantity: 0, Price: 10}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.invoice.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
