package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/tally/internal/formatter"
	"github.com/desertthunder/tally/internal/models"
	"github.com/desertthunder/tally/internal/shared"
	"github.com/urfave/cli/v3"
)

// Sell records a sale invoice. Line items are priced at the product's
// current selling price; stock is checked and decremented atomically when
// the invoice is written.
func (r *Runner) Sell(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	specs := cmd.StringSlice("item")
	items := make([]models.InvoiceItem, 0, len(specs))
	total := 0.0

	for _, spec := range specs {
		idRaw, qtyRaw, ok := strings.Cut(spec, ":")
		if !ok {
			return fmt.Errorf("%w: item %q, want <product-id>:<quantity>", shared.ErrInvalidFlag, spec)
		}
		id, err := strconv.ParseInt(idRaw, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: product id %q", shared.ErrInvalidFlag, idRaw)
		}
		qty, err := strconv.Atoi(qtyRaw)
		if err != nil || qty <= 0 {
			return fmt.Errorf("%w: quantity %q", shared.ErrInvalidFlag, qtyRaw)
		}

		product, err := r.products.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load product %d: %w", id, err)
		}

		items = append(items, models.InvoiceItem{
			ProductID: id,
			Quantity:  qty,
			Price:     product.SellingPrice,
		})
		total += product.SellingPrice * float64(qty)
	}

	discount := cmd.Float("discount")
	invoice := &models.Invoice{
		PaymentMethod: cmd.String("method"),
		TotalAmount:   total - discount,
		Discount:      discount,
		Employee:      cmd.String("employee"),
		Items:         items,
	}

	if err := r.invoices.Create(ctx, invoice); err != nil {
		return fmt.Errorf("failed to record sale: %w", err)
	}

	r.logger.Info("sale recorded", "invoice", invoice.RecordID, "items", len(items))
	r.writePlain("✓ Invoice #%d recorded: %s (%d items)\n",
		invoice.RecordID, formatter.Currency(invoice.TotalAmount), len(items))
	return nil
}
