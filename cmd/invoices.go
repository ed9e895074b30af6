package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/tally/internal/formatter"
	"github.com/urfave/cli/v3"
)

var invoiceListHeader = []string{"ID", "Date", "Method", "Total", "Discount", "Employee"}

// InvoicesList prints one page of the sales ledger, newest first.
func (r *Runner) InvoicesList(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	page := int(cmd.Int("page"))
	pageSize := int(cmd.Int("page-size"))
	if pageSize <= 0 {
		pageSize = r.config.UI.InvoicesPageSize
	}

	day := cmd.String("day")
	if cmd.Bool("today") {
		day = formatter.Date(time.Now())
	}

	result, err := r.invoices.GetPaged(ctx, page, pageSize, day, cmd.String("method"))
	if err != nil {
		return fmt.Errorf("failed to list invoices: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	rows := make([][]string, 0, len(result.Items))
	for _, inv := range result.Items {
		rows = append(rows, formatter.InvoiceRow(inv))
	}
	if err := r.writeTable(invoiceListHeader, rows); err != nil {
		return err
	}
	return writePageFooter(r, result)
}
