package main

import (
	"context"

	"github.com/desertthunder/tally/internal/formatter"
	"github.com/urfave/cli/v3"
)

var topProductHeader = []string{"Name", "Quantity", "Revenue"}

// StatsDebits rolls the whole debit book up into counts and totals.
func (r *Runner) StatsDebits(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	stats, err := r.debits.Stats(ctx)
	if err != nil {
		return err
	}

	r.writePlainHeader(r.tr.T("stats.debits_heading"))
	r.writePlain("%s: %d (%s)\n", r.tr.T("stats.total_debits"), stats.TotalCount, formatter.Currency(stats.TotalAmount))
	r.writePlain("%s: %d (%s)\n", r.tr.T("stats.paid_debits"), stats.PaidCount, formatter.Currency(stats.TotalPaid))
	r.writePlain("%s: %d\n", r.tr.T("stats.unpaid_debits"), stats.UnpaidCount)
	r.writePlain("%s: %s\n", r.tr.T("stats.outstanding"), formatter.Currency(stats.TotalUnpaid))
	return nil
}

// StatsToday summarizes the invoices written since midnight.
func (r *Runner) StatsToday(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	summary, err := r.invoices.TodaySummary(ctx)
	if err != nil {
		return err
	}

	r.writePlainHeader(r.tr.T("stats.sales_heading"))
	r.writePlain("%s: %d\n", r.tr.T("stats.invoices"), summary.InvoiceCount)
	r.writePlain("%s: %s\n", r.tr.T("ui.total"), formatter.Currency(summary.Total))
	r.writePlain("%s: %s\n", r.tr.T("stats.discounts"), formatter.Currency(summary.Discounts))
	return nil
}

// StatsTop ranks products by quantity sold across all invoices.
func (r *Runner) StatsTop(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	top, err := r.invoices.TopProducts(ctx, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	r.writePlainHeader(r.tr.T("stats.top_heading"))
	rows := make([][]string, 0, len(top))
	for _, tp := range top {
		rows = append(rows, formatter.TopProductRow(tp))
	}
	return r.writeTable(topProductHeader, rows)
}
