package main

import (
	"context"
	"time"

	"github.com/desertthunder/tally/internal/formatter"
	"github.com/desertthunder/tally/internal/models"
	"github.com/desertthunder/tally/internal/tasks"
	"github.com/urfave/cli/v3"
)

// exportOpts collects the shared export flags.
func exportOpts(cmd *cli.Command) tasks.ExportOpts {
	return tasks.ExportOpts{
		OutputPath: cmd.String("output"),
		PageSize:   int(cmd.Int("page-size")),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
	}
}

// runExport drives one CSV export with progress echoed to the terminal.
// A free function because methods cannot take type parameters.
func runExport[R any](
	ctx context.Context,
	r *Runner,
	cmd *cli.Command,
	entity string,
	load tasks.PageLoader[R],
	header []string,
	record func(R) []string,
) error {
	// Create progress channel and goroutine to handle updates
	progressCh := make(chan tasks.ProgressUpdate, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.writePlain("📦 %s\n", update.Message)
		}
	}()

	result, err := tasks.ExportCSV(ctx, progressCh, entity, load, header, record, exportOpts(cmd))
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.logger.Info("export complete", "entity", entity, "records", result.TotalRecords, "path", result.OutputPath)
	r.writePlain("✓ %s (%s)\n",
		r.tr.Tf("export.done", result.TotalRecords, result.OutputPath),
		result.Duration.Round(time.Millisecond))
	return nil
}

// ExportProducts writes every product to a CSV file.
func (r *Runner) ExportProducts(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	load := func(ctx context.Context, page, pageSize int) (models.PagedResult[models.Product], error) {
		return r.products.GetPaged(ctx, page, pageSize, "", "")
	}
	return runExport(ctx, r, cmd, "products", load, formatter.ProductCSVHeader, formatter.ProductCSVRecord)
}

// ExportDebits writes every debit to a CSV file.
func (r *Runner) ExportDebits(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	load := func(ctx context.Context, page, pageSize int) (models.PagedResult[models.Debit], error) {
		return r.debits.GetPaged(ctx, page, pageSize, "", nil)
	}
	return runExport(ctx, r, cmd, "debits", load, formatter.DebitCSVHeader, formatter.DebitCSVRecord)
}

// ExportInvoices writes every invoice to a CSV file.
func (r *Runner) ExportInvoices(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	load := func(ctx context.Context, page, pageSize int) (models.PagedResult[models.Invoice], error) {
		return r.invoices.GetPaged(ctx, page, pageSize, "", "")
	}
	return runExport(ctx, r, cmd, "invoices", load, formatter.InvoiceCSVHeader, formatter.InvoiceCSVRecord)
}
