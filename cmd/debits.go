package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/tally/internal/formatter"
	"github.com/desertthunder/tally/internal/models"
	"github.com/desertthunder/tally/internal/shared"
	"github.com/urfave/cli/v3"
)

var debitListHeader = []string{"ID", "Customer", "Amount", "Remaining", "Status", "Date"}

// DebitsList prints one page of the debt book, newest first.
func (r *Runner) DebitsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	page := int(cmd.Int("page"))
	pageSize := int(cmd.Int("page-size"))
	if pageSize <= 0 {
		pageSize = r.config.UI.DebitsPageSize
	}

	var paid *bool
	switch {
	case cmd.Bool("paid") && cmd.Bool("unpaid"):
		return fmt.Errorf("%w: --paid and --unpaid are exclusive", shared.ErrInvalidFlag)
	case cmd.Bool("paid"):
		v := true
		paid = &v
	case cmd.Bool("unpaid"):
		v := false
		paid = &v
	}

	result, err := r.debits.GetPaged(ctx, page, pageSize, cmd.String("search"), paid)
	if err != nil {
		return fmt.Errorf("failed to list debits: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	rows := make([][]string, 0, len(result.Items))
	for _, d := range result.Items {
		rows = append(rows, formatter.DebitRow(r.tr, d))
	}
	if err := r.writeTable(debitListHeader, rows); err != nil {
		return err
	}
	return writePageFooter(r, result)
}

// DebitsAdd records a new customer debt.
func (r *Runner) DebitsAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	debit := &models.Debit{
		Name:       cmd.String("name"),
		Phone:      cmd.String("phone"),
		Amount:     cmd.Float("amount"),
		AmountPaid: cmd.Float("paid"),
		Notes:      cmd.String("notes"),
	}

	if err := r.debits.Create(ctx, debit); err != nil {
		return fmt.Errorf("failed to add debit: %w", err)
	}

	r.logger.Info("debit recorded", "id", debit.RecordID, "customer", debit.Name)
	r.writePlain("✓ Debit #%d recorded for %s (%s)\n", debit.RecordID, debit.Name, formatter.Currency(debit.Amount))
	return nil
}

// DebitsPay settles a debt in full.
func (r *Runner) DebitsPay(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	raw := cmd.StringArg("id")
	if raw == "" {
		return fmt.Errorf("%w: debit id", shared.ErrMissingArgument)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: debit id %q", shared.ErrInvalidArgument, raw)
	}

	if err := r.debits.MarkPaid(ctx, id); err != nil {
		return fmt.Errorf("failed to settle debit: %w", err)
	}

	r.writePlain("✓ Debit #%d settled\n", id)
	return nil
}
