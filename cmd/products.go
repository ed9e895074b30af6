package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/tally/internal/formatter"
	"github.com/desertthunder/tally/internal/repositories"
	"github.com/desertthunder/tally/internal/shared"
	"github.com/urfave/cli/v3"
)

var productListHeader = []string{"ID", "Name", "Price", "Stock", "Category"}

// ProductsList prints one page of the catalog.
func (r *Runner) ProductsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	page := int(cmd.Int("page"))
	pageSize := int(cmd.Int("page-size"))
	if pageSize <= 0 {
		pageSize = r.config.UI.ProductsPageSize
	}

	result, err := r.products.GetPaged(ctx, page, pageSize, cmd.String("category"), cmd.String("search"))
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	rows := make([][]string, 0, len(result.Items))
	for _, p := range result.Items {
		rows = append(rows, formatter.ProductRow(p))
	}
	if err := r.writeTable(productListHeader, rows); err != nil {
		return err
	}
	return writePageFooter(r, result)
}

// ProductsSearch runs the ranked name search used by the sale screen.
func (r *Runner) ProductsSearch(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	term := cmd.StringArg("term")
	if term == "" {
		return fmt.Errorf("%w: search term", shared.ErrMissingArgument)
	}

	limit := int(cmd.Int("limit"))
	if limit <= 0 {
		limit = r.config.UI.SearchLimit
	}

	matches, err := r.products.SearchFast(ctx, term, limit)
	if errors.Is(err, shared.ErrTermTooShort) {
		return r.writePlain("%s\n", r.tr.Tf("errors.term_too_short", repositories.MinSearchChars))
	}
	if err != nil {
		return fmt.Errorf("failed to search products: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(matches, cmd.Bool("pretty"))
	}

	rows := make([][]string, 0, len(matches))
	for _, p := range matches {
		rows = append(rows, formatter.ProductRow(p))
	}
	return r.writeTable(productListHeader, rows)
}

// ProductsCategories lists the distinct categories in use.
func (r *Runner) ProductsCategories(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	categories, err := r.products.Categories(ctx)
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}

	for _, category := range categories {
		if err := r.writePlain("%s\n", category); err != nil {
			return err
		}
	}
	return nil
}
