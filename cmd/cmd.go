// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// configFlag is shared by commands that read the configuration file.
func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// pagingFlags are shared by the paged list commands.
func pagingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "page",
			Usage: "Page number to show",
			Value: 1,
		},
		&cli.IntFlag{
			Name:  "page-size",
			Usage: "Records per page (0 uses the configured size)",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
	}
}

// exportFlags are shared by the export subcommands.
func exportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output CSV path (default: {entity}_export_{id}.csv)",
		},
		&cli.IntFlag{
			Name:  "page-size",
			Usage: "Records fetched per page",
			Value: 200,
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Concurrent page fetchers (max 8)",
			Value: 4,
		},
		&cli.FloatFlag{
			Name:  "rate",
			Usage: "Page fetches per second",
			Value: 20,
		},
	}
}

// setupCommand initializes the database and the configuration file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Initialize database and run migrations",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// productsCommand handles catalog operations
func productsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "products",
		Aliases: []string{"prod"},
		Usage:   "Product catalog operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List one page of the catalog",
				Flags: append(pagingFlags(),
					&cli.StringFlag{
						Name:  "category",
						Usage: "Only this category",
					},
					&cli.StringFlag{
						Name:  "search",
						Usage: "Name or barcode filter",
					},
				),
				Action: r.ProductsList,
			},
			{
				Name:  "search",
				Usage: "Ranked name search for the sale screen",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "term",
					},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of matches (0 uses the configured default)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
					},
				},
				Action: r.ProductsSearch,
			},
			{
				Name:   "categories",
				Usage:  "List the distinct categories in use",
				Action: r.ProductsCategories,
			},
		},
	}
}

// debitsCommand handles the customer debt book
func debitsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "debits",
		Usage: "Customer debt operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List one page of the debt book, newest first",
				Flags: append(pagingFlags(),
					&cli.StringFlag{
						Name:  "search",
						Usage: "Customer name or phone filter",
					},
					&cli.BoolFlag{
						Name:  "paid",
						Usage: "Only settled debts",
					},
					&cli.BoolFlag{
						Name:  "unpaid",
						Usage: "Only open debts",
					},
				),
				Action: r.DebitsList,
			},
			{
				Name:  "add",
				Usage: "Record a new customer debt",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Customer name",
						Required: true,
					},
					&cli.FloatFlag{
						Name:     "amount",
						Usage:    "Debt amount",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "phone",
						Usage: "Customer phone",
					},
					&cli.FloatFlag{
						Name:  "paid",
						Usage: "Amount already paid",
					},
					&cli.StringFlag{
						Name:  "notes",
						Usage: "Free-form note",
					},
				},
				Action: r.DebitsAdd,
			},
			{
				Name:  "pay",
				Usage: "Settle a debt in full",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.DebitsPay,
			},
		},
	}
}

// invoicesCommand browses the sales ledger
func invoicesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "invoices",
		Usage: "Sales ledger operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List one page of the sales ledger, newest first",
				Flags: append(pagingFlags(),
					&cli.StringFlag{
						Name:  "day",
						Usage: "Only sales on this day (YYYY-MM-DD)",
					},
					&cli.BoolFlag{
						Name:  "today",
						Usage: "Only today's sales",
					},
					&cli.StringFlag{
						Name:  "method",
						Usage: "Only this payment method",
					},
				),
				Action: r.InvoicesList,
			},
		},
	}
}

// sellCommand records a sale and decrements stock
func sellCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sell",
		Usage: "Record a sale invoice",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "item",
				Aliases:  []string{"i"},
				Usage:    "Line item as <product-id>:<quantity>, repeatable",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "method",
				Usage: "Payment method",
				Value: "cash",
			},
			&cli.FloatFlag{
				Name:  "discount",
				Usage: "Discount applied to the total",
			},
			&cli.StringFlag{
				Name:  "employee",
				Usage: "Employee recording the sale",
			},
		},
		Action: r.Sell,
	}
}

// statsCommand reports on the debt book and sales
func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Debt book and sales reports",
		Commands: []*cli.Command{
			{
				Name:   "debits",
				Usage:  "Totals for the debt book",
				Action: r.StatsDebits,
			},
			{
				Name:   "today",
				Usage:  "Today's sales summary",
				Action: r.StatsToday,
			},
			{
				Name:  "top",
				Usage: "Best selling products",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of products to show",
						Value: 5,
					},
				},
				Action: r.StatsTop,
			},
		},
	}
}

// exportCommand writes full entity dumps as CSV
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export records to CSV",
		Commands: []*cli.Command{
			{
				Name:   "products",
				Usage:  "Export the product catalog",
				Flags:  exportFlags(),
				Action: r.ExportProducts,
			},
			{
				Name:   "debits",
				Usage:  "Export the debt book",
				Flags:  exportFlags(),
				Action: r.ExportDebits,
			},
			{
				Name:   "invoices",
				Usage:  "Export the sales ledger",
				Flags:  exportFlags(),
				Action: r.ExportInvoices,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive record browser",
		Action:  r.TUI,
	}
}
