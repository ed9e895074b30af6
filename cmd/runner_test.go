package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/tally/internal/models"
	"github.com/desertthunder/tally/internal/shared"
	tu "github.com/desertthunder/tally/internal/testing"
	"github.com/urfave/cli/v3"
)

// newTestRunner builds a Runner over a migrated scratch database, logging
// nowhere and writing into the returned buffer.
func newTestRunner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()

	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "tally.db")

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("failed to close migration connection: %v", err)
	}

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: shared.NewLogger(io.Discard),
		Output: output,
	})
	t.Cleanup(runner.Shutdown)
	return runner, output
}

// run drives one invocation through the full command tree, as a user would.
func run(t *testing.T, r *Runner, args ...string) {
	t.Helper()

	app := &cli.Command{Name: "tally", Commands: r.register()}
	if err := app.Run(context.Background(), append([]string{"tally"}, args...)); err != nil {
		t.Fatalf("tally %s: %v", strings.Join(args, " "), err)
	}
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.tr == nil {
				t.Error("expected translator to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config: nil,
			})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Logger: nil,
			})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Output: nil,
			})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with unknown language falls back to english", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.UI.Language = "xx"

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: shared.NewLogger(io.Discard),
			})

			if got := runner.tr.T("status.paid"); got != "Paid" {
				t.Errorf("expected english fallback translator, got %q", got)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writeTable", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		err := runner.writeTable([]string{"ID", "Name"}, [][]string{{"1", "Rice 5kg"}})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		for _, want := range []string{"ID", "Name", "Rice 5kg"} {
			if !strings.Contains(result, want) {
				t.Errorf("expected table to contain %q:\n%s", want, result)
			}
		}
	})

	t.Run("writePageFooter", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		page := models.PagedResult[int]{Page: 2, PageSize: 25, TotalCount: 104}
		if err := writePageFooter(runner, page); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		for _, want := range []string{"Page 2 of 5", "104 items", "Showing 26-50"} {
			if !strings.Contains(result, want) {
				t.Errorf("footer missing %q: %q", want, result)
			}
		}

		output.Reset()
		empty := models.PagedResult[int]{Page: 1, PageSize: 25}
		if err := writePageFooter(runner, empty); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if strings.Contains(output.String(), "Showing") {
			t.Errorf("empty set should not render a range: %q", output.String())
		}
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})

	t.Run("connect and Shutdown", func(t *testing.T) {
		runner, _ := newTestRunner(t)

		if err := runner.connect(); err != nil {
			t.Fatalf("connect() error = %v", err)
		}
		if runner.db == nil || runner.monitor == nil || runner.scheduler == nil {
			t.Fatal("expected connect to wire the database, monitor, and scheduler")
		}
		if runner.products == nil || runner.debits == nil || runner.invoices == nil {
			t.Fatal("expected connect to wire the repositories")
		}

		db := runner.db
		if err := runner.connect(); err != nil {
			t.Fatalf("second connect() error = %v", err)
		}
		if runner.db != db {
			t.Error("expected connect to reuse the open database")
		}

		runner.Shutdown()
		if runner.db != nil || runner.scheduler != nil || runner.monitor != nil {
			t.Error("expected Shutdown to clear the connection")
		}
		runner.Shutdown()
	})
}

func TestCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("debits add then list then pay", func(t *testing.T) {
		runner, output := newTestRunner(t)

		run(t, runner, "debits", "add", "--name", "Leila", "--amount", "80", "--paid", "30")
		if !strings.Contains(output.String(), "✓ Debit #1 recorded for Leila ($80.00)") {
			t.Errorf("add output = %q", output.String())
		}

		output.Reset()
		run(t, runner, "debits", "list")
		for _, want := range []string{"Leila", "$80.00", "$50.00", "Unpaid", "Page 1 of 1", "1 items"} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("list output missing %q:\n%s", want, output.String())
			}
		}

		output.Reset()
		run(t, runner, "debits", "pay", "1")
		if !strings.Contains(output.String(), "✓ Debit #1 settled") {
			t.Errorf("pay output = %q", output.String())
		}

		output.Reset()
		run(t, runner, "debits", "list", "--unpaid")
		if !strings.Contains(output.String(), "0 items") {
			t.Errorf("expected an empty book after settling:\n%s", output.String())
		}
	})

	t.Run("products list search and categories", func(t *testing.T) {
		runner, output := newTestRunner(t)
		if err := runner.connect(); err != nil {
			t.Fatalf("connect() error = %v", err)
		}

		seed := []models.Product{
			{Name: "Rice 5kg", SellingPrice: 12, Stock: 40, Category: "Grains", Barcode: "100001"},
			{Name: "Black Tea", SellingPrice: 4.5, Stock: 25, Category: "Drinks", Barcode: "100002"},
		}
		for i := range seed {
			if err := runner.products.Create(ctx, &seed[i]); err != nil {
				t.Fatalf("failed to seed product: %v", err)
			}
		}

		run(t, runner, "products", "list")
		for _, want := range []string{"Rice 5kg", "Black Tea", "Page 1 of 1", "2 items"} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("list output missing %q:\n%s", want, output.String())
			}
		}

		output.Reset()
		run(t, runner, "products", "list", "--category", "Drinks")
		if strings.Contains(output.String(), "Rice 5kg") {
			t.Errorf("category filter leaked other rows:\n%s", output.String())
		}

		output.Reset()
		run(t, runner, "products", "list", "--json")
		if !strings.Contains(output.String(), `"TotalCount":2`) {
			t.Errorf("json output = %q", output.String())
		}

		output.Reset()
		run(t, runner, "products", "search", "rice")
		if !strings.Contains(output.String(), "Rice 5kg") {
			t.Errorf("search output = %q", output.String())
		}

		output.Reset()
		run(t, runner, "products", "search", "x")
		if !strings.Contains(output.String(), "at least 2 characters") {
			t.Errorf("short term output = %q", output.String())
		}

		output.Reset()
		run(t, runner, "products", "categories")
		for _, want := range []string{"Drinks", "Grains"} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("categories output missing %q:\n%s", want, output.String())
			}
		}
	})

	t.Run("sell records an invoice and decrements stock", func(t *testing.T) {
		runner, output := newTestRunner(t)
		if err := runner.connect(); err != nil {
			t.Fatalf("connect() error = %v", err)
		}

		product := models.Product{Name: "Olive Oil 1L", SellingPrice: 5, Stock: 10, Category: "Oils"}
		if err := runner.products.Create(ctx, &product); err != nil {
			t.Fatalf("failed to seed product: %v", err)
		}

		run(t, runner, "sell", "--item", "1:3", "--employee", "Nadia")
		if !strings.Contains(output.String(), "✓ Invoice #1 recorded: $15.00 (1 items)") {
			t.Errorf("sell output = %q", output.String())
		}

		got, err := runner.products.Get(ctx, product.RecordID)
		if err != nil {
			t.Fatalf("failed to reload product: %v", err)
		}
		if got.Stock != 7 {
			t.Errorf("stock after sale = %d, want 7", got.Stock)
		}

		output.Reset()
		run(t, runner, "stats", "today")
		for _, want := range []string{"Today's sales", "Invoices: 1", "$15.00"} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("stats today missing %q:\n%s", want, output.String())
			}
		}

		output.Reset()
		run(t, runner, "stats", "top")
		if !strings.Contains(output.String(), "Olive Oil 1L") {
			t.Errorf("stats top = %q", output.String())
		}

		output.Reset()
		run(t, runner, "invoices", "list", "--today")
		for _, want := range []string{"Nadia", "$15.00", "Page 1 of 1"} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("invoices list missing %q:\n%s", want, output.String())
			}
		}

		output.Reset()
		run(t, runner, "invoices", "list", "--day", "2001-01-01")
		if !strings.Contains(output.String(), "0 items") {
			t.Errorf("invoices list for an empty day = %q", output.String())
		}
	})

	t.Run("stats debits sums the book", func(t *testing.T) {
		runner, output := newTestRunner(t)
		if err := runner.connect(); err != nil {
			t.Fatalf("connect() error = %v", err)
		}

		debits := []models.Debit{
			{Name: "Sami", Amount: 100, AmountPaid: 100, Status: models.DebitPaid},
			{Name: "Leila", Amount: 80, AmountPaid: 30},
		}
		for i := range debits {
			if err := runner.debits.Create(ctx, &debits[i]); err != nil {
				t.Fatalf("failed to seed debit: %v", err)
			}
		}

		run(t, runner, "stats", "debits")
		for _, want := range []string{
			"Debit book",
			"Total debits: 2 ($180.00)",
			"Paid: 1 ($130.00)",
			"Unpaid: 1",
			"Outstanding: $50.00",
		} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("stats debits missing %q:\n%s", want, output.String())
			}
		}
	})

	t.Run("export products writes a csv", func(t *testing.T) {
		runner, output := newTestRunner(t)
		if err := runner.connect(); err != nil {
			t.Fatalf("connect() error = %v", err)
		}

		seed := []models.Product{
			{Name: "Rice 5kg", SellingPrice: 12, Stock: 40, Category: "Grains"},
			{Name: "Black Tea", SellingPrice: 4.5, Stock: 25, Category: "Drinks"},
		}
		for i := range seed {
			if err := runner.products.Create(ctx, &seed[i]); err != nil {
				t.Fatalf("failed to seed product: %v", err)
			}
		}

		path := filepath.Join(t.TempDir(), "products.csv")
		run(t, runner, "export", "products", "--output", path)

		tu.AssertFileExists(t, path)
		content := tu.MustReadFile(t, path)
		if !strings.HasPrefix(content, "ID,Name,Selling Price") {
			t.Errorf("csv header = %q", strings.SplitN(content, "\n", 2)[0])
		}
		for _, want := range []string{"Rice 5kg", "Black Tea"} {
			if !strings.Contains(content, want) {
				t.Errorf("csv missing %q", want)
			}
		}
		if !strings.Contains(output.String(), "Exported 2 records to") {
			t.Errorf("export output = %q", output.String())
		}
	})

	t.Run("setup creates config and database", func(t *testing.T) {
		wd := tu.MustGetwd(t)
		tu.MustChdir(t, t.TempDir())
		t.Cleanup(func() { tu.MustChdir(t, wd) })

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Logger: shared.NewLogger(io.Discard),
			Output: output,
		})
		t.Cleanup(runner.Shutdown)

		run(t, runner, "setup")

		tu.AssertFileExists(t, "config.toml")
		tu.AssertFileExists(t, "tally.db")
		if !strings.Contains(output.String(), "✓ Database ready at ./tally.db (schema version 1)") {
			t.Errorf("setup output = %q", output.String())
		}
	})
}
