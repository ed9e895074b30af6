package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/tally/internal/i18n"
	"github.com/desertthunder/tally/internal/models"
	"github.com/desertthunder/tally/internal/monitor"
	"github.com/desertthunder/tally/internal/repositories"
	"github.com/desertthunder/tally/internal/shared"
	"github.com/desertthunder/tally/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	logger  *log.Logger
	output  io.Writer
	tr      *i18n.Translator
	db      *sql.DB
	monitor *monitor.Monitor

	products *repositories.ProductRepository
	debits   *repositories.DebitRepository
	invoices *repositories.InvoiceRepository

	scheduler *tasks.Scheduler
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	tr, err := i18n.New(opts.Config.UI.Language)
	if err != nil {
		opts.Logger.Warn("unknown language, using english", "language", opts.Config.UI.Language)
		tr, _ = i18n.New(i18n.DefaultLanguage)
	}

	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
		tr:     tr,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, productsCommand, debitsCommand, invoicesCommand, sellCommand, statsCommand, exportCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// connect opens the database and wires the repositories, the monitor, and
// the scheduler. Actions call it once at the top; setup is the exception and
// manages its own connection so it can create and migrate the file first.
func (r *Runner) connect() error {
	if r.db != nil {
		return nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	r.db = db
	r.monitor = monitor.New(r.config.Monitor.SlowOp(), r.logger)
	r.products = repositories.NewProductRepository(db, r.monitor)
	r.debits = repositories.NewDebitRepository(db, r.monitor)
	r.invoices = repositories.NewInvoiceRepository(db, r.monitor)
	r.scheduler = tasks.NewScheduler(tasks.SchedulerOpts{
		Workers:      r.config.Tasks.Workers,
		QueueSize:    r.config.Tasks.QueueSize,
		CloseTimeout: r.config.Tasks.CloseTimeout(),
		Logger:       r.logger,
		Monitor:      r.monitor,
	})

	return nil
}

// Shutdown drains the scheduler and closes the database. Safe to call when
// connect never ran and safe to call twice.
func (r *Runner) Shutdown() {
	if r.scheduler != nil {
		if err := r.scheduler.Close(); err != nil {
			r.logger.Warn("scheduler drain failed", "error", err)
		}
		r.scheduler = nil
	}
	if r.monitor != nil {
		for _, snap := range r.monitor.Snapshot() {
			r.logger.Debug("op timing", "op", snap.Name, "count", snap.Count, "avg", snap.Avg, "max", snap.Max, "slow", snap.Slow)
		}
		r.monitor = nil
	}
	if r.db != nil {
		if err := r.db.Close(); err != nil {
			r.logger.Warn("database close failed", "error", err)
		}
		r.db = nil
	}
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// writeTable renders rows under a header with lipgloss.
func (r *Runner) writeTable(header []string, rows [][]string) error {
	t := table.New().Headers(header...).Rows(rows...)
	return r.writePlain("%s\n", t.Render())
}

// writePageFooter prints the paging position under a table, in the
// configured language. A free function because methods cannot take type
// parameters.
func writePageFooter[R any](r *Runner, result models.PagedResult[R]) error {
	parts := []string{
		r.tr.Tf("ui.page_of", result.Page, result.TotalPages()),
		r.tr.Tf("ui.items", result.TotalCount),
	}
	if result.TotalCount > 0 {
		parts = append(parts, r.tr.Tf("ui.showing", result.FirstItem(), result.LastItem()))
	}
	return r.writePlain("%s\n", strings.Join(parts, " • "))
}
