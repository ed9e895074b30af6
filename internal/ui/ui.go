package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/tally/internal/formatter"
	"github.com/desertthunder/tally/internal/i18n"
	"github.com/desertthunder/tally/internal/models"
	"github.com/desertthunder/tally/internal/paging"
	"github.com/desertthunder/tally/internal/repositories"
	"github.com/desertthunder/tally/internal/shared"
	"github.com/desertthunder/tally/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	DebitsView ViewState = iota
	ProductsView
)

// Task keys for the screens. One key per screen serializes that screen's
// loads so a newer page request supersedes a queued older one.
const (
	debitsTaskKey   = "ui_load_debits"
	productsTaskKey = "ui_load_products"
	markPaidTaskKey = "ui_mark_paid"
)

var (
	_ tasks.BusyScreen    = (*Model)(nil)
	_ tasks.BusyMessenger = (*Model)(nil)
)

// Model represents the TUI application state.
type Model struct {
	view      ViewState
	tr        *i18n.Translator
	scheduler *tasks.Scheduler
	debitRepo *repositories.DebitRepository
	width     int
	height    int

	debits        *paging.Controller[models.Debit]
	products      *paging.Controller[models.Product]
	debitsState   paging.State
	productsState paging.State
	debitsList    list.Model
	productsList  list.Model

	search    textinput.Model
	searching bool
	// searchDrop swallows the next debounced fire after the search box is
	// abandoned, so a stale term can't reapply itself.
	searchDrop     bool
	debouncer      *tasks.Debouncer
	minSearchChars int

	// events bridges messages produced off the Elm loop (debounce timer
	// fires) back onto it; waitForEvent re-arms after each delivery.
	events chan tea.Msg

	spin        spinner.Model
	busySeq     uint64
	busyMessage string

	err   error
	flash string
	help  help.Model
	keys  keyMap
}

// ModelOpts carries the dependencies the TUI renders and drives.
type ModelOpts struct {
	Translator *i18n.Translator
	Scheduler  *tasks.Scheduler
	Products   *repositories.ProductRepository
	Debits     *repositories.DebitRepository
	UI         shared.UIConfig
	Logger     *log.Logger
}

// NewModel creates a new TUI model with the provided dependencies. External
// cancellation belongs to the program that runs the model (tea.WithContext);
// loads get their context from the scheduler.
func NewModel(opts ModelOpts) *Model {
	search := textinput.New()
	search.Placeholder = opts.Translator.T("ui.search_placeholder")
	search.Prompt = "/ "
	search.CharLimit = 64

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = styles.warn

	minSearchChars := opts.UI.SearchMinChars
	if minSearchChars <= 0 {
		minSearchChars = repositories.MinSearchChars
	}

	m := &Model{
		view:           DebitsView,
		tr:             opts.Translator,
		scheduler:      opts.Scheduler,
		debitRepo:      opts.Debits,
		search:         search,
		spin:           spin,
		events:         make(chan tea.Msg, 8),
		help:           help.New(),
		keys:           newKeyMap(),
		minSearchChars: minSearchChars,
	}

	m.debitsList = newListModel(opts.Translator.T("ui.debits_title"))
	m.productsList = newListModel(opts.Translator.T("ui.products_title"))

	m.debouncer = tasks.NewDebouncer(opts.UI.SearchDebounce(), func(term string) {
		m.events <- searchFiredMsg{term: term}
	})

	debitsPageSize := opts.UI.DebitsPageSize
	if debitsPageSize <= 0 {
		debitsPageSize = repositories.DefaultDebitPageSize
	}
	productsPageSize := opts.UI.ProductsPageSize
	if productsPageSize <= 0 {
		productsPageSize = repositories.DefaultProductPageSize
	}

	m.debits = paging.NewController(paging.ControllerOpts[models.Debit]{
		Key:       debitsTaskKey,
		PageSize:  debitsPageSize,
		Scheduler: opts.Scheduler,
		Load: func(ctx context.Context, page, pageSize int, filter string) (models.PagedResult[models.Debit], error) {
			return opts.Debits.GetPaged(ctx, page, pageSize, filter, nil)
		},
		MapRow: func(d models.Debit) paging.Row {
			return paging.Row(formatter.DebitRow(m.tr, d))
		},
		OnState: m.applyDebitsState,
		OnError: m.loadFailed,
		Logger:  opts.Logger,
	})

	m.products = paging.NewController(paging.ControllerOpts[models.Product]{
		Key:       productsTaskKey,
		PageSize:  productsPageSize,
		Scheduler: opts.Scheduler,
		Load: func(ctx context.Context, page, pageSize int, filter string) (models.PagedResult[models.Product], error) {
			return opts.Products.GetPaged(ctx, page, pageSize, "", filter)
		},
		MapRow: func(p models.Product) paging.Row {
			return paging.Row(formatter.ProductRow(p))
		},
		OnState: m.applyProductsState,
		OnError: m.loadFailed,
		Logger:  opts.Logger,
	})

	return m
}

func newListModel(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.Styles.Title = styles.title
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	return l
}

// Init requests the first page of both screens and starts the background
// message pumps.
func (m *Model) Init() tea.Cmd {
	m.debits.Refresh()
	m.products.Refresh()
	return tea.Batch(m.spin.Tick, m.waitForCompletion(), m.waitForEvent())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.debitsList.SetSize(msg.Width-4, msg.Height-10)
		m.productsList.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKeys(msg)
		}
		switch m.view {
		case ProductsView:
			return m.handleProductsKeys(msg)
		default:
			return m.handleDebitsKeys(msg)
		}

	case completionMsg:
		// Deliver runs the task callbacks here on the loop goroutine, the
		// only place model state may change.
		msg.completion.Deliver()
		return m, m.waitForCompletion()

	case completionsClosedMsg:
		return m, nil

	case searchFiredMsg:
		if m.searchDrop {
			m.searchDrop = false
			return m, m.waitForEvent()
		}
		m.applySearch(msg.term)
		return m, m.waitForEvent()
	}

	return m.updateLists(msg)
}

func (m *Model) handleDebitsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.debouncer.Stop()
		return m, tea.Quit
	case "tab":
		m.switchView(ProductsView)
		return m, nil
	case "/":
		return m, m.focusSearch()
	case "esc":
		if m.debitsState.Filter != "" {
			m.applySearch("")
		}
		return m, nil
	case "left", "h":
		m.debits.SetPage(m.debitsState.Page - 1)
		return m, nil
	case "right", "l":
		m.debits.SetPage(m.debitsState.Page + 1)
		return m, nil
	case "r":
		m.debits.Refresh()
		return m, nil
	case "p":
		m.markSelectedPaid()
		return m, nil
	}

	var cmd tea.Cmd
	m.debitsList, cmd = m.debitsList.Update(msg)
	return m, cmd
}

func (m *Model) handleProductsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.debouncer.Stop()
		return m, tea.Quit
	case "tab":
		m.switchView(DebitsView)
		return m, nil
	case "/":
		return m, m.focusSearch()
	case "esc":
		if m.productsState.Filter != "" {
			m.applySearch("")
		}
		return m, nil
	case "left", "h":
		m.products.SetPage(m.productsState.Page - 1)
		return m, nil
	case "right", "l":
		m.products.SetPage(m.productsState.Page + 1)
		return m, nil
	case "r":
		m.products.Refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.productsList, cmd = m.productsList.Update(msg)
	return m, cmd
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.debouncer.Stop()
		return m, tea.Quit
	case "esc":
		m.searching = false
		m.searchDrop = true
		m.search.Blur()
		m.applySearch("")
		return m, nil
	case "enter":
		// Leave the box; the pending debounce still delivers the term.
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.debouncer.Notify(m.search.Value())
	return m, cmd
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ProductsView:
		m.productsList, cmd = m.productsList.Update(msg)
	default:
		m.debitsList, cmd = m.debitsList.Update(msg)
	}
	return m, cmd
}

func (m *Model) focusSearch() tea.Cmd {
	m.searching = true
	m.searchDrop = false
	m.search.Focus()
	return textinput.Blink
}

// switchView flips between the two screens. A debounce fire armed on the old
// screen must not land on the new one, so the next fire is dropped.
func (m *Model) switchView(v ViewState) {
	m.view = v
	m.searching = false
	m.searchDrop = true
	m.search.Blur()
	switch v {
	case ProductsView:
		m.search.SetValue(m.productsState.Filter)
	default:
		m.search.SetValue(m.debitsState.Filter)
	}
}

// applySearch pushes a search term into the active screen's controller.
// applySearch pushes a debounced term into the active screen's controller.
// Terms below the configured minimum are ignored so single keystrokes don't
// churn the list; an empty term always clears the filter.
func (m *Model) applySearch(term string) {
	if term != "" && utf8.RuneCountInString(term) < m.minSearchChars {
		return
	}
	m.search.SetValue(term)
	switch m.view {
	case ProductsView:
		m.products.SetFilter(term)
	default:
		m.debits.SetFilter(term)
	}
}

// markSelectedPaid settles the selected debit in the background and keeps a
// busy indicator up until the completion comes back.
func (m *Model) markSelectedPaid() {
	item, ok := m.debitsList.SelectedItem().(debitItem)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(item.row[0], 10, 64)
	if err != nil || id == 0 {
		return
	}

	scope := tasks.OpenProgress(m, m.tr.Tf("ui.marking_paid", id))
	err = m.scheduler.Submit(tasks.Task{
		Key: markPaidTaskKey,
		Work: func(ctx context.Context) (any, error) {
			return nil, m.debitRepo.MarkPaid(ctx, id)
		},
		OnSuccess: func(any) {
			scope.Close()
			m.flash = m.tr.Tf("ui.mark_paid_done", id)
			m.debits.Refresh()
		},
		OnError: func(err error) {
			scope.Close()
			m.err = err
		},
	})
	if err != nil {
		scope.Close()
		m.err = err
	}
}

// applyDebitsState renders a controller snapshot for the debits screen. A
// loading snapshot keeps the previous rows on screen under the spinner.
func (m *Model) applyDebitsState(s paging.State) {
	if s.Loading {
		m.err = nil
		m.flash = ""
	}
	m.debitsState = s
	m.debitsList.SetItems(debitItems(s.Rows, m.tr))
}

func (m *Model) applyProductsState(s paging.State) {
	if s.Loading {
		m.err = nil
		m.flash = ""
	}
	m.productsState = s
	m.productsList.SetItems(productItems(s.Rows, m.tr))
}

func (m *Model) loadFailed(err error) {
	m.err = err
}

// ShowBusy implements [tasks.BusyScreen]. All calls happen on the loop
// goroutine, so plain fields are enough.
func (m *Model) ShowBusy(message string) tasks.BusyToken {
	m.busySeq++
	m.busyMessage = message
	return m.busySeq
}

// HideBusy clears the indicator if the token is the one currently shown.
func (m *Model) HideBusy(token tasks.BusyToken) {
	if seq, ok := token.(uint64); ok && seq == m.busySeq {
		m.busyMessage = ""
	}
}

// UpdateBusy implements [tasks.BusyMessenger].
func (m *Model) UpdateBusy(token tasks.BusyToken, message string) {
	if seq, ok := token.(uint64); ok && seq == m.busySeq {
		m.busyMessage = message
	}
}

// waitForCompletion blocks on the scheduler's completion queue and wraps the
// next finished task into a message. Update re-arms it after each delivery,
// which keeps callbacks strictly in finish order on the loop goroutine.
func (m *Model) waitForCompletion() tea.Cmd {
	return func() tea.Msg {
		completion, ok := <-m.scheduler.Completions()
		if !ok {
			return completionsClosedMsg{}
		}
		return completionMsg{completion: completion}
	}
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case ProductsView:
		return m.renderList(m.productsList, m.productsState)
	default:
		return m.renderList(m.debitsList, m.debitsState)
	}
}

func (m *Model) renderList(l list.Model, s paging.State) string {
	header := ""
	if m.searching {
		header = m.search.View() + "\n"
	} else if s.Filter != "" {
		header = styles.help.Render("/ "+s.Filter) + "\n"
	}

	helpView := m.help.ShortHelpView(m.keys.ShortHelp())
	return fmt.Sprintf("%s%s\n%s\n%s", header, l.View(), m.renderStatus(s), helpView)
}

// renderStatus is the footer: paging position, result count, load time, and
// whatever busy, error, or flash state is current.
func (m *Model) renderStatus(s paging.State) string {
	parts := []string{
		m.tr.Tf("ui.page_of", s.Page, s.TotalPages),
		m.tr.Tf("ui.items", s.TotalCount),
	}
	if s.LoadTime > 0 {
		parts = append(parts, m.tr.Tf("ui.loaded_in", s.LoadTime.Milliseconds()))
	}
	footer := styles.help.Render(strings.Join(parts, " • "))

	switch {
	case m.busyMessage != "":
		return fmt.Sprintf("%s %s\n%s", m.spin.View(), m.busyMessage, footer)
	case s.Loading:
		return fmt.Sprintf("%s %s\n%s", m.spin.View(), m.tr.T("ui.loading"), footer)
	case m.err != nil:
		return fmt.Sprintf("%s\n%s", styles.err.Render(m.tr.Tf("errors.load_failed", m.err.Error())), footer)
	case m.flash != "":
		return fmt.Sprintf("%s\n%s", styles.ok.Render(m.flash), footer)
	case s.TotalCount == 0:
		return fmt.Sprintf("%s\n%s", styles.warn.Render(m.tr.T("ui.no_results")), footer)
	}
	return footer
}
