package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/tally/internal/i18n"
	"github.com/desertthunder/tally/internal/paging"
)

var (
	_ list.Item = debitItem{}
	_ list.Item = productItem{}
)

// debitItem wraps one formatted debit row (id, customer, amount, remaining,
// status, date) to implement [list.Item].
type debitItem struct {
	row       paging.Row
	remaining string
}

func (i debitItem) FilterValue() string { return i.row[1] }
func (i debitItem) Title() string       { return i.row[1] }
func (i debitItem) Description() string {
	return fmt.Sprintf("%s • %s %s • %s • %s", i.row[2], i.remaining, i.row[3], i.row[4], i.row[5])
}

// productItem wraps one formatted product row (id, name, price, stock,
// category) to implement [list.Item].
type productItem struct {
	row   paging.Row
	stock string
}

func (i productItem) FilterValue() string { return i.row[1] }
func (i productItem) Title() string       { return i.row[1] }
func (i productItem) Description() string {
	desc := fmt.Sprintf("%s • %s", i.row[2], i.stock)
	if i.row[4] != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.row[4])
	}
	return desc
}

func debitItems(rows []paging.Row, tr *i18n.Translator) []list.Item {
	items := make([]list.Item, len(rows))
	for i, row := range rows {
		items[i] = debitItem{row: row, remaining: tr.T("ui.remaining")}
	}
	return items
}

func productItems(rows []paging.Row, tr *i18n.Translator) []list.Item {
	items := make([]list.Item, len(rows))
	for i, row := range rows {
		items[i] = productItem{row: row, stock: tr.Tf("ui.stock", row[3])}
	}
	return items
}
