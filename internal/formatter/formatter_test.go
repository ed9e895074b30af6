package formatter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/tally/internal/i18n"
	"github.com/desertthunder/tally/internal/models"
)

func testTranslator(t *testing.T, lang string) *i18n.Translator {
	t.Helper()
	tr, err := i18n.New(lang)
	if err != nil {
		t.Fatalf("failed to load %s catalog: %v", lang, err)
	}
	return tr
}

func TestCurrency(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "$0.00"},
		{12.5, "$12.50"},
		{1234.567, "$1234.57"},
	}

	for _, tc := range tests {
		if got := Currency(tc.amount); got != tc.want {
			t.Errorf("Currency(%v) = %q, want %q", tc.amount, got, tc.want)
		}
	}
}

func TestStatusLabel(t *testing.T) {
	en := testTranslator(t, "en")
	ar := testTranslator(t, "ar")

	if got := StatusLabel(en, models.DebitPaid); got != "Paid" {
		t.Errorf("english label = %q, want Paid", got)
	}
	if got := StatusLabel(ar, models.DebitUnpaid); got != "غير مدفوع" {
		t.Errorf("arabic label = %q, want the Arabic unpaid label", got)
	}
	if got := StatusLabel(en, "Weird"); got != "Weird" {
		t.Errorf("unknown status = %q, want pass-through", got)
	}
}

func TestDebitRow(t *testing.T) {
	tr := testTranslator(t, "en")
	debit := models.Debit{
		RecordID:   7,
		Name:       "Leila",
		Amount:     80,
		AmountPaid: 30,
		Status:     models.DebitUnpaid,
		CreatedAt:  time.Date(2026, 3, 14, 15, 9, 0, 0, time.Local),
	}

	row := DebitRow(tr, debit)
	want := []string{"7", "Leila", "$80.00", "$50.00", "Unpaid", "2026-03-14 15:09"}
	if len(row) != len(want) {
		t.Fatalf("row = %v, want %v", row, want)
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("cell %d = %q, want %q", i, row[i], want[i])
		}
	}
}

func TestProductRow(t *testing.T) {
	product := models.Product{RecordID: 3, Name: "Rice 5kg", SellingPrice: 12, Stock: 40, Category: "Grains"}

	row := ProductRow(product)
	want := []string{"3", "Rice 5kg", "$12.00", "40", "Grains"}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("cell %d = %q, want %q", i, row[i], want[i])
		}
	}
}

func TestTopProductRow(t *testing.T) {
	row := TopProductRow(models.TopProduct{Name: "Tea 500g", Quantity: 12, Revenue: 54})
	want := []string{"Tea 500g", "12", "$54.00"}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("cell %d = %q, want %q", i, row[i], want[i])
		}
	}
}

func TestWriteCSV(t *testing.T) {
	debits := []models.Debit{
		{RecordID: 1, Name: "Sami", Amount: 100, AmountPaid: 100, Status: models.DebitPaid, CreatedAt: time.Date(2026, 1, 2, 9, 0, 0, 0, time.Local)},
		{RecordID: 2, Name: "Leila, the second", Amount: 80, Status: models.DebitUnpaid, CreatedAt: time.Date(2026, 1, 3, 9, 0, 0, 0, time.Local)},
	}

	records := make([][]string, 0, len(debits))
	for _, d := range debits {
		records = append(records, DebitCSVRecord(d))
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, DebitCSVHeader, records); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2 records:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "ID,Name,Phone") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "Sami") || !strings.Contains(lines[1], "100.00") {
		t.Errorf("first record = %q", lines[1])
	}
	// Commas in values must be quoted, not split.
	if !strings.Contains(lines[2], `"Leila, the second"`) {
		t.Errorf("second record = %q, want the quoted name", lines[2])
	}
}
