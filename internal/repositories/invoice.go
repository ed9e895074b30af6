package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tally/internal/models"
	"github.com/desertthunder/tally/internal/monitor"
	"github.com/desertthunder/tally/internal/shared"
)

var _ models.Repository[*models.Invoice] = &InvoiceRepository{}

const invoiceColumns = "id, created_at, payment_method, total_amount, discount, employee"

// InvoiceRepository implements models.Repository[*models.Invoice] plus the
// sales queries: paged listing, today's summary and the best-seller ranking.
// Creating an invoice writes its line items and decrements product stock in
// one transaction.
type InvoiceRepository struct {
	db  *sql.DB
	mon *monitor.Monitor
}

// NewInvoiceRepository creates an InvoiceRepository. The monitor may be nil.
func NewInvoiceRepository(db *sql.DB, mon *monitor.Monitor) *InvoiceRepository {
	return &InvoiceRepository{db: db, mon: mon}
}

// Create inserts an invoice with its items and decrements each product's
// stock, all in one transaction. Items selling more than the available stock
// roll the whole sale back with shared.ErrStockExceeded. A zero creation
// time defaults to now.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	defer observe(r.mon, "invoices.create", time.Now())

	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = time.Now()
	}
	if err := invoice.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO invoices (created_at, payment_method, total_amount, discount, employee)
		VALUES (?, ?, ?, ?, ?)
	`,
		invoice.CreatedAt,
		invoice.PaymentMethod,
		invoice.TotalAmount,
		invoice.Discount,
		invoice.Employee,
	)
	if err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}

	invoiceID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read invoice id: %w", err)
	}

	for i := range invoice.Items {
		item := &invoice.Items[i]
		item.InvoiceID = invoiceID

		var stock int
		err := tx.QueryRowContext(ctx, `SELECT stock FROM products WHERE id = ?`, item.ProductID).Scan(&stock)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("product %d: %w", item.ProductID, shared.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to check stock: %w", err)
		}
		if stock < item.Quantity {
			return fmt.Errorf("product %d has %d in stock, need %d: %w", item.ProductID, stock, item.Quantity, shared.ErrStockExceeded)
		}

		if _, err := tx.ExecContext(ctx, `UPDATE products SET stock = stock - ?, updated_at = ? WHERE id = ?`,
			item.Quantity, time.Now(), item.ProductID); err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}

		itemResult, err := tx.ExecContext(ctx, `
			INSERT INTO invoice_items (invoice_id, product_id, quantity, price)
			VALUES (?, ?, ?, ?)
		`, invoiceID, item.ProductID, item.Quantity, item.Price)
		if err != nil {
			return fmt.Errorf("failed to insert invoice item: %w", err)
		}
		if item.RecordID, err = itemResult.LastInsertId(); err != nil {
			return fmt.Errorf("failed to read invoice item id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit invoice: %w", err)
	}

	invoice.RecordID = invoiceID
	return nil
}

// Get retrieves an invoice with its line items.
func (r *InvoiceRepository) Get(ctx context.Context, id int64) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = ?`
	invoice, err := scanInvoice(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, invoice_id, product_id, quantity, price
		FROM invoice_items
		WHERE invoice_id = ?
		ORDER BY id ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.InvoiceItem
		if err := rows.Scan(&item.RecordID, &item.InvoiceID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}
		invoice.Items = append(invoice.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return invoice, nil
}

// Update modifies an invoice header. Line items are immutable once sold;
// corrections go through a new sale or a deletion.
func (r *InvoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	if err := invoice.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		UPDATE invoices
		SET payment_method = ?, total_amount = ?, discount = ?, employee = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		invoice.PaymentMethod,
		invoice.TotalAmount,
		invoice.Discount,
		invoice.Employee,
		invoice.RecordID,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("invoice %d: %w", invoice.RecordID, shared.ErrNotFound)
	}

	return nil
}

// Delete removes an invoice by ID; its line items cascade.
func (r *InvoiceRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("invoice %d: %w", id, shared.ErrNotFound)
	}

	return nil
}

// List retrieves all invoices matching the given criteria, newest first,
// without line items. Supported criteria: "day" (string, YYYY-MM-DD),
// "payment_method" (string), "limit" (int).
func (r *InvoiceRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE 1=1`
	args := []any{}

	if day, ok := criteria["day"].(string); ok && day != "" {
		query += " AND date(created_at, 'localtime') = ?"
		args = append(args, day)
	}
	if method, ok := criteria["payment_method"].(string); ok && method != "" {
		query += " AND payment_method = ?"
		args = append(args, method)
	}

	query += " ORDER BY created_at DESC, id DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	return collectInvoices(rows)
}

// GetPaged retrieves one page of invoices newest-first, without line items.
// Day (a local calendar day, "YYYY-MM-DD") and payment method narrow the
// listing when non-empty. A non-positive pageSize falls back to
// DefaultInvoicePageSize.
func (r *InvoiceRepository) GetPaged(ctx context.Context, page, pageSize int, day, method string) (models.PagedResult[models.Invoice], error) {
	defer observe(r.mon, "invoices.get_paged", time.Now())

	if pageSize <= 0 {
		pageSize = DefaultInvoicePageSize
	}
	if page < 1 {
		page = 1
	}

	where := " WHERE 1=1"
	args := []any{}
	if day != "" {
		where += " AND date(created_at, 'localtime') = ?"
		args = append(args, day)
	}
	if method != "" {
		where += " AND payment_method = ?"
		args = append(args, method)
	}

	total, err := countRows(ctx, r.db, "SELECT COUNT(*) FROM invoices"+where, args...)
	if err != nil {
		return models.PagedResult[models.Invoice]{}, err
	}

	limit, offset := pageWindow(page, pageSize)
	query := "SELECT " + invoiceColumns + " FROM invoices" + where +
		" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"

	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return models.PagedResult[models.Invoice]{}, fmt.Errorf("failed to query invoices page: %w", err)
	}
	defer rows.Close()

	items, err := collectInvoices(rows)
	if err != nil {
		return models.PagedResult[models.Invoice]{}, err
	}

	paged := models.PagedResult[models.Invoice]{
		Items:      make([]models.Invoice, 0, len(items)),
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	}
	for _, inv := range items {
		paged.Items = append(paged.Items, *inv)
	}
	return paged, nil
}

// TodaySummary rolls up the current day's sales.
func (r *InvoiceRepository) TodaySummary(ctx context.Context) (models.SalesSummary, error) {
	defer observe(r.mon, "invoices.today_summary", time.Now())

	query := `
		SELECT COUNT(*), COALESCE(SUM(total_amount), 0), COALESCE(SUM(discount), 0)
		FROM invoices
		WHERE date(created_at, 'localtime') = date('now', 'localtime')
	`

	var summary models.SalesSummary
	err := r.db.QueryRowContext(ctx, query).Scan(&summary.InvoiceCount, &summary.Total, &summary.Discounts)
	if err != nil {
		return models.SalesSummary{}, fmt.Errorf("failed to query sales summary: %w", err)
	}

	return summary, nil
}

// TopProducts ranks products by total quantity sold across all invoices.
func (r *InvoiceRepository) TopProducts(ctx context.Context, limit int) ([]models.TopProduct, error) {
	defer observe(r.mon, "invoices.top_products", time.Now())

	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	query := `
		SELECT p.name, SUM(ii.quantity), SUM(ii.quantity * ii.price)
		FROM invoice_items ii
		JOIN products p ON p.id = ii.product_id
		GROUP BY ii.product_id
		ORDER BY SUM(ii.quantity) DESC, p.name ASC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}
	defer rows.Close()

	var top []models.TopProduct
	for rows.Next() {
		var tp models.TopProduct
		if err := rows.Scan(&tp.Name, &tp.Quantity, &tp.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan top product: %w", err)
		}
		top = append(top, tp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return top, nil
}

// scanInvoice scans one row into a [models.Invoice] without items.
func scanInvoice(row scanner) (*models.Invoice, error) {
	var (
		id            int64
		createdAt     time.Time
		paymentMethod string
		totalAmount   float64
		discount      float64
		employee      string
	)

	err := row.Scan(&id, &createdAt, &paymentMethod, &totalAmount, &discount, &employee)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invoice: %w", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan invoice: %w", err)
	}

	return &models.Invoice{
		RecordID:      id,
		CreatedAt:     createdAt,
		PaymentMethod: paymentMethod,
		TotalAmount:   totalAmount,
		Discount:      discount,
		Employee:      employee,
	}, nil
}

// collectInvoices drains a result set into invoice records.
func collectInvoices(rows *sql.Rows) ([]*models.Invoice, error) {
	var invoices []*models.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return invoices, nil
}
