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

var _ models.Repository[*models.Debit] = &DebitRepository{}

const debitColumns = "id, name, phone, invoice_id, amount, amount_paid, status, created_at, notes"

// DebitRepository implements models.Repository[*models.Debit] plus the debit
// book queries: paged listing newest-first, the stats rollup, and settling.
type DebitRepository struct {
	db  *sql.DB
	mon *monitor.Monitor
}

// NewDebitRepository creates a DebitRepository. The monitor may be nil.
func NewDebitRepository(db *sql.DB, mon *monitor.Monitor) *DebitRepository {
	return &DebitRepository{db: db, mon: mon}
}

// Create inserts a new debit and assigns its ID. An empty status defaults to
// Unpaid and a zero creation time defaults to now.
func (r *DebitRepository) Create(ctx context.Context, debit *models.Debit) error {
	if debit.Status == "" {
		debit.Status = models.DebitUnpaid
	}
	if debit.CreatedAt.IsZero() {
		debit.CreatedAt = time.Now()
	}
	if err := debit.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO debits (name, phone, invoice_id, amount, amount_paid, status, created_at, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		debit.Name,
		debit.Phone,
		nullableID(debit.InvoiceID),
		debit.Amount,
		debit.AmountPaid,
		debit.Status,
		debit.CreatedAt,
		debit.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to insert debit: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read debit id: %w", err)
	}
	debit.RecordID = id

	return nil
}

// Get retrieves a debit by ID.
func (r *DebitRepository) Get(ctx context.Context, id int64) (*models.Debit, error) {
	query := `SELECT ` + debitColumns + ` FROM debits WHERE id = ?`
	return scanDebit(r.db.QueryRowContext(ctx, query, id))
}

// Update modifies an existing debit.
func (r *DebitRepository) Update(ctx context.Context, debit *models.Debit) error {
	if err := debit.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		UPDATE debits
		SET name = ?, phone = ?, invoice_id = ?, amount = ?, amount_paid = ?, status = ?, notes = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		debit.Name,
		debit.Phone,
		nullableID(debit.InvoiceID),
		debit.Amount,
		debit.AmountPaid,
		debit.Status,
		debit.Notes,
		debit.RecordID,
	)
	if err != nil {
		return fmt.Errorf("failed to update debit: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("debit %d: %w", debit.RecordID, shared.ErrNotFound)
	}

	return nil
}

// Delete removes a debit by ID.
func (r *DebitRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM debits WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete debit: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("debit %d: %w", id, shared.ErrNotFound)
	}

	return nil
}

// List retrieves all debits matching the given criteria, newest first.
// Supported criteria: "search" (string, name or phone), "status" (string),
// "limit" (int).
func (r *DebitRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Debit, error) {
	query := `SELECT ` + debitColumns + ` FROM debits WHERE 1=1`
	args := []any{}

	if search, ok := criteria["search"].(string); ok && search != "" {
		query += " AND (name LIKE ? OR phone LIKE ?)"
		args = append(args, "%"+search+"%", search+"%")
	}
	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY created_at DESC, id DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query debits: %w", err)
	}
	defer rows.Close()

	return collectDebits(rows)
}

// GetPaged retrieves one page of debits newest-first. The search term matches
// customer names anywhere and phone numbers as a prefix; paid narrows to
// settled (true) or outstanding (false) debits when non-nil. A non-positive
// pageSize falls back to DefaultDebitPageSize.
func (r *DebitRepository) GetPaged(ctx context.Context, page, pageSize int, search string, paid *bool) (models.PagedResult[models.Debit], error) {
	defer observe(r.mon, "debits.get_paged", time.Now())

	if pageSize <= 0 {
		pageSize = DefaultDebitPageSize
	}
	if page < 1 {
		page = 1
	}

	where := " WHERE 1=1"
	args := []any{}
	if search != "" {
		where += " AND (name LIKE ? OR phone LIKE ?)"
		args = append(args, "%"+search+"%", search+"%")
	}
	if paid != nil {
		where += " AND status = ?"
		if *paid {
			args = append(args, models.DebitPaid)
		} else {
			args = append(args, models.DebitUnpaid)
		}
	}

	total, err := countRows(ctx, r.db, "SELECT COUNT(*) FROM debits"+where, args...)
	if err != nil {
		return models.PagedResult[models.Debit]{}, err
	}

	limit, offset := pageWindow(page, pageSize)
	query := "SELECT " + debitColumns + " FROM debits" + where +
		" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"

	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return models.PagedResult[models.Debit]{}, fmt.Errorf("failed to query debits page: %w", err)
	}
	defer rows.Close()

	items, err := collectDebits(rows)
	if err != nil {
		return models.PagedResult[models.Debit]{}, err
	}

	paged := models.PagedResult[models.Debit]{
		Items:      make([]models.Debit, 0, len(items)),
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	}
	for _, d := range items {
		paged.Items = append(paged.Items, *d)
	}
	return paged, nil
}

// Stats rolls every debit up into counts and totals with a single query.
func (r *DebitRepository) Stats(ctx context.Context) (models.DebitStats, error) {
	defer observe(r.mon, "debits.stats", time.Now())

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(amount), 0),
			COALESCE(SUM(amount_paid), 0),
			COALESCE(SUM(amount - amount_paid), 0)
		FROM debits
	`

	var stats models.DebitStats
	err := r.db.QueryRowContext(ctx, query, models.DebitPaid, models.DebitUnpaid).Scan(
		&stats.TotalCount,
		&stats.PaidCount,
		&stats.UnpaidCount,
		&stats.TotalAmount,
		&stats.TotalPaid,
		&stats.TotalUnpaid,
	)
	if err != nil {
		return models.DebitStats{}, fmt.Errorf("failed to query debit stats: %w", err)
	}

	return stats, nil
}

// MarkPaid settles a debit: the paid amount is raised to the full amount and
// the status flips to Paid.
func (r *DebitRepository) MarkPaid(ctx context.Context, id int64) error {
	query := `
		UPDATE debits
		SET amount_paid = amount, status = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, models.DebitPaid, id)
	if err != nil {
		return fmt.Errorf("failed to mark debit paid: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("debit %d: %w", id, shared.ErrNotFound)
	}

	return nil
}

// nullableID converts a zero record ID into NULL for optional foreign keys.
func nullableID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

// scanDebit scans one row into a [models.Debit].
func scanDebit(row scanner) (*models.Debit, error) {
	var (
		id         int64
		name       string
		phone      string
		invoiceID  sql.NullInt64
		amount     float64
		amountPaid float64
		status     string
		createdAt  time.Time
		notes      string
	)

	err := row.Scan(&id, &name, &phone, &invoiceID, &amount, &amountPaid, &status, &createdAt, &notes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("debit: %w", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan debit: %w", err)
	}

	return &models.Debit{
		RecordID:   id,
		Name:       name,
		Phone:      phone,
		InvoiceID:  invoiceID.Int64,
		Amount:     amount,
		AmountPaid: amountPaid,
		Status:     status,
		CreatedAt:  createdAt,
		Notes:      notes,
	}, nil
}

// collectDebits drains a result set into debit records.
func collectDebits(rows *sql.Rows) ([]*models.Debit, error) {
	var debits []*models.Debit
	for rows.Next() {
		debit, err := scanDebit(rows)
		if err != nil {
			return nil, err
		}
		debits = append(debits, debit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return debits, nil
}
