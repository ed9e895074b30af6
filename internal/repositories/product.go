package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/desertthunder/tally/internal/models"
	"github.com/desertthunder/tally/internal/monitor"
	"github.com/desertthunder/tally/internal/shared"
)

var _ models.Repository[*models.Product] = &ProductRepository{}

const productColumns = "id, name, selling_price, buying_price, stock, category, barcode, created_at, updated_at"

// ProductRepository implements models.Repository[*models.Product] plus the
// inventory queries: paged listing, barcode lookup, fast name search, and
// stock adjustment.
type ProductRepository struct {
	db  *sql.DB
	mon *monitor.Monitor
}

// NewProductRepository creates a ProductRepository. The monitor may be nil.
func NewProductRepository(db *sql.DB, mon *monitor.Monitor) *ProductRepository {
	return &ProductRepository{db: db, mon: mon}
}

// Create inserts a new product and assigns its ID.
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := product.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	query := `
		INSERT INTO products (name, selling_price, buying_price, stock, category, barcode, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		product.Name,
		product.SellingPrice,
		product.BuyingPrice,
		product.Stock,
		product.Category,
		product.Barcode,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read product id: %w", err)
	}
	product.RecordID = id

	return nil
}

// Get retrieves a product by ID.
func (r *ProductRepository) Get(ctx context.Context, id int64) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ?`
	return scanProduct(r.db.QueryRowContext(ctx, query, id))
}

// ByBarcode retrieves the product carrying the exact barcode.
func (r *ProductRepository) ByBarcode(ctx context.Context, code string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE barcode = ? AND barcode != ''`
	return scanProduct(r.db.QueryRowContext(ctx, query, code))
}

// Update modifies an existing product.
func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	if err := product.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	product.UpdatedAt = now

	query := `
		UPDATE products
		SET name = ?, selling_price = ?, buying_price = ?, stock = ?, category = ?, barcode = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		product.Name,
		product.SellingPrice,
		product.BuyingPrice,
		product.Stock,
		product.Category,
		product.Barcode,
		now,
		product.RecordID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("product %d: %w", product.RecordID, shared.ErrNotFound)
	}

	return nil
}

// Delete removes a product by ID.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("product %d: %w", id, shared.ErrNotFound)
	}

	return nil
}

// List retrieves all products matching the given criteria, ordered by name.
// Supported criteria: "category" (string), "search" (string, name or barcode),
// "limit" (int).
func (r *ProductRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []any{}

	if category, ok := criteria["category"].(string); ok && category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}
	if search, ok := criteria["search"].(string); ok && search != "" {
		query += " AND (name LIKE ? OR barcode LIKE ?)"
		args = append(args, "%"+search+"%", search+"%")
	}

	query += " ORDER BY name COLLATE NOCASE ASC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// GetPaged retrieves one page of products filtered by category and search
// term, ordered by name. The search term matches product names anywhere and
// barcodes as a prefix. A non-positive pageSize falls back to
// DefaultProductPageSize.
func (r *ProductRepository) GetPaged(ctx context.Context, page, pageSize int, category, search string) (models.PagedResult[models.Product], error) {
	defer observe(r.mon, "products.get_paged", time.Now())

	if pageSize <= 0 {
		pageSize = DefaultProductPageSize
	}
	if page < 1 {
		page = 1
	}

	where := " WHERE 1=1"
	args := []any{}
	if category != "" {
		where += " AND category = ?"
		args = append(args, category)
	}
	if search != "" {
		where += " AND (name LIKE ? OR barcode LIKE ?)"
		args = append(args, "%"+search+"%", search+"%")
	}

	total, err := countRows(ctx, r.db, "SELECT COUNT(*) FROM products"+where, args...)
	if err != nil {
		return models.PagedResult[models.Product]{}, err
	}

	limit, offset := pageWindow(page, pageSize)
	query := "SELECT " + productColumns + " FROM products" + where +
		" ORDER BY name COLLATE NOCASE ASC LIMIT ? OFFSET ?"

	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return models.PagedResult[models.Product]{}, fmt.Errorf("failed to query products page: %w", err)
	}
	defer rows.Close()

	items, err := collectProducts(rows)
	if err != nil {
		return models.PagedResult[models.Product]{}, err
	}

	paged := models.PagedResult[models.Product]{
		Items:      make([]models.Product, 0, len(items)),
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	}
	for _, p := range items {
		paged.Items = append(paged.Items, *p)
	}
	return paged, nil
}

// SearchFast finds products whose name or barcode matches the term, ranked
// for pick lists: prefix matches first, then by edit distance to the term,
// then alphabetically. The term is normalized with
// shared.NormalizeSearchTerm before matching; normalized terms shorter than
// MinSearchChars return shared.ErrTermTooShort and a non-positive limit
// falls back to DefaultSearchLimit.
func (r *ProductRepository) SearchFast(ctx context.Context, term string, limit int) ([]models.Product, error) {
	defer observe(r.mon, "products.search_fast", time.Now())

	term = shared.NormalizeSearchTerm(term)
	if utf8.RuneCountInString(term) < MinSearchChars {
		return nil, fmt.Errorf("%w: need at least %d characters", shared.ErrTermTooShort, MinSearchChars)
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	// Overfetch so the edit-distance re-rank has candidates to work with.
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE name LIKE ? OR barcode LIKE ?
		ORDER BY name COLLATE NOCASE ASC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, "%"+term+"%", term+"%", limit*3)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	matches, err := collectProducts(rows)
	if err != nil {
		return nil, err
	}

	prefix := func(p *models.Product) bool {
		return strings.HasPrefix(strings.ToLower(p.Name), term)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		pi, pj := prefix(matches[i]), prefix(matches[j])
		if pi != pj {
			return pi
		}
		di := levenshtein.ComputeDistance(term, strings.ToLower(matches[i].Name))
		dj := levenshtein.ComputeDistance(term, strings.ToLower(matches[j].Name))
		if di != dj {
			return di < dj
		}
		return matches[i].Name < matches[j].Name
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	products := make([]models.Product, 0, len(matches))
	for _, m := range matches {
		products = append(products, *m)
	}
	return products, nil
}

// Categories returns the distinct non-empty categories in use.
func (r *ProductRepository) Categories(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT category FROM products WHERE category != '' ORDER BY category COLLATE NOCASE ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return categories, nil
}

// UpdateStock adjusts a product's stock by delta, which may be negative for
// sales. Adjustments that would drive stock below zero fail with
// shared.ErrStockExceeded.
func (r *ProductRepository) UpdateStock(ctx context.Context, id int64, delta int) error {
	query := `
		UPDATE products
		SET stock = stock + ?, updated_at = ?
		WHERE id = ? AND stock + ? >= 0
	`

	result, err := r.db.ExecContext(ctx, query, delta, time.Now(), id, delta)
	if err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("product %d: %w", id, shared.ErrStockExceeded)
	}

	return nil
}

// scanProduct scans one row into a [models.Product].
func scanProduct(row scanner) (*models.Product, error) {
	var (
		id           int64
		name         string
		sellingPrice float64
		buyingPrice  float64
		stock        int
		category     string
		barcode      string
		createdAt    time.Time
		updatedAt    time.Time
	)

	err := row.Scan(&id, &name, &sellingPrice, &buyingPrice, &stock, &category, &barcode, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product: %w", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	return &models.Product{
		RecordID:     id,
		Name:         name,
		SellingPrice: sellingPrice,
		BuyingPrice:  buyingPrice,
		Stock:        stock,
		Category:     category,
		Barcode:      barcode,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

// collectProducts drains a result set into product records.
func collectProducts(rows *sql.Rows) ([]*models.Product, error) {
	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}
