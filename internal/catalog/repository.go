package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("not found")

// DBPool matches the methods we use from *pgxpool.Pool so the repository
// can be exercised against pgxmock in tests.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Repository interface {
	List(ctx context.Context, f Filter) ([]Product, error)
	GetByID(ctx context.Context, productID string) (*Product, error)
	GetVariant(ctx context.Context, productID, variantKey string) (Variant, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, productID string) error
	SetStock(ctx context.Context, productID, variantKey string, stockCount int) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const productColumns = `id, name, description, images, category, material,
       spiritual_benefits, care_instructions, certification, featured,
       rating, num_reviews, created_at, updated_at`

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	args := []any{}
	where := ""
	if f.Category != "" && f.Category != "all" {
		args = append(args, f.Category)
		where = ` WHERE category = $1`
	}
	if f.FeaturedOnly {
		if where == "" {
			where = ` WHERE featured = TRUE`
		} else {
			where += ` AND featured = TRUE`
		}
	}
	query += where + ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	for i := range products {
		if err := r.loadVariants(ctx, &products[i]); err != nil {
			return nil, err
		}
	}
	return products, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, productID string) (*Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, productID)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := r.loadVariants(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetVariant resolves the authoritative price and stock for one variant.
func (r *PostgresRepository) GetVariant(ctx context.Context, productID, variantKey string) (Variant, error) {
	var v Variant
	err := r.pool.QueryRow(ctx,
		`SELECT variant_key, price, stock_count FROM product_variants
         WHERE product_id = $1 AND variant_key = $2`,
		productID, variantKey,
	).Scan(&v.Key, &v.Price, &v.StockCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Variant{}, ErrNotFound
		}
		return Variant{}, fmt.Errorf("select variant: %w", err)
	}
	return v, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p *Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO products (id, name, description, images, category, material,
		                      spiritual_benefits, care_instructions, certification,
		                      featured, rating, num_reviews, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0, 0, NOW(), NOW())
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Description, p.Images, p.Category, p.Material,
		p.SpiritualBenefits, p.CareInstructions, p.Certification, p.Featured,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	if err := insertVariants(ctx, tx, p.ID, p.Variants); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, p *Product) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE products
		SET name=$2, description=$3, images=$4, category=$5, material=$6,
		    spiritual_benefits=$7, care_instructions=$8, certification=$9,
		    featured=$10, updated_at=NOW()
		WHERE id=$1`,
		p.ID, p.Name, p.Description, p.Images, p.Category, p.Material,
		p.SpiritualBenefits, p.CareInstructions, p.Certification, p.Featured,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	// Variants are upserted: payload prices win, but stock_count on rows
	// that already exist is preserved so a stale admin payload cannot undo
	// a checkout's decrement. Stock edits go through SetStock only.
	keys := make([]string, 0, len(p.Variants))
	for _, v := range p.Variants {
		keys = append(keys, v.Key)
		_, err := tx.Exec(ctx, `
			INSERT INTO product_variants (product_id, variant_key, price, stock_count)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (product_id, variant_key) DO UPDATE SET price = EXCLUDED.price`,
			p.ID, v.Key, v.Price, v.StockCount,
		)
		if err != nil {
			return fmt.Errorf("upsert variant %s: %w", v.Key, err)
		}
	}
	if _, err := tx.Exec(ctx, `
		DELETE FROM product_variants
		WHERE product_id = $1 AND NOT (variant_key = ANY($2))`, p.ID, keys); err != nil {
		return fmt.Errorf("delete stale variants: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, productID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, productID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) SetStock(ctx context.Context, productID, variantKey string, stockCount int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE product_variants SET stock_count = $3
		WHERE product_id = $1 AND variant_key = $2`,
		productID, variantKey, stockCount,
	)
	if err != nil {
		return fmt.Errorf("set stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) loadVariants(ctx context.Context, p *Product) error {
	rows, err := r.pool.Query(ctx,
		`SELECT variant_key, price, stock_count FROM product_variants
         WHERE product_id = $1 ORDER BY price`, p.ID)
	if err != nil {
		return fmt.Errorf("select variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v Variant
		if err := rows.Scan(&v.Key, &v.Price, &v.StockCount); err != nil {
			return fmt.Errorf("scan variant: %w", err)
		}
		p.Variants = append(p.Variants, v)
	}
	return rows.Err()
}

func insertVariants(ctx context.Context, tx pgx.Tx, productID string, variants []Variant) error {
	for _, v := range variants {
		_, err := tx.Exec(ctx, `
			INSERT INTO product_variants (product_id, variant_key, price, stock_count)
			VALUES ($1, $2, $3, $4)`,
			productID, v.Key, v.Price, v.StockCount,
		)
		if err != nil {
			return fmt.Errorf("insert variant %s: %w", v.Key, err)
		}
	}
	return nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Images, &p.Category,
		&p.Material, &p.SpiritualBenefits, &p.CareInstructions, &p.Certification,
		&p.Featured, &p.Rating, &p.NumReviews, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
