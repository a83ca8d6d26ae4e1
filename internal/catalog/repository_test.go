package catalog

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func TestGetVariant(t *testing.T) {
	ctx := context.Background()

	t.Run("returns authoritative price and stock", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT variant_key, price, stock_count FROM product_variants`)).
			WithArgs("p1", "8mm").
			WillReturnRows(pgxmock.NewRows([]string{"variant_key", "price", "stock_count"}).
				AddRow("8mm", 1299.0, 7))

		repo := NewPostgresRepository(mock)
		v, err := repo.GetVariant(ctx, "p1", "8mm")
		require.NoError(t, err)
		require.Equal(t, Variant{Key: "8mm", Price: 1299, StockCount: 7}, v)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing variant maps to ErrNotFound", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT variant_key, price, stock_count FROM product_variants`)).
			WithArgs("p1", "gone").
			WillReturnRows(pgxmock.NewRows([]string{"variant_key", "price", "stock_count"}))

		repo := NewPostgresRepository(mock)
		_, err = repo.GetVariant(ctx, "p1", "gone")
		require.ErrorIs(t, err, ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSetStock(t *testing.T) {
	ctx := context.Background()

	t.Run("updates the variant row", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE product_variants SET stock_count = $3`)).
			WithArgs("p1", "8mm", 12).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := NewPostgresRepository(mock)
		require.NoError(t, repo.SetStock(ctx, "p1", "8mm", 12))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown variant maps to ErrNotFound", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE product_variants SET stock_count = $3`)).
			WithArgs("p1", "13mm", 12).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := NewPostgresRepository(mock)
		err = repo.SetStock(ctx, "p1", "13mm", 12)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM products WHERE id = $1`)).
		WithArgs("p1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	repo := NewPostgresRepository(mock)
	require.NoError(t, repo.Delete(ctx, "p1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM products WHERE id = $1`)).
		WithArgs("nope").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewPostgresRepository(mock)
	err = repo.Delete(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestValidCategory(t *testing.T) {
	for _, c := range Categories {
		require.True(t, ValidCategory(c), c)
	}
	require.False(t, ValidCategory("beads"))
	require.False(t, ValidCategory(""))
}

func TestUpdateKeepsExistingStock(t *testing.T) {
	ctx := context.Background()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	p := &Product{
		ID:          "p1",
		Name:        "Rudraksha Mala",
		Description: "Five faced mala",
		Category:    "rudraksha",
		Material:    "rudraksha",
		Variants: []Variant{
			{Key: "8mm", Price: 1499, StockCount: 99},
			{Key: "10mm", Price: 1799, StockCount: 4},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE products`)).
		WithArgs(p.ID, p.Name, p.Description, p.Images, p.Category, p.Material,
			p.SpiritualBenefits, p.CareInstructions, p.Certification, p.Featured).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	// Existing rows keep their stock_count: the upsert only takes the price
	// from the payload, so the 99 above cannot clobber a live decrement.
	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (product_id, variant_key) DO UPDATE SET price = EXCLUDED.price`)).
		WithArgs("p1", "8mm", 1499.0, 99).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (product_id, variant_key) DO UPDATE SET price = EXCLUDED.price`)).
		WithArgs("p1", "10mm", 1799.0, 4).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta(`NOT (variant_key = ANY($2))`)).
		WithArgs("p1", []string{"8mm", "10mm"}).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCommit()

	repo := NewPostgresRepository(mock)
	require.NoError(t, repo.Update(ctx, p))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMissingProduct(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE products`)).
		WithArgs("nope", "", "", []string(nil), "", "", "", "", "", false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	repo := NewPostgresRepository(mock)
	err = repo.Update(context.Background(), &Product{ID: "nope"})
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
