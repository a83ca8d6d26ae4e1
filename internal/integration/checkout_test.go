package integration

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/Zaidmakandar1/Divine-Elegant/internal/cart"
	"github.com/Zaidmakandar1/Divine-Elegant/internal/catalog"
	"github.com/Zaidmakandar1/Divine-Elegant/internal/checkout"
	"github.com/Zaidmakandar1/Divine-Elegant/internal/order"
	"github.com/Zaidmakandar1/Divine-Elegant/internal/testutil"
	"github.com/Zaidmakandar1/Divine-Elegant/internal/user"
)

func seedUser(ctx context.Context, t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()
	u := &user.User{Name: "Asha", Email: "asha@example.com", PasswordHash: "x"}
	require.NoError(t, user.NewPostgresRepository(pool).Create(ctx, u))
	return u.ID
}

func seedProduct(ctx context.Context, t *testing.T, pool *pgxpool.Pool, price float64, stock int) *catalog.Product {
	t.Helper()
	p := &catalog.Product{
		Name:        "Panchamuki Mala",
		Description: "Five faced rudraksha mala",
		Category:    "rudraksha",
		Material:    "rudraksha",
		Variants:    []catalog.Variant{{Key: "8mm", Price: price, StockCount: stock}},
	}
	require.NoError(t, catalog.NewPostgresRepository(pool).Create(ctx, p))
	return p
}

func TestCheckoutAgainstPostgres(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	pool, cleanup := testutil.StartPostgres(ctx, t)
	t.Cleanup(cleanup)

	userID := seedUser(ctx, t, pool)
	p := seedProduct(ctx, t, pool, 1299, 3)

	carts := cart.NewMemoryStore()
	orders := order.NewPostgresRepository(pool)
	svc := checkout.NewService(pool, carts, orders, nil, log.New(io.Discard, "", 0))

	addr := order.ShippingAddress{FullName: "Asha", Address: "1 Temple Rd", City: "Chennai", PostalCode: "600001", Phone: "9999999999"}

	t.Run("order is re-priced from the live variant row", func(t *testing.T) {
		c := cart.New(userID)
		// Stale snapshot from before a price change.
		require.NoError(t, c.AddItem(p.ID, "8mm", 999, 2))
		require.NoError(t, carts.Save(ctx, c))

		o, err := svc.PlaceOrder(ctx, userID, addr, order.PaymentUPI)
		require.NoError(t, err)
		require.Equal(t, 2598.0, o.TotalPrice)
		require.True(t, o.IsPaid)

		fetched, err := orders.GetByID(ctx, o.ID)
		require.NoError(t, err)
		require.Equal(t, order.StatusPending, fetched.Status)
		require.Len(t, fetched.Items, 1)
		require.Equal(t, 1299.0, fetched.Items[0].Price)

		v, err := catalog.NewPostgresRepository(pool).GetVariant(ctx, p.ID, "8mm")
		require.NoError(t, err)
		require.Equal(t, 1, v.StockCount)

		remaining, err := carts.Get(ctx, userID)
		require.NoError(t, err)
		require.Nil(t, remaining)
	})

	t.Run("oversell is rejected and nothing is written", func(t *testing.T) {
		c := cart.New(userID)
		require.NoError(t, c.AddItem(p.ID, "8mm", 1299, 2))
		require.NoError(t, carts.Save(ctx, c))

		_, err := svc.PlaceOrder(ctx, userID, addr, order.PaymentCOD)
		var checkoutErr *checkout.Error
		require.ErrorAs(t, err, &checkoutErr)
		require.Equal(t, checkout.ReasonOutOfStock, checkoutErr.Reason)
		require.Equal(t, 2, checkoutErr.Requested)
		require.Equal(t, 1, checkoutErr.Available)

		v, err := catalog.NewPostgresRepository(pool).GetVariant(ctx, p.ID, "8mm")
		require.NoError(t, err)
		require.Equal(t, 1, v.StockCount)

		remaining, err := carts.Get(ctx, userID)
		require.NoError(t, err)
		require.NotNil(t, remaining)
	})

	t.Run("status advances one step at a time", func(t *testing.T) {
		c := cart.New(userID)
		require.NoError(t, c.AddItem(p.ID, "8mm", 1299, 1))
		require.NoError(t, carts.Save(ctx, c))

		placed, err := svc.PlaceOrder(ctx, userID, addr, order.PaymentCard)
		require.NoError(t, err)

		_, err = orders.UpdateStatus(ctx, placed.ID, order.StatusShipped)
		var invalid order.ErrInvalidTransition
		require.ErrorAs(t, err, &invalid)

		advanced, err := orders.UpdateStatus(ctx, placed.ID, order.StatusProcessing)
		require.NoError(t, err)
		require.Equal(t, order.StatusProcessing, advanced.Status)
	})
}
