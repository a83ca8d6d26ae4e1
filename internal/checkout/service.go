package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Zaidmakandar1/Divine-Elegant/internal/cart"
	"github.com/Zaidmakandar1/Divine-Elegant/internal/order"
)

var ErrInvalidPaymentMethod = errors.New("unknown payment method")

// TxBeginner is the slice of *pgxpool.Pool the service needs.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Publisher emits the order lifecycle event after a successful checkout.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, o *order.Order) error
}

// Service converts a cart into a durable order. Stock validation, pricing
// and the order insert run in one transaction: each variant row is locked
// with SELECT ... FOR UPDATE, so two concurrent checkouts cannot both take
// the last unit.
type Service struct {
	pool      TxBeginner
	carts     cart.Store
	orders    order.Repository
	publisher Publisher
	logger    *log.Logger
}

func NewService(pool TxBeginner, carts cart.Store, orders order.Repository, publisher Publisher, logger *log.Logger) *Service {
	return &Service{pool: pool, carts: carts, orders: orders, publisher: publisher, logger: logger}
}

// PlaceOrder re-validates every cart line against the live catalog and
// persists the order. Prices are re-resolved from the variant rows; the
// cart's price snapshots are display state and are not trusted here. On any
// validation failure nothing is written and the cart is left as it was.
func (s *Service) PlaceOrder(ctx context.Context, userID string, addr order.ShippingAddress, paymentMethod string) (*order.Order, error) {
	if !order.ValidPaymentMethod(paymentMethod) {
		return nil, ErrInvalidPaymentMethod
	}

	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if c == nil || c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	o := &order.Order{
		UserID:          userID,
		ShippingAddress: addr,
		PaymentMethod:   paymentMethod,
		Status:          order.StatusPending,
		CreatedAt:       now,
	}
	if order.ImmediateSettlement(paymentMethod) {
		o.IsPaid = true
		o.PaidAt = &now
	}

	for _, line := range c.Items {
		var (
			price       float64
			stock       int
			productName string
		)
		err := tx.QueryRow(ctx, `
			SELECT v.price, v.stock_count, p.name
			FROM product_variants v
			JOIN products p ON p.id = v.product_id
			WHERE v.product_id = $1 AND v.variant_key = $2
			FOR UPDATE OF v`,
			line.ProductID, line.VariantKey,
		).Scan(&price, &stock, &productName)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, &Error{
					Reason:     ReasonProductUnavailable,
					ProductID:  line.ProductID,
					VariantKey: line.VariantKey,
				}
			}
			return nil, fmt.Errorf("lock variant %s/%s: %w", line.ProductID, line.VariantKey, err)
		}

		if line.Quantity > stock {
			return nil, &Error{
				Reason:     ReasonOutOfStock,
				ProductID:  line.ProductID,
				VariantKey: line.VariantKey,
				Requested:  line.Quantity,
				Available:  stock,
			}
		}

		_, err = tx.Exec(ctx, `
			UPDATE product_variants SET stock_count = stock_count - $3
			WHERE product_id = $1 AND variant_key = $2`,
			line.ProductID, line.VariantKey, line.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("decrement stock %s/%s: %w", line.ProductID, line.VariantKey, err)
		}

		o.Items = append(o.Items, order.Item{
			ProductID:   line.ProductID,
			ProductName: productName,
			VariantKey:  line.VariantKey,
			Quantity:    line.Quantity,
			Price:       price,
		})
		o.TotalPrice += price * float64(line.Quantity)
	}

	if err := s.orders.CreateTx(ctx, tx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	// The order is durable from here on: cart cleanup and the event are
	// best effort and must not fail the checkout.
	if err := s.carts.Delete(ctx, userID); err != nil {
		s.logger.Printf("clear cart for %s after order %s: %v", userID, o.ID, err)
	}
	if s.publisher != nil {
		if err := s.publisher.PublishOrderCreated(ctx, o); err != nil {
			s.logger.Printf("publish OrderCreated for %s: %v", o.ID, err)
		}
	}

	return o, nil
}
