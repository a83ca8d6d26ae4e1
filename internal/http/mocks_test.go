package httpapi_test

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Zaidmakandar1/Divine-Elegant/internal/catalog"
	"github.com/Zaidmakandar1/Divine-Elegant/internal/order"
	"github.com/Zaidmakandar1/Divine-Elegant/internal/user"
)

type catalogRepoMock struct {
	ListFunc       func(ctx context.Context, f catalog.Filter) ([]catalog.Product, error)
	GetByIDFunc    func(ctx context.Context, productID string) (*catalog.Product, error)
	GetVariantFunc func(ctx context.Context, productID, variantKey string) (catalog.Variant, error)
	CreateFunc     func(ctx context.Context, p *catalog.Product) error
	UpdateFunc     func(ctx context.Context, p *catalog.Product) error
	DeleteFunc     func(ctx context.Context, productID string) error
	SetStockFunc   func(ctx context.Context, productID, variantKey string, stockCount int) error
}

func (m *catalogRepoMock) List(ctx context.Context, f catalog.Filter) ([]catalog.Product, error) {
	return m.ListFunc(ctx, f)
}

func (m *catalogRepoMock) GetByID(ctx context.Context, productID string) (*catalog.Product, error) {
	return m.GetByIDFunc(ctx, productID)
}

func (m *catalogRepoMock) GetVariant(ctx context.Context, productID, variantKey string) (catalog.Variant, error) {
	return m.GetVariantFunc(ctx, productID, variantKey)
}

func (m *catalogRepoMock) Create(ctx context.Context, p *catalog.Product) error {
	return m.CreateFunc(ctx, p)
}

func (m *catalogRepoMock) Update(ctx context.Context, p *catalog.Product) error {
	return m.UpdateFunc(ctx, p)
}

func (m *catalogRepoMock) Delete(ctx context.Context, productID string) error {
	return m.DeleteFunc(ctx, productID)
}

func (m *catalogRepoMock) SetStock(ctx context.Context, productID, variantKey string, stockCount int) error {
	return m.SetStockFunc(ctx, productID, variantKey, stockCount)
}

type orderRepoMock struct {
	CreateTxFunc     func(ctx context.Context, tx pgx.Tx, o *order.Order) error
	GetByIDFunc      func(ctx context.Context, orderID string) (*order.Order, error)
	ListByUserFunc   func(ctx context.Context, userID string) ([]order.Order, error)
	ListAllFunc      func(ctx context.Context, limit int) ([]order.Order, error)
	UpdateStatusFunc func(ctx context.Context, orderID string, to order.Status) (*order.Order, error)
	StatsFunc        func(ctx context.Context) (order.DashboardStats, error)
}

func (m *orderRepoMock) CreateTx(ctx context.Context, tx pgx.Tx, o *order.Order) error {
	return m.CreateTxFunc(ctx, tx, o)
}

func (m *orderRepoMock) GetByID(ctx context.Context, orderID string) (*order.Order, error) {
	return m.GetByIDFunc(ctx, orderID)
}

func (m *orderRepoMock) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	return m.ListByUserFunc(ctx, userID)
}

func (m *orderRepoMock) ListAll(ctx context.Context, limit int) ([]order.Order, error) {
	return m.ListAllFunc(ctx, limit)
}

func (m *orderRepoMock) UpdateStatus(ctx context.Context, orderID string, to order.Status) (*order.Order, error) {
	return m.UpdateStatusFunc(ctx, orderID, to)
}

func (m *orderRepoMock) Stats(ctx context.Context) (order.DashboardStats, error) {
	return m.StatsFunc(ctx)
}

type checkoutMock struct {
	PlaceOrderFunc func(ctx context.Context, userID string, addr order.ShippingAddress, paymentMethod string) (*order.Order, error)
}

func (m *checkoutMock) PlaceOrder(ctx context.Context, userID string, addr order.ShippingAddress, paymentMethod string) (*order.Order, error) {
	return m.PlaceOrderFunc(ctx, userID, addr, paymentMethod)
}

type userRepoMock struct {
	CreateFunc     func(ctx context.Context, u *user.User) error
	GetByEmailFunc func(ctx context.Context, email string) (*user.User, error)
	GetByIDFunc    func(ctx context.Context, userID string) (*user.User, error)
}

func (m *userRepoMock) Create(ctx context.Context, u *user.User) error {
	return m.CreateFunc(ctx, u)
}

func (m *userRepoMock) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return m.GetByEmailFunc(ctx, email)
}

func (m *userRepoMock) GetByID(ctx context.Context, userID string) (*user.User, error) {
	return m.GetByIDFunc(ctx, userID)
}
