package order

import "time"

// Item is one line of a placed order. Price and ProductName are resolved
// server-side at order time; nothing here comes from the client's cart
// snapshot.
type Item struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	VariantKey  string  `json:"variantKey"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

type ShippingAddress struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"phone"`
}

// Order is immutable once created except for status transitions, which are
// admin-only and go through Repository.UpdateStatus.
type Order struct {
	ID              string          `json:"orderId"`
	UserID          string          `json:"userId"`
	Items           []Item          `json:"orderItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	TotalPrice      float64         `json:"totalPrice"`
	Status          Status          `json:"status"`
	IsPaid          bool            `json:"isPaid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	IsDelivered     bool            `json:"isDelivered"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

const (
	PaymentCard = "card"
	PaymentUPI  = "upi"
	PaymentCOD  = "cod"
)

// ImmediateSettlement reports whether the payment method captures payment
// at order time. Cash on delivery settles later.
func ImmediateSettlement(paymentMethod string) bool {
	return paymentMethod == PaymentCard || paymentMethod == PaymentUPI
}

func ValidPaymentMethod(m string) bool {
	return m == PaymentCard || m == PaymentUPI || m == PaymentCOD
}
