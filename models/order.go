package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusPreparing  OrderStatus = "preparing"
	StatusDelivering OrderStatus = "delivering"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

var ErrInvalidTransition = errors.New("invalid order status transition")

// statusFlow is the forward path an order takes through the kitchen.
var statusFlow = []OrderStatus{
	StatusPending,
	StatusConfirmed,
	StatusPreparing,
	StatusDelivering,
	StatusDelivered,
}

func (s OrderStatus) IsValid() bool {
	return s == StatusCancelled || s.flowIndex() >= 0
}

func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func (s OrderStatus) flowIndex() int {
	for i, st := range statusFlow {
		if st == s {
			return i
		}
	}
	return -1
}

// NextStatus returns the single forward step from s, if any.
func (s OrderStatus) NextStatus() (OrderStatus, bool) {
	if s.IsTerminal() {
		return "", false
	}
	i := s.flowIndex()
	if i < 0 || i+1 >= len(statusFlow) {
		return "", false
	}
	return statusFlow[i+1], true
}

// AvailableTransitions lists the actions offered to an admin for an order in
// status s.
func (s OrderStatus) AvailableTransitions() []OrderStatus {
	if s.IsTerminal() || !s.IsValid() {
		return nil
	}
	var out []OrderStatus
	if next, ok := s.NextStatus(); ok {
		out = append(out, next)
	}
	return append(out, StatusCancelled)
}

func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, st := range s.AvailableTransitions() {
		if st == to {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentPayPal PaymentMethod = "paypal"
)

func (p PaymentMethod) IsValid() bool {
	return p == PaymentCash || p == PaymentPayPal
}

type Customer struct {
	FirstName string `db:"first_name" json:"firstName"`
	LastName  string `db:"last_name" json:"lastName"`
	Email     string `db:"email" json:"email"`
	Phone     string `db:"phone" json:"phone"`
}

type DeliveryAddress struct {
	Street      string `db:"street" json:"street"`
	HouseNumber string `db:"house_number" json:"houseNumber"`
	PostalCode  string `db:"postal_code" json:"postalCode"`
	City        string `db:"city" json:"city"`
	Notes       string `db:"notes" json:"notes,omitempty"`
}

type Order struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	OrderNumber   string          `db:"order_number" json:"orderNumber"`
	Customer      Customer        `db:"-" json:"customer"`
	Address       DeliveryAddress `db:"-" json:"address"`
	PaymentMethod PaymentMethod   `db:"payment_method" json:"paymentMethod"`
	Items         []OrderItem     `db:"-" json:"items"`
	Subtotal      int64           `db:"subtotal" json:"subtotal"`
	DeliveryFee   int64           `db:"delivery_fee" json:"deliveryFee"`
	Discount      int64           `db:"discount" json:"discount"`
	Total         int64           `db:"total" json:"total"`
	Status        OrderStatus     `db:"status" json:"status"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}

type OrderItem struct {
	ID           uuid.UUID `db:"id" json:"id"`
	OrderID      uuid.UUID `db:"order_id" json:"orderId"`
	ProductID    int64     `db:"product_id" json:"productId"`
	ProductName  string    `db:"product_name" json:"productName"`
	Quantity     int       `db:"quantity" json:"quantity"`
	PriceAtOrder int64     `db:"price_at_order" json:"priceAtOrder"`
	Variant      string    `db:"variant" json:"variant,omitempty"`
	Extras       []string  `db:"extras" json:"extras,omitempty"`
}
