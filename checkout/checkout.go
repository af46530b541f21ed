// Package checkout turns a cart into a persisted order and owns the order
// status lifecycle afterwards.
package checkout

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/pizzeria/cart"
	"github.com/ray-remotestate/pizzeria/events"
	"github.com/ray-remotestate/pizzeria/models"
)

var (
	ErrEmptyCart  = errors.New("cart is empty")
	ErrInProgress = errors.New("an order with this idempotency key is being processed")
)

type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, status models.OrderStatus, limit int) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) error
}

type ProductLookup interface {
	Product(ctx context.Context, id int64) (models.Product, error)
}

type IdempotencyStore interface {
	TryLock(ctx context.Context, key string) (bool, error)
	Unlock(ctx context.Context, key string) error
	Remember(ctx context.Context, key, value string) error
	Recall(ctx context.Context, key string) (string, bool, error)
}

type ItemRequest struct {
	ProductID    int64    `json:"productId"`
	Quantity     int      `json:"quantity"`
	PriceAtOrder int64    `json:"priceAtOrder"`
	Variant      string   `json:"variant,omitempty"`
	Extras       []string `json:"extras,omitempty"`
}

type Request struct {
	Customer      models.Customer        `json:"customer"`
	Address       models.DeliveryAddress `json:"address"`
	PaymentMethod models.PaymentMethod   `json:"paymentMethod"`
	Items         []ItemRequest          `json:"items"`
	// TotalAmount is what the client showed the customer. When set it must
	// match the recomputed total.
	TotalAmount *int64 `json:"totalAmount,omitempty"`
}

type Result struct {
	OrderID     uuid.UUID `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	Total       int64     `json:"total"`
}

// Fees configures the delivery fee. A zero threshold never waives the fee.
type Fees struct {
	DeliveryFee           int64
	FreeDeliveryThreshold int64
}

type Service struct {
	orders   OrderRepository
	products ProductLookup
	events   events.Publisher
	idem     IdempotencyStore
	fees     Fees

	now    func() time.Time
	random io.Reader
}

// NewService wires the checkout. idem may be nil to disable idempotency keys
// and pub may be nil when no broker is configured.
func NewService(orders OrderRepository, products ProductLookup, pub events.Publisher, idem IdempotencyStore, fees Fees) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{
		orders:   orders,
		products: products,
		events:   pub,
		idem:     idem,
		fees:     fees,
		now:      time.Now,
		random:   rand.Reader,
	}
}

// Totals returns delivery fee, discount and total for a subtotal.
func (s *Service) Totals(subtotal int64) (fee, discount, total int64) {
	fee = s.fees.DeliveryFee
	if s.fees.FreeDeliveryThreshold > 0 && subtotal >= s.fees.FreeDeliveryThreshold {
		fee = 0
	}
	return fee, 0, subtotal + fee
}

// ItemsFromCart snapshots cart lines into order items.
func ItemsFromCart(c *cart.Cart) []ItemRequest {
	lines := c.Lines()
	items := make([]ItemRequest, 0, len(lines))
	for _, l := range lines {
		items = append(items, ItemRequest{
			ProductID:    l.ProductID,
			Quantity:     l.Quantity,
			PriceAtOrder: l.UnitPrice,
			Variant:      l.Variant,
			Extras:       l.Extras,
		})
	}
	return items
}

// CreateOrder validates and persists an order. With a non-empty
// idempotencyKey a repeated submission returns the first result.
func (s *Service) CreateOrder(ctx context.Context, req Request, idempotencyKey string) (Result, error) {
	if s.idem == nil || idempotencyKey == "" {
		return s.createOrder(ctx, req)
	}

	if res, ok, err := s.recall(ctx, idempotencyKey); err != nil || ok {
		return res, err
	}

	locked, err := s.idem.TryLock(ctx, idempotencyKey)
	if err != nil {
		return Result{}, fmt.Errorf("lock idempotency key: %w", err)
	}
	if !locked {
		return Result{}, ErrInProgress
	}

	res, err := s.createOrder(ctx, req)
	if err != nil {
		if unlockErr := s.idem.Unlock(ctx, idempotencyKey); unlockErr != nil {
			logrus.WithError(unlockErr).Warn("failed to release idempotency key")
		}
		return Result{}, err
	}

	raw, _ := json.Marshal(res)
	if err := s.idem.Remember(ctx, idempotencyKey, string(raw)); err != nil {
		logrus.WithError(err).Warn("failed to remember idempotency key")
	}
	return res, nil
}

func (s *Service) createOrder(ctx context.Context, req Request) (Result, error) {
	errs := validate(req)
	if errs == nil {
		errs = ValidationErrors{}
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	var subtotal int64
	for i, it := range req.Items {
		p, err := s.products.Product(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrUnavailable) {
				errs[fmt.Sprintf("items[%d].productId", i)] = err.Error()
				continue
			}
			return Result{}, fmt.Errorf("look up product %d: %w", it.ProductID, err)
		}
		items = append(items, models.OrderItem{
			ProductID:    p.ID,
			ProductName:  p.Name,
			Quantity:     it.Quantity,
			PriceAtOrder: it.PriceAtOrder,
			Variant:      it.Variant,
			Extras:       append([]string{}, it.Extras...),
		})
		subtotal += it.PriceAtOrder * int64(it.Quantity)
	}

	fee, discount, total := s.Totals(subtotal)
	if len(errs) == 0 && req.TotalAmount != nil && *req.TotalAmount != total {
		errs["totalAmount"] = fmt.Sprintf("does not match the order total %d", total)
	}
	if len(errs) > 0 {
		return Result{}, errs
	}

	number, err := s.orderNumber()
	if err != nil {
		return Result{}, err
	}

	order := &models.Order{
		OrderNumber:   number,
		Customer:      trimCustomer(req.Customer),
		Address:       trimAddress(req.Address),
		PaymentMethod: req.PaymentMethod,
		Items:         items,
		Subtotal:      subtotal,
		DeliveryFee:   fee,
		Discount:      discount,
		Total:         total,
		Status:        models.StatusPending,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return Result{}, fmt.Errorf("create order: %w", err)
	}

	ordersCreated.WithLabelValues(string(order.PaymentMethod)).Inc()
	orderValue.Observe(float64(order.Total))

	logrus.WithFields(logrus.Fields{
		"order_number": order.OrderNumber,
		"total":        order.Total,
		"items":        len(order.Items),
	}).Info("order created")

	if err := s.events.PublishCreated(ctx, events.OrderCreated{
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		Total:       order.Total,
		Items:       order.Items,
		CreatedAt:   order.CreatedAt,
	}); err != nil {
		logrus.WithError(err).WithField("order_number", order.OrderNumber).Error("failed to publish order.created")
	}

	return Result{OrderID: order.ID, OrderNumber: order.OrderNumber, Total: order.Total}, nil
}

// recall returns the order remembered under an idempotency key, if any.
func (s *Service) recall(ctx context.Context, key string) (Result, bool, error) {
	if s.idem == nil || key == "" {
		return Result{}, false, nil
	}
	raw, ok, err := s.idem.Recall(ctx, key)
	if err != nil {
		return Result{}, false, fmt.Errorf("recall idempotency key: %w", err)
	}
	if !ok {
		return Result{}, false, nil
	}
	var res Result
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return Result{}, false, fmt.Errorf("decode remembered order: %w", err)
	}
	return res, true, nil
}

// CheckoutCart submits the session cart and clears it on success. The cart
// is left untouched on any failure so the customer can retry.
func (s *Service) CheckoutCart(ctx context.Context, store cart.Store, sessionID string, req Request, idempotencyKey string) (Result, error) {
	// A retry after a lost response finds the cart already cleared.
	if res, ok, err := s.recall(ctx, idempotencyKey); err != nil || ok {
		return res, err
	}

	c, err := store.Load(ctx, sessionID)
	if err != nil {
		return Result{}, fmt.Errorf("load cart: %w", err)
	}
	if c.IsEmpty() {
		return Result{}, ErrEmptyCart
	}

	req.Items = ItemsFromCart(c)
	res, err := s.CreateOrder(ctx, req, idempotencyKey)
	if err != nil {
		return Result{}, err
	}

	c.Dispatch(cart.ClearAction{})
	if err := store.Save(ctx, sessionID, c); err != nil {
		logrus.WithError(err).WithField("session", sessionID).Warn("failed to clear cart after checkout")
	}
	return res, nil
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// orderNumber renders ORD-<unix millis>-<9 random base36 chars>.
func (s *Service) orderNumber() (string, error) {
	out := make([]byte, 0, 9)
	b := make([]byte, 1)
	for len(out) < cap(out) {
		if _, err := io.ReadFull(s.random, b); err != nil {
			return "", fmt.Errorf("generate order number: %w", err)
		}
		// 252 is the largest multiple of 36 below 256.
		if b[0] >= 252 {
			continue
		}
		out = append(out, base36[int(b[0])%len(base36)])
	}
	return fmt.Sprintf("ORD-%d-%s", s.now().UnixMilli(), out), nil
}

func trimCustomer(c models.Customer) models.Customer {
	return models.Customer{
		FirstName: strings.TrimSpace(c.FirstName),
		LastName:  strings.TrimSpace(c.LastName),
		Email:     strings.TrimSpace(c.Email),
		Phone:     strings.TrimSpace(c.Phone),
	}
}

func trimAddress(a models.DeliveryAddress) models.DeliveryAddress {
	return models.DeliveryAddress{
		Street:      strings.TrimSpace(a.Street),
		HouseNumber: strings.TrimSpace(a.HouseNumber),
		PostalCode:  strings.TrimSpace(a.PostalCode),
		City:        strings.TrimSpace(a.City),
		Notes:       strings.TrimSpace(a.Notes),
	}
}
