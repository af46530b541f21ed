// Package events announces order lifecycle changes to the kitchen and
// notification consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ray-remotestate/pizzeria/models"
)

const (
	exchangeName        = "pizzeria.orders"
	routingCreated      = "order.created"
	routingStatusChange = "order.status_changed"
	queueName           = "pizzeria.kitchen.q"
)

type OrderCreated struct {
	OrderID     string             `json:"orderId"`
	OrderNumber string             `json:"orderNumber"`
	Total       int64              `json:"total"`
	Items       []models.OrderItem `json:"items"`
	CreatedAt   time.Time          `json:"createdAt"`
}

type StatusChanged struct {
	OrderID string             `json:"orderId"`
	From    models.OrderStatus `json:"from"`
	To      models.OrderStatus `json:"to"`
	At      time.Time          `json:"at"`
}

type Publisher interface {
	PublishCreated(ctx context.Context, msg OrderCreated) error
	PublishStatusChanged(ctx context.Context, msg StatusChanged) error
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) PublishCreated(context.Context, OrderCreated) error        { return nil }
func (Nop) PublishStatusChanged(context.Context, StatusChanged) error { return nil }

type RabbitPublisher struct {
	ch *amqp.Channel
}

// NewRabbitPublisher declares the topic exchange and the kitchen queue bound
// to every order event.
func NewRabbitPublisher(ch *amqp.Channel) (*RabbitPublisher, error) {
	if err := ch.ExchangeDeclare(
		exchangeName,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, "order.*", exchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("queue bind: %w", err)
	}

	return &RabbitPublisher{ch: ch}, nil
}

func (p *RabbitPublisher) PublishCreated(ctx context.Context, msg OrderCreated) error {
	return p.publish(ctx, routingCreated, msg)
}

func (p *RabbitPublisher) PublishStatusChanged(ctx context.Context, msg StatusChanged) error {
	return p.publish(ctx, routingStatusChange, msg)
}

func (p *RabbitPublisher) publish(ctx context.Context, key string, msg any) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, exchangeName, key, false, false, pub); err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	return nil
}
