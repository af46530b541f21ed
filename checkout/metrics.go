package checkout

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pizzeria_orders_created_total",
			Help: "Orders persisted, by payment method",
		},
		[]string{"payment_method"},
	)

	orderValue = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pizzeria_order_total_cents",
			Help:    "Order totals in cents",
			Buckets: []float64{1000, 2000, 3000, 4000, 6000, 8000, 12000},
		},
	)

	statusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pizzeria_order_status_transitions_total",
			Help: "Order status changes, by target status",
		},
		[]string{"to"},
	)
)
