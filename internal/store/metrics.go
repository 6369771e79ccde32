package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultSuccess           = "success"
	resultNoop              = "noop"
	resultStockInsufficient = "stock_insufficient"
	resultNotInCart         = "not_in_cart"
	resultUpstreamError     = "upstream_error"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_operations_total",
			Help: "Cart mutations by operation and result",
		},
		[]string{"operation", "result"},
	)

	cartItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cart_items",
		Help: "Sum of product amounts in the cart",
	})
)
