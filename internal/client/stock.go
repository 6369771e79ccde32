package client

import (
	"context"
	"fmt"

	"github.com/frenow/rocketshoes-cart/internal/domain"
	"github.com/frenow/rocketshoes-cart/pkg/httpclient"
)

const stockService = "stock"

// StockClient reads available quantities from GET {baseURL}/stock/{id}.
type StockClient struct {
	http    httpclient.Getter
	baseURL string
}

// NewStockClient creates a stock client. http is usually a
// *httpclient.CircuitBreakerClient.
func NewStockClient(http httpclient.Getter, baseURL string) *StockClient {
	return &StockClient{http: http, baseURL: baseURL}
}

// GetStock returns the stock entry for productID.
func (c *StockClient) GetStock(ctx context.Context, productID int) (domain.StockEntry, error) {
	var entry domain.StockEntry
	if err := getJSON(ctx, c.http, c.baseURL, "stock", productID, stockService, &entry); err != nil {
		return domain.StockEntry{}, err
	}
	if entry.Amount < 0 {
		return domain.StockEntry{}, fmt.Errorf("stock: product %d has negative amount %d", productID, entry.Amount)
	}
	return entry, nil
}
