package client

import (
	"context"

	"github.com/frenow/rocketshoes-cart/internal/domain"
	"github.com/frenow/rocketshoes-cart/pkg/httpclient"
)

const catalogService = "catalog"

// CatalogClient reads product metadata from GET {baseURL}/products/{id}.
type CatalogClient struct {
	http    httpclient.Getter
	baseURL string
}

func NewCatalogClient(http httpclient.Getter, baseURL string) *CatalogClient {
	return &CatalogClient{http: http, baseURL: baseURL}
}

// GetProduct returns the catalog entry for productID. Amount is always zero;
// the cart owns quantities.
func (c *CatalogClient) GetProduct(ctx context.Context, productID int) (domain.Product, error) {
	var p domain.Product
	if err := getJSON(ctx, c.http, c.baseURL, "products", productID, catalogService, &p); err != nil {
		return domain.Product{}, err
	}
	p.Amount = 0
	return p, nil
}
