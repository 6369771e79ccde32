// Package client holds the HTTP clients for the stock service and the
// product catalog. Both speak plain JSON over GET.
package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/frenow/rocketshoes-cart/pkg/httpclient"
)

func getJSON(ctx context.Context, http httpclient.Getter, baseURL, resource string, id int, service string, dst any) error {
	u := strings.TrimRight(baseURL, "/") + "/" + resource + "/" + url.PathEscape(strconv.Itoa(id))

	resp, err := http.Get(ctx, u)
	if err != nil {
		return fmt.Errorf("%s: get %s/%d: %w", service, resource, id, err)
	}
	return httpclient.DecodeJSON(resp, service, dst)
}
