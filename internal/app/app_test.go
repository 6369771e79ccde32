package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frenow/rocketshoes-cart/internal/config"
	"github.com/frenow/rocketshoes-cart/internal/domain"
)

// newFakeAPI serves /stock/{id} and /products/{id} like the storefront's
// json-server: product 1 has 2 units in stock, product 2 has 1.
func newFakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	stock := map[string]string{"1": `{"id":1,"amount":2}`, "2": `{"id":2,"amount":1}`}
	products := map[string]string{
		"1": `{"id":1,"title":"Tênis de Caminhada Leve Confortável","price":179.9,"image":"1.jpg"}`,
		"2": `{"id":2,"title":"Tênis VR Caminhada Confortável","price":139.9,"image":"2.jpg"}`,
	}

	mux := http.NewServeMux()
	serve := func(table map[string]string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			body, ok := table[r.PathValue("id")]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				_, _ = io.WriteString(w, `{}`)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, body)
		}
	}
	mux.HandleFunc("GET /stock/{id}", serve(stock))
	mux.HandleFunc("GET /products/{id}", serve(products))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(apiURL string) *config.Config {
	return &config.Config{
		Environment:        "test",
		LogLevel:           "error",
		HTTPPort:           8003,
		CORSAllowedOrigins: []string{"*"},
		StorageBackend:     config.BackendMemory,
		StorageKey:         "@RocketShoes:cart",
		StockAPIURL:        apiURL,
		CatalogAPIURL:      apiURL,
		UpstreamTimeoutMS:  1000,
		UpstreamMaxRetries: 0,
		OTELSampleRate:     1,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func call(t *testing.T, h http.Handler, method, path, body string) (int, domain.Cart) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env struct {
		Data struct {
			Items domain.Cart `json:"items"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env.Data.Items
}

func TestApp_CartFlowWithMemoryStorage(t *testing.T) {
	api := newFakeAPI(t)
	a, err := NewApp(context.Background(), testConfig(api.URL), testLogger())
	require.NoError(t, err)
	t.Cleanup(a.close)
	h := a.Handler()

	code, cart := call(t, h, http.MethodPost, "/api/v1/cart/items", `{"product_id":1}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, domain.Cart{{ID: 1, Title: "Tênis de Caminhada Leve Confortável", Price: 179.9, Image: "1.jpg", Amount: 1}}, cart)

	code, cart = call(t, h, http.MethodPost, "/api/v1/cart/items", `{"product_id":1}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, cart[0].Amount)

	// Stock for product 1 is 2: a third unit is refused.
	code, _ = call(t, h, http.MethodPost, "/api/v1/cart/items", `{"product_id":1}`)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = call(t, h, http.MethodPost, "/api/v1/cart/items", `{"product_id":2}`)
	require.Equal(t, http.StatusOK, code)

	code, _ = call(t, h, http.MethodPut, "/api/v1/cart/items/2", `{"amount":3}`)
	assert.Equal(t, http.StatusConflict, code)

	code, cart = call(t, h, http.MethodPut, "/api/v1/cart/items/1", `{"amount":0}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, cart[0].Amount)

	code, cart = call(t, h, http.MethodDelete, "/api/v1/cart/items/1", "")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, cart, 1)
	assert.Equal(t, 2, cart[0].ID)

	code, _ = call(t, h, http.MethodDelete, "/api/v1/cart/items/1", "")
	assert.Equal(t, http.StatusNotFound, code)

	// Unknown product: the catalog answers 404, which is an upstream failure.
	code, _ = call(t, h, http.MethodPost, "/api/v1/cart/items", `{"product_id":99}`)
	assert.Equal(t, http.StatusBadGateway, code)

	assert.Equal(t, domain.Cart{{ID: 2, Title: "Tênis VR Caminhada Confortável", Price: 139.9, Image: "2.jpg", Amount: 1}}, a.Store().Cart())
}

func TestApp_RedisSnapshotSurvivesRestart(t *testing.T) {
	api := newFakeAPI(t)
	mr := miniredis.RunT(t)

	cfg := testConfig(api.URL)
	cfg.StorageBackend = config.BackendRedis
	cfg.RedisAddr = mr.Addr()

	first, err := NewApp(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	code, _ := call(t, first.Handler(), http.MethodPost, "/api/v1/cart/items", `{"product_id":2}`)
	require.Equal(t, http.StatusOK, code)
	first.close()

	raw, err := mr.Get("@RocketShoes:cart")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":2,"title":"Tênis VR Caminhada Confortável","price":139.9,"image":"2.jpg","amount":1}]`, raw)

	second, err := NewApp(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	t.Cleanup(second.close)
	assert.Equal(t, 1, second.Store().Cart().ItemCount())
}

func TestApp_CorruptSnapshotFailsStartup(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("@RocketShoes:cart", "{not json"))

	cfg := testConfig("http://localhost:3333")
	cfg.StorageBackend = config.BackendRedis
	cfg.RedisAddr = mr.Addr()

	_, err := NewApp(context.Background(), cfg, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load cart snapshot")
}

func TestApp_ReadinessReportsStorage(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig("http://localhost:3333")
	cfg.StorageBackend = config.BackendRedis
	cfg.RedisAddr = mr.Addr()

	a, err := NewApp(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	t.Cleanup(a.close)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	mr.Close()
	rec = httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
