// Package store holds the cart state and its three mutations. Every
// mutation validates against the stock service where needed, persists the
// new cart as a snapshot, and only then makes it current.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/frenow/rocketshoes-cart/internal/domain"
	"github.com/frenow/rocketshoes-cart/internal/notify"
	apperrors "github.com/frenow/rocketshoes-cart/pkg/errors"
	"github.com/frenow/rocketshoes-cart/pkg/logger"
)

const tracerName = "github.com/frenow/rocketshoes-cart/internal/store"

const (
	opAdd    = "add_product"
	opRemove = "remove_product"
	opUpdate = "update_product_amount"
)

// StockService reports the quantity available for a product.
type StockService interface {
	GetStock(ctx context.Context, productID int) (domain.StockEntry, error)
}

// ProductCatalog returns product metadata.
type ProductCatalog interface {
	GetProduct(ctx context.Context, productID int) (domain.Product, error)
}

// SnapshotRepository persists the whole cart.
type SnapshotRepository interface {
	Load(ctx context.Context) (domain.Cart, error)
	Save(ctx context.Context, cart domain.Cart) error
}

// Subscriber receives every new cart after it has been persisted.
// Subscribers run in commit order and may read the store, but must not
// mutate it.
type Subscriber func(ctx context.Context, cart domain.Cart)

type subscription struct {
	id uint64
	fn Subscriber
}

// CartStore is the process-wide cart.
type CartStore struct {
	stock     StockService
	catalog   ProductCatalog
	snapshots SnapshotRepository
	notifier  notify.Notifier
	logger    *slog.Logger
	tracer    trace.Tracer

	// mu guards cart and serializes commits.
	mu   sync.Mutex
	cart domain.Cart

	// publishMu is taken before mu is released on commit so subscribers see
	// carts in commit order.
	publishMu sync.Mutex

	subMu  sync.RWMutex
	subs   []subscription
	nextID uint64
}

// New creates a store holding an empty cart. Call Load to seed it from the
// snapshot.
func New(stock StockService, catalog ProductCatalog, snapshots SnapshotRepository, notifier notify.Notifier, logger *slog.Logger) *CartStore {
	return &CartStore{
		stock:     stock,
		catalog:   catalog,
		snapshots: snapshots,
		notifier:  notifier,
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
		cart:      domain.Cart{},
	}
}

// Load replaces the in-memory cart with the persisted snapshot.
func (s *CartStore) Load(ctx context.Context) error {
	cart, err := s.snapshots.Load(ctx)
	if err != nil {
		return fmt.Errorf("load cart snapshot: %w", err)
	}

	s.mu.Lock()
	s.cart = cart.Clone()
	s.mu.Unlock()

	cartItems.Set(float64(cart.ItemCount()))
	s.logger.InfoContext(ctx, "cart loaded",
		slog.Int("products", len(cart)),
		slog.Int("item_count", cart.ItemCount()),
	)
	return nil
}

// Cart returns a copy of the current cart.
func (s *CartStore) Cart() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// Subscribe registers fn for every future cart. The returned func removes
// it and is safe to call more than once.
func (s *CartStore) Subscribe(fn Subscriber) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, fn: fn})

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		s.subs = slices.DeleteFunc(s.subs, func(sub subscription) bool { return sub.id == id })
	}
}

// AddProduct adds one unit of productID. An existing entry is incremented
// while the stock is strictly greater than its current amount; a new entry
// is created from the catalog with amount 1.
func (s *CartStore) AddProduct(ctx context.Context, productID int) (cart domain.Cart, err error) {
	ctx, end := s.startOp(ctx, opAdd, productID)
	defer func() { end(err) }()

	current := s.Cart()

	stock, err := s.stock.GetStock(ctx, productID)
	if err != nil {
		return nil, s.fail(ctx, productID, MsgAddFailed, apperrors.Upstream("stock lookup failed", err))
	}

	var next domain.Cart
	if existing, ok := current.Find(productID); ok {
		if stock.Amount <= existing.Amount {
			return nil, s.fail(ctx, productID, MsgStockInsufficient,
				apperrors.InsufficientStock(productID, existing.Amount+1, stock.Amount))
		}
		next = current.WithAmount(productID, existing.Amount+1)
	} else {
		product, err := s.catalog.GetProduct(ctx, productID)
		if err != nil {
			return nil, s.fail(ctx, productID, MsgAddFailed, apperrors.Upstream("product lookup failed", err))
		}
		product.ID = productID
		next = current.WithAppended(product)
	}

	if err := s.commit(ctx, next); err != nil {
		return nil, s.fail(ctx, productID, MsgAddFailed, err)
	}
	s.succeed(ctx, productID, MsgAddSuccess)
	return next.Clone(), nil
}

// RemoveProduct drops productID from the cart.
func (s *CartStore) RemoveProduct(ctx context.Context, productID int) (cart domain.Cart, err error) {
	ctx, end := s.startOp(ctx, opRemove, productID)
	defer func() { end(err) }()

	current := s.Cart()
	if current.Index(productID) < 0 {
		return nil, s.fail(ctx, productID, MsgRemoveFailed, notInCart(productID))
	}

	next := current.Without(productID)
	if err := s.commit(ctx, next); err != nil {
		return nil, s.fail(ctx, productID, MsgRemoveFailed, err)
	}
	s.succeed(ctx, productID, MsgRemoveSuccess)
	return next.Clone(), nil
}

// UpdateProductAmount sets productID's amount to exactly amount. An amount
// below 1 is ignored and returns the current cart without notifying.
func (s *CartStore) UpdateProductAmount(ctx context.Context, productID, amount int) (cart domain.Cart, err error) {
	if amount < 1 {
		operationsTotal.WithLabelValues(opUpdate, resultNoop).Inc()
		return s.Cart(), nil
	}

	ctx, end := s.startOp(ctx, opUpdate, productID)
	defer func() { end(err) }()

	current := s.Cart()

	stock, err := s.stock.GetStock(ctx, productID)
	if err != nil {
		return nil, s.fail(ctx, productID, MsgUpdateFailed, apperrors.Upstream("stock lookup failed", err))
	}
	if amount > stock.Amount {
		return nil, s.fail(ctx, productID, MsgStockInsufficient,
			apperrors.InsufficientStock(productID, amount, stock.Amount))
	}
	if current.Index(productID) < 0 {
		return nil, s.fail(ctx, productID, MsgUpdateFailed, notInCart(productID))
	}

	next := current.WithAmount(productID, amount)
	if err := s.commit(ctx, next); err != nil {
		return nil, s.fail(ctx, productID, MsgUpdateFailed, err)
	}
	s.succeed(ctx, productID, MsgUpdateSuccess)
	return next.Clone(), nil
}

// commit persists next, makes it current and hands it to subscribers. On a
// persistence error neither the snapshot nor the in-memory cart change.
func (s *CartStore) commit(ctx context.Context, next domain.Cart) error {
	s.mu.Lock()
	if err := s.snapshots.Save(ctx, next); err != nil {
		s.mu.Unlock()
		return apperrors.Upstream("persist cart snapshot", err)
	}
	s.cart = next.Clone()
	s.publishMu.Lock()
	s.mu.Unlock()
	defer s.publishMu.Unlock()

	cartItems.Set(float64(next.ItemCount()))

	s.subMu.RLock()
	subs := slices.Clone(s.subs)
	s.subMu.RUnlock()

	// The cart is committed; a caller that gives up now must not cut
	// subscribers short.
	ctx = context.WithoutCancel(ctx)
	for _, sub := range subs {
		sub.fn(ctx, next.Clone())
	}
	return nil
}

func (s *CartStore) startOp(ctx context.Context, op string, productID int) (context.Context, func(error)) {
	ctx = logger.WithOperation(ctx, op)
	ctx, span := s.tracer.Start(ctx, "CartStore."+op,
		trace.WithAttributes(attribute.Int("cart.product_id", productID)),
	)

	return ctx, func(err error) {
		result := resultSuccess
		if err != nil {
			result = resultFor(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, result)
		}
		operationsTotal.WithLabelValues(op, result).Inc()
		span.End()
	}
}

func resultFor(err error) string {
	switch {
	case errors.Is(err, ErrStockInsufficient):
		return resultStockInsufficient
	case errors.Is(err, ErrNotInCart):
		return resultNotInCart
	default:
		return resultUpstreamError
	}
}

func (s *CartStore) succeed(ctx context.Context, productID int, msg string) {
	ctx = context.WithoutCancel(ctx)
	logger.WithContext(ctx, s.logger).InfoContext(ctx, "cart updated", slog.Int("product_id", productID))
	s.notifier.Notify(ctx, notify.New(notify.LevelSuccess, msg, productID))
}

// fail surfaces the error notification and returns err unchanged.
func (s *CartStore) fail(ctx context.Context, productID int, msg string, err error) error {
	ctx = context.WithoutCancel(ctx)
	level := slog.LevelWarn
	if errors.Is(err, ErrUpstream) {
		level = slog.LevelError
	}
	logger.WithContext(ctx, s.logger).Log(ctx, level, "cart operation failed",
		slog.Int("product_id", productID),
		slog.String("error", err.Error()),
	)
	s.notifier.Notify(ctx, notify.New(notify.LevelError, msg, productID))
	return err
}
