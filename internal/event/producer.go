package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frenow/rocketshoes-cart/internal/domain"
	pkgkafka "github.com/frenow/rocketshoes-cart/pkg/kafka"
)

// Kafka topic for cart domain events.
const TopicCartUpdated = "ecommerce.cart.updated"

const EventTypeCartUpdated = "cart.updated"

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	Items     []domain.Product `json:"items"`
	ItemCount int              `json:"item_count"`
	Subtotal  float64          `json:"subtotal"`
}

// Producer publishes cart domain events to Kafka.
type Producer struct {
	publisher pkgkafka.Publisher
	cartID    string
	source    string
	logger    *slog.Logger
}

// NewProducer creates a producer whose events are keyed by cartID.
func NewProducer(publisher pkgkafka.Publisher, cartID, source string, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		cartID:    cartID,
		source:    source,
		logger:    logger,
	}
}

// PublishCartUpdated publishes the full content of cart.
func (p *Producer) PublishCartUpdated(ctx context.Context, cart domain.Cart) error {
	data := CartUpdatedData{
		Items:     cart.Clone(),
		ItemCount: cart.ItemCount(),
		Subtotal:  cart.Subtotal(),
	}

	evt, err := pkgkafka.NewEvent(EventTypeCartUpdated, p.cartID, p.source, data)
	if err != nil {
		return fmt.Errorf("create cart.updated event: %w", err)
	}
	if err := p.publisher.Publish(ctx, TopicCartUpdated, evt); err != nil {
		return fmt.Errorf("publish cart.updated event: %w", err)
	}
	return nil
}

// OnCartChanged is a store subscriber: it publishes and logs failures, since
// the mutation that produced cart has already been committed.
func (p *Producer) OnCartChanged(ctx context.Context, cart domain.Cart) {
	if err := p.PublishCartUpdated(ctx, cart); err != nil {
		p.logger.WarnContext(ctx, "failed to publish cart updated event",
			slog.Int("item_count", cart.ItemCount()),
			slog.String("error", err.Error()),
		)
	}
}
