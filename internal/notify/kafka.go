package notify

import (
	"context"
	"log/slog"
	"strconv"

	pkgkafka "github.com/frenow/rocketshoes-cart/pkg/kafka"
)

const (
	TopicCartNotification = "ecommerce.cart.notification"
	EventTypeNotification = "cart.notification"
)

// KafkaNotifier publishes each notification as an event on
// TopicCartNotification, keyed by the cart id.
type KafkaNotifier struct {
	publisher pkgkafka.Publisher
	cartID    string
	source    string
	logger    *slog.Logger
}

func NewKafkaNotifier(publisher pkgkafka.Publisher, cartID, source string, logger *slog.Logger) *KafkaNotifier {
	return &KafkaNotifier{publisher: publisher, cartID: cartID, source: source, logger: logger}
}

func (k *KafkaNotifier) Notify(ctx context.Context, n Notification) {
	evt, err := pkgkafka.NewEvent(EventTypeNotification, k.cartID, k.source, n)
	if err != nil {
		k.logger.ErrorContext(ctx, "failed to build notification event", slog.String("error", err.Error()))
		return
	}
	evt.WithMetadata("level", string(n.Level)).
		WithMetadata("product_id", strconv.Itoa(n.ProductID))

	if err := k.publisher.Publish(ctx, TopicCartNotification, evt); err != nil {
		k.logger.WarnContext(ctx, "failed to publish notification",
			slog.String("notification_id", n.ID),
			slog.String("error", err.Error()),
		)
	}
}
