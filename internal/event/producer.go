package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/suleman231/provisimarket-hub/internal/domain"
	pkgkafka "github.com/suleman231/provisimarket-hub/pkg/kafka"
	"github.com/suleman231/provisimarket-hub/pkg/logger"
)

// Topics for marketplace domain events.
var (
	TopicCartUpdated    = pkgkafka.Topic("cart", "updated")
	TopicProductRated   = pkgkafka.Topic("product", "rated")
	TopicCatalogUpdated = pkgkafka.Topic("catalog", "updated")
)

// Aggregate types.
const (
	AggregateTypeCart    = "cart"
	AggregateTypeProduct = "product"
	AggregateTypeCatalog = "catalog"
)

// SourceMarketplace identifies events emitted by this service.
const SourceMarketplace = "provisimarket-hub"

// Catalog change actions.
const (
	ActionStoreUpdated   = "store_updated"
	ActionProductUpdated = "product_updated"
	ActionProductAdded   = "product_added"
	ActionMediaApplied   = "media_applied"
)

// CartUpdatedData is the payload of a cart.updated event.
type CartUpdatedData struct {
	SessionID string   `json:"session_id"`
	LineCount int      `json:"line_count"`
	Total     string   `json:"total"`
	Products  []string `json:"product_ids"`
}

// ProductRatedData is the payload of a product.rated event.
type ProductRatedData struct {
	SessionID   string  `json:"session_id"`
	StoreID     string  `json:"store_id,omitempty"`
	ProductID   string  `json:"product_id"`
	Stars       int     `json:"stars"`
	Rating      float64 `json:"rating"`
	RatingCount int     `json:"rating_count"`
}

// CatalogChange describes one catalog mutation.
type CatalogChange struct {
	Action    string `json:"action"`
	StoreID   string `json:"store_id"`
	ProductID string `json:"product_id,omitempty"`
}

// CatalogUpdatedData is the payload of a catalog.updated event.
type CatalogUpdatedData struct {
	SessionID string `json:"session_id"`
	CatalogChange
}

// Publisher emits marketplace domain events. Callers treat failures as
// non-fatal.
type Publisher interface {
	PublishCartUpdated(ctx context.Context, sessionID string, cart domain.Cart) error
	PublishProductRated(ctx context.Context, sessionID string, ref domain.ProductRef, stars int, rated []domain.Product) error
	PublishCatalogUpdated(ctx context.Context, sessionID string, change CatalogChange) error
}

// Producer publishes marketplace events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a Kafka-backed Publisher.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

// PublishCartUpdated publishes a cart.updated event keyed by session.
func (p *Producer) PublishCartUpdated(ctx context.Context, sessionID string, cart domain.Cart) error {
	ids := make([]string, len(cart.Lines))
	for i, l := range cart.Lines {
		ids[i] = l.Product.ID
	}
	data := CartUpdatedData{
		SessionID: sessionID,
		LineCount: cart.Count(),
		Total:     cart.Total().StringFixed(2),
		Products:  ids,
	}
	return p.publish(ctx, TopicCartUpdated, sessionID, AggregateTypeCart, data)
}

// PublishProductRated publishes one product.rated event per updated product.
func (p *Producer) PublishProductRated(ctx context.Context, sessionID string, ref domain.ProductRef, stars int, rated []domain.Product) error {
	for _, prod := range rated {
		data := ProductRatedData{
			SessionID:   sessionID,
			StoreID:     ref.StoreID,
			ProductID:   prod.ID,
			Stars:       stars,
			Rating:      prod.Rating,
			RatingCount: prod.RatingCount,
		}
		if err := p.publish(ctx, TopicProductRated, prod.ID, AggregateTypeProduct, data); err != nil {
			return err
		}
	}
	return nil
}

// PublishCatalogUpdated publishes a catalog.updated event keyed by session.
func (p *Producer) PublishCatalogUpdated(ctx context.Context, sessionID string, change CatalogChange) error {
	data := CatalogUpdatedData{SessionID: sessionID, CatalogChange: change}
	return p.publish(ctx, TopicCatalogUpdated, sessionID, AggregateTypeCatalog, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	evt, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceMarketplace, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

// Noop discards every event. It is used when Kafka is disabled.
type Noop struct{}

func (Noop) PublishCartUpdated(context.Context, string, domain.Cart) error { return nil }

func (Noop) PublishProductRated(context.Context, string, domain.ProductRef, int, []domain.Product) error {
	return nil
}

func (Noop) PublishCatalogUpdated(context.Context, string, CatalogChange) error { return nil }
