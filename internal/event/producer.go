package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/A3Manav/jewellery-wishlist-service/internal/domain"
	pkgkafka "github.com/A3Manav/jewellery-wishlist-service/pkg/kafka"
)

// Kafka topics for wishlist domain events.
const (
	TopicWishlistUpdated = "storefront.wishlist.updated"
	TopicSessionChanged  = "storefront.session.changed"
	TopicNotification    = "storefront.wishlist.notification"
)

const (
	aggregateTypeSession = "session"
	sourceService        = "wishlist-service"
)

// WishlistUpdatedData is the payload for a wishlist.updated event.
type WishlistUpdatedData struct {
	SessionID  string   `json:"session_id"`
	UserID     string   `json:"user_id,omitempty"`
	ProductIDs []string `json:"product_ids"`
	ItemCount  int      `json:"item_count"`
}

// SessionChangedData is the payload for a session.changed event.
type SessionChangedData struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id,omitempty"`
	State     string `json:"state"` // "anonymous" or "authenticated"
}

// NotificationData is the payload for a user-facing notification event.
type NotificationData struct {
	SessionID string `json:"session_id"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// Producer publishes wishlist domain events.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates an event producer for the wishlist service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

// PublishWishlistUpdated publishes the current id set for a session.
func (p *Producer) PublishWishlistUpdated(ctx context.Context, sessionID string, user *domain.User, ids domain.Wishlist) error {
	data := WishlistUpdatedData{
		SessionID:  sessionID,
		ProductIDs: ids,
		ItemCount:  len(ids),
	}
	if user != nil {
		data.UserID = user.ID
	}

	ev, err := pkgkafka.NewEvent(TopicWishlistUpdated, sessionID, aggregateTypeSession, sourceService, data)
	if err != nil {
		return fmt.Errorf("create wishlist.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicWishlistUpdated, ev); err != nil {
		return fmt.Errorf("publish wishlist.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published wishlist.updated event",
		slog.String("session_id", sessionID),
		slog.Int("item_count", len(ids)),
	)

	return nil
}

// PublishSessionChanged publishes a login/logout transition.
func (p *Producer) PublishSessionChanged(ctx context.Context, sessionID string, user *domain.User) error {
	data := SessionChangedData{SessionID: sessionID, State: "anonymous"}
	if user != nil {
		data.UserID = user.ID
		data.State = "authenticated"
	}

	ev, err := pkgkafka.NewEvent(TopicSessionChanged, sessionID, aggregateTypeSession, sourceService, data)
	if err != nil {
		return fmt.Errorf("create session.changed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicSessionChanged, ev); err != nil {
		return fmt.Errorf("publish session.changed event: %w", err)
	}

	return nil
}

// PublishNotification publishes a transient user-facing notification.
func (p *Producer) PublishNotification(ctx context.Context, sessionID, level, message string) error {
	data := NotificationData{SessionID: sessionID, Level: level, Message: message}

	ev, err := pkgkafka.NewEvent(TopicNotification, sessionID, aggregateTypeSession, sourceService, data)
	if err != nil {
		return fmt.Errorf("create notification event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicNotification, ev); err != nil {
		return fmt.Errorf("publish notification event: %w", err)
	}

	return nil
}
