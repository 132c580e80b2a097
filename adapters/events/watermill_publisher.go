package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const (
	// LogoutTopic carries credential revocations to other instances.
	LogoutTopic = "auth.logout"

	// EnrollmentTopic notifies downstream services of confirmed purchases.
	EnrollmentTopic = "enrollment.created"
)

// LogoutEvent is published when a credential is explicitly revoked.
type LogoutEvent struct {
	UserID  string `json:"user_id"`
	TokenID string `json:"token_id"`
}

// EnrollmentEvent is published when a payment-gated enrollment is created.
type EnrollmentEvent struct {
	UserID   string `json:"user_id"`
	CourseID string `json:"course_id"`
	OrderID  string `json:"order_id"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishLogout publishes a logout event.
func (p *WatermillPublisher) PublishLogout(ctx context.Context, userID string, tokenID string) error {
	return p.publish(LogoutTopic, tokenID, LogoutEvent{UserID: userID, TokenID: tokenID})
}

// PublishEnrollment publishes an enrollment-created event.
func (p *WatermillPublisher) PublishEnrollment(ctx context.Context, userID, courseID, orderID string) error {
	return p.publish(EnrollmentTopic, orderID, EnrollmentEvent{UserID: userID, CourseID: courseID, OrderID: orderID})
}

func (p *WatermillPublisher) publish(topic, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if key == "" {
		key = uuid.New().String()
	}
	msg := message.NewMessage(key, payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
