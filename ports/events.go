package ports

import "context"

// EventPublisher notifies other instances and downstream services.
type EventPublisher interface {
	PublishLogout(ctx context.Context, userID string, tokenID string) error
	PublishEnrollment(ctx context.Context, userID, courseID, orderID string) error
}
