package ports

import (
	"context"
	"time"

	"github.com/freshcart/marketplace/internal/core/domain"
)

// SecurityLog records audit events.
type SecurityLog interface {
	Record(ctx context.Context, event *domain.SecurityEvent) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.SecurityEvent, error)
}

// LoginThrottle counts failed logins per account within a sliding window.
type LoginThrottle interface {
	// RecordFailure returns the number of failures inside the window, including this one.
	RecordFailure(ctx context.Context, accountID string, window time.Duration) (int64, error)
	Reset(ctx context.Context, accountID string) error
}
