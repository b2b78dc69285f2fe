package service

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/freshcart/marketplace/internal/core/domain"
	"github.com/freshcart/marketplace/internal/core/ports"
)

// recordSecurityEvent writes an audit entry. Failures are logged, never returned.
func recordSecurityEvent(ctx context.Context, audit ports.SecurityLog, log zerolog.Logger, userID, event string, details map[string]string) {
	if audit == nil {
		return
	}
	ev := &domain.SecurityEvent{
		ID:        uuid.New().String(),
		UserID:    userID,
		Event:     event,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
	if err := audit.Record(ctx, ev); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Str("event", event).Msg("failed to record security event")
	}
}

func itoa64(n int64) string { return strconv.FormatInt(n, 10) }

func formatScore(f float64) string { return strconv.FormatFloat(f, 'f', 1, 64) }
