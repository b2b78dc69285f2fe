package domain

import "time"

// Security event types.
const (
	EventAccountCreated    = "account_created"
	EventLoginSuccessful   = "login_successful"
	EventLoginFailed       = "login_failed"
	EventAccountLocked     = "account_locked"
	EventAccountStatus     = "account_status_changed"
	EventTrustScoreUpdated = "trust_score_updated"
)

// SecurityEvent is an audit record for identity and trust changes.
type SecurityEvent struct {
	ID        string            `json:"id" bson:"_id"`
	UserID    string            `json:"user_id" bson:"user_id"`
	Event     string            `json:"event" bson:"event"`
	Details   map[string]string `json:"details,omitempty" bson:"details,omitempty"`
	Timestamp time.Time         `json:"timestamp" bson:"timestamp"`
}
