package admin

import (
	"context"
	"time"
)

// Session is an authenticated admin panel session.
type Session struct {
	Token        string
	ExpiresAt    time.Time
	LastActiveAt time.Time
	CreatedAt    time.Time
}

// LogEntry records an admin action, newest first when listed.
type LogEntry struct {
	ID        int64                  `json:"id"`
	Action    string                 `json:"action"`
	Details   map[string]interface{} `json:"details,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

type Repository interface {
	CreateSession(ctx context.Context, s Session) error
	GetSession(ctx context.Context, token string) (*Session, error)
	TouchSession(ctx context.Context, token string, at time.Time) error
	DeleteSession(ctx context.Context, token string) error

	AppendLog(ctx context.Context, action string, details map[string]interface{}) error
	// ListLogs returns up to limit entries, newest first.
	ListLogs(ctx context.Context, limit int) ([]LogEntry, error)
	ClearLogs(ctx context.Context) error
}
