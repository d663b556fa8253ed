package preview

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, session *Session) error
	// GetByID returns ErrSessionNotFound when the id is unknown.
	GetByID(ctx context.Context, id string) (*Session, error)
	// MarkConverted sets user_id and converted_at only where converted_at
	// is still null. It reports false when another caller converted first.
	MarkConverted(ctx context.Context, id, userID string, at time.Time) (bool, error)
}
