package allowance

import (
	"context"

	"github.com/applytrack/applytrack/internal/domain/quota"
)

// Repository persists one-shot usage counters. Consume applies an action at
// most once and never lets used_count pass the grant; Release undoes an
// applied action whose work did not complete.
type Repository interface {
	GetUsage(ctx context.Context, userID string, feature quota.Feature) (int, error)
	GetAllUsage(ctx context.Context, userID string) (map[quota.Feature]int, error)
	// Consume returns applied=false when actionID was already consumed and
	// ErrAllowanceExhausted when the grant is used up.
	Consume(ctx context.Context, userID string, feature quota.Feature, actionID string, grant Grant) (applied bool, err error)
	// Release returns released=false when actionID holds no consumption.
	Release(ctx context.Context, userID string, feature quota.Feature, actionID string) (released bool, err error)
}
