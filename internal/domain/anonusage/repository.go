package anonusage

import (
	"context"
	"time"

	"github.com/applytrack/applytrack/internal/domain/quota"
)

type Repository interface {
	Create(ctx context.Context, record *Record) error
	// UsageSince aggregates records for (fingerprint, feature) with
	// used_at >= since in a single range query.
	UsageSince(ctx context.Context, fingerprint string, feature quota.Feature, since time.Time) (WindowUsage, error)
}
