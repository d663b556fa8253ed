package feature

import (
	"context"

	"github.com/applytrack/applytrack/internal/domain/quota"
)

// Generator produces the markdown result of a gated feature. Calls are slow
// and may fail; callers must not consume usage before it returns.
type Generator interface {
	Generate(ctx context.Context, f quota.Feature, input Input) (string, error)
}
