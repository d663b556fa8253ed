package quota

import (
	"fmt"
	"time"
)

type WindowType string

const (
	WindowSliding WindowType = "sliding"
	WindowFixed   WindowType = "fixed"
)

func (w WindowType) IsValid() bool {
	return w == WindowSliding || w == WindowFixed
}

// Policy limits one (feature, tier) pair to Limit requests per Window.
type Policy struct {
	Feature    Feature
	Tier       Tier
	Limit      int
	Window     time.Duration
	WindowType WindowType
}

func (p Policy) Validate() error {
	if !p.Feature.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidFeature, p.Feature)
	}
	if !p.Tier.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTier, p.Tier)
	}
	if p.Limit <= 0 {
		return fmt.Errorf("%w: %s/%s limit must be positive, got %d", ErrInvalidPolicy, p.Feature, p.Tier, p.Limit)
	}
	if p.Window < time.Second {
		return fmt.Errorf("%w: %s/%s window must be at least 1s, got %s", ErrInvalidPolicy, p.Feature, p.Tier, p.Window)
	}
	if !p.WindowType.IsValid() {
		return fmt.Errorf("%w: %s/%s unknown window type %q", ErrInvalidPolicy, p.Feature, p.Tier, p.WindowType)
	}
	return nil
}

func (p Policy) String() string {
	return fmt.Sprintf("%s/%s %d per %s (%s)", p.Feature, p.Tier, p.Limit, p.Window, p.WindowType)
}
