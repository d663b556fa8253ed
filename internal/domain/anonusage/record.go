package anonusage

import (
	"fmt"
	"time"

	"github.com/applytrack/applytrack/internal/domain/quota"
)

// Window is the rolling period of the anonymous ledger.
const Window = 24 * time.Hour

// Record is one successful anonymous use. Records are append-only.
type Record struct {
	id          uint
	fingerprint string
	ipAddress   string
	feature     quota.Feature
	usedAt      time.Time
}

func NewRecord(identity quota.AnonymousIdentity, feature quota.Feature, usedAt time.Time) (*Record, error) {
	if identity.Fingerprint() == "" {
		return nil, quota.ErrInvalidFingerprint
	}
	if !feature.IsValid() {
		return nil, fmt.Errorf("%w: %q", quota.ErrInvalidFeature, feature)
	}
	if usedAt.IsZero() {
		return nil, fmt.Errorf("used at is required")
	}
	return &Record{
		fingerprint: identity.Fingerprint(),
		ipAddress:   identity.IPAddress(),
		feature:     feature,
		usedAt:      usedAt.UTC(),
	}, nil
}

func ReconstructRecord(id uint, fingerprint, ipAddress string, feature quota.Feature, usedAt time.Time) *Record {
	return &Record{id: id, fingerprint: fingerprint, ipAddress: ipAddress, feature: feature, usedAt: usedAt.UTC()}
}

func (r *Record) ID() uint               { return r.id }
func (r *Record) Fingerprint() string    { return r.fingerprint }
func (r *Record) IPAddress() string      { return r.ipAddress }
func (r *Record) Feature() quota.Feature { return r.feature }
func (r *Record) UsedAt() time.Time      { return r.usedAt }

// SetID is called by the repository after insert.
func (r *Record) SetID(id uint) {
	if r.id == 0 {
		r.id = id
	}
}

// WindowUsage is the aggregate of records inside the rolling window.
type WindowUsage struct {
	Count  int64
	Oldest *time.Time
}

// ResetAt is when the oldest counted record leaves the window.
func (u WindowUsage) ResetAt() *time.Time {
	if u.Oldest == nil {
		return nil
	}
	t := u.Oldest.Add(Window).UTC()
	return &t
}
