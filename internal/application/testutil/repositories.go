package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/applytrack/applytrack/internal/domain/allowance"
	"github.com/applytrack/applytrack/internal/domain/anonusage"
	"github.com/applytrack/applytrack/internal/domain/preview"
	"github.com/applytrack/applytrack/internal/domain/quota"
)

// MockAnonUsageRepository keeps records in memory. Set the error fields to
// inject failures.
type MockAnonUsageRepository struct {
	mu      sync.Mutex
	records []*anonusage.Record
	nextID  uint

	CreateErr error
	UsageErr  error
}

func NewMockAnonUsageRepository() *MockAnonUsageRepository {
	return &MockAnonUsageRepository{}
}

func (m *MockAnonUsageRepository) Create(ctx context.Context, record *anonusage.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.nextID++
	record.SetID(m.nextID)
	m.records = append(m.records, record)
	return nil
}

func (m *MockAnonUsageRepository) UsageSince(ctx context.Context, fingerprint string, feature quota.Feature, since time.Time) (anonusage.WindowUsage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UsageErr != nil {
		return anonusage.WindowUsage{}, m.UsageErr
	}

	var usage anonusage.WindowUsage
	for _, r := range m.records {
		if r.Fingerprint() != fingerprint || r.Feature() != feature || r.UsedAt().Before(since) {
			continue
		}
		usage.Count++
		if usage.Oldest == nil || r.UsedAt().Before(*usage.Oldest) {
			t := r.UsedAt()
			usage.Oldest = &t
		}
	}
	return usage, nil
}

// Records returns a copy of the stored records.
func (m *MockAnonUsageRepository) Records() []*anonusage.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*anonusage.Record(nil), m.records...)
}

type allowanceKey struct {
	userID  string
	feature quota.Feature
}

// MockAllowanceRepository mirrors the transactional semantics of the real
// repository under one mutex.
type MockAllowanceRepository struct {
	mu       sync.Mutex
	used     map[allowanceKey]int
	consumed map[string]bool

	ReadErr    error
	ConsumeErr error
	ReleaseErr error
	Reads      int
	Releases   int
}

func NewMockAllowanceRepository() *MockAllowanceRepository {
	return &MockAllowanceRepository{
		used:     make(map[allowanceKey]int),
		consumed: make(map[string]bool),
	}
}

func (m *MockAllowanceRepository) GetUsage(ctx context.Context, userID string, feature quota.Feature) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reads++
	if m.ReadErr != nil {
		return 0, m.ReadErr
	}
	return m.used[allowanceKey{userID, feature}], nil
}

func (m *MockAllowanceRepository) GetAllUsage(ctx context.Context, userID string) (map[quota.Feature]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reads++
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	out := make(map[quota.Feature]int)
	for k, n := range m.used {
		if k.userID == userID {
			out[k.feature] = n
		}
	}
	return out, nil
}

func (m *MockAllowanceRepository) Consume(ctx context.Context, userID string, feature quota.Feature, actionID string, grant allowance.Grant) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ConsumeErr != nil {
		return false, m.ConsumeErr
	}
	if actionID == "" {
		return false, allowance.ErrMissingActionID
	}

	action := userID + "\x00" + string(feature) + "\x00" + actionID
	if m.consumed[action] {
		return false, nil
	}
	k := allowanceKey{userID, feature}
	if !grant.Allows(m.used[k]) {
		return false, allowance.ErrAllowanceExhausted
	}
	m.consumed[action] = true
	m.used[k]++
	return true, nil
}

func (m *MockAllowanceRepository) Release(ctx context.Context, userID string, feature quota.Feature, actionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReleaseErr != nil {
		return false, m.ReleaseErr
	}
	if actionID == "" {
		return false, allowance.ErrMissingActionID
	}

	action := userID + "\x00" + string(feature) + "\x00" + actionID
	if !m.consumed[action] {
		return false, nil
	}
	delete(m.consumed, action)
	k := allowanceKey{userID, feature}
	if m.used[k] > 0 {
		m.used[k]--
	}
	m.Releases++
	return true, nil
}

// SetUsage seeds a counter.
func (m *MockAllowanceRepository) SetUsage(userID string, feature quota.Feature, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.used[allowanceKey{userID, feature}] = n
}

// MockPreviewSessionRepository stores sessions in memory with the same
// conditional conversion as the database.
type MockPreviewSessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*preview.Session

	CreateErr error
	GetErr    error
	MarkErr   error
	// BeforeMark runs inside MarkConverted before the conditional write,
	// letting tests simulate a concurrent conversion.
	BeforeMark func(id string)
}

func NewMockPreviewSessionRepository() *MockPreviewSessionRepository {
	return &MockPreviewSessionRepository{sessions: make(map[string]*preview.Session)}
}

func (m *MockPreviewSessionRepository) Create(ctx context.Context, s *preview.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.sessions[s.ID()] = s
	return nil
}

func (m *MockPreviewSessionRepository) GetByID(ctx context.Context, id string) (*preview.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, preview.ErrSessionNotFound
	}
	return m.clone(s), nil
}

func (m *MockPreviewSessionRepository) MarkConverted(ctx context.Context, id, userID string, at time.Time) (bool, error) {
	if m.BeforeMark != nil {
		m.BeforeMark(id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MarkErr != nil {
		return false, m.MarkErr
	}
	s, ok := m.sessions[id]
	if !ok || s.IsConverted() {
		return false, nil
	}
	if err := s.MarkConverted(userID, at); err != nil {
		return false, nil
	}
	return true, nil
}

// Stored returns the stored session without copying.
func (m *MockPreviewSessionRepository) Stored(id string) *preview.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

func (m *MockPreviewSessionRepository) clone(s *preview.Session) *preview.Session {
	c, _ := preview.ReconstructSession(
		s.ID(), s.Feature(), s.Input(), s.ContentEncrypted(), s.Teaser(),
		s.UserID(), s.ConvertedAt(), s.CreatedAt(),
	)
	return c
}
