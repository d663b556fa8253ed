package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/applytrack/applytrack/internal/domain/feature"
	"github.com/applytrack/applytrack/internal/domain/quota"
	"github.com/applytrack/applytrack/internal/infrastructure/ratelimit"
)

// MockGenerator returns Content or Err and counts calls.
type MockGenerator struct {
	mu      sync.Mutex
	Content string
	Err     error
	Calls   int
}

func (m *MockGenerator) Generate(ctx context.Context, f quota.Feature, in feature.Input) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return "", m.Err
	}
	return m.Content, nil
}

// FailingCounterStore is a counter store whose backend is down.
type FailingCounterStore struct {
	Available bool
	Err       error
}

func NewFailingCounterStore() *FailingCounterStore {
	return &FailingCounterStore{Err: errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")}
}

func (s *FailingCounterStore) Increment(ctx context.Context, key string, policy quota.Policy, now time.Time) (*ratelimit.CounterResult, error) {
	return nil, s.Err
}

func (s *FailingCounterStore) Peek(ctx context.Context, key string, policy quota.Policy, now time.Time) (*ratelimit.CounterResult, error) {
	return nil, s.Err
}

func (s *FailingCounterStore) IsAvailable(ctx context.Context) bool { return s.Available }
func (s *FailingCounterStore) Name() string                         { return "redis" }

// PlainCipher is a reversible fake of the content cipher. Ciphertext is the
// session id followed by the reversed plaintext.
type PlainCipher struct {
	DecryptErr error
	Decrypts   int
}

func (c *PlainCipher) Encrypt(sessionID string, plaintext []byte) ([]byte, error) {
	out := []byte(sessionID + "|")
	for i := len(plaintext) - 1; i >= 0; i-- {
		out = append(out, plaintext[i])
	}
	return out, nil
}

func (c *PlainCipher) Decrypt(sessionID string, envelope []byte) ([]byte, error) {
	c.Decrypts++
	if c.DecryptErr != nil {
		return nil, c.DecryptErr
	}
	prefix := sessionID + "|"
	if len(envelope) < len(prefix) || string(envelope[:len(prefix)]) != prefix {
		return nil, errors.New("session mismatch")
	}
	body := envelope[len(prefix):]
	out := make([]byte, 0, len(body))
	for i := len(body) - 1; i >= 0; i-- {
		out = append(out, body[i])
	}
	return out, nil
}
