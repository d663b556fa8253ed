package preview

import (
	"fmt"
	"strings"
	"time"

	"github.com/applytrack/applytrack/internal/domain/feature"
	"github.com/applytrack/applytrack/internal/domain/quota"
)

type State string

const (
	StateAnonymous State = "anonymous"
	StateConverted State = "converted"
)

// Session is AI output generated for an anonymous visitor. The full
// content is held encrypted until the visitor signs up and converts the
// session, which can happen exactly once.
type Session struct {
	id               string
	feature          quota.Feature
	input            feature.Input
	contentEncrypted []byte
	teaser           string
	userID           *string
	convertedAt      *time.Time
	createdAt        time.Time
}

func NewSession(id string, f quota.Feature, input feature.Input, contentEncrypted []byte, teaser string, now time.Time) (*Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("session id is required")
	}
	if !f.IsValid() {
		return nil, fmt.Errorf("%w: %q", quota.ErrInvalidFeature, f)
	}
	if len(contentEncrypted) == 0 {
		return nil, fmt.Errorf("encrypted content is required")
	}
	return &Session{
		id:               id,
		feature:          f,
		input:            input,
		contentEncrypted: contentEncrypted,
		teaser:           teaser,
		createdAt:        now.UTC(),
	}, nil
}

func ReconstructSession(
	id string,
	f quota.Feature,
	input feature.Input,
	contentEncrypted []byte,
	teaser string,
	userID *string,
	convertedAt *time.Time,
	createdAt time.Time,
) (*Session, error) {
	if id == "" {
		return nil, fmt.Errorf("session id is required")
	}
	if (userID == nil) != (convertedAt == nil) {
		return nil, fmt.Errorf("session %s: user id and converted at must be set together", id)
	}
	return &Session{
		id:               id,
		feature:          f,
		input:            input,
		contentEncrypted: contentEncrypted,
		teaser:           teaser,
		userID:           userID,
		convertedAt:      convertedAt,
		createdAt:        createdAt,
	}, nil
}

func (s *Session) ID() string               { return s.id }
func (s *Session) Feature() quota.Feature   { return s.feature }
func (s *Session) Input() feature.Input     { return s.input }
func (s *Session) ContentEncrypted() []byte { return s.contentEncrypted }
func (s *Session) Teaser() string           { return s.teaser }
func (s *Session) UserID() *string          { return s.userID }
func (s *Session) ConvertedAt() *time.Time  { return s.convertedAt }
func (s *Session) CreatedAt() time.Time     { return s.createdAt }

func (s *Session) State() State {
	if s.convertedAt != nil {
		return StateConverted
	}
	return StateAnonymous
}

func (s *Session) IsConverted() bool {
	return s.State() == StateConverted
}

// MarkConverted moves the session to its terminal state.
func (s *Session) MarkConverted(userID string, at time.Time) error {
	if s.IsConverted() {
		return ErrAlreadyConverted
	}
	if strings.TrimSpace(userID) == "" {
		return quota.ErrInvalidUserID
	}
	at = at.UTC()
	s.userID = &userID
	s.convertedAt = &at
	return nil
}
