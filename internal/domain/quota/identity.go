package quota

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	// MaxFingerprintLength bounds what a client can make us store.
	MaxFingerprintLength = 256

	// UnknownIP mirrors the sentinel used by the HTTP layer when no header
	// carries a client address.
	UnknownIP = "unknown"
)

// AuthenticatedIdentity is a user vouched for by the auth provider.
type AuthenticatedIdentity struct {
	UserID string
	Email  string
}

func NewAuthenticatedIdentity(userID, email string) (AuthenticatedIdentity, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return AuthenticatedIdentity{}, ErrInvalidUserID
	}
	return AuthenticatedIdentity{UserID: userID, Email: strings.TrimSpace(email)}, nil
}

// Subject is the rate-limit subject for a signed-in user.
func (a AuthenticatedIdentity) Subject() Subject {
	return Subject{Kind: SubjectUser, Value: a.UserID}
}

// AnonymousIdentity is a best-effort approximation of a visitor. The
// fingerprint is whatever the browser sent; two devices may share one and
// one person may have many. Never treat it as a unique key.
type AnonymousIdentity struct {
	fingerprint string
	ipAddress   string
}

func NewAnonymousIdentity(fingerprint, ipAddress string) (AnonymousIdentity, error) {
	fp := norm.NFC.String(strings.TrimSpace(fingerprint))
	if fp == "" {
		return AnonymousIdentity{}, fmt.Errorf("%w: empty", ErrInvalidFingerprint)
	}
	if utf8.RuneCountInString(fp) > MaxFingerprintLength {
		return AnonymousIdentity{}, fmt.Errorf("%w: longer than %d characters", ErrInvalidFingerprint, MaxFingerprintLength)
	}
	ip := strings.TrimSpace(ipAddress)
	if ip == "" {
		ip = UnknownIP
	}
	return AnonymousIdentity{fingerprint: fp, ipAddress: ip}, nil
}

func (a AnonymousIdentity) Fingerprint() string { return a.fingerprint }
func (a AnonymousIdentity) IPAddress() string   { return a.ipAddress }

// HasKnownIP is false when no proxy or CDN header carried an address.
func (a AnonymousIdentity) HasKnownIP() bool {
	return a.ipAddress != UnknownIP
}

// IPSubject is the subject of the per-IP guard applied to anonymous traffic.
func (a AnonymousIdentity) IPSubject() Subject {
	return Subject{Kind: SubjectIP, Value: a.ipAddress}
}

type SubjectKind string

const (
	SubjectUser SubjectKind = "user"
	SubjectIP   SubjectKind = "ip"
)

// Subject is whatever a counter is keyed on.
type Subject struct {
	Kind  SubjectKind
	Value string
}

func (s Subject) Validate() error {
	if s.Kind != SubjectUser && s.Kind != SubjectIP {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidSubject, s.Kind)
	}
	if strings.TrimSpace(s.Value) == "" {
		return fmt.Errorf("%w: empty %s", ErrInvalidSubject, s.Kind)
	}
	return nil
}
