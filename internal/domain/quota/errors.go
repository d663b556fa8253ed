package quota

import "errors"

var (
	ErrInvalidFeature        = errors.New("invalid feature")
	ErrInvalidTier           = errors.New("invalid tier")
	ErrInvalidPolicy         = errors.New("invalid quota policy")
	ErrPolicyNotConfigured   = errors.New("quota policy not configured")
	ErrIncompletePolicyTable = errors.New("incomplete quota policy table")
	ErrInvalidSubject        = errors.New("invalid rate limit subject")
	ErrInvalidFingerprint    = errors.New("invalid fingerprint")
	ErrInvalidUserID         = errors.New("invalid user id")
)
