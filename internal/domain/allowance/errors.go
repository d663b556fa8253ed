package allowance

import "errors"

var (
	ErrAllowanceExhausted   = errors.New("allowance exhausted")
	ErrNotOneShot           = errors.New("feature has no one-shot allowance")
	ErrIncompleteGrantTable = errors.New("incomplete allowance grant table")
	ErrMissingActionID      = errors.New("action id is required")
)
