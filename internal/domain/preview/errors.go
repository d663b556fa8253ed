package preview

import "errors"

var (
	ErrSessionNotFound   = errors.New("preview session not found")
	ErrAlreadyConverted  = errors.New("preview session already converted")
	ErrDecryptionFailure = errors.New("preview content decryption failed")
)
