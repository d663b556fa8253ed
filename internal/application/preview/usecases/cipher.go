package usecases

// ContentCipher seals preview content. The session id is bound to the
// ciphertext so an envelope cannot be replayed under another session.
type ContentCipher interface {
	Encrypt(sessionID string, plaintext []byte) ([]byte, error)
	Decrypt(sessionID string, envelope []byte) ([]byte, error)
}
