package ports

// SecretHasher is the one-way password hash used by the session and principal
// services. Verify reports a match without revealing why a mismatch occurred.
type SecretHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}
