package adapter

// SecretCipher seals secrets at rest. Decrypt fails with domain.ErrCryptoIntegrity on
// tampered or foreign ciphertext.
type SecretCipher interface {
	Encrypt(plaintext []byte) (string, error)
	Decrypt(blob string) ([]byte, error)
}

// SecretHasher produces one-way hashes for PINs and passwords.
type SecretHasher interface {
	Hash(secret string) (string, error)
	// Compare reports false on mismatch. Errors are reserved for malformed hashes.
	Compare(hash, secret string) (bool, error)
}
