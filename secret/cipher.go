// Package secret encrypts venue credentials at rest with Fernet tokens.
package secret

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fernet/fernet-go"
)

// Cipher encrypts and decrypts account credentials with a single key.
type Cipher struct {
	key *fernet.Key
}

// New builds a Cipher from a base64url-encoded 32-byte Fernet key.
func New(encodedKey string) (*Cipher, error) {
	k, err := fernet.DecodeKey(strings.TrimSpace(encodedKey))
	if err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}
	return &Cipher{key: k}, nil
}

// LoadOrCreate reads the key stored at path, generating and writing a new
// key (mode 0600) when the file does not exist.
func LoadOrCreate(path string) (*Cipher, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return New(string(data))
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	var k fernet.Key
	if err := k.Generate(); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create key dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(k.Encode()), 0o600); err != nil {
		return nil, fmt.Errorf("write key file: %w", err)
	}
	return &Cipher{key: &k}, nil
}

// Encrypt returns the Fernet token for plain. Empty input stays empty.
func (c *Cipher) Encrypt(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}
	tok, err := fernet.EncryptAndSign([]byte(plain), c.key)
	if err != nil {
		return "", fmt.Errorf("encrypt: %w", err)
	}
	return string(tok), nil
}

// Decrypt returns the plaintext for token. A value that does not verify
// under the key is returned unchanged, so credentials stored before
// encryption was introduced keep working.
func (c *Cipher) Decrypt(token string) string {
	if token == "" {
		return ""
	}
	msg := fernet.VerifyAndDecrypt([]byte(token), 0, []*fernet.Key{c.key})
	if msg == nil {
		return token
	}
	return string(msg)
}
