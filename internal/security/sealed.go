// Package security provides sealed secret files and the TLS material
// NetWatch uses for its API.
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	// SealedSuffix marks a file written by WriteSealedFile.
	SealedSuffix = ".enc"

	sealedVersion = 1
	saltSize      = 16
	keySize       = 32

	// argon2id parameters: 2 passes over 19 MiB, one lane.
	kdfTime    = 2
	kdfMemory  = 19 * 1024
	kdfThreads = 1
)

// sealedAAD binds the ciphertext to the envelope format.
var sealedAAD = []byte("netwatch-sealed-v1")

// ErrWrongPassphrase is returned when a sealed payload cannot be opened.
var ErrWrongPassphrase = errors.New("wrong passphrase or corrupted data")

type envelope struct {
	Version int    `json:"v"`
	Salt    []byte `json:"salt"`
	Nonce   []byte `json:"nonce"`
	Data    []byte `json:"data"`
}

func deriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, kdfTime, kdfMemory, kdfThreads, keySize)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext with AES-256-GCM under a key derived from
// passphrase and returns a JSON envelope.
func Seal(plaintext, passphrase []byte) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, errors.New("passphrase required")
	}
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	gcm, err := newGCM(deriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return json.Marshal(envelope{
		Version: sealedVersion,
		Salt:    salt,
		Nonce:   nonce,
		Data:    gcm.Seal(nil, nonce, plaintext, sealedAAD),
	})
}

// Open decrypts an envelope produced by Seal.
func Open(sealed, passphrase []byte) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, errors.New("passphrase required")
	}
	var env envelope
	if err := json.Unmarshal(sealed, &env); err != nil {
		return nil, fmt.Errorf("parse sealed data: %w", err)
	}
	if env.Version != sealedVersion {
		return nil, fmt.Errorf("unsupported sealed version %d", env.Version)
	}
	if len(env.Salt) != saltSize {
		return nil, fmt.Errorf("invalid salt size %d", len(env.Salt))
	}
	gcm, err := newGCM(deriveKey(passphrase, env.Salt))
	if err != nil {
		return nil, err
	}
	if len(env.Nonce) != gcm.NonceSize() {
		return nil, fmt.Errorf("invalid nonce size %d", len(env.Nonce))
	}
	plaintext, err := gcm.Open(nil, env.Nonce, env.Data, sealedAAD)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return plaintext, nil
}

// IsSealed reports whether path names a sealed file.
func IsSealed(path string) bool {
	return strings.HasSuffix(path, SealedSuffix)
}

// ReadFile returns the contents of path, opening it first when it is sealed.
func ReadFile(path string, passphrase []byte) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if !IsSealed(path) {
		return content, nil
	}
	plaintext, err := Open(content, passphrase)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return plaintext, nil
}

// WriteSealedFile seals plaintext into path, adding SealedSuffix when
// missing, and returns the path written. The file mode is 0600.
func WriteSealedFile(path string, plaintext, passphrase []byte) (string, error) {
	if !IsSealed(path) {
		path += SealedSuffix
	}
	content, err := Seal(plaintext, passphrase)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}
