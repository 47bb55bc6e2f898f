package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

const (
	// DefaultMaxEnvelopeAge is how long a sealed envelope remains decryptable.
	// Envelopes older than this fail closed on decrypt.
	DefaultMaxEnvelopeAge = 30 * 24 * time.Hour

	envelopeKeySize = 32 // AES-256
)

var (
	// ErrEnvelopeExpired indicates the envelope timestamp exceeds the maximum age.
	ErrEnvelopeExpired = errors.New("envelope too old")

	// ErrEnvelopeMalformed indicates the envelope could not be parsed or decrypted.
	// Callers must treat the stored record as unusable; no partial recovery.
	ErrEnvelopeMalformed = errors.New("envelope malformed")
)

// Envelope is the serialized encrypted representation of a payload destined
// for an untrusted persistent slot: AES-256-GCM ciphertext plus the key and
// nonce that produced it, all base64-encoded, and a millisecond timestamp.
type Envelope struct {
	Encrypted string `json:"encrypted"`
	Key       string `json:"key"`
	IV        string `json:"iv"`
	Timestamp int64  `json:"timestamp"`
}

// Codec encrypts and decrypts payloads into self-contained envelopes.
// A fresh random key and nonce are generated for every Seal call; keys are
// never reused across envelopes.
//
// KNOWN LIMITATION: the key travels inside the envelope, so anyone who can
// read the storage slot can decrypt it. This protects against casual
// tampering and plain-text scraping of the slot, not against an attacker
// with read access. Deriving the key from a user-held secret would close
// that gap but is deliberately not implemented here.
type Codec struct {
	maxAge  time.Duration
	now     func() time.Time
	auditor *Auditor
}

// NewCodec creates a codec with the default 30-day maximum envelope age.
func NewCodec(auditor *Auditor) *Codec {
	return NewCodecWithMaxAge(DefaultMaxEnvelopeAge, auditor)
}

// NewCodecWithMaxAge creates a codec with a custom maximum envelope age.
// A non-positive maxAge disables the age check.
func NewCodecWithMaxAge(maxAge time.Duration, auditor *Auditor) *Codec {
	return &Codec{
		maxAge:  maxAge,
		now:     time.Now,
		auditor: auditor,
	}
}

// SetNowFunc overrides the codec's time source. Intended for tests.
func (c *Codec) SetNowFunc(now func() time.Time) {
	c.now = now
}

// Encrypt seals plaintext into a serialized envelope using AES-256-GCM with
// a freshly generated key and nonce.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	key := make([]byte, envelopeKeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		c.auditor.Log(EventEncryptionFailed, map[string]any{"error": err.Error()})
		return "", fmt.Errorf("failed to generate key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		c.auditor.Log(EventEncryptionFailed, map[string]any{"error": err.Error()})
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		c.auditor.Log(EventEncryptionFailed, map[string]any{"error": err.Error()})
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		c.auditor.Log(EventEncryptionFailed, map[string]any{"error": err.Error()})
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, []byte(plaintext), nil)

	envelope := Envelope{
		Encrypted: base64.StdEncoding.EncodeToString(ciphertext),
		Key:       base64.StdEncoding.EncodeToString(key),
		IV:        base64.StdEncoding.EncodeToString(nonce),
		Timestamp: c.now().UnixMilli(),
	}

	serialized, err := json.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("failed to serialize envelope: %w", err)
	}

	return string(serialized), nil
}

// Decrypt opens a serialized envelope and returns the plaintext. It fails
// closed if the envelope is malformed, older than the maximum age, or the
// ciphertext does not authenticate.
func (c *Codec) Decrypt(data string) (string, error) {
	var envelope Envelope
	if err := json.Unmarshal([]byte(data), &envelope); err != nil {
		return "", c.decryptFailed(fmt.Errorf("%w: %v", ErrEnvelopeMalformed, err))
	}

	if c.maxAge > 0 && envelope.Timestamp > 0 {
		age := c.now().Sub(time.UnixMilli(envelope.Timestamp))
		if age > c.maxAge {
			return "", c.decryptFailed(ErrEnvelopeExpired)
		}
	}

	key, err := base64.StdEncoding.DecodeString(envelope.Key)
	if err != nil || len(key) != envelopeKeySize {
		return "", c.decryptFailed(fmt.Errorf("%w: bad key", ErrEnvelopeMalformed))
	}

	nonce, err := base64.StdEncoding.DecodeString(envelope.IV)
	if err != nil {
		return "", c.decryptFailed(fmt.Errorf("%w: bad nonce", ErrEnvelopeMalformed))
	}

	ciphertext, err := base64.StdEncoding.DecodeString(envelope.Encrypted)
	if err != nil {
		return "", c.decryptFailed(fmt.Errorf("%w: bad ciphertext", ErrEnvelopeMalformed))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", c.decryptFailed(fmt.Errorf("%w: %v", ErrEnvelopeMalformed, err))
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", c.decryptFailed(fmt.Errorf("%w: %v", ErrEnvelopeMalformed, err))
	}

	if len(nonce) != gcm.NonceSize() {
		return "", c.decryptFailed(fmt.Errorf("%w: bad nonce size", ErrEnvelopeMalformed))
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", c.decryptFailed(fmt.Errorf("%w: %v", ErrEnvelopeMalformed, err))
	}

	return string(plaintext), nil
}

func (c *Codec) decryptFailed(err error) error {
	c.auditor.Log(EventDecryptionFailed, map[string]any{"error": err.Error()})
	return err
}
