// Package codec encrypts Temporal payloads. Checkout payloads carry customer
// names, e-mail addresses and phone numbers, so workflow history can be kept
// opaque to anyone reading the Temporal server.
package codec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	commonpb "go.temporal.io/api/common/v1"
	"go.temporal.io/sdk/converter"
)

const (
	// MetadataEncodingEncrypted is the encoding type for encrypted payloads
	MetadataEncodingEncrypted = "binary/encrypted"

	// KeySize is the AES-256 key length in bytes
	KeySize = 32
)

// EncryptionCodec implements converter.PayloadCodec with AES-256-GCM
type EncryptionCodec struct {
	gcm cipher.AEAD
}

// NewEncryptionCodec creates a codec from a 32-byte key
func NewEncryptionCodec(key []byte) (*EncryptionCodec, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("key must be %d bytes for AES-256, got %d bytes", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &EncryptionCodec{gcm: gcm}, nil
}

// Encode encrypts payloads, leaving already encrypted ones alone
func (e *EncryptionCodec) Encode(payloads []*commonpb.Payload) ([]*commonpb.Payload, error) {
	result := make([]*commonpb.Payload, len(payloads))

	for i, payload := range payloads {
		if isEncrypted(payload) {
			result[i] = payload
			continue
		}

		// Metadata is sealed together with the data
		origBytes, err := payload.Marshal()
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}

		encrypted, err := e.encrypt(origBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt payload: %w", err)
		}

		result[i] = &commonpb.Payload{
			Metadata: map[string][]byte{
				"encoding": []byte(MetadataEncodingEncrypted),
			},
			Data: encrypted,
		}
	}

	return result, nil
}

// Decode decrypts payloads, passing plain ones through
func (e *EncryptionCodec) Decode(payloads []*commonpb.Payload) ([]*commonpb.Payload, error) {
	result := make([]*commonpb.Payload, len(payloads))

	for i, payload := range payloads {
		if !isEncrypted(payload) {
			result[i] = payload
			continue
		}

		decrypted, err := e.decrypt(payload.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt payload: %w", err)
		}

		result[i] = &commonpb.Payload{}
		if err := result[i].Unmarshal(decrypted); err != nil {
			return nil, fmt.Errorf("failed to unmarshal decrypted payload: %w", err)
		}
	}

	return result, nil
}

func isEncrypted(payload *commonpb.Payload) bool {
	return payload.Metadata != nil && string(payload.Metadata["encoding"]) == MetadataEncodingEncrypted
}

func (e *EncryptionCodec) encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, e.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return e.gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (e *EncryptionCodec) decrypt(ciphertext []byte) ([]byte, error) {
	nonceSize := e.gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := e.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}

// NewEncryptionDataConverter wraps the default converter with the codec
func NewEncryptionDataConverter(key []byte) (converter.DataConverter, error) {
	codec, err := NewEncryptionCodec(key)
	if err != nil {
		return nil, err
	}

	return converter.NewCodecDataConverter(
		converter.GetDefaultDataConverter(),
		codec,
	), nil
}

// LoadOrCreateKey reads a key from path, generating and saving one when the
// file does not exist. The bool reports whether a new key was written.
// A file-based key is for local development only.
func LoadOrCreateKey(path string) ([]byte, bool, error) {
	key, err := os.ReadFile(path)
	switch {
	case err == nil && len(key) == KeySize:
		return key, false, nil
	case err == nil:
		return nil, false, fmt.Errorf("key file %s holds %d bytes, want %d", path, len(key), KeySize)
	case !errors.Is(err, fs.ErrNotExist):
		return nil, false, fmt.Errorf("failed to read key file: %w", err)
	}

	key = make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, false, fmt.Errorf("failed to generate encryption key: %w", err)
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, false, fmt.Errorf("failed to save encryption key: %w", err)
	}
	return key, true, nil
}
