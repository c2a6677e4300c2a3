package api

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	secureCookieVersion   = "v1"
	secureCookieKeyLabel  = "hourtrack.secure-cookie.v1"
	secureCookieAADPrefix = "hourtrack.cookie."
)

var errInvalidSecureCookieValue = errors.New("invalid secure cookie value")

// secureCookieCodec seals cookie values with AES-GCM. The purpose is bound as additional
// data, so a value sealed for one cookie does not open as another.
type secureCookieCodec struct {
	aead cipher.AEAD
}

func newSecureCookieCodec(secretKey []byte) (*secureCookieCodec, error) {
	if len(secretKey) == 0 {
		return nil, errors.New("secure cookie secret key is required")
	}

	derivedKey := deriveSecureCookieKey(secretKey)
	block, err := aes.NewCipher(derivedKey[:])
	if err != nil {
		return nil, fmt.Errorf("init secure cookie cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init secure cookie aead: %w", err)
	}
	return &secureCookieCodec{aead: aead}, nil
}

func deriveSecureCookieKey(secretKey []byte) [32]byte {
	material := make([]byte, 0, len(secureCookieKeyLabel)+len(secretKey))
	material = append(material, secureCookieKeyLabel...)
	material = append(material, secretKey...)
	return sha256.Sum256(material)
}

func (codec *secureCookieCodec) seal(purpose string, plaintext []byte) (string, error) {
	aad, err := secureCookieAAD(purpose)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, codec.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate secure cookie nonce: %w", err)
	}

	payload := codec.aead.Seal(nonce, nonce, plaintext, aad)
	return secureCookieVersion + "." + base64.RawURLEncoding.EncodeToString(payload), nil
}

func (codec *secureCookieCodec) open(purpose string, rawValue string) ([]byte, error) {
	aad, err := secureCookieAAD(purpose)
	if err != nil {
		return nil, err
	}

	version, encodedPayload, found := strings.Cut(strings.TrimSpace(rawValue), ".")
	if !found || version != secureCookieVersion || encodedPayload == "" {
		return nil, errInvalidSecureCookieValue
	}

	payload, err := base64.RawURLEncoding.DecodeString(encodedPayload)
	if err != nil {
		return nil, errInvalidSecureCookieValue
	}

	nonceSize := codec.aead.NonceSize()
	if len(payload) <= nonceSize {
		return nil, errInvalidSecureCookieValue
	}

	plaintext, err := codec.aead.Open(nil, payload[:nonceSize], payload[nonceSize:], aad)
	if err != nil {
		return nil, errInvalidSecureCookieValue
	}
	return plaintext, nil
}

func secureCookieAAD(purpose string) ([]byte, error) {
	trimmed := strings.TrimSpace(purpose)
	if trimmed == "" {
		return nil, errors.New("secure cookie purpose is required")
	}
	return []byte(secureCookieAADPrefix + trimmed), nil
}
