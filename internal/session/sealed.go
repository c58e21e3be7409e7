package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

const sealedPrefixV1 = "v1:"

var errUnsealable = errors.New("sealed token cannot be opened")

// SealedStorage encrypts the token before handing records to the wrapped storage.
type SealedStorage struct {
	inner Storage
	key   [32]byte
}

// NewSealedStorage wraps inner. With a nil key, inner is returned unchanged.
func NewSealedStorage(inner Storage, key *[32]byte) Storage {
	if key == nil {
		return inner
	}
	return &SealedStorage{inner: inner, key: *key}
}

func (s *SealedStorage) Load(ctx context.Context, key string) (Record, error) {
	rec, err := s.inner.Load(ctx, key)
	if err != nil {
		return Record{}, err
	}
	token, err := s.open(rec.Token)
	if err != nil {
		return Record{}, err
	}
	rec.Token = token
	return rec, nil
}

func (s *SealedStorage) Save(ctx context.Context, key string, rec Record) error {
	sealed, err := s.seal(rec.Token)
	if err != nil {
		return err
	}
	rec.Token = sealed
	return s.inner.Save(ctx, key, rec)
}

func (s *SealedStorage) Clear(ctx context.Context, key string) error {
	return s.inner.Clear(ctx, key)
}

func (s *SealedStorage) seal(plain string) (string, error) {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(plain), &nonce, &s.key)
	return sealedPrefixV1 + base64.RawURLEncoding.EncodeToString(box), nil
}

func (s *SealedStorage) open(sealed string) (string, error) {
	if !strings.HasPrefix(sealed, sealedPrefixV1) {
		return "", errUnsealable
	}
	raw, err := base64.RawURLEncoding.DecodeString(sealed[len(sealedPrefixV1):])
	if err != nil || len(raw) < 24 {
		return "", errUnsealable
	}
	var nonce [24]byte
	copy(nonce[:], raw[:24])
	plain, ok := secretbox.Open(nil, raw[24:], &nonce, &s.key)
	if !ok {
		return "", errUnsealable
	}
	return string(plain), nil
}
