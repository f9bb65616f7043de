// Package apikey manages the bearer keys gating the upstream proxy. The
// collection is one JSON blob under a fixed store key, mutated
// read-modify-write like every other persisted collection.
package apikey

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agenthands/boron/internal/store"
)

// KeyPrefix marks every generated secret; prefixLen characters are kept
// visible for display and deletion.
const (
	KeyPrefix = "gk_"
	prefixLen = 12
)

// Key is the stored record. FullKey keeps the secret readable after creation
// so the UI can offer copy-back; this is a deliberate deviation from
// show-once key hygiene, carried over from the existing design.
type Key struct {
	Name      string `json:"name"`
	KeyHash   string `json:"key_hash"`
	KeyPrefix string `json:"key_prefix"`
	FullKey   string `json:"full_key"`
	CreatedAt string `json:"created_at"`
	LastUsed  string `json:"last_used,omitempty"`
}

// Created is what a create call returns to the caller.
type Created struct {
	Name      string `json:"name"`
	Key       string `json:"key"`
	KeyPrefix string `json:"key_prefix"`
	CreatedAt string `json:"created_at"`
}

type Service struct {
	Store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{Store: s}
}

// Generate returns a fresh prefixed random token.
func Generate() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate key material: %w", err)
	}
	return KeyPrefix + base64.RawURLEncoding.EncodeToString(raw), nil
}

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func (s *Service) load(ctx context.Context) ([]Key, error) {
	data, err := s.Store.Get(ctx, store.APIKeysKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []Key{}, nil
		}
		return nil, err
	}

	var keys []Key
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("failed to decode api keys: %w", err)
	}
	return keys, nil
}

func (s *Service) save(ctx context.Context, keys []Key) error {
	data, err := json.Marshal(keys)
	if err != nil {
		return err
	}
	return s.Store.Set(ctx, store.APIKeysKey, data)
}

func (s *Service) Create(ctx context.Context, name string) (*Created, error) {
	keys, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	secret, err := Generate()
	if err != nil {
		return nil, err
	}

	entry := Key{
		Name:      name,
		KeyHash:   hashKey(secret),
		KeyPrefix: secret[:prefixLen],
		FullKey:   secret,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	keys = append(keys, entry)

	if err := s.save(ctx, keys); err != nil {
		return nil, err
	}

	return &Created{
		Name:      name,
		Key:       secret,
		KeyPrefix: entry.KeyPrefix,
		CreatedAt: entry.CreatedAt,
	}, nil
}

func (s *Service) List(ctx context.Context) ([]Key, error) {
	return s.load(ctx)
}

// Validate hash-compares the presented secret against every stored key and
// stamps last_used on a match. The comparison is constant-time.
func (s *Service) Validate(ctx context.Context, secret string) (bool, error) {
	if !strings.HasPrefix(secret, KeyPrefix) {
		return false, nil
	}

	keys, err := s.load(ctx)
	if err != nil {
		return false, err
	}

	hash := hashKey(secret)
	for i := range keys {
		if subtle.ConstantTimeCompare([]byte(keys[i].KeyHash), []byte(hash)) == 1 {
			keys[i].LastUsed = time.Now().UTC().Format(time.RFC3339)
			if err := s.save(ctx, keys); err != nil {
				return false, err
			}
			return true, nil
		}
	}

	return false, nil
}

// Delete removes a key by its visible prefix; a miss is reported as false,
// not an error.
func (s *Service) Delete(ctx context.Context, keyPrefix string) (bool, error) {
	keys, err := s.load(ctx)
	if err != nil {
		return false, err
	}

	kept := make([]Key, 0, len(keys))
	for _, k := range keys {
		if k.KeyPrefix != keyPrefix {
			kept = append(kept, k)
		}
	}
	if len(kept) == len(keys) {
		return false, nil
	}

	if err := s.save(ctx, kept); err != nil {
		return false, err
	}
	return true, nil
}
