package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/fieldrules/pkg/i18n"
)

// HashClient is the subset of the go-redis client used by DictionaryStore.
type HashClient interface {
	i18n.RedisHashReader
	HSet(ctx context.Context, key string, values ...any) *redis.IntCmd
	HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd
}

// DictionaryStore writes dictionaries into a Redis hash, one JSON document
// per locale, in the layout i18n.RedisAdapter reads. Services sharing the
// hash pick up changes on their next Dictionary.Load.
type DictionaryStore struct {
	client HashClient
	key    string
}

// NewDictionaryStore returns a store for the hash key. An empty key means
// DefaultKey.
func NewDictionaryStore(client HashClient, key string) *DictionaryStore {
	if key == "" {
		key = DefaultKey
	}
	return &DictionaryStore{client: client, key: key}
}

// Key returns the hash key.
func (s *DictionaryStore) Key() string {
	return s.key
}

// Publish stores the documents keyed by locale, replacing the previous
// document of each given locale. Documents must have the dictionary shape
// ("messages", "fields", "names").
func (s *DictionaryStore) Publish(ctx context.Context, docs map[string]map[string]any) error {
	if len(docs) == 0 {
		return nil
	}

	locales := make([]string, 0, len(docs))
	for locale := range docs {
		locales = append(locales, locale)
	}
	slices.Sort(locales)

	values := make([]any, 0, len(docs)*2)
	for _, locale := range locales {
		if strings.TrimSpace(locale) == "" {
			return ErrInvalidLocale
		}
		if _, err := i18n.DecodeFragment(docs[locale]); err != nil {
			return errors.Join(ErrFailedToPublish, fmt.Errorf("locale %q: %w", locale, err))
		}
		raw, err := json.Marshal(docs[locale])
		if err != nil {
			return errors.Join(ErrFailedToPublish, fmt.Errorf("locale %q: %w", locale, err))
		}
		values = append(values, i18n.CanonicalLocale(locale), string(raw))
	}

	if err := s.client.HSet(ctx, s.key, values...).Err(); err != nil {
		return errors.Join(ErrFailedToPublish, err)
	}
	return nil
}

// Remove deletes the documents of the given locales.
func (s *DictionaryStore) Remove(ctx context.Context, locales ...string) error {
	if len(locales) == 0 {
		return nil
	}
	fields := make([]string, len(locales))
	for i, locale := range locales {
		fields[i] = i18n.CanonicalLocale(locale)
	}
	return s.client.HDel(ctx, s.key, fields...).Err()
}

// Adapter returns an adapter reading the store's hash, or nil when the store
// has no client or key.
func (s *DictionaryStore) Adapter() i18n.Adapter {
	if a := i18n.NewRedisAdapter(s.client, s.key); a != nil {
		return a
	}
	return nil
}
