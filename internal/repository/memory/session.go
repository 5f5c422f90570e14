package memory

import (
	"context"

	gocache "github.com/patrickmn/go-cache"

	"github.com/Engrjalalkhan/easydoctor/internal/repository"
)

// Store is an in-process session store for development and tests.
// Entries never auto-expire: session expiry is a timestamp comparison
// in the gate, and an expired record is deliberately left in place.
type Store struct {
	cache  *gocache.Cache
	prefix string
}

func NewStore() *Store {
	return &Store{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	val, found := s.cache.Get(s.key(key))
	if !found {
		return "", repository.ErrKeyNotFound
	}
	return val.(string), nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.cache.Set(s.key(key), value, gocache.NoExpiration)
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.cache.Delete(s.key(key))
	return nil
}

// WithNamespace returns a view scoped to one device. All views share
// the backing cache.
func (s *Store) WithNamespace(ns string) repository.SessionStore {
	return &Store{
		cache:  s.cache,
		prefix: s.prefix + ns + ":",
	}
}

func (s *Store) key(key string) string {
	return s.prefix + key
}
