// Package cache provides the generic cache-aside primitive backing the
// aggregation read path. The cache is an optimization, never a correctness
// dependency: every backend failure is downgraded to a miss or a no-op.
package cache

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Options configures key namespacing and expiry defaults.
type Options struct {
	// InstanceName is prepended to every key before it reaches the backend,
	// so multiple environments can share one backend without collision.
	InstanceName  string
	DefaultExpiry time.Duration
	EnableLogging bool
}

// Store is a TTL key-value cache over a badger backend.
type Store struct {
	db   *badger.DB
	opts Options
}

// Open opens the badger backend at path with logging silenced.
func Open(path string) (*badger.DB, error) {
	return badger.Open(badger.DefaultOptions(path).WithLogger(nil))
}

// NewStore creates a cache store over an open badger backend.
func NewStore(db *badger.DB, opts Options) *Store {
	if opts.DefaultExpiry <= 0 {
		opts.DefaultExpiry = 30 * time.Minute
	}
	return &Store{db: db, opts: opts}
}

func (s *Store) fullKey(key string) []byte {
	return []byte(s.opts.InstanceName + key)
}

func (s *Store) logDebug(format string, args ...any) {
	if s.opts.EnableLogging {
		log.Printf("[cache] "+format, args...)
	}
}

// Get reads and decodes a cached value. Backend errors and decode failures
// are treated as misses.
func Get[T any](s *Store, key string) (T, bool) {
	var value T

	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.fullKey(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		s.logDebug("miss key=%s", key)
		return value, false
	}
	if err != nil {
		log.Printf("[cache] warning: get %s: %v", key, err)
		return value, false
	}

	if err := json.Unmarshal(raw, &value); err != nil {
		log.Printf("[cache] warning: decode %s: %v", key, err)
		return value, false
	}
	s.logDebug("hit key=%s", key)
	return value, true
}

// GetOrSet returns the cached value for key, or invokes factory on a miss,
// stores the result with ttl, and returns it. Concurrent callers missing on
// the same key each invoke the factory; the factory must be idempotent.
func GetOrSet[T any](ctx context.Context, s *Store, key string, ttl time.Duration, factory func(ctx context.Context) (T, error)) (T, error) {
	if cached, ok := Get[T](s, key); ok {
		return cached, nil
	}

	value, err := factory(ctx)
	if err != nil {
		return value, err
	}

	Set(s, key, value, ttl)
	return value, nil
}

// Set stores a value with ttl, falling back to the default expiry when ttl is
// zero or negative. Backend errors are logged and swallowed.
func Set[T any](s *Store, key string, value T, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("[cache] warning: encode %s: %v", key, err)
		return
	}

	if ttl <= 0 {
		ttl = s.opts.DefaultExpiry
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(s.fullKey(key), raw).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		log.Printf("[cache] warning: set %s: %v", key, err)
		return
	}
	s.logDebug("set key=%s ttl=%s", key, ttl)
}

// Remove deletes a single key. Backend errors are logged and swallowed.
func (s *Store) Remove(key string) {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(s.fullKey(key))
	})
	if err != nil {
		log.Printf("[cache] warning: remove %s: %v", key, err)
		return
	}
	s.logDebug("removed key=%s", key)
}

// RemoveByPrefix scans the namespaced keyspace and deletes every key sharing
// the prefix. Used to invalidate all cached views of one item after a write.
func (s *Store) RemoveByPrefix(prefix string) {
	full := s.fullKey(prefix)

	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = full
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		log.Printf("[cache] warning: scan prefix %s: %v", prefix, err)
		return
	}

	if len(keys) == 0 {
		return
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("[cache] warning: remove prefix %s: %v", prefix, err)
		return
	}
	s.logDebug("removed %d keys prefix=%s", len(keys), prefix)
}
