package console

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/metagrid-io/console-client/internal/constants"
)

// Store is the storage backend behind the cache table. Implementations
// return ErrCacheMiss for absent keys.
type Store interface {
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Set(ctx context.Context, namespace, key string, data []byte) error
	Delete(ctx context.Context, namespace, key string) error
	// Clear removes one namespace, or everything when namespace is empty.
	Clear(ctx context.Context, namespace string) error
}

// StoreType selects the cache backend.
type StoreType string

const (
	// StoreTypeMemory is the in-process map store.
	StoreTypeMemory StoreType = "memory"

	// StoreTypeNATS stores entries in a NATS JetStream KV bucket, letting
	// several console instances share schema/type metadata.
	StoreTypeNATS StoreType = "nats"

	// StoreTypeNone disables caching entirely.
	StoreTypeNone StoreType = "none"
)

// MemoryStoreConfig configures the in-memory store.
type MemoryStoreConfig struct {
	// MaxEntries bounds the number of entries kept per namespace.
	MaxEntries int
}

// NATSStoreConfig configures the NATS KV store.
type NATSStoreConfig struct {
	// URL is the NATS server URL (e.g. nats.DefaultURL).
	URL string

	// Bucket is the JetStream KV bucket name.
	Bucket string

	// Options are extra connection options (credentials, TLS).
	Options []nats.Option
}

// StoreConfig selects and configures a cache store backend.
type StoreConfig struct {
	Type   StoreType
	Memory *MemoryStoreConfig
	NATS   *NATSStoreConfig
}

// DefaultStoreConfig returns the in-memory default.
func DefaultStoreConfig() *StoreConfig {
	return &StoreConfig{
		Type:   StoreTypeMemory,
		Memory: &MemoryStoreConfig{MaxEntries: constants.DefaultCacheSize},
	}
}

// NewStoreFromConfig creates a store backend from configuration.
func NewStoreFromConfig(config *StoreConfig) (Store, error) {
	if config == nil {
		config = DefaultStoreConfig()
	}

	switch config.Type {
	case StoreTypeMemory, "":
		maxEntries := 0
		if config.Memory != nil {
			maxEntries = config.Memory.MaxEntries
		}

		return NewMemoryStore(maxEntries), nil

	case StoreTypeNATS:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		return NewNATSStore(config.NATS)

	case StoreTypeNone:
		return NewNoOpStore(), nil

	default:
		return nil, ErrUnsupportedStore
	}
}

// MemoryStore keeps entries in process memory, namespaced per resource
// path. It is safe for concurrent use.
type MemoryStore struct {
	mu         sync.RWMutex
	namespaces map[string]map[string][]byte
	maxEntries int
}

// NewMemoryStore creates an in-memory store. maxEntries <= 0 uses the
// default per-namespace bound.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = constants.DefaultCacheSize
	}

	return &MemoryStore{
		namespaces: make(map[string]map[string][]byte),
		maxEntries: maxEntries,
	}
}

// Get implements Store.Get.
func (s *MemoryStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, ok := s.namespaces[namespace]
	if !ok {
		return nil, ErrCacheMiss
	}

	data, ok := entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}

	return data, nil
}

// Set implements Store.Set.
func (s *MemoryStore) Set(ctx context.Context, namespace, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, ok := s.namespaces[namespace]
	if !ok {
		entries = make(map[string][]byte)
		s.namespaces[namespace] = entries
	}

	if len(entries) >= s.maxEntries {
		// Session metadata namespaces hold a handful of keys; when the
		// bound is hit, dropping the namespace is cheaper than LRU.
		entries = make(map[string][]byte)
		s.namespaces[namespace] = entries
	}

	entries[key] = data

	return nil
}

// Delete implements Store.Delete.
func (s *MemoryStore) Delete(ctx context.Context, namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entries, ok := s.namespaces[namespace]; ok {
		delete(entries, key)
	}

	return nil
}

// Clear implements Store.Clear.
func (s *MemoryStore) Clear(ctx context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if namespace == "" {
		s.namespaces = make(map[string]map[string][]byte)

		return nil
	}

	delete(s.namespaces, namespace)

	return nil
}

// NoOpStore is a store that caches nothing.
type NoOpStore struct{}

// NewNoOpStore creates a store that always misses.
func NewNoOpStore() *NoOpStore {
	return &NoOpStore{}
}

// Get always reports a disabled cache.
func (s *NoOpStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	return nil, ErrCacheDisabled
}

// Set does nothing.
func (s *NoOpStore) Set(ctx context.Context, namespace, key string, data []byte) error {
	return nil
}

// Delete does nothing.
func (s *NoOpStore) Delete(ctx context.Context, namespace, key string) error {
	return nil
}

// Clear does nothing.
func (s *NoOpStore) Clear(ctx context.Context, namespace string) error {
	return nil
}

// NATSStore keeps entries in a NATS JetStream KV bucket.
type NATSStore struct {
	conn *nats.Conn
	kv   nats.KeyValue
}

// NewNATSStore connects to NATS and binds (or creates) the configured
// bucket.
func NewNATSStore(config *NATSStoreConfig) (*NATSStore, error) {
	bucket := config.Bucket
	if bucket == "" {
		bucket = constants.DefaultNATSBucket
	}

	conn, err := nats.Connect(config.URL, config.Options...)
	if err != nil {
		return nil, err
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()

		return nil, err
	}

	kv, err := js.KeyValue(bucket)
	if err != nil {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{Bucket: bucket})
		if err != nil {
			conn.Close()

			return nil, err
		}
	}

	return &NATSStore{conn: conn, kv: kv}, nil
}

// Get implements Store.Get.
func (s *NATSStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	entry, err := s.kv.Get(kvKey(namespace, key))
	if err != nil {
		return nil, ErrCacheMiss
	}

	return entry.Value(), nil
}

// Set implements Store.Set.
func (s *NATSStore) Set(ctx context.Context, namespace, key string, data []byte) error {
	_, err := s.kv.Put(kvKey(namespace, key), data)

	return err
}

// Delete implements Store.Delete.
func (s *NATSStore) Delete(ctx context.Context, namespace, key string) error {
	err := s.kv.Delete(kvKey(namespace, key))
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return err
	}

	return nil
}

// Clear implements Store.Clear.
func (s *NATSStore) Clear(ctx context.Context, namespace string) error {
	keys, err := s.kv.Keys()
	if err != nil {
		if errors.Is(err, nats.ErrNoKeysFound) {
			return nil
		}

		return err
	}

	prefix := ""
	if namespace != "" {
		prefix = kvToken(namespace) + "/"
	}

	for _, key := range keys {
		if prefix != "" && !strings.HasPrefix(key, prefix) {
			continue
		}

		err = s.kv.Purge(key)
		if err != nil {
			return err
		}
	}

	return nil
}

// Close releases the NATS connection.
func (s *NATSStore) Close() {
	s.conn.Close()
}

func kvKey(namespace, key string) string {
	return kvToken(namespace) + "/" + kvToken(key)
}

const kvHexDigits = "0123456789abcdef"

// kvToken maps an arbitrary cache token onto the KV key alphabet.
// Bytes outside the alphabet are hex-escaped behind '=', so the
// encoding is injective and distinct namespaces never share a prefix.
func kvToken(token string) string {
	var b strings.Builder

	for i := range len(token) {
		c := token[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			b.WriteByte(c)
		default:
			b.WriteByte('=')
			b.WriteByte(kvHexDigits[c>>4])
			b.WriteByte(kvHexDigits[c&0x0f])
		}
	}

	return b.String()
}
