package tenant

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// KV is the key-value capability that supplies the store's durability.
// Keys are tenant IDs; values are self-describing serialized records.
type KV interface {
	// Get returns the stored record and whether the key exists.
	Get(ctx context.Context, key int64) ([]byte, bool, error)

	// Put stores the record for key, overwriting any previous value. The
	// write must be durable before Put returns.
	Put(ctx context.Context, key int64, value []byte) error

	// Delete removes the record for key. Deleting a missing key is not
	// an error.
	Delete(ctx context.Context, key int64) error

	// Keys lists all stored keys in unspecified order.
	Keys(ctx context.Context) ([]int64, error)
}

// Store provides access to per-tenant configuration records.
type Store interface {
	// Get retrieves a tenant's configuration. Returns ErrNotFound when
	// the tenant is not registered.
	Get(ctx context.Context, tenantID int64) (*Config, error)

	// Create registers a tenant with a default configuration. Returns
	// ErrAlreadyRegistered when a record already exists.
	Create(ctx context.Context, tenantID int64) (*Config, error)

	// Update applies mutate to the tenant's configuration and persists
	// the result. Returns ErrNotFound when the tenant is not registered.
	// Calls for the same tenant are serialized.
	Update(ctx context.Context, tenantID int64, mutate func(*Config) error) (*Config, error)

	// ListIDs enumerates all registered tenant IDs in unspecified order.
	ListIDs(ctx context.Context) ([]int64, error)
}

// kvStore implements Store on top of a KV capability, serializing records
// as JSON and guarding each tenant's read-modify-write with a keyed mutex.
type kvStore struct {
	kv     KV
	logger *slog.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewStore creates a Store backed by the given KV capability.
func NewStore(kv KV, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &kvStore{
		kv:     kv,
		logger: logger.With("component", "tenant_store"),
		locks:  make(map[int64]*sync.Mutex),
	}
}

// tenantLock returns the mutex serializing operations for one tenant.
func (s *kvStore) tenantLock(tenantID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[tenantID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[tenantID] = l
	}
	return l
}

func (s *kvStore) Get(ctx context.Context, tenantID int64) (*Config, error) {
	raw, found, err := s.kv.Get(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to read record for tenant %d: %w", tenantID, err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return decode(tenantID, raw)
}

func (s *kvStore) Create(ctx context.Context, tenantID int64) (*Config, error) {
	lock := s.tenantLock(tenantID)
	lock.Lock()
	defer lock.Unlock()

	_, found, err := s.kv.Get(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to read record for tenant %d: %w", tenantID, err)
	}
	if found {
		return nil, ErrAlreadyRegistered
	}

	now := time.Now().UTC()
	cfg := &Config{
		TenantID:  tenantID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.write(ctx, cfg); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Tenant registered", "tenant_id", tenantID)
	return cfg, nil
}

func (s *kvStore) Update(ctx context.Context, tenantID int64, mutate func(*Config) error) (*Config, error) {
	lock := s.tenantLock(tenantID)
	lock.Lock()
	defer lock.Unlock()

	cfg, err := s.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if err := mutate(cfg); err != nil {
		return nil, err
	}
	cfg.UpdatedAt = time.Now().UTC()

	if err := s.write(ctx, cfg); err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "Tenant configuration updated", "tenant_id", tenantID)
	return cfg, nil
}

func (s *kvStore) ListIDs(ctx context.Context) ([]int64, error) {
	ids, err := s.kv.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenant ids: %w", err)
	}
	return ids, nil
}

func (s *kvStore) write(ctx context.Context, cfg *Config) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode record for tenant %d: %w", cfg.TenantID, err)
	}
	if err := s.kv.Put(ctx, cfg.TenantID, raw); err != nil {
		return fmt.Errorf("failed to persist record for tenant %d: %w", cfg.TenantID, err)
	}
	return nil
}

func decode(tenantID int64, raw []byte) (*Config, error) {
	cfg := &Config{}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode record for tenant %d: %w", tenantID, err)
	}
	return cfg, nil
}
