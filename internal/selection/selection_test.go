package selection_test

import (
	"context"
	"errors"
	"testing"

	"github.com/edgard/relaybot/internal/selection"
	"github.com/edgard/relaybot/internal/tenant"
)

// fakeStore implements tenant.Store for selection tests.
type fakeStore struct {
	configs map[int64]*tenant.Config
}

func newFakeStore(ids ...int64) *fakeStore {
	s := &fakeStore{configs: make(map[int64]*tenant.Config)}
	for _, id := range ids {
		s.configs[id] = &tenant.Config{TenantID: id}
	}
	return s
}

func (s *fakeStore) Get(_ context.Context, tenantID int64) (*tenant.Config, error) {
	cfg, ok := s.configs[tenantID]
	if !ok {
		return nil, tenant.ErrNotFound
	}
	return cfg, nil
}

func (s *fakeStore) Create(_ context.Context, tenantID int64) (*tenant.Config, error) {
	if _, ok := s.configs[tenantID]; ok {
		return nil, tenant.ErrAlreadyRegistered
	}
	cfg := &tenant.Config{TenantID: tenantID}
	s.configs[tenantID] = cfg
	return cfg, nil
}

func (s *fakeStore) Update(ctx context.Context, tenantID int64, mutate func(*tenant.Config) error) (*tenant.Config, error) {
	cfg, err := s.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if err := mutate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *fakeStore) ListIDs(_ context.Context) ([]int64, error) {
	ids := make([]int64, 0, len(s.configs))
	for id := range s.configs {
		ids = append(ids, id)
	}
	return ids, nil
}

func candidates() []tenant.ChannelRef {
	return []tenant.ChannelRef{
		{ID: -100, Title: "News"},
		{ID: -200, Title: "Deals"},
		{ID: -300, Title: "Archive"},
	}
}

func TestBeginRequiresCandidates(t *testing.T) {
	t.Parallel()

	m := selection.NewManager(newFakeStore(1), nil)
	if err := m.Begin(1, selection.TargetSource, nil); !errors.Is(err, selection.ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
	if m.Pending(1) {
		t.Error("failed Begin must not leave a pending selection")
	}
}

func TestResolveCommitsSource(t *testing.T) {
	t.Parallel()

	store := newFakeStore(1)
	m := selection.NewManager(store, nil)

	if err := m.Begin(1, selection.TargetSource, candidates()); err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	if !m.Pending(1) {
		t.Fatal("expected pending selection after Begin")
	}

	chosen, err := m.Resolve(context.Background(), 1, "2")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if chosen.ID != -200 {
		t.Errorf("expected channel -200, got %d", chosen.ID)
	}
	if m.Pending(1) {
		t.Error("selection must be cleared after successful Resolve")
	}

	cfg := store.configs[1]
	if cfg.SourceChannel == nil || cfg.SourceChannel.ID != -200 {
		t.Errorf("source channel not committed: %+v", cfg.SourceChannel)
	}
	if cfg.DestinationChannel != nil {
		t.Error("destination channel must stay unset")
	}
}

func TestResolveCommitsDestination(t *testing.T) {
	t.Parallel()

	store := newFakeStore(1)
	m := selection.NewManager(store, nil)

	if err := m.Begin(1, selection.TargetDestination, candidates()); err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	if _, err := m.Resolve(context.Background(), 1, "3"); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	cfg := store.configs[1]
	if cfg.DestinationChannel == nil || cfg.DestinationChannel.ID != -300 {
		t.Errorf("destination channel not committed: %+v", cfg.DestinationChannel)
	}
}

func TestResolveWithoutBegin(t *testing.T) {
	t.Parallel()

	m := selection.NewManager(newFakeStore(1), nil)
	if _, err := m.Resolve(context.Background(), 1, "1"); !errors.Is(err, selection.ErrNoPendingSelection) {
		t.Fatalf("expected ErrNoPendingSelection, got %v", err)
	}
}

func TestResolveAfterSuccessFails(t *testing.T) {
	t.Parallel()

	m := selection.NewManager(newFakeStore(1), nil)
	if err := m.Begin(1, selection.TargetSource, candidates()); err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	if _, err := m.Resolve(context.Background(), 1, "1"); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if _, err := m.Resolve(context.Background(), 1, "1"); !errors.Is(err, selection.ErrNoPendingSelection) {
		t.Fatalf("expected ErrNoPendingSelection after consuming selection, got %v", err)
	}
}

func TestInvalidInputConsumesSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "not a number", input: "first", wantErr: selection.ErrInvalidInput},
		{name: "zero index", input: "0", wantErr: selection.ErrIndexOutOfRange},
		{name: "past the end", input: "99", wantErr: selection.ErrIndexOutOfRange},
		{name: "negative", input: "-1", wantErr: selection.ErrIndexOutOfRange},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := newFakeStore(1)
			m := selection.NewManager(store, nil)
			if err := m.Begin(1, selection.TargetSource, candidates()); err != nil {
				t.Fatalf("Begin returned error: %v", err)
			}

			if _, err := m.Resolve(context.Background(), 1, tc.input); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}

			// The candidate list is consumed by the first reply regardless
			// of validity; a now-valid index must fail.
			if _, err := m.Resolve(context.Background(), 1, "1"); !errors.Is(err, selection.ErrNoPendingSelection) {
				t.Fatalf("expected ErrNoPendingSelection on retry, got %v", err)
			}
			if store.configs[1].SourceChannel != nil {
				t.Error("failed selection must not bind a channel")
			}
		})
	}
}

func TestBeginOverwritesPrior(t *testing.T) {
	t.Parallel()

	store := newFakeStore(1)
	m := selection.NewManager(store, nil)

	if err := m.Begin(1, selection.TargetSource, candidates()); err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	// Starting a destination selection replaces the pending source one.
	second := []tenant.ChannelRef{{ID: -999, Title: "Other"}}
	if err := m.Begin(1, selection.TargetDestination, second); err != nil {
		t.Fatalf("second Begin returned error: %v", err)
	}

	chosen, err := m.Resolve(context.Background(), 1, "1")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if chosen.ID != -999 {
		t.Errorf("expected overwritten candidates, got channel %d", chosen.ID)
	}
	if store.configs[1].SourceChannel != nil {
		t.Error("overwritten source selection must not be committed")
	}
	if store.configs[1].DestinationChannel == nil || store.configs[1].DestinationChannel.ID != -999 {
		t.Errorf("destination not committed: %+v", store.configs[1].DestinationChannel)
	}
}

func TestResolveUnregisteredTenant(t *testing.T) {
	t.Parallel()

	// Pending selection exists but the record vanished: Update's NotFound
	// propagates and the selection stays consumed.
	m := selection.NewManager(newFakeStore(), nil)
	if err := m.Begin(1, selection.TargetSource, candidates()); err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	if _, err := m.Resolve(context.Background(), 1, "1"); !errors.Is(err, tenant.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if m.Pending(1) {
		t.Error("selection must be consumed even when the commit fails")
	}
}
