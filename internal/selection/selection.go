// Package selection implements the two-step channel binding conversation:
// a command snapshots candidate channels, then a numeric reply commits one
// of them into the tenant's configuration.
package selection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/edgard/relaybot/internal/tenant"
)

var (
	// ErrNoCandidates indicates Begin was called with an empty candidate list.
	ErrNoCandidates = errors.New("no candidate channels")

	// ErrNoPendingSelection indicates Resolve was called while the tenant
	// has no selection in progress.
	ErrNoPendingSelection = errors.New("no pending selection")

	// ErrInvalidInput indicates the reply could not be parsed as an integer.
	ErrInvalidInput = errors.New("invalid selection input")

	// ErrIndexOutOfRange indicates the reply was outside [1, len(candidates)].
	ErrIndexOutOfRange = errors.New("selection index out of range")
)

// Target names the configuration field a selection binds.
type Target int

const (
	// TargetSource binds the channel messages are relayed from.
	TargetSource Target = iota
	// TargetDestination binds the channel messages are relayed to.
	TargetDestination
)

// String implements fmt.Stringer for logging.
func (t Target) String() string {
	switch t {
	case TargetSource:
		return "source"
	case TargetDestination:
		return "destination"
	default:
		return fmt.Sprintf("target(%d)", int(t))
	}
}

// pending is the transient awaiting-choice state for one tenant.
type pending struct {
	target     Target
	candidates []tenant.ChannelRef
}

// Manager owns the per-tenant pending selections and commits resolved
// choices through the tenant store. At most one selection is pending per
// tenant; starting a new one overwrites the previous.
type Manager struct {
	store  tenant.Store
	logger *slog.Logger

	mu      sync.Mutex
	pending map[int64]pending
}

// NewManager creates a selection Manager committing into store.
func NewManager(store tenant.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{
		store:   store,
		logger:  logger.With("component", "selection"),
		pending: make(map[int64]pending),
	}
}

// Begin starts a selection for tenantID, snapshotting candidates. Any
// prior pending selection for the tenant is overwritten. Returns
// ErrNoCandidates when candidates is empty.
func (m *Manager) Begin(tenantID int64, target Target, candidates []tenant.ChannelRef) error {
	if len(candidates) == 0 {
		return ErrNoCandidates
	}

	snapshot := append([]tenant.ChannelRef(nil), candidates...)

	m.mu.Lock()
	m.pending[tenantID] = pending{target: target, candidates: snapshot}
	m.mu.Unlock()

	m.logger.Debug("Selection started",
		"tenant_id", tenantID, "target", target.String(), "candidates", len(snapshot))
	return nil
}

// Pending reports whether the tenant is awaiting a numeric choice.
func (m *Manager) Pending(tenantID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.pending[tenantID]
	return ok
}

// Resolve consumes the tenant's pending selection with the given reply.
// The pending state is cleared on the first attempt whatever the outcome;
// an invalid reply requires starting over with Begin. On success the chosen
// channel is written into the tenant's source or destination binding and
// returned.
func (m *Manager) Resolve(ctx context.Context, tenantID int64, raw string) (tenant.ChannelRef, error) {
	m.mu.Lock()
	p, ok := m.pending[tenantID]
	if ok {
		delete(m.pending, tenantID)
	}
	m.mu.Unlock()

	if !ok {
		return tenant.ChannelRef{}, ErrNoPendingSelection
	}

	index, err := strconv.Atoi(raw)
	if err != nil {
		m.logger.Debug("Selection reply not a number", "tenant_id", tenantID, "input", raw)
		return tenant.ChannelRef{}, ErrInvalidInput
	}
	if index < 1 || index > len(p.candidates) {
		m.logger.Debug("Selection reply out of range",
			"tenant_id", tenantID, "index", index, "candidates", len(p.candidates))
		return tenant.ChannelRef{}, ErrIndexOutOfRange
	}

	chosen := p.candidates[index-1]
	_, err = m.store.Update(ctx, tenantID, func(cfg *tenant.Config) error {
		ref := chosen
		switch p.target {
		case TargetSource:
			cfg.SourceChannel = &ref
		case TargetDestination:
			cfg.DestinationChannel = &ref
		}
		return nil
	})
	if err != nil {
		return tenant.ChannelRef{}, fmt.Errorf("failed to commit %s channel for tenant %d: %w",
			p.target, tenantID, err)
	}

	m.logger.Info("Channel bound",
		"tenant_id", tenantID, "target", p.target.String(),
		"channel_id", chosen.ID, "channel_title", chosen.Title)
	return chosen, nil
}
