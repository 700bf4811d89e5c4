package forwarder

import (
	"context"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/edgard/relaybot/internal/filter"
	"github.com/edgard/relaybot/internal/tenant"
)

// Dispatcher relays inbound channel posts. For every event it scans the
// tenant set, transforms the payload per tenant, and sends it to that
// tenant's destination. Tenants are isolated: one destination failing is
// logged and never stops the others.
type Dispatcher struct {
	store     tenant.Store
	transport Transport
	logger    *slog.Logger
	maxSends  int
}

// NewDispatcher creates a Dispatcher. maxParallelSends bounds the
// per-event fan-out; values below 1 are clamped to sequential processing.
func NewDispatcher(store tenant.Store, transport Transport, logger *slog.Logger, maxParallelSends int) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if maxParallelSends < 1 {
		maxParallelSends = 1
	}
	return &Dispatcher{
		store:     store,
		transport: transport,
		logger:    logger.With("component", "dispatcher"),
		maxSends:  maxParallelSends,
	}
}

// Dispatch processes one inbound event. It returns an error only when the
// tenant set itself cannot be enumerated; per-tenant failures are logged
// and swallowed.
func (d *Dispatcher) Dispatch(ctx context.Context, msg *InboundMessage) error {
	ids, err := d.store.ListIDs(ctx)
	if err != nil {
		d.logger.ErrorContext(ctx, "Failed to enumerate tenants", "error", err)
		return err
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(d.maxSends)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			d.forwardForTenant(gCtx, id, msg)
			return nil
		})
	}

	// Every goroutine returns nil; Wait only orders completion.
	_ = g.Wait()
	return nil
}

// forwardForTenant relays one message for one tenant, or does nothing when
// the tenant's binding does not match. All failures end here.
func (d *Dispatcher) forwardForTenant(ctx context.Context, tenantID int64, msg *InboundMessage) {
	log := d.logger.With("tenant_id", tenantID, "origin_channel", msg.OriginChannel)

	cfg, err := d.store.Get(ctx, tenantID)
	if err != nil {
		log.WarnContext(ctx, "Failed to load tenant configuration", "error", err)
		return
	}

	if !cfg.ForwardingEnabled {
		return
	}
	if cfg.SourceChannel == nil || cfg.SourceChannel.ID != msg.OriginChannel {
		return
	}
	if cfg.DestinationChannel == nil {
		log.DebugContext(ctx, "Forwarding enabled but destination unset, skipping")
		return
	}
	dest := cfg.DestinationChannel.ID

	text := filter.ApplyTextFilters(msg.Text, cfg.WordFilters)

	switch msg.Kind() {
	case KindText:
		err = d.transport.SendText(ctx, dest, text)
	case KindDocument:
		name := filter.ApplyFileRename(msg.Document.FileName, cfg.FileRenameFilters)
		err = d.transport.SendDocument(ctx, dest, msg.Document.FileID, name, text)
	case KindGeneric:
		err = d.transport.CopyMessage(ctx, dest, msg.OriginChannel, msg.MessageID)
	}

	if err != nil {
		log.ErrorContext(ctx, "Failed to relay message",
			"destination_channel", dest, "message_id", msg.MessageID, "error", err)
		return
	}

	log.DebugContext(ctx, "Message relayed",
		"destination_channel", dest, "message_id", msg.MessageID)
}
