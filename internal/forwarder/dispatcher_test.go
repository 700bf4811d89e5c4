package forwarder_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/edgard/relaybot/internal/forwarder"
	"github.com/edgard/relaybot/internal/tenant"
)

// fakeStore implements tenant.Store over a plain map.
type fakeStore struct {
	configs map[int64]*tenant.Config
}

func (s *fakeStore) Get(_ context.Context, tenantID int64) (*tenant.Config, error) {
	cfg, ok := s.configs[tenantID]
	if !ok {
		return nil, tenant.ErrNotFound
	}
	return cfg, nil
}

func (s *fakeStore) Create(_ context.Context, tenantID int64) (*tenant.Config, error) {
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

// sentRecord captures one transport call.
type sentRecord struct {
	kind     string
	channel  int64
	text     string
	fileID   string
	filename string
}

// fakeTransport records sends and fails for channels listed in failOn.
type fakeTransport struct {
	mu     sync.Mutex
	sent   []sentRecord
	failOn map[int64]bool
}

func (t *fakeTransport) record(r sentRecord) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failOn[r.channel] {
		return errors.New("send failure")
	}
	t.sent = append(t.sent, r)
	return nil
}

func (t *fakeTransport) SendText(_ context.Context, channelID int64, text string) error {
	return t.record(sentRecord{kind: "text", channel: channelID, text: text})
}

func (t *fakeTransport) SendDocument(_ context.Context, channelID int64, fileID, filename, caption string) error {
	return t.record(sentRecord{kind: "document", channel: channelID, text: caption, fileID: fileID, filename: filename})
}

func (t *fakeTransport) CopyMessage(_ context.Context, toChannelID, _ int64, _ int) error {
	return t.record(sentRecord{kind: "copy", channel: toChannelID})
}

func (t *fakeTransport) ListJoinedChannels(_ context.Context, _ int64) ([]tenant.ChannelRef, error) {
	return nil, nil
}

func (t *fakeTransport) records() []sentRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]sentRecord(nil), t.sent...)
}

func boundTenant(id, source, dest int64, enabled bool) *tenant.Config {
	return &tenant.Config{
		TenantID:           id,
		SourceChannel:      &tenant.ChannelRef{ID: source, Title: "src"},
		DestinationChannel: &tenant.ChannelRef{ID: dest, Title: "dst"},
		ForwardingEnabled:  enabled,
	}
}

func TestDispatchTextPath(t *testing.T) {
	t.Parallel()

	cfg := boundTenant(1, -100, -200, true)
	cfg.SetWordFilter("a", "b")
	cfg.SetWordFilter("b", "c")

	store := &fakeStore{configs: map[int64]*tenant.Config{1: cfg}}
	transport := &fakeTransport{}
	d := forwarder.NewDispatcher(store, transport, nil, 1)

	err := d.Dispatch(context.Background(), &forwarder.InboundMessage{
		OriginChannel: -100,
		MessageID:     10,
		Text:          "a",
	})
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	sent := transport.records()
	if len(sent) != 1 {
		t.Fatalf("expected 1 send, got %d", len(sent))
	}
	if sent[0].kind != "text" || sent[0].channel != -200 {
		t.Errorf("unexpected send: %+v", sent[0])
	}
	// Chained single pass: a -> b -> c.
	if sent[0].text != "c" {
		t.Errorf("expected filtered text %q, got %q", "c", sent[0].text)
	}
}

func TestDispatchDocumentPath(t *testing.T) {
	t.Parallel()

	cfg := boundTenant(1, -100, -200, true)
	cfg.SetWordFilter("draft", "final")
	cfg.SetFileRename("report.pdf", "final.pdf")

	store := &fakeStore{configs: map[int64]*tenant.Config{1: cfg}}
	transport := &fakeTransport{}
	d := forwarder.NewDispatcher(store, transport, nil, 1)

	err := d.Dispatch(context.Background(), &forwarder.InboundMessage{
		OriginChannel: -100,
		MessageID:     11,
		Text:          "the draft version",
		Document:      &forwarder.Attachment{FileID: "file-1", FileName: "report.pdf"},
	})
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	sent := transport.records()
	if len(sent) != 1 {
		t.Fatalf("expected 1 send, got %d", len(sent))
	}
	if sent[0].kind != "document" {
		t.Fatalf("expected document path, got %q", sent[0].kind)
	}
	if sent[0].filename != "final.pdf" {
		t.Errorf("expected renamed file, got %q", sent[0].filename)
	}
	if sent[0].text != "the final version" {
		t.Errorf("expected filtered caption, got %q", sent[0].text)
	}
}

func TestDispatchGenericPath(t *testing.T) {
	t.Parallel()

	store := &fakeStore{configs: map[int64]*tenant.Config{1: boundTenant(1, -100, -200, true)}}
	transport := &fakeTransport{}
	d := forwarder.NewDispatcher(store, transport, nil, 1)

	// No text, no document: the message is copied verbatim.
	err := d.Dispatch(context.Background(), &forwarder.InboundMessage{
		OriginChannel: -100,
		MessageID:     12,
	})
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	sent := transport.records()
	if len(sent) != 1 || sent[0].kind != "copy" {
		t.Fatalf("expected copy path, got %+v", sent)
	}
}

func TestDispatchCaptionedMediaTakesCopyPath(t *testing.T) {
	t.Parallel()

	cfg := boundTenant(1, -100, -200, true)
	cfg.SetWordFilter("look", "see")

	store := &fakeStore{configs: map[int64]*tenant.Config{1: cfg}}
	transport := &fakeTransport{}
	d := forwarder.NewDispatcher(store, transport, nil, 1)

	// A photo with a caption must be copied whole, not reduced to its
	// caption text.
	err := d.Dispatch(context.Background(), &forwarder.InboundMessage{
		OriginChannel: -100,
		MessageID:     14,
		Text:          "look at this",
		HasMedia:      true,
	})
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	sent := transport.records()
	if len(sent) != 1 {
		t.Fatalf("expected 1 send, got %d", len(sent))
	}
	if sent[0].kind != "copy" {
		t.Errorf("expected copy path, got %q", sent[0].kind)
	}
}

func TestDisabledTenantNeverSends(t *testing.T) {
	t.Parallel()

	store := &fakeStore{configs: map[int64]*tenant.Config{1: boundTenant(1, -100, -200, false)}}
	transport := &fakeTransport{}
	d := forwarder.NewDispatcher(store, transport, nil, 1)

	err := d.Dispatch(context.Background(), &forwarder.InboundMessage{
		OriginChannel: -100, MessageID: 13, Text: "hello",
	})
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if len(transport.records()) != 0 {
		t.Errorf("disabled tenant must not trigger a send: %+v", transport.records())
	}
}

func TestUnrelatedOriginSkipped(t *testing.T) {
	t.Parallel()

	store := &fakeStore{configs: map[int64]*tenant.Config{1: boundTenant(1, -100, -200, true)}}
	transport := &fakeTransport{}
	d := forwarder.NewDispatcher(store, transport, nil, 1)

	err := d.Dispatch(context.Background(), &forwarder.InboundMessage{
		OriginChannel: -999, MessageID: 14, Text: "hello",
	})
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if len(transport.records()) != 0 {
		t.Errorf("non-matching origin must not trigger a send: %+v", transport.records())
	}
}

func TestFailureIsolation(t *testing.T) {
	t.Parallel()

	// Two tenants sourced from the same channel; one destination fails.
	store := &fakeStore{configs: map[int64]*tenant.Config{
		1: boundTenant(1, -100, -201, true),
		2: boundTenant(2, -100, -202, true),
	}}
	transport := &fakeTransport{failOn: map[int64]bool{-201: true}}
	d := forwarder.NewDispatcher(store, transport, nil, 1)

	err := d.Dispatch(context.Background(), &forwarder.InboundMessage{
		OriginChannel: -100, MessageID: 15, Text: "hello",
	})
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	sent := transport.records()
	if len(sent) != 1 {
		t.Fatalf("expected delivery to the working destination, got %+v", sent)
	}
	if sent[0].channel != -202 {
		t.Errorf("expected delivery to -202, got %d", sent[0].channel)
	}
}

func TestParallelFanOutDeliversToAll(t *testing.T) {
	t.Parallel()

	configs := make(map[int64]*tenant.Config)
	for id := int64(1); id <= 20; id++ {
		configs[id] = boundTenant(id, -100, -1000-id, true)
	}
	store := &fakeStore{configs: configs}
	transport := &fakeTransport{}
	d := forwarder.NewDispatcher(store, transport, nil, 8)

	err := d.Dispatch(context.Background(), &forwarder.InboundMessage{
		OriginChannel: -100, MessageID: 16, Text: "hello",
	})
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if got := len(transport.records()); got != 20 {
		t.Errorf("expected 20 deliveries, got %d", got)
	}
}

func TestMessageKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  forwarder.InboundMessage
		want forwarder.Kind
	}{
		{name: "text only", msg: forwarder.InboundMessage{Text: "hi"}, want: forwarder.KindText},
		{name: "document with caption", msg: forwarder.InboundMessage{Text: "hi", Document: &forwarder.Attachment{FileID: "f"}}, want: forwarder.KindDocument},
		{name: "document without caption", msg: forwarder.InboundMessage{Document: &forwarder.Attachment{FileID: "f"}}, want: forwarder.KindDocument},
		{name: "media with caption", msg: forwarder.InboundMessage{Text: "hi", HasMedia: true}, want: forwarder.KindGeneric},
		{name: "media without caption", msg: forwarder.InboundMessage{HasMedia: true}, want: forwarder.KindGeneric},
		{name: "neither", msg: forwarder.InboundMessage{}, want: forwarder.KindGeneric},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.msg.Kind(); got != tc.want {
				t.Errorf("Kind() = %v, want %v", got, tc.want)
			}
		})
	}
}
