package database_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/edgard/relaybot/internal/database"
	"github.com/edgard/relaybot/internal/tenant"
)

func openTestDB(t *testing.T) *testDB {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB returned error: %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })

	return &testDB{
		kv:       database.NewTenantKV(db, nil),
		channels: database.NewChannelStore(db, nil),
	}
}

type testDB struct {
	kv       *database.TenantKV
	channels database.ChannelStore
}

func TestTenantKVRoundTrip(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	_, found, err := db.kv.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if found {
		t.Fatal("expected no record before Put")
	}

	record := []byte(`{"tenant_id":1,"forwarding_enabled":true}`)
	if err := db.kv.Put(ctx, 1, record); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	got, found, err := db.kv.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !found {
		t.Fatal("expected record after Put")
	}
	if string(got) != string(record) {
		t.Errorf("record mismatch: got %s want %s", got, record)
	}

	// Overwrite.
	updated := []byte(`{"tenant_id":1,"forwarding_enabled":false}`)
	if err := db.kv.Put(ctx, 1, updated); err != nil {
		t.Fatalf("second Put returned error: %v", err)
	}
	got, _, err = db.kv.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if string(got) != string(updated) {
		t.Errorf("overwrite not applied: got %s", got)
	}
}

func TestTenantKVKeysAndDelete(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	for _, id := range []int64{10, 20, 30} {
		if err := db.kv.Put(ctx, id, []byte(`{}`)); err != nil {
			t.Fatalf("Put(%d) returned error: %v", id, err)
		}
	}

	keys, err := db.kv.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys returned error: %v", err)
	}
	if len(keys) != 3 {
		t.Fatalf("expected 3 keys, got %v", keys)
	}

	if err := db.kv.Delete(ctx, 20); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	// Deleting a missing key is not an error.
	if err := db.kv.Delete(ctx, 20); err != nil {
		t.Fatalf("Delete of missing key returned error: %v", err)
	}

	keys, err = db.kv.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys returned error: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("expected 2 keys after delete, got %v", keys)
	}
}

func TestStoreOverSQLiteKV(t *testing.T) {
	t.Parallel()

	// The tenant store with the real KV behind it.
	db := openTestDB(t)
	store := tenant.NewStore(db.kv, nil)
	ctx := context.Background()

	if _, err := store.Create(ctx, 7); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	_, err := store.Update(ctx, 7, func(c *tenant.Config) error {
		c.SetWordFilter("a", "b")
		c.SourceChannel = &tenant.ChannelRef{ID: -1, Title: "src"}
		return nil
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	got, err := store.Get(ctx, 7)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.SourceChannel == nil || got.SourceChannel.ID != -1 {
		t.Errorf("source channel not persisted: %+v", got.SourceChannel)
	}
	if len(got.WordFilters) != 1 || got.WordFilters[0].Old != "a" {
		t.Errorf("word filters not persisted: %+v", got.WordFilters)
	}
}

func TestChannelStore(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	if err := db.channels.Record(ctx, tenant.ChannelRef{ID: -100, Title: "News"}); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if err := db.channels.Record(ctx, tenant.ChannelRef{ID: -200, Title: "Deals"}); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	// Re-recording refreshes the title.
	if err := db.channels.Record(ctx, tenant.ChannelRef{ID: -100, Title: "Breaking News"}); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}

	refs, err := db.channels.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 channels, got %v", refs)
	}
	// Ordered by title: "Breaking News" before "Deals".
	if refs[0].ID != -100 || refs[0].Title != "Breaking News" {
		t.Errorf("unexpected first channel: %+v", refs[0])
	}

	if err := db.channels.Remove(ctx, -200); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	refs, err = db.channels.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(refs) != 1 {
		t.Errorf("expected 1 channel after Remove, got %v", refs)
	}
}

func TestChannelPrune(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	if err := db.channels.Record(ctx, tenant.ChannelRef{ID: -1, Title: "Fresh"}); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}

	// Everything was just recorded; a generous retention prunes nothing.
	pruned, err := db.channels.Prune(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Prune returned error: %v", err)
	}
	if pruned != 0 {
		t.Errorf("expected 0 pruned, got %d", pruned)
	}

	// Zero retention prunes everything seen before now.
	pruned, err = db.channels.Prune(ctx, -time.Second)
	if err != nil {
		t.Fatalf("Prune returned error: %v", err)
	}
	if pruned != 1 {
		t.Errorf("expected 1 pruned, got %d", pruned)
	}
}
