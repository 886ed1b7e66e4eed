//go:build integration

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nahomWM/Quantum-Qr-Code/internal/testutil"
)

func newPostgresTestEnv(t *testing.T) (context.Context, *Postgres) {
	t.Helper()

	databaseURL := testutil.RequireEnv(t, "TEST_DATABASE_URL")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	s, err := NewPostgres(ctx, databaseURL)
	if err != nil {
		t.Fatalf("connect to Postgres: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	release, err := testutil.AcquireDBLock(ctx, s.Pool())
	if err != nil {
		t.Fatalf("acquire DB lock: %v", err)
	}
	t.Cleanup(func() { _ = release() })

	if err := testutil.ResetDocuments(ctx, s.Pool()); err != nil {
		t.Fatalf("reset documents: %v", err)
	}

	return ctx, s
}

func TestIntegrationPostgres_RoundTrip(t *testing.T) {
	ctx, s := newPostgresTestEnv(t)

	key := AnalyticsKey(testutil.UniqueID("code"))
	if err := s.Put(ctx, key, []byte(`{"total":3}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	doc, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(doc) != `{"total":3}` && string(doc) != `{"total": 3}` {
		t.Errorf("doc = %s", doc)
	}

	// Overwrite is last-write-wins.
	if err := s.Put(ctx, key, []byte(`{"total":4}`)); err != nil {
		t.Fatalf("Put overwrite failed: %v", err)
	}
	doc, err = s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get after overwrite failed: %v", err)
	}
	if string(doc) == `{"total":3}` {
		t.Error("overwrite did not replace the document")
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
}

func TestIntegrationPostgres_ListByPrefix(t *testing.T) {
	ctx, s := newPostgresTestEnv(t)

	for _, id := range []string{"a", "b"} {
		if err := s.Put(ctx, CodeKey(id), []byte("{}")); err != nil {
			t.Fatalf("Put %s failed: %v", id, err)
		}
	}
	if err := s.Put(ctx, PayloadKey("x"), []byte("{}")); err != nil {
		t.Fatalf("Put payload failed: %v", err)
	}

	keys, err := s.List(ctx, codeKeyPrefix)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("List returned %d keys, want 2: %v", len(keys), keys)
	}
}
