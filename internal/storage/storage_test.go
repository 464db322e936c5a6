package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storage.json")

	store, err := OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.SetItem("token", "abc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.SetItem("user", `{"id":"u1"}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.RemoveItem("user"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	reopened, err := OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if val, ok := reopened.GetItem("token"); !ok || val != "abc" {
		t.Fatalf("expected token abc after reopen, got %q (%v)", val, ok)
	}
	if _, ok := reopened.GetItem("user"); ok {
		t.Fatalf("expected user to stay removed")
	}
}

func TestFileStoreCorruptDocumentStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	store, err := OpenFile(path)
	if err != nil {
		t.Fatalf("expected corrupt file to open, got %v", err)
	}
	if _, ok := store.GetItem("token"); ok {
		t.Fatalf("expected empty store")
	}
}

func TestMemoryRemoveMissingKey(t *testing.T) {
	m := NewMemory()
	if err := m.RemoveItem("nothing"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	_ = m.SetItem("k", "v")
	if val, _ := m.GetItem("k"); val != "v" {
		t.Fatalf("expected v, got %q", val)
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	store, err := OpenRedis(url, "swms-test")
	if err != nil {
		t.Fatalf("open redis: %v", err)
	}
	defer store.Close()

	if err := store.SetItem("token", "xyz"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if val, ok := store.GetItem("token"); !ok || val != "xyz" {
		t.Fatalf("expected xyz, got %q", val)
	}
	if err := store.RemoveItem("token"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := store.GetItem("token"); ok {
		t.Fatalf("expected token removed")
	}
}
