package storage

import (
	"context"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	key, err := store.Write(ctx, "generated/req-1/out.jpg", []byte("jpeg-bytes"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if key != "generated/req-1/out.jpg" {
		t.Fatalf("unexpected key: %s", key)
	}

	data, err := store.Read(ctx, key)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Fatalf("unexpected data: %q", data)
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	cases := []string{"", "../escape", "a/../../escape"}
	for _, key := range cases {
		if _, err := store.Write(ctx, key, []byte("x")); err == nil {
			t.Fatalf("expected write of %q to fail", key)
		}
		if _, err := store.Read(ctx, key); err == nil {
			t.Fatalf("expected read of %q to fail", key)
		}
	}
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	if _, err := NewFileStore("  "); err == nil {
		t.Fatal("expected error for blank base path")
	}
}
