package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/JakeFAU/jarchive-crawler/internal/storage"
)

func TestBlobStorePutCopiesData(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	payload := []byte("content")
	if err := store.Put(context.Background(), "path/page.html", payload); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	payload[0] = 'C'
	stored, err := store.Get(context.Background(), "path/page.html")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(stored) != "content" {
		t.Fatalf("expected stored copy to be immutable, got %q", stored)
	}
}

func TestBlobStoreGetMiss(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBlobStoreGetReturnsCopy(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	if err := store.Put(context.Background(), "k", []byte("abc")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	first, err := store.Get(context.Background(), "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	first[0] = 'x'
	second, err := store.Get(context.Background(), "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(second) != "abc" {
		t.Fatalf("expected stored blob unchanged, got %q", second)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one stored blob, got %d", store.Len())
	}
}
