package blobstore

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	ok, err := store.Exists(ctx, "a/b.json")
	if err != nil || ok {
		t.Fatalf("expected absent object, got ok=%v err=%v", ok, err)
	}

	if _, err := store.Get(ctx, "a/b.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Put(ctx, "a/b.json", []byte("{}")); err != nil {
		t.Fatal(err)
	}
	ok, err = store.Exists(ctx, "a/b.json")
	if err != nil || !ok {
		t.Fatalf("expected present object, got ok=%v err=%v", ok, err)
	}
	data, err := store.Get(ctx, "a/b.json")
	if err != nil || string(data) != "{}" {
		t.Fatalf("unexpected get result %q err=%v", data, err)
	}
}

func TestMemoryStoreList(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, key := range []string{"2024/x/metadata.json","2024/a/metadata.json", "2024/a/transcript.json", "2025/a/metadata.json"} {
		if err := store.Put(ctx, key, []byte("x")); err != nil {
			t.Fatal(err)
		}
	}

	keys, err := store.List(ctx, "2024/a/")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 {
		t.Fatalf("got %d keys: %v", len(keys), keys)
	}
	if keys[0] != "2024/a/metadata.json" || keys[1] != "2024/a/transcript.json" {
		t.Fatalf("unexpected keys %v", keys)
	}
}
