package datainfo

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache, err := OpenCache(ctx, filepath.Join(t.TempDir(), "info.db"))
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer cache.Close()

	const path = "/data/source.csv"
	modTime := time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.UTC)
	info := Info{LineCount: 42, ColumnCount: 7}

	if _, ok, err := cache.Lookup(ctx, path, 1024, modTime); err != nil || ok {
		t.Fatalf("Lookup before Store = hit %v, err %v; want miss", ok, err)
	}

	if err := cache.Store(ctx, path, 1024, modTime, info); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, ok, err := cache.Lookup(ctx, path, 1024, modTime)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok || got != info {
		t.Errorf("Lookup = %+v, hit %v; want %+v, hit true", got, ok, info)
	}

	// A changed size or mtime invalidates the entry.
	if _, ok, _ := cache.Lookup(ctx, path, 2048, modTime); ok {
		t.Error("Lookup with changed size hit the cache")
	}
	if _, ok, _ := cache.Lookup(ctx, path, 1024, modTime.Add(time.Second)); ok {
		t.Error("Lookup with changed mtime hit the cache")
	}
}

func TestCache_StoreReplaces(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache, err := OpenCache(ctx, filepath.Join(t.TempDir(), "info.db"))
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer cache.Close()

	const path = "/data/source.csv"
	modTime := time.Now().UTC()

	if err := cache.Store(ctx, path, 10, modTime, Info{LineCount: 1, ColumnCount: 1}); err != nil {
		t.Fatalf("first Store: %v", err)
	}
	want := Info{LineCount: 99, ColumnCount: 3}
	if err := cache.Store(ctx, path, 20, modTime, want); err != nil {
		t.Fatalf("second Store: %v", err)
	}

	got, ok, err := cache.Lookup(ctx, path, 20, modTime)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok || got != want {
		t.Errorf("Lookup after replace = %+v, hit %v; want %+v, hit true", got, ok, want)
	}
}
