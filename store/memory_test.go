package store

import (
	"context"
	"testing"

	"github.com/storeup/shopkit/core"
)

func TestMemoryStoreGetSet(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !core.IsStoreNotFound(err) {
		t.Errorf("Get(missing) error = %v, want store not found", err)
	}

	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Get() = %q, want %q", got, "v")
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Errorf("Get after Delete error = %v, want store not found", err)
	}
}

func TestMemoryStoreBatch(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	kvs := map[string][]byte{"a": []byte("1"), "b": []byte("2")}
	if err := s.BatchSet(ctx, kvs); err != nil {
		t.Fatalf("BatchSet() error = %v", err)
	}

	got, err := s.BatchGet(ctx, []string{"a", "b", "missing"})
	if err != nil {
		t.Fatalf("BatchGet() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("BatchGet() returned %d entries, want 2 (missing keys omitted)", len(got))
	}
	if string(got["a"]) != "1" || string(got["b"]) != "2" {
		t.Errorf("BatchGet() = %v", got)
	}
}

func TestMemoryStoreZSet(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	if _, err := s.ZScore(ctx, "rank", "x"); !core.IsStoreNotFound(err) {
		t.Errorf("ZScore(missing) error = %v, want store not found", err)
	}

	s.ZAdd(ctx, "rank", 10, "a")
	s.ZAdd(ctx, "rank", 30, "b")
	s.ZAdd(ctx, "rank", 20, "c")
	s.ZAdd(ctx, "rank", 20, "aa") // tie broken by member asc

	got, err := s.ZRange(ctx, "rank", 0, 2)
	if err != nil {
		t.Fatalf("ZRange() error = %v", err)
	}
	want := []string{"b", "aa", "c"}
	if len(got) != len(want) {
		t.Fatalf("ZRange() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ZRange() = %v, want %v", got, want)
		}
	}

	score, err := s.ZScore(ctx, "rank", "b")
	if err != nil || score != 30 {
		t.Errorf("ZScore(b) = %v, %v, want 30", score, err)
	}
}
