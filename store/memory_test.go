package store

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/rushteam/divkit/core"
)

func TestMemoryStore_GetSet(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Close()
	ctx := context.Background()

	if _, err := ms.Get(ctx, "missing"); !core.IsStoreNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := ms.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := ms.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v" {
		t.Fatalf("got %q, want %q", got, "v")
	}

	if err := ms.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := ms.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestMemoryStore_CloseStopsCleanup(t *testing.T) {
	before := runtime.NumGoroutine()

	stores := make([]*MemoryStore, 10)
	for i := range stores {
		stores[i] = NewMemoryStore()
	}
	for _, ms := range stores {
		if err := ms.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
		// 重复 Close 不 panic
		if err := ms.Close(); err != nil {
			t.Fatalf("second Close: %v", err)
		}
	}

	// 清理协程应在 Close 后退出
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if runtime.NumGoroutine() <= before {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("goroutines did not settle: before=%d after=%d", before, runtime.NumGoroutine())
}

func TestMemoryStore_ZSet(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Close()
	ctx := context.Background()

	for member, score := range map[string]float64{"a": 1, "b": 5, "c": 3} {
		if err := ms.ZAdd(ctx, "rank", score, member); err != nil {
			t.Fatalf("ZAdd: %v", err)
		}
	}

	members, err := ms.ZRange(ctx, "rank", 0, -1)
	if err != nil {
		t.Fatalf("ZRange: %v", err)
	}
	want := []string{"b", "c", "a"}
	if len(members) != len(want) {
		t.Fatalf("got %v, want %v", members, want)
	}
	for i := range want {
		if members[i] != want[i] {
			t.Fatalf("got %v, want %v", members, want)
		}
	}

	score, err := ms.ZScore(ctx, "rank", "b")
	if err != nil || score != 5 {
		t.Fatalf("ZScore(b) = %v, %v; want 5, nil", score, err)
	}
	if _, err := ms.ZScore(ctx, "rank", "missing"); !core.IsStoreNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryStore_Hash(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Close()
	ctx := context.Background()

	if err := ms.HSet(ctx, "meta", "0", []byte("x")); err != nil {
		t.Fatalf("HSet: %v", err)
	}
	if err := ms.HSet(ctx, "meta", "1", []byte("y")); err != nil {
		t.Fatalf("HSet: %v", err)
	}

	got, err := ms.HGet(ctx, "meta", "1")
	if err != nil || string(got) != "y" {
		t.Fatalf("HGet = %q, %v; want %q, nil", got, err, "y")
	}

	all, err := ms.HGetAll(ctx, "meta")
	if err != nil {
		t.Fatalf("HGetAll: %v", err)
	}
	if len(all) != 2 || string(all["0"]) != "x" || string(all["1"]) != "y" {
		t.Fatalf("HGetAll = %v", all)
	}

	if _, err := ms.HGet(ctx, "meta", "9"); !core.IsStoreNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
