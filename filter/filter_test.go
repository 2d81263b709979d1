package filter

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rushteam/divkit/core"
	"github.com/rushteam/divkit/pkg/utils"
	"github.com/rushteam/divkit/pkg/vocab"
	"github.com/rushteam/divkit/sparse"
	"github.com/rushteam/divkit/store"
)

func makeItems(ids ...string) []*core.Item {
	items := make([]*core.Item, len(ids))
	for i, id := range ids {
		items[i] = core.NewItem(id)
	}
	return items
}

func itemIDs(items []*core.Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func TestBlacklistFilter(t *testing.T) {
	node := &FilterNode{Filters: []Filter{
		NewBlacklistFilter([]string{"b"}, nil, ""),
	}}

	out, err := node.Process(context.Background(), nil, makeItems("a", "b", "c"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	got := itemIDs(out)
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("got %v, want [a c]", got)
	}
}

func TestBlacklistFilter_Store(t *testing.T) {
	kv := store.NewMemoryStore()
	defer kv.Close()
	ctx := context.Background()

	data, _ := json.Marshal([]string{"a"})
	if err := kv.Set(ctx, "blacklist:global", data); err != nil {
		t.Fatalf("Set: %v", err)
	}

	f := NewBlacklistFilter(nil, NewStoreAdapter(kv), "blacklist:global")
	filtered, err := f.ShouldFilter(ctx, nil, core.NewItem("a"))
	if err != nil || !filtered {
		t.Fatalf("ShouldFilter(a) = %v, %v; want true, nil", filtered, err)
	}
	filtered, err = f.ShouldFilter(ctx, nil, core.NewItem("b"))
	if err != nil || filtered {
		t.Fatalf("ShouldFilter(b) = %v, %v; want false, nil", filtered, err)
	}
}

func TestInteractedFilter(t *testing.T) {
	users := vocab.New([]string{"u0", "u1"})
	items := vocab.New([]string{"a", "b", "c"})
	train, err := sparse.NewFromEntries(2, 3, []sparse.Entry{
		{Row: 0, Col: 0, Value: 1},
		{Row: 0, Col: 2, Value: 1},
	})
	if err != nil {
		t.Fatalf("NewFromEntries: %v", err)
	}

	node := &FilterNode{Filters: []Filter{
		&InteractedFilter{Train: train, Users: users, Items: items},
	}}

	// u0 交互过 a 和 c
	rctx := &core.RecommendContext{UserID: "u0"}
	out, err := node.Process(context.Background(), rctx, makeItems("a", "b", "c"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	got := itemIDs(out)
	if len(got) != 1 || got[0] != "b" {
		t.Fatalf("got %v, want [b]", got)
	}

	// 未知用户不过滤
	rctx = &core.RecommendContext{UserID: "stranger"}
	out, err = node.Process(context.Background(), rctx, makeItems("a", "b", "c"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("unknown user: got %d items, want 3", len(out))
	}
}

func TestLabelFilter(t *testing.T) {
	items := makeItems("a", "b")
	items[0].PutLabel("cold_start", utils.Label{Value: "true", Source: "recall"})

	node := &FilterNode{Filters: []Filter{
		&LabelFilter{Expr: `label.cold_start == "true"`},
	}}

	out, err := node.Process(context.Background(), &core.RecommendContext{UserID: "u0"}, items)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	got := itemIDs(out)
	if len(got) != 1 || got[0] != "b" {
		t.Fatalf("got %v, want [b]", got)
	}
}

func TestLabelFilter_EmptyExpr(t *testing.T) {
	f := &LabelFilter{}
	filtered, err := f.ShouldFilter(context.Background(), nil, core.NewItem("a"))
	if err != nil || filtered {
		t.Fatalf("empty expr: got %v, %v; want false, nil", filtered, err)
	}
}
