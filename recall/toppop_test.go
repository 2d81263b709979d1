package recall

import (
	"context"
	"testing"

	"github.com/rushteam/divkit/core"
	"github.com/rushteam/divkit/pkg/vocab"
	"github.com/rushteam/divkit/sparse"
	"github.com/rushteam/divkit/store"
)

func newTestTopPop(t *testing.T) (*TopPop, *vocab.Vocab) {
	t.Helper()
	items := vocab.New([]string{"a", "b", "c"})
	// 流行度：a=1, b=5, c=3
	train, _ := sparse.NewFromEntries(2, 3, []sparse.Entry{
		{Row: 0, Col: 0, Value: 1},
		{Row: 0, Col: 1, Value: 2},
		{Row: 1, Col: 1, Value: 3},
		{Row: 1, Col: 2, Value: 3},
	})
	tp, err := NewTopPopFromMatrix(train, items)
	if err != nil {
		t.Fatalf("NewTopPopFromMatrix() error = %v", err)
	}
	return tp, items
}

func TestTopPop_Ordering(t *testing.T) {
	tp, _ := newTestTopPop(t)
	tokens, scores := tp.Top(3)
	want := []string{"b", "c", "a"}
	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("Top(3) = %v, want %v", tokens, want)
		}
	}
	if scores[0] != 5 || scores[1] != 3 || scores[2] != 1 {
		t.Fatalf("scores = %v, want [5 3 1]", scores)
	}

	// k 超出长度时返回全部
	tokens, _ = tp.Top(10)
	if len(tokens) != 3 {
		t.Fatalf("Top(10) len = %d, want 3", len(tokens))
	}
}

func TestTopPop_TopWithin(t *testing.T) {
	tp, _ := newTestTopPop(t)
	tokens, scores, err := tp.TopWithin([]int{0, 2}, 2)
	if err != nil {
		t.Fatalf("TopWithin() error = %v", err)
	}
	if tokens[0] != "c" || tokens[1] != "a" {
		t.Fatalf("TopWithin() = %v, want [c a]", tokens)
	}
	if scores[0] != 3 || scores[1] != 1 {
		t.Fatalf("scores = %v, want [3 1]", scores)
	}

	if _, _, err := tp.TopWithin([]int{5}, 1); !core.IsDimensionMismatch(err) {
		t.Fatalf("TopWithin(out of range) error = %v, want DIMENSION_MISMATCH", err)
	}
}

func TestTopPop_SaveLoadRoundTrip(t *testing.T) {
	tp, items := newTestTopPop(t)
	kv := store.NewMemoryStore()
	defer kv.Close()

	ctx := context.Background()
	if err := tp.Save(ctx, kv, "toppop:test"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadTopPop(ctx, kv, "toppop:test", items)
	if err != nil {
		t.Fatalf("LoadTopPop() error = %v", err)
	}
	gotTokens, gotScores := loaded.Top(3)
	wantTokens, wantScores := tp.Top(3)
	for i := range wantTokens {
		if gotTokens[i] != wantTokens[i] || gotScores[i] != wantScores[i] {
			t.Fatalf("loaded = %v %v, want %v %v", gotTokens, gotScores, wantTokens, wantScores)
		}
	}
}

func TestLoadTopPop_Missing(t *testing.T) {
	kv := store.NewMemoryStore()
	defer kv.Close()
	_, err := LoadTopPop(context.Background(), kv, "toppop:absent", vocab.New([]string{"a"}))
	if !core.IsNotFound(err) {
		t.Fatalf("LoadTopPop() error = %v, want NOT_FOUND", err)
	}
}

func TestTopPopSource_Recall(t *testing.T) {
	tp, _ := newTestTopPop(t)
	src := &TopPopSource{TopPop: tp, TopK: 2}
	items, err := src.Recall(context.Background(), &core.RecommendContext{UserID: "anyone"})
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	if len(items) != 2 || items[0].ID != "b" || items[1].ID != "c" {
		t.Fatalf("items = %v, want [b c]", items)
	}
}
