package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/storeup/shopkit/core"
	"github.com/storeup/shopkit/pkg/utils"
)

func items(ids ...int64) []*core.Item {
	out := make([]*core.Item, len(ids))
	for i, id := range ids {
		out[i] = core.NewItem(id)
	}
	return out
}

func idsOf(items []*core.Item) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestInCartFilter(t *testing.T) {
	rctx := &core.RecommendContext{
		UserID:         42,
		CartProductIDs: []int64{2, 4},
	}
	f := InCart{}

	tests := []struct {
		id   int64
		want bool
	}{
		{1, false},
		{2, true},
		{3, false},
		{4, true},
	}
	for _, tt := range tests {
		got, err := f.ShouldFilter(context.Background(), rctx, core.NewItem(tt.id))
		if err != nil {
			t.Fatalf("ShouldFilter(%d) error = %v", tt.id, err)
		}
		if got != tt.want {
			t.Errorf("ShouldFilter(%d) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestNodeRemovesAndLabels(t *testing.T) {
	rctx := &core.RecommendContext{CartProductIDs: []int64{2}}
	n := &Node{Filters: []Filter{InCart{}}}
	in := items(1, 2, 3)

	out, err := n.Process(context.Background(), rctx, in)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	got := idsOf(out)
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("Process() kept %v, want [1 3]", got)
	}

	// removed item carries the reason label
	removed := in[1]
	lbl, ok := removed.Labels["filtered"]
	if !ok || lbl.Source != "filter.in_cart" {
		t.Errorf("removed item label = %v, want source filter.in_cart", removed.Labels)
	}
}

type errFilter struct{}

func (errFilter) Name() string { return "err" }
func (errFilter) ShouldFilter(context.Context, *core.RecommendContext, *core.Item) (bool, error) {
	return true, errors.New("boom")
}

func TestNodeSkipsFailingFilter(t *testing.T) {
	n := &Node{Filters: []Filter{errFilter{}}}
	out, err := n.Process(context.Background(), &core.RecommendContext{}, items(1, 2))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	// a failing filter degrades to a no-op, items pass through
	if len(out) != 2 {
		t.Errorf("Process() kept %d items, want 2", len(out))
	}
}

func TestRuleFilter(t *testing.T) {
	rctx := &core.RecommendContext{UserID: 42}

	tests := []struct {
		name string
		expr string
		item func() *core.Item
		want bool // true = filtered out
	}{
		{
			name: "keep high score",
			expr: "item.score > 0.5",
			item: func() *core.Item {
				it := core.NewItem(1)
				it.Score = 0.9
				return it
			},
			want: false,
		},
		{
			name: "drop low score",
			expr: "item.score > 0.5",
			item: func() *core.Item {
				it := core.NewItem(1)
				it.Score = 0.1
				return it
			},
			want: true,
		},
		{
			name: "label match keeps",
			expr: `label.recall_source == "popular"`,
			item: func() *core.Item {
				it := core.NewItem(1)
				it.PutLabel("recall_source", utils.Label{Value: "popular", Source: "recall"})
				return it
			},
			want: false,
		},
		{
			name: "empty expression keeps everything",
			expr: "",
			item: func() *core.Item { return core.NewItem(1) },
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Rule{Expr: tt.expr}
			got, err := r.ShouldFilter(context.Background(), rctx, tt.item())
			if err != nil {
				t.Fatalf("ShouldFilter() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ShouldFilter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRuleFilterEvalErrorKeepsItem(t *testing.T) {
	// accessing a missing label key is an eval error; Node treats it as keep
	n := &Node{Filters: []Filter{&Rule{Expr: `label.no_such_key == "x"`}}}
	out, err := n.Process(context.Background(), &core.RecommendContext{}, items(1))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(out) != 1 {
		t.Errorf("eval error dropped the item")
	}
}
