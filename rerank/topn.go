package rerank

import (
	"context"

	"github.com/storeup/shopkit/core"
	"github.com/storeup/shopkit/pipeline"
)

// TopN 是一个 Top-N 截断节点，用于在排序后截取前 N 个商品。
// 通常放在 Pipeline 末尾，把候选截断到对外返回的 limit。
type TopN struct {
	// N 要保留的商品数量（Top N）
	// 如果 N <= 0 或 N >= len(items)，则返回所有商品（不截断）
	N int
}

func (n *TopN) Name() string {
	return "rerank.topn"
}

func (n *TopN) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopN) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.N <= 0 || len(items) <= n.N {
		return items, nil
	}
	return items[:n.N], nil
}
