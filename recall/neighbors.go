package recall

import (
	"context"
	"sort"

	"github.com/storeup/shopkit/core"
	"github.com/storeup/shopkit/pipeline"
	"github.com/storeup/shopkit/pkg/utils"
)

// Neighbors 是基于预计算相似度映射的 i2i 召回源：
// 对购物车中的每个商品取其缓存邻居列表，分数跨种子商品累加。
//
// "我买了这些，还可能要什么"——同一个候选被多个购物车商品指向时分数叠加，
// 排序自然偏向与整个购物车都相关的商品。购物车内商品的剔除交给 filter.InCart。
type Neighbors struct {
	// Similarities 是一次计算/缓存读取得到的全量相似度映射快照
	Similarities core.SimilarityMap

	// Seeds 种子商品（通常是用户购物车中的商品 ID）；
	// 为空时退回 rctx.CartProductIDs
	Seeds []int64
}

func (r *Neighbors) Name() string        { return "recall.neighbors" }
func (r *Neighbors) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *Neighbors) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (r *Neighbors) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	seeds := r.Seeds
	if len(seeds) == 0 && rctx != nil {
		seeds = rctx.CartProductIDs
	}
	if len(seeds) == 0 || len(r.Similarities) == 0 {
		return nil, nil
	}

	scores := make(map[int64]float64)
	for _, seed := range seeds {
		for _, nb := range r.Similarities[seed] {
			scores[nb.ProductID] += nb.Score
		}
	}

	out := make([]*core.Item, 0, len(scores))
	for id, score := range scores {
		it := core.NewItem(id)
		it.Score = score
		it.PutLabel("recall_source", utils.Label{Value: "neighbors", Source: "recall"})
		out = append(out, it)
	}
	// 分数降序，同分按 ID 升序保证结果稳定
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
