// Package recommend 是推荐对外门面：封装相似度计算、缓存读写与
// 购物车推荐的完整链路，调用方只需要商品 ID 列表。
package recommend

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/storeup/shopkit/core"
	"github.com/storeup/shopkit/filter"
	"github.com/storeup/shopkit/pipeline"
	"github.com/storeup/shopkit/recall"
	"github.com/storeup/shopkit/rerank"
	"github.com/storeup/shopkit/similarity"
)

// DefaultCacheKey 是相似度映射的缓存 key（整张映射作为单个 value）。
const DefaultCacheKey = "shop:product_sims:v1"

// DefaultTTL 是相似度缓存的过期秒数（1 小时）。
const DefaultTTL = 60 * 60

// DefaultTopK 是每个商品缓存的邻居数默认值。
const DefaultTopK = similarity.DefaultTopK

// Recommender 是推荐门面。
//
// 相似度映射按“整体计算、整体替换”的批发模式维护：缓存命中直接用快照，
// 缺失或过期时同步重算并回填，绝不增量修补单个商品的邻居。
type Recommender struct {
	Catalog core.Catalog
	Store   core.Store
	Engine  *similarity.Engine

	// Popular 冷启动兜底召回，nil 时空购物车返回空结果
	Popular *recall.Popular

	// TopK 每个商品缓存的邻居数，<=0 使用 DefaultTopK
	TopK int

	// CacheKey 缓存 key，空串使用 DefaultCacheKey
	CacheKey string

	// TTL 缓存过期秒数，<=0 使用 DefaultTTL
	TTL int
}

func (r *Recommender) cacheKey() string {
	if r.CacheKey != "" {
		return r.CacheKey
	}
	return DefaultCacheKey
}

func (r *Recommender) ttl() int {
	if r.TTL > 0 {
		return r.TTL
	}
	return DefaultTTL
}

func (r *Recommender) topK() int {
	if r.TopK > 0 {
		return r.TopK
	}
	return DefaultTopK
}

// ComputeSimilarities 同步计算全量相似度映射，不读也不写缓存。
func (r *Recommender) ComputeSimilarities(ctx context.Context) (core.SimilarityMap, error) {
	return r.Engine.Compute(ctx, r.topK())
}

// WarmCache 重算全量相似度映射并整体写入缓存，返回写入的映射。
// 通常由定时任务或数据变更钩子调用。
func (r *Recommender) WarmCache(ctx context.Context) (core.SimilarityMap, error) {
	return r.warm(ctx, r.topK())
}

func (r *Recommender) warm(ctx context.Context, topK int) (core.SimilarityMap, error) {
	sims, err := r.Engine.Compute(ctx, topK)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(sims)
	if err != nil {
		return nil, err
	}
	if err := r.Store.Set(ctx, r.cacheKey(), data, r.ttl()); err != nil {
		return nil, err
	}
	return sims, nil
}

// SimilarProducts 返回与指定商品最相似的至多 limit 个商品 ID（分数降序）。
//
// 缓存缺失或过期时同步重算并回填；商品不在映射中（下架/未知 ID）返回空列表。
func (r *Recommender) SimilarProducts(ctx context.Context, productID int64, limit int) ([]int64, error) {
	// limit 超过默认邻居深度时，重算用更大的 topK，避免缓存截断吞掉结果
	topK := r.topK()
	if limit > topK {
		topK = limit
	}
	sims, err := r.similarities(ctx, topK)
	if err != nil {
		return nil, err
	}

	neighbors := sims[productID]
	if limit > 0 && len(neighbors) > limit {
		neighbors = neighbors[:limit]
	}
	ids := make([]int64, len(neighbors))
	for i, nb := range neighbors {
		ids[i] = nb.ProductID
	}
	return ids, nil
}

// ForUserCart 基于用户当前购物车推荐至多 limit 个商品 ID。
//
// 购物车为空时走人气兜底；否则以购物车商品为种子做 i2i 召回，
// 剔除购物车内已有商品后截断。购物车状态实时读取，不参与缓存。
func (r *Recommender) ForUserCart(ctx context.Context, userID int64, limit int) ([]int64, error) {
	cartIDs, err := r.Catalog.UserCartProductIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	rctx := &core.RecommendContext{
		UserID:         userID,
		CartProductIDs: cartIDs,
	}

	if len(cartIDs) == 0 {
		return r.popularFallback(ctx, rctx, limit)
	}

	sims, err := r.similarities(ctx, r.topK())
	if err != nil {
		return nil, err
	}

	p := &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			&recall.Neighbors{Similarities: sims},
			&filter.Node{Filters: []filter.Filter{filter.InCart{}}},
			&rerank.TopN{N: limit},
		},
	}
	items, err := p.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}
	return itemIDs(items), nil
}

// similarities 读缓存快照，缺失或过期时按 topK 同步重算并回填。
func (r *Recommender) similarities(ctx context.Context, topK int) (core.SimilarityMap, error) {
	if data, err := r.Store.Get(ctx, r.cacheKey()); err == nil {
		var sims core.SimilarityMap
		if err := json.Unmarshal(data, &sims); err == nil {
			return sims, nil
		}
		// 缓存损坏按缺失处理，走重算
	}
	return r.warm(ctx, topK)
}

func (r *Recommender) popularFallback(ctx context.Context, rctx *core.RecommendContext, limit int) ([]int64, error) {
	if r.Popular == nil {
		return []int64{}, nil
	}
	items, err := r.Popular.Recall(ctx, rctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return itemIDs(items), nil
}

func itemIDs(items []*core.Item) []int64 {
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		if it != nil {
			ids = append(ids, it.ID)
		}
	}
	return ids
}
