package recall

import (
	"context"
	"sort"
	"strconv"

	"github.com/storeup/shopkit/core"
	"github.com/storeup/shopkit/feature"
	"github.com/storeup/shopkit/pipeline"
	"github.com/storeup/shopkit/pkg/utils"
)

// Popular 是人气召回源，用于没有任何购物车历史的冷启动兜底。
//
// 取数优先级：
//  1. Store 实现了 KeyValueStore 且配置了 Key：ZRange 读取人气榜 TopN
//  2. Catalog：有货商品按 best_selling 降序、featured 降序排序
//  3. IDs：内存静态列表（配置驱动/demo 场景）
//
// 配置了 Stats（如 Feast 在线特征）时，用实时统计值对目录候选重排；
// 统计源失败只降级为旗标排序，不向上抛错。
type Popular struct {
	Catalog core.Catalog

	Store core.Store
	Key   string // 人气榜 zset key，例如 "shop:popular:v1"

	// Stats 可选的实时统计源；StatsFeature 是用于排序的特征名
	Stats        feature.StatsSource
	StatsFeature string

	// IDs fallback 内存列表
	IDs []int64
}

func (r *Popular) Name() string        { return "recall.popular" }
func (r *Popular) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *Popular) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (r *Popular) Recall(
	ctx context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	if ids := r.fromStore(ctx); len(ids) > 0 {
		return r.wrap(ids), nil
	}
	if r.Catalog != nil {
		ids, err := r.fromCatalog(ctx)
		if err != nil {
			return nil, err
		}
		if len(ids) > 0 {
			return r.wrap(ids), nil
		}
	}
	return r.wrap(r.IDs), nil
}

func (r *Popular) fromStore(ctx context.Context) []int64 {
	kvStore, ok := r.Store.(core.KeyValueStore)
	if !ok || r.Key == "" {
		return nil
	}
	members, err := kvStore.ZRange(ctx, r.Key, 0, 99)
	if err != nil || len(members) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		if id, err := strconv.ParseInt(m, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func (r *Popular) fromCatalog(ctx context.Context) ([]int64, error) {
	products, err := r.Catalog.ListProducts(ctx, core.ProductFilter{InStockOnly: true})
	if err != nil {
		return nil, err
	}

	// best_selling 降序、featured 降序；同档按 ID 升序保证结果稳定
	sort.SliceStable(products, func(i, j int) bool {
		if flagRank(products[i]) != flagRank(products[j]) {
			return flagRank(products[i]) > flagRank(products[j])
		}
		return products[i].ID < products[j].ID
	})

	ids := make([]int64, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	if r.Stats != nil && r.StatsFeature != "" {
		if reranked, ok := r.rerankByStats(ctx, ids); ok {
			ids = reranked
		}
	}
	return ids, nil
}

// rerankByStats 用实时统计值重排；拉取失败时返回 ok=false，调用方保持旗标排序。
func (r *Popular) rerankByStats(ctx context.Context, ids []int64) ([]int64, bool) {
	stats, err := r.Stats.ProductStats(ctx, ids, []string{r.StatsFeature})
	if err != nil || len(stats) == 0 {
		return nil, false
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return stats[ids[i]][r.StatsFeature] > stats[ids[j]][r.StatsFeature]
	})
	return ids, true
}

func (r *Popular) wrap(ids []int64) []*core.Item {
	out := make([]*core.Item, 0, len(ids))
	for i, id := range ids {
		it := core.NewItem(id)
		// 按榜单位次给分，供下游排序/截断使用
		it.Score = float64(len(ids) - i)
		it.PutLabel("recall_source", utils.Label{Value: "popular", Source: "recall"})
		out = append(out, it)
	}
	return out
}

func flagRank(p core.Product) int {
	rank := 0
	if p.BestSelling {
		rank += 2
	}
	if p.Featured {
		rank++
	}
	return rank
}
