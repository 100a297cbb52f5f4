package subcategory

import (
	"context"
	"sort"

	"github.com/goccy/go-json"

	"github.com/storeup/shopkit/core"
)

// DefaultCacheKey 是子类目标签映射的缓存 key（全量映射作为单个 value）。
const DefaultCacheKey = "shop:product_subcats:v1"

// DefaultTTL 是标签缓存的过期秒数（1 小时）。
// 到期整体重训、整体替换，从不增量更新。
const DefaultTTL = 60 * 60

// SentinelLabel 表示“尚未计算 / 查找失败”。
const SentinelLabel = int64(-1)

// Labeler 为每个商品训练并缓存子类目标签。
//
// 标签编码为 (category_id << 8) + cluster_index：不同类目即使簇索引相同
// 也不会冲突；只有一个商品的类目固定得到 cluster_index = 0。
type Labeler struct {
	Catalog core.Catalog
	Store   core.Store

	// Clusterer 文本聚类实现，nil 时使用 TextClusterer 默认配置
	Clusterer Clusterer

	// CacheKey 缓存 key，空串使用 DefaultCacheKey
	CacheKey string

	// TTL 缓存过期秒数，<=0 使用 DefaultTTL
	TTL int
}

func (l *Labeler) cacheKey() string {
	if l.CacheKey != "" {
		return l.CacheKey
	}
	return DefaultCacheKey
}

func (l *Labeler) ttl() int {
	if l.TTL > 0 {
		return l.TTL
	}
	return DefaultTTL
}

func (l *Labeler) clusterer() Clusterer {
	if l.Clusterer != nil {
		return l.Clusterer
	}
	return &TextClusterer{}
}

// TrainAndCache 全量训练子类目标签并写入缓存，返回 product_id -> label 映射。
//
// 流程：
//  1. 按类目分组全部商品（含无货商品；NULL 类目归入哨兵 0）
//  2. 单商品类目直接标 cluster 0，不建模
//  3. 其余类目：文档 = 名称 + 描述；k = clamp(n/4, 2, 8)；聚类拟合
//  4. 任一类目拟合失败只降级该类目为单簇，不中断其他类目
//
// 返回的映射总是覆盖当前目录中的全部商品；缓存整体覆盖旧值。
func (l *Labeler) TrainAndCache(ctx context.Context) (map[int64]int64, error) {
	products, err := l.Catalog.ListProducts(ctx, core.ProductFilter{})
	if err != nil {
		return nil, err
	}

	byCategory := make(map[int64][]core.Product)
	for _, p := range products {
		byCategory[p.CategoryID] = append(byCategory[p.CategoryID], p)
	}

	labels := make(map[int64]int64, len(products))
	clusterer := l.clusterer()

	for catID, group := range byCategory {
		// 组内按商品 ID 排序，聚类输入顺序与随机种子共同决定结果的可复现性
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })

		if len(group) <= 1 {
			for _, p := range group {
				labels[p.ID] = encodeLabel(catID, 0)
			}
			continue
		}

		docs := make([]string, len(group))
		for i, p := range group {
			docs[i] = p.Name + ". " + p.Description
		}

		k := len(group) / 4
		if k < 2 {
			k = 2
		}
		if k > 8 {
			k = 8
		}

		clusters, err := clusterer.FitLabels(docs, k)
		if err != nil || len(clusters) != len(group) {
			// 该类目降级为单簇，其余类目不受影响
			clusters = make([]int, len(group))
		}
		for i, p := range group {
			labels[p.ID] = encodeLabel(catID, clusters[i])
		}
	}

	if data, err := json.Marshal(labels); err == nil {
		_ = l.Store.Set(ctx, l.cacheKey(), data, l.ttl())
	}
	return labels, nil
}

// Lookup 返回商品的子类目标签。
//
// 缓存命中且商品在映射中时直接返回；否则同步重训全量映射后再查。
// 重训后仍然缺失（目录外 ID）或任何失败路径都返回 SentinelLabel(-1)，
// 从不返回错误——查找失败对引擎只意味着“没有子类目约束”。
func (l *Labeler) Lookup(ctx context.Context, productID int64) int64 {
	if cached, ok := l.loadCached(ctx); ok {
		if label, ok := cached[productID]; ok {
			return label
		}
	}

	mapping, err := l.TrainAndCache(ctx)
	if err != nil {
		return SentinelLabel
	}
	if label, ok := mapping[productID]; ok {
		return label
	}
	return SentinelLabel
}

func (l *Labeler) loadCached(ctx context.Context) (map[int64]int64, bool) {
	data, err := l.Store.Get(ctx, l.cacheKey())
	if err != nil {
		return nil, false
	}
	var mapping map[int64]int64
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, false
	}
	return mapping, true
}

func encodeLabel(categoryID int64, cluster int) int64 {
	return (categoryID << 8) + int64(cluster)
}
