package similarity

import (
	"context"
	"math"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/storeup/shopkit/core"
	"github.com/storeup/shopkit/feature"
)

// 混合打分权重。这些权重是行为兼容性的一部分，任何改动都会改变线上推荐结果，
// 必须与测试中的场景值一起调整。
const (
	// 最终分 = contentWeight*内容分 + collabWeight*协同分
	contentWeight = 0.95
	collabWeight  = 0.05

	// 内容分内部权重：名称主导，其次价格，旗标微调；类目是前置过滤条件，固定得 1.0
	weightCategory = 0.10
	weightName     = 0.55
	weightPrice    = 0.30
	weightFlags    = 0.05
)

// DefaultTopK 是每个商品保留的邻居数默认值。
const DefaultTopK = 20

// SubcategorySource 提供商品的子类目标签；-1 哨兵表示查找失败。
// subcategory.Labeler 实现此接口。
type SubcategorySource interface {
	Lookup(ctx context.Context, productID int64) int64
}

// Engine 计算全量有货商品的 Top-K 相似邻居映射。
//
// 两阶段候选收窄：先按类目分组（绝不跨类目比较），再按学习到的子类目标签过滤。
// 类目之间相互独立，按类目并发计算；单次调用内同步完成，不做增量更新。
type Engine struct {
	Catalog core.Catalog

	// Subcategories 可选；nil 时跳过子类目收窄，只按类目分组
	Subcategories SubcategorySource

	// Concurrency 并发计算的类目数上限，<=0 表示不限制
	Concurrency int
}

// Compute 对当前全部有货商品计算相似度映射。
//
// 协同共现基于全量购物车历史（含已下架商品），内容候选只来自有货商品；
// 这个不对称是有意保留的行为。topK <= 0 时使用 DefaultTopK。
func (e *Engine) Compute(ctx context.Context, topK int) (core.SimilarityMap, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	products, err := e.Catalog.ListProducts(ctx, core.ProductFilter{InStockOnly: true})
	if err != nil {
		return nil, err
	}
	feats := feature.Extract(products)

	rows, err := e.Catalog.ListCartRows(ctx)
	if err != nil {
		return nil, err
	}
	cooc := Cooccurrence(BuildUserBaskets(rows))

	// 按类目分组，组内按 ID 排序：候选遍历顺序确定，同分排序稳定
	byCategory := make(map[int64][]int64)
	for id := range feats {
		byCategory[feats[id].CategoryID] = append(byCategory[feats[id].CategoryID], id)
	}
	for _, ids := range byCategory {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}

	// 子类目标签预取一次：-1（查找失败）等价于“无子类目约束”
	labels := e.prefetchLabels(ctx, byCategory)

	similarities := make(core.SimilarityMap, len(feats))
	var mu sync.Mutex

	g, _ := errgroup.WithContext(ctx)
	if e.Concurrency > 0 {
		g.SetLimit(e.Concurrency)
	}
	for _, ids := range byCategory {
		ids := ids
		g.Go(func() error {
			local := make(core.SimilarityMap, len(ids))
			for _, pid := range ids {
				local[pid] = e.neighborsFor(pid, ids, feats, labels, cooc, topK)
			}
			mu.Lock()
			for pid, neighbors := range local {
				similarities[pid] = neighbors
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return similarities, nil
}

// neighborsFor 对单个商品在同类目候选中打分并保留 Top-K。
func (e *Engine) neighborsFor(
	pid int64,
	candidates []int64,
	feats map[int64]core.ProductFeatures,
	labels map[int64]int64,
	cooc map[Pair]float64,
	topK int,
) []core.Neighbor {
	target := int64(-1)
	if l, ok := labels[pid]; ok {
		target = l
	}

	scored := make([]core.Neighbor, 0, len(candidates))
	for _, qid := range candidates {
		if qid == pid {
			continue
		}
		if target != -1 {
			// 候选自身查找失败（-1）不被排除：只有显式的标签不一致才排除
			if ql, ok := labels[qid]; ok && ql != -1 && ql != target {
				continue
			}
		}

		score := contentWeight*contentSimilarity(feats[pid], feats[qid]) + collabWeight*cooc[Pair{pid, qid}]
		if score > 0 {
			scored = append(scored, core.Neighbor{ProductID: qid, Score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

// prefetchLabels 为全部有货商品取一次子类目标签，避免在 O(n²) 打分循环里反复查缓存。
func (e *Engine) prefetchLabels(ctx context.Context, byCategory map[int64][]int64) map[int64]int64 {
	if e.Subcategories == nil {
		return nil
	}
	labels := make(map[int64]int64)
	for _, ids := range byCategory {
		for _, id := range ids {
			labels[id] = e.Subcategories.Lookup(ctx, id)
		}
	}
	return labels
}

// contentSimilarity 计算两个同类目商品的内容相似度，对称，值域 [0,1]。
//
//   - category_score 固定 1.0（类目一致是前置条件）
//   - price_score：任一价格为 0 记 0，否则 1 - |差|/max，下限 0
//   - flags_score：三个旗标中双方同时为真的个数 / 3
//   - name_score：名称 token 集合的 Jaccard 相似度
func contentSimilarity(a, b core.ProductFeatures) float64 {
	if a.CategoryID != b.CategoryID {
		return 0
	}

	var priceScore float64
	if a.Price != 0 && b.Price != 0 {
		relDiff := math.Abs(a.Price-b.Price) / math.Max(a.Price, b.Price)
		priceScore = math.Max(0, 1-relDiff)
	}

	overlap := 0
	if a.InStock == 1 && b.InStock == 1 {
		overlap++
	}
	if a.Featured == 1 && b.Featured == 1 {
		overlap++
	}
	if a.BestSelling == 1 && b.BestSelling == 1 {
		overlap++
	}
	flagsScore := float64(overlap) / 3.0

	nameScore := jaccard(a.NameTokens, b.NameTokens)

	return weightCategory*1.0 + weightName*nameScore + weightPrice*priceScore + weightFlags*flagsScore
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
