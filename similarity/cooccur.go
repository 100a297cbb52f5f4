// Package similarity 实现混合（内容 + 协同）商品相似度引擎。
package similarity

import (
	"sort"

	"github.com/storeup/shopkit/core"
)

// Pair 是无序商品对的对称 key：(a,b) 与 (b,a) 都会被写入。
type Pair [2]int64

// BuildUserBaskets 把购物车历史行聚合为 user_id -> 商品 ID 列表。
// 重复保留（去重在组对阶段按用户进行）；输入为全量历史行，不按库存过滤——
// 已下架商品仍然贡献协同信号，只是永远不会作为内容相似邻居出现。
func BuildUserBaskets(rows []core.CartRow) map[int64][]int64 {
	baskets := make(map[int64][]int64)
	for _, row := range rows {
		baskets[row.UserID] = append(baskets[row.UserID], row.ProductID)
	}
	return baskets
}

// Cooccurrence 统计商品对在不同用户购物篮中的共现次数，并用全局最大值归一化到 [0,1]。
//
// 每个购物篮先按用户去重，再对所有无序对的两个方向同时计数，
// 因此 count(a,b) == count(b,a) 恒成立。只有 0 或 1 个不同商品的购物篮不贡献任何对。
func Cooccurrence(baskets map[int64][]int64) map[Pair]float64 {
	counts := make(map[Pair]int)
	for _, products := range baskets {
		unique := dedupeSorted(products)
		for i := 0; i < len(unique); i++ {
			for j := i + 1; j < len(unique); j++ {
				a, b := unique[i], unique[j]
				counts[Pair{a, b}]++
				counts[Pair{b, a}]++
			}
		}
	}
	if len(counts) == 0 {
		return map[Pair]float64{}
	}

	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}

	normalized := make(map[Pair]float64, len(counts))
	for k, c := range counts {
		normalized[k] = float64(c) / float64(maxCount)
	}
	return normalized
}

func dedupeSorted(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })
	return unique
}
