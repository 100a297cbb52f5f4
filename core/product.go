package core

import "time"

// Product 是商品目录中的一行：推荐核心只读取这些字段，不负责持久化。
// CategoryID 为 0 表示未分类（数据库中的 NULL 归一为 0 哨兵值）。
type Product struct {
	ID          int64
	CategoryID  int64
	Price       float64
	InStock     bool
	Featured    bool
	BestSelling bool
	Name        string
	Description string
}

// CartRow 是购物车历史中的一行（user_id, product_id, created_at）。
// 协同信号基于全量历史行计算，不按库存过滤。
type CartRow struct {
	UserID    int64
	ProductID int64
	CreatedAt time.Time
}

// ProductFeatures 是从商品行派生出的归一化特征，每次相似度计算重建，不持久化。
// 布尔旗标以 0/1 表示，便于直接参与打分；NameTokens 是小写字母数字 token 集合。
type ProductFeatures struct {
	ProductID   int64
	CategoryID  int64
	Price       float64
	InStock     int
	Featured    int
	BestSelling int
	NameTokens  map[string]struct{}
}

// Neighbor 是相似度结果中的一个邻居：邻居商品 ID 与混合分数。
type Neighbor struct {
	ProductID int64   `json:"product_id"`
	Score     float64 `json:"score"`
}

// SimilarityMap 是 product_id -> 邻居列表的全量映射。
//
// 不变式（由 similarity.Engine 保证、测试守护）：
//   - 商品不会出现在自己的邻居列表中
//   - 邻居与源商品同类目
//   - 分数 ∈ (0, 1]，零分/负分不会被存储
//   - 列表按分数降序，长度 ≤ top-k
//
// 整张映射整体写入缓存、整体替换，从不增量更新。
type SimilarityMap map[int64][]Neighbor
