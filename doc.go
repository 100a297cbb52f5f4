// Package shopkit 是一个电商商品推荐工具包（Shop Recommender Kit）。
//
// 设计要点：
// - 内容为主、协同微调的混合相似度：同类目商品按名称/价格/旗标打分，购物车共现做小权重修正
// - 子类目标签：类目内 TF-IDF + k-means 文本聚类，进一步收窄相似候选
// - 批发式缓存：相似度映射与子类目标签整体计算、整体替换，从不增量修补
// - Pipeline 可组合: 召回 → 过滤 → 重排 的 Node 链，支持配置驱动
package shopkit

import "github.com/storeup/shopkit/pipeline"

// 轻量 facade：便于用户直接 import "shopkit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall = pipeline.KindRecall
	KindFilter = pipeline.KindFilter
	KindReRank = pipeline.KindReRank
)
