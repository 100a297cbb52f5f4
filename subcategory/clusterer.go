// Package subcategory 在类目内部对商品文本做无监督聚类，
// 产出稳定的整数子类目标签，用于收窄相似度计算的候选集。
package subcategory

// Clusterer 是文本聚类能力的抽象：输入一组文档与目标簇数，输出每篇文档的簇索引。
//
// 聚类实现是可插拔的可选能力：TextClusterer（TF-IDF + KMeans）是默认实现，
// SingleCluster 是永不失败的平凡回退。引擎的正确性不依赖任何具体实现——
// 任何一个类目的拟合失败都只降级该类目，不影响其他类目。
type Clusterer interface {
	// FitLabels 对 docs 聚类，返回与 docs 等长的簇索引切片（0 起始）。
	FitLabels(docs []string, k int) ([]int, error)

	// Name 返回聚类器名称（用于日志/监控）
	Name() string
}

// SingleCluster 是平凡回退实现：所有文档归入簇 0，从不返回错误。
type SingleCluster struct{}

func (SingleCluster) Name() string { return "single" }

func (SingleCluster) FitLabels(docs []string, _ int) ([]int, error) {
	return make([]int, len(docs)), nil
}

// TextClusterer 是默认聚类实现：TF-IDF 向量化 + 固定随机种子的 KMeans。
// 固定种子保证同一份目录两次训练得到相同的标签划分。
type TextClusterer struct {
	// MaxFeatures 词表上限，0 表示默认 4096
	MaxFeatures int

	// Seed 随机种子，0 表示默认 42
	Seed int64

	// MaxIter KMeans 最大迭代次数，0 表示默认 100
	MaxIter int
}

func (c *TextClusterer) Name() string { return "tfidf_kmeans" }

func (c *TextClusterer) FitLabels(docs []string, k int) ([]int, error) {
	maxFeatures := c.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = 4096
	}
	seed := c.Seed
	if seed == 0 {
		seed = 42
	}
	maxIter := c.MaxIter
	if maxIter <= 0 {
		maxIter = 100
	}

	vec := &Vectorizer{MaxFeatures: maxFeatures}
	matrix, err := vec.FitTransform(docs)
	if err != nil {
		return nil, err
	}

	km := &KMeans{K: k, MaxIter: maxIter, Seed: seed}
	return km.FitPredict(matrix)
}
