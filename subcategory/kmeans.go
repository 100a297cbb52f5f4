package subcategory

import (
	"fmt"
	"math"
	"math/rand"
)

// KMeans 是固定种子的 k-means 聚类。
//
// 初始化采用 k-means++ 风格的加权采样（由种子 RNG 驱动），
// 之后标准的分配/更新迭代直至收敛或达到 MaxIter。
// 输入行已 L2 归一化，欧氏距离与余弦距离给出相同的划分。
type KMeans struct {
	K       int
	MaxIter int
	Seed    int64
}

// FitPredict 对矩阵行聚类，返回与行数等长的簇索引切片。
func (m *KMeans) FitPredict(matrix [][]float64) ([]int, error) {
	n := len(matrix)
	if n == 0 {
		return nil, fmt.Errorf("kmeans: empty input")
	}

	k := m.K
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}
	maxIter := m.MaxIter
	if maxIter <= 0 {
		maxIter = 100
	}

	rng := rand.New(rand.NewSource(m.Seed))
	centroids := m.seedCentroids(matrix, k, rng)
	assign := make([]int, n)

	for iter := 0; iter < maxIter; iter++ {
		changed := false

		// 分配：每个点归入最近质心
		for i, row := range matrix {
			best, bestDist := 0, math.MaxFloat64
			for c, centroid := range centroids {
				if d := sqDist(row, centroid); d < bestDist {
					best, bestDist = c, d
				}
			}
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}

		// 更新：重算质心；空簇重播到离其质心最远的点上
		counts := make([]int, k)
		next := make([][]float64, k)
		for c := range next {
			next[c] = make([]float64, len(matrix[0]))
		}
		for i, row := range matrix {
			c := assign[i]
			counts[c]++
			for j, x := range row {
				next[c][j] += x
			}
		}
		for c := range next {
			if counts[c] == 0 {
				next[c] = matrix[farthestPoint(matrix, assign, centroids)]
				changed = true
				continue
			}
			for j := range next[c] {
				next[c][j] /= float64(counts[c])
			}
		}
		centroids = next

		if !changed && iter > 0 {
			break
		}
	}
	return assign, nil
}

// seedCentroids 用 k-means++ 加权采样选出 k 个初始质心。
func (m *KMeans) seedCentroids(matrix [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, matrix[rng.Intn(len(matrix))])

	dists := make([]float64, len(matrix))
	for len(centroids) < k {
		var total float64
		for i, row := range matrix {
			best := math.MaxFloat64
			for _, c := range centroids {
				if d := sqDist(row, c); d < best {
					best = d
				}
			}
			dists[i] = best
			total += best
		}
		if total == 0 {
			// 所有点都与已选质心重合，随机补齐
			centroids = append(centroids, matrix[rng.Intn(len(matrix))])
			continue
		}
		target := rng.Float64() * total
		var acc float64
		picked := len(matrix) - 1
		for i, d := range dists {
			acc += d
			if acc >= target {
				picked = i
				break
			}
		}
		centroids = append(centroids, matrix[picked])
	}
	return centroids
}

// farthestPoint 返回离自己所属质心最远的点索引（用于空簇重播）。
func farthestPoint(matrix [][]float64, assign []int, centroids [][]float64) int {
	worst, worstDist := 0, -1.0
	for i, row := range matrix {
		if d := sqDist(row, centroids[assign[i]]); d > worstDist {
			worst, worstDist = i, d
		}
	}
	return worst
}

func sqDist(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
