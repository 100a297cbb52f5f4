package subcategory

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
)

// Vectorizer 把一组文本文档转换为 TF-IDF 矩阵。
//
// 行为对齐常见实现：
//   - unigram + bigram，停用词剔除后再组 bigram
//   - 词表按文档频次截断到 MaxFeatures（同频按词典序，保证确定性）
//   - 平滑 IDF：ln((1+n)/(1+df)) + 1
//   - 每行 L2 归一化（归一化后欧氏距离与余弦距离单调等价）
type Vectorizer struct {
	// MaxFeatures 词表上限，<=0 表示不截断
	MaxFeatures int
}

// FitTransform 构建词表并返回 len(docs) x 词表大小的稠密矩阵。
// 所有文档都没有有效 token 时返回错误，调用方应降级为单簇。
func (v *Vectorizer) FitTransform(docs []string) ([][]float64, error) {
	tokenized := make([][]string, len(docs))
	for i, doc := range docs {
		tokenized[i] = ngrams(tokenizeText(doc))
	}

	// 统计文档频次
	df := make(map[string]int)
	for _, terms := range tokenized {
		seen := make(map[string]struct{}, len(terms))
		for _, t := range terms {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}
	if len(df) == 0 {
		return nil, fmt.Errorf("tfidf: empty vocabulary (no valid terms in %d docs)", len(docs))
	}

	// 词表截断：df 降序，同频按词典序
	vocab := make([]string, 0, len(df))
	for t := range df {
		vocab = append(vocab, t)
	}
	sort.Slice(vocab, func(i, j int) bool {
		if df[vocab[i]] != df[vocab[j]] {
			return df[vocab[i]] > df[vocab[j]]
		}
		return vocab[i] < vocab[j]
	})
	if v.MaxFeatures > 0 && len(vocab) > v.MaxFeatures {
		vocab = vocab[:v.MaxFeatures]
	}
	index := make(map[string]int, len(vocab))
	for i, t := range vocab {
		index[t] = i
	}

	// 预计算 IDF
	n := float64(len(docs))
	idf := make([]float64, len(vocab))
	for i, t := range vocab {
		idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}

	// TF-IDF + L2 归一化
	matrix := make([][]float64, len(docs))
	for i, terms := range tokenized {
		row := make([]float64, len(vocab))
		for _, t := range terms {
			if j, ok := index[t]; ok {
				row[j] += idf[j]
			}
		}
		var norm float64
		for _, x := range row {
			norm += x * x
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range row {
				row[j] /= norm
			}
		}
		matrix[i] = row
	}
	return matrix, nil
}

// tokenizeText 按小写字母数字切词并剔除停用词，保留顺序（组 bigram 需要）。
func tokenizeText(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	fields := strings.Fields(b.String())
	tokens := fields[:0]
	for _, t := range fields {
		if _, stop := englishStopWords[t]; stop {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

// ngrams 把 token 序列展开为 unigram + bigram 项。
func ngrams(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	terms := make([]string, 0, len(tokens)*2-1)
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}
