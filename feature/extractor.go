// Package feature 把原始商品行转换为打分用的归一化特征。
package feature

import (
	"strings"
	"unicode"

	"github.com/storeup/shopkit/core"
)

// Tokenize 把商品名称切分为小写字母数字 token 集合。
// 大小写折叠，非字母数字字符一律视为分隔符，空串丢弃。
// 下游只做集合运算（Jaccard），顺序无关。
func Tokenize(name string) map[string]struct{} {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	tokens := make(map[string]struct{})
	for _, t := range strings.Fields(b.String()) {
		tokens[t] = struct{}{}
	}
	return tokens
}

// Extract 把商品行转换为 product_id -> ProductFeatures 的映射。
//
// 无错误路径：缺失的可选字段一律降级为默认值（价格 0.0、空 token 集），
// 从不失败。调用方通常已按库存过滤过输入。
func Extract(products []core.Product) map[int64]core.ProductFeatures {
	features := make(map[int64]core.ProductFeatures, len(products))
	for _, p := range products {
		features[p.ID] = core.ProductFeatures{
			ProductID:   p.ID,
			CategoryID:  p.CategoryID,
			Price:       p.Price,
			InStock:     boolFlag(p.InStock),
			Featured:    boolFlag(p.Featured),
			BestSelling: boolFlag(p.BestSelling),
			NameTokens:  Tokenize(p.Name),
		}
	}
	return features
}

func boolFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}
