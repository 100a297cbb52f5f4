package builders

import (
	"fmt"

	"github.com/storeup/shopkit/config"
	"github.com/storeup/shopkit/filter"
	"github.com/storeup/shopkit/pipeline"
	"github.com/storeup/shopkit/pkg/conv"
	"github.com/storeup/shopkit/recall"
	"github.com/storeup/shopkit/rerank"
)

func init() {
	config.Register("recall.popular", BuildPopularNode)
	config.Register("filter", BuildFilterNode)
	config.Register("filter.rule", BuildRuleFilterNode)
	config.Register("rerank.topn", BuildTopNNode)
}

// BuildPopularNode 构建静态兜底的热门召回。
// 带 Store/Catalog 的 Popular 需要运行时依赖，不从配置构建；
// 配置驱动场景下仅支持静态 ids 兜底。
func BuildPopularNode(cfg map[string]interface{}) (pipeline.Node, error) {
	ids := conv.SliceAnyToInt64(cfg["ids"])
	if ids == nil {
		ids = []int64{}
	}
	return &recall.Popular{IDs: ids}, nil
}

func BuildFilterNode(cfg map[string]interface{}) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}

	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]interface{})
		if !ok {
			continue
		}
		filterType := conv.ConfigGet(filterMap, "type", "")
		switch filterType {
		case "in_cart":
			filters = append(filters, filter.InCart{})
		case "rule":
			expr := conv.ConfigGet(filterMap, "expr", "")
			filters = append(filters, &filter.Rule{Expr: expr})
		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}

	return &filter.Node{Filters: filters}, nil
}

func BuildRuleFilterNode(cfg map[string]interface{}) (pipeline.Node, error) {
	expr := conv.ConfigGet(cfg, "expr", "")
	if expr == "" {
		return nil, fmt.Errorf("expr not found")
	}
	return &filter.Node{Filters: []filter.Filter{&filter.Rule{Expr: expr}}}, nil
}

func BuildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	n := conv.ConfigGetInt64(cfg, "n", 0)
	if n <= 0 {
		return nil, fmt.Errorf("n must be positive")
	}
	return &rerank.TopN{N: int(n)}, nil
}
