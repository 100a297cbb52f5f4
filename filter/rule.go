package filter

import (
	"context"

	"github.com/storeup/shopkit/core"
	"github.com/storeup/shopkit/pkg/dsl"
)

// Rule 是基于 CEL 表达式的规则过滤器，用于配置驱动的业务过滤。
//
// Expr 描述“保留条件”：表达式为 true 的商品保留，false 的被过滤。
// 例如 `item.score > 0.3`、`label.recall_source == "neighbors"`。
// 表达式求值失败时保留该商品（过滤器降级，不中断推荐流程）。
type Rule struct {
	Expr string
}

func (r *Rule) Name() string { return "filter.rule" }

func (r *Rule) ShouldFilter(_ context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	keep, err := dsl.EvalBool(r.Expr, item, rctx)
	if err != nil {
		return false, err
	}
	return !keep, nil
}
