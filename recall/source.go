package recall

import (
	"context"

	"github.com/storeup/shopkit/core"
)

// Source 表示一个可复用的召回源（邻居累加/人气/...）。
// 你可以把它理解为“可组合进 Pipeline 的候选生成单元”。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}
