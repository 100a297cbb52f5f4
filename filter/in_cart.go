package filter

import (
	"context"

	"github.com/storeup/shopkit/core"
)

// InCart 剔除用户当前购物车中已有的商品。
// 购物车状态来自 rctx.CartProductIDs（实时读取），
// 保证已拥有的商品永远不会出现在推荐结果里。
type InCart struct{}

func (InCart) Name() string { return "filter.in_cart" }

func (InCart) ShouldFilter(_ context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	if rctx == nil || item == nil {
		return false, nil
	}
	return rctx.InCart(item.ID), nil
}
