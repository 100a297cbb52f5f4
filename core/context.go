package core

import "github.com/storeup/shopkit/pkg/utils"

// RecommendContext 承载一次推荐请求的用户与购物车状态，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	UserID int64

	// CartProductIDs 是用户当前购物车中的商品 ID（实时读取，最近加入的在前）。
	// 过滤阶段据此剔除已拥有的商品。
	CartProductIDs []int64

	// Params 请求级上下文参数（limit、场景标识、实验分桶等）
	Params map[string]any

	// Labels 是用户级标签，可驱动整个 Pipeline 行为
	Labels map[string]utils.Label
}

// InCart 判断商品是否已在当前购物车中。
func (rctx *RecommendContext) InCart(productID int64) bool {
	for _, id := range rctx.CartProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
