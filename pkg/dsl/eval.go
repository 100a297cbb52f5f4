// Package dsl 基于 CEL (Common Expression Language) 提供规则表达式求值，
// 用于配置驱动的推荐结果过滤（filter.Rule）。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/storeup/shopkit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error

	// prgCache 缓存已编译的表达式程序，避免每个 item 重复编译
	prgCache   = make(map[string]cel.Program)
	prgCacheMu sync.RWMutex
)

// getCELEnv 获取或创建 CEL 环境，定义 item / label / rctx 三个变量。
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// compile 编译表达式并缓存程序。
func compile(expr string) (cel.Program, error) {
	prgCacheMu.RLock()
	prg, ok := prgCache[expr]
	prgCacheMu.RUnlock()
	if ok {
		return prg, nil
	}

	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %v", issues.Err())
	}
	prg, err = env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}

	prgCacheMu.Lock()
	prgCache[expr] = prg
	prgCacheMu.Unlock()
	return prg, nil
}

// EvalBool 对单个 item 执行规则表达式，返回布尔结果。
//
// 表达式语法（CEL 标准语法）：
//   - 数值：item.score > 0.7
//   - 标签：label.recall_source == "popular"
//   - 逻辑：label.recall_source == "neighbors" && item.score > 0.5
//   - 包含：label.recall_source.contains("pop")
//
// 空表达式恒为 true。访问不存在的 label key 会报错，
// 应使用 label.key != null 判断存在性。
func EvalBool(expr string, item *core.Item, rctx *core.RecommendContext) (bool, error) {
	if expr == "" {
		return true, nil
	}

	prg, err := compile(expr)
	if err != nil {
		return false, err
	}

	out, _, err := prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据。
// label 提供顶层快捷访问（label.recall_source 直接取 value）。
func buildInput(item *core.Item, rctx *core.RecommendContext) map[string]any {
	labelAccessor := make(map[string]any)
	if item != nil {
		for k, v := range item.Labels {
			labelAccessor[k] = v.Value
		}
	}

	itemMap := map[string]any{}
	if item != nil {
		itemMap["id"] = item.ID
		itemMap["score"] = item.Score
		itemMap["labels"] = labelAccessor
	}

	rctxMap := map[string]any{}
	if rctx != nil {
		rctxMap["user_id"] = rctx.UserID
		rctxMap["cart_product_ids"] = rctx.CartProductIDs
		rctxMap["params"] = rctx.Params
	}

	return map[string]any{
		"item":  itemMap,
		"label": labelAccessor,
		"rctx":  rctxMap,
	}
}
