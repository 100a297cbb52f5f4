package core

import "context"

// ProductFilter 是目录查询的过滤条件。
type ProductFilter struct {
	// InStockOnly 为 true 时只返回有货商品
	InStockOnly bool
}

// Catalog 是商品目录与购物车历史的领域查询接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（catalog 包）实现
//   - 推荐核心把目录与购物车当作只读数据源，写路径属于外围应用
//
// 实现：
//   - catalog.SQLiteCatalog（生产/示例，基于 SQL 表）
//   - catalog.MemoryCatalog（测试/原型）
type Catalog interface {
	// ListProducts 返回满足过滤条件的商品行
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)

	// ListCartRows 返回全量购物车历史行（不按库存过滤）
	ListCartRows(ctx context.Context) ([]CartRow, error)

	// UserCartProductIDs 返回某用户当前购物车中的商品 ID，最近加入的在前。
	// 必须实时读取，保证已在购物车中的商品不会被推荐。
	UserCartProductIDs(ctx context.Context, userID int64) ([]int64, error)
}
