package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/storeup/shopkit/core"
)

// MemoryCatalog 是内存目录实现，面向测试与原型。
// 写入后的数据按值拷贝返回，调用方修改返回切片不影响内部状态。
type MemoryCatalog struct {
	mu       sync.RWMutex
	products []core.Product
	cartRows []core.CartRow
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{}
}

// AddProducts 追加商品。
func (c *MemoryCatalog) AddProducts(products ...core.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = append(c.products, products...)
}

// AddCartRows 追加购物车行。
func (c *MemoryCatalog) AddCartRows(rows ...core.CartRow) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cartRows = append(c.cartRows, rows...)
}

func (c *MemoryCatalog) ListProducts(_ context.Context, filter core.ProductFilter) ([]core.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]core.Product, 0, len(c.products))
	for _, p := range c.products {
		if filter.InStockOnly && !p.InStock {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *MemoryCatalog) ListCartRows(_ context.Context) ([]core.CartRow, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]core.CartRow, len(c.cartRows))
	copy(out, c.cartRows)
	return out, nil
}

func (c *MemoryCatalog) UserCartProductIDs(_ context.Context, userID int64) ([]int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows := make([]core.CartRow, 0)
	for _, r := range c.cartRows {
		if r.UserID == userID {
			rows = append(rows, r)
		}
	}
	// 最近加入的在前
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })

	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.ProductID
	}
	return ids, nil
}

var _ core.Catalog = (*MemoryCatalog)(nil)
