// Package catalog 提供 core.Catalog 的具体实现：
// SQLiteCatalog 面向生产/示例场景，MemoryCatalog 面向测试与原型。
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/storeup/shopkit/core"
)

// SQLiteCatalog 基于 SQLite 的目录实现。
//
// 表结构见 InitSchema：products 存商品主数据，cart_items 存购物车行。
// 推荐核心只做只读查询；InsertProduct/AddCartRow 供示例与测试造数用。
type SQLiteCatalog struct {
	db *sql.DB
}

// OpenSQLite 打开（必要时创建）SQLite 目录数据库。
// dsn 例如 "file:shop.db" 或 ":memory:"。
func OpenSQLite(dsn string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return &SQLiteCatalog{db: db}, nil
}

// NewSQLiteCatalog 复用已有连接（连接生命周期由调用方管理）。
func NewSQLiteCatalog(db *sql.DB) *SQLiteCatalog {
	return &SQLiteCatalog{db: db}
}

// InitSchema 建表（幂等）。
func (c *SQLiteCatalog) InitSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS products (
	id           INTEGER PRIMARY KEY,
	category_id  INTEGER NOT NULL DEFAULT 0,
	name         TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	price        REAL NOT NULL DEFAULT 0,
	in_stock     INTEGER NOT NULL DEFAULT 1,
	featured     INTEGER NOT NULL DEFAULT 0,
	best_selling INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS cart_items (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    INTEGER NOT NULL,
	product_id INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_cart_items_user ON cart_items(user_id, created_at DESC);
`
	_, err := c.db.ExecContext(ctx, schema)
	return err
}

// InsertProduct 写入一条商品（示例/测试用）。
func (c *SQLiteCatalog) InsertProduct(ctx context.Context, p core.Product) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO products (id, category_id, name, description, price, in_stock, featured, best_selling)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.CategoryID, p.Name, p.Description, p.Price,
		boolToInt(p.InStock), boolToInt(p.Featured), boolToInt(p.BestSelling),
	)
	return err
}

// AddCartRow 写入一条购物车行（示例/测试用）。
func (c *SQLiteCatalog) AddCartRow(ctx context.Context, userID, productID int64, createdAt time.Time) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO cart_items (user_id, product_id, created_at) VALUES (?, ?, ?)`,
		userID, productID, createdAt,
	)
	return err
}

func (c *SQLiteCatalog) ListProducts(ctx context.Context, filter core.ProductFilter) ([]core.Product, error) {
	query := `SELECT id, category_id, name, description, price, in_stock, featured, best_selling FROM products`
	if filter.InStockOnly {
		query += ` WHERE in_stock = 1`
	}
	query += ` ORDER BY id`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []core.Product
	for rows.Next() {
		var p core.Product
		var inStock, featured, bestSelling int
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Price,
			&inStock, &featured, &bestSelling); err != nil {
			return nil, err
		}
		p.InStock = inStock != 0
		p.Featured = featured != 0
		p.BestSelling = bestSelling != 0
		products = append(products, p)
	}
	return products, rows.Err()
}

func (c *SQLiteCatalog) ListCartRows(ctx context.Context) ([]core.CartRow, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT user_id, product_id, created_at FROM cart_items ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.CartRow
	for rows.Next() {
		var r core.CartRow
		if err := rows.Scan(&r.UserID, &r.ProductID, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (c *SQLiteCatalog) UserCartProductIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT product_id FROM cart_items WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close 关闭底层连接。
func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ core.Catalog = (*SQLiteCatalog)(nil)
