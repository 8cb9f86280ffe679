// Package repository 数据访问层
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound 记录不存在或已被软删除
var ErrNotFound = errors.New("记录不存在")

// 分页默认值
const (
	DefaultPageSize = 10
	MaxPageSize     = 10000
)

// Pagination 分页参数
type Pagination struct {
	Current int
	Size    int
}

// NewPagination 创建分页参数，非法值取默认
func NewPagination(current, size int) *Pagination {
	if current < 1 {
		current = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return &Pagination{Current: current, Size: size}
}

// Offset 偏移量
func (p *Pagination) Offset() int {
	return (p.Current - 1) * p.Size
}

// Pages 总页数
func (p *Pagination) Pages(total int64) int64 {
	if p.Size <= 0 {
		return 0
	}
	return (total + int64(p.Size) - 1) / int64(p.Size)
}

func paginate(query *gorm.DB, page *Pagination) *gorm.DB {
	if page == nil {
		return query
	}
	return query.Offset(page.Offset()).Limit(page.Size)
}

// Transactor 事务执行器
type Transactor interface {
	// WithinTx 在事务中执行 fn，fn 返回错误时回滚
	// 传入 fn 的 ctx 携带事务，仓库方法通过它复用同一事务
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

type gormTransactor struct {
	db *gorm.DB
}

// NewTransactor 创建事务执行器
func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	// 已在事务中时直接复用
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn 返回 ctx 中的事务，否则返回基础连接
func conn(ctx context.Context, base *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return base.WithContext(ctx)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
