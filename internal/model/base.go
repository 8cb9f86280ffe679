// Package model 定义数据模型
package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel 基础模型，包含通用字段
// 软删除字段由各模型自行声明，以便和业务列组成唯一索引
type BaseModel struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate 创建前自动生成 UUID
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// 状态常量
const (
	StatusEnabled  = "enabled"  // 启用
	StatusDisabled = "disabled" // 禁用
)

// ParseStatus 解析状态参数，兼容 1/0、true/false
func ParseStatus(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case StatusEnabled, "1", "true":
		return StatusEnabled, true
	case StatusDisabled, "0", "false":
		return StatusDisabled, true
	}
	return "", false
}

// RootParentID 顶级权限的父 ID
const RootParentID = "-1"

// Tables 全部数据表模型，父表在前
func Tables() []any {
	return []any{
		&User{},
		&Role{},
		&Permission{},
		&UserRole{},
		&RolePermission{},
	}
}

// NullString 空字符串以 NULL 落库，可选的唯一列多条空值互不冲突
type NullString string

// Value 实现 driver.Valuer
func (s NullString) Value() (driver.Value, error) {
	if s == "" {
		return nil, nil
	}
	return string(s), nil
}

// Scan 实现 sql.Scanner
func (s *NullString) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = ""
	case string:
		*s = NullString(v)
	case []byte:
		*s = NullString(v)
	default:
		return fmt.Errorf("无法将 %T 转换为 NullString", src)
	}
	return nil
}
