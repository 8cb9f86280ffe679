package service

import (
	"errors"
	"strings"

	"github.com/pu-ac-cn/rbac-admin/internal/repository"
	"gorm.io/gorm"
)

// asNotFound 把仓库层的 ErrNotFound 转换成指定业务错误
func asNotFound(err error, target *Error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return target
	}
	return err
}

// asDuplicate 唯一索引冲突转换为业务错误
func asDuplicate(err error, target *Error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return target
	}
	return err
}

// uniqueIDs 去除空值和重复值，保持原有顺序
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// firstMissing 返回 ids 中第一个不在 found 里的 ID
func firstMissing(ids []string, found map[string]bool) string {
	for _, id := range ids {
		if !found[id] {
			return id
		}
	}
	return ""
}
