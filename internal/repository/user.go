package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/pu-ac-cn/rbac-admin/internal/model"
	"gorm.io/gorm"
)

// UserFilter 用户查询条件
type UserFilter struct {
	Username string
	Nickname string
	Email    string
	Phone    string
	Status   string
}

// UserRepository 用户仓库接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]*model.User, error)
	Update(ctx context.Context, user *model.User) error
	UpdateStatus(ctx context.Context, id, status string) error
	UpdateLogin(ctx context.Context, id string, at time.Time, ip string) error
	Delete(ctx context.Context, ids ...string) error
	FindPage(ctx context.Context, filter *UserFilter, page *Pagination) ([]*model.User, int64, error)
	// ExistsBy 检查未删除用户中 column 是否已被其他记录使用
	ExistsBy(ctx context.Context, column, value, excludeID string) (bool, error)
}

// 允许做唯一性检查的列
var userUniqueColumns = map[string]bool{
	"username": true,
	"email":    true,
	"phone":    true,
}

// userRepository 用户仓库实现
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return conn(ctx, r.db).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := conn(ctx, r.db).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := conn(ctx, r.db).First(&user, "username = ?", username).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *userRepository) ListByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	var users []*model.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return conn(ctx, r.db).Save(user).Error
}

func (r *userRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return conn(ctx, r.db).Model(&model.User{}).Where("id = ?", id).Update("status", status).Error
}

func (r *userRepository) UpdateLogin(ctx context.Context, id string, at time.Time, ip string) error {
	return conn(ctx, r.db).Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"last_login_time": at,
		"last_login_ip":   ip,
	}).Error
}

func (r *userRepository) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return conn(ctx, r.db).Where("id IN ?", ids).Delete(&model.User{}).Error
}

func (r *userRepository) FindPage(ctx context.Context, filter *UserFilter, page *Pagination) ([]*model.User, int64, error) {
	var users []*model.User
	var total int64

	query := conn(ctx, r.db).Model(&model.User{})
	if filter != nil {
		if filter.Username != "" {
			query = query.Where("username LIKE ?", "%"+filter.Username+"%")
		}
		if filter.Nickname != "" {
			query = query.Where("nickname LIKE ?", "%"+filter.Nickname+"%")
		}
		if filter.Email != "" {
			query = query.Where("email LIKE ?", "%"+filter.Email+"%")
		}
		if filter.Phone != "" {
			query = query.Where("phone LIKE ?", "%"+filter.Phone+"%")
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := paginate(query, page).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) ExistsBy(ctx context.Context, column, value, excludeID string) (bool, error) {
	if !userUniqueColumns[column] {
		return false, fmt.Errorf("不支持的唯一性字段: %s", column)
	}
	var count int64
	query := conn(ctx, r.db).Model(&model.User{}).Where(column+" = ?", value)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
