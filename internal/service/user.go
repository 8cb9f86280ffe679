package service

import (
	"context"

	"github.com/pu-ac-cn/rbac-admin/internal/model"
	"github.com/pu-ac-cn/rbac-admin/internal/repository"
	"go.uber.org/zap"
)

// MinPasswordLength 密码最小长度
const MinPasswordLength = 6

// UserUpdate 用户更新内容，nil 字段保持不变
type UserUpdate struct {
	Username *string
	Password *string
	Email    *string
	Phone    *string
	Nickname *string
	Avatar   *string
	Status   *string
}

// UserService 用户服务接口
type UserService interface {
	Create(ctx context.Context, user *model.User, password string) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	FindPage(ctx context.Context, filter *repository.UserFilter, page *repository.Pagination) ([]*model.User, int64, error)
	UpdateByID(ctx context.Context, id string, input *UserUpdate) (*model.User, error)
	RemoveByID(ctx context.Context, id string) error
	RemoveBatch(ctx context.Context, ids []string) error
	UpdateStatus(ctx context.Context, id, status string) error
}

// SessionRevoker 撤销用户全部登录会话
type SessionRevoker interface {
	DeleteByUserID(ctx context.Context, userID string) error
}

type userService struct {
	tx           repository.Transactor
	userRepo     repository.UserRepository
	userRoleRepo repository.UserRoleRepository
	sessions     SessionRevoker
}

// NewUserService 创建用户服务，sessions 可为 nil
func NewUserService(tx repository.Transactor, userRepo repository.UserRepository, userRoleRepo repository.UserRoleRepository, sessions SessionRevoker) UserService {
	return &userService{
		tx:           tx,
		userRepo:     userRepo,
		userRoleRepo: userRoleRepo,
		sessions:     sessions,
	}
}

func (s *userService) Create(ctx context.Context, user *model.User, password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if user.Status == "" {
		user.Status = model.StatusEnabled
	} else if status, ok := model.ParseStatus(user.Status); ok {
		user.Status = status
	} else {
		return ErrInvalidStatus
	}
	user.PlainPassword = password

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checkUnique(ctx, user, ""); err != nil {
			return err
		}
		return asDuplicate(s.userRepo.Create(ctx, user), ErrUserDuplicate)
	})
}

func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err, ErrUserNotFound)
	}
	return user, nil
}

func (s *userService) FindPage(ctx context.Context, filter *repository.UserFilter, page *repository.Pagination) ([]*model.User, int64, error) {
	return s.userRepo.FindPage(ctx, filter, page)
}

func (s *userService) UpdateByID(ctx context.Context, id string, input *UserUpdate) (*model.User, error) {
	var user *model.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.userRepo.GetByID(ctx, id)
		if err != nil {
			return asNotFound(err, ErrUserNotFound)
		}
		if err := applyUserUpdate(user, input); err != nil {
			return err
		}
		if err := s.checkUnique(ctx, user, user.ID); err != nil {
			return err
		}
		return asDuplicate(s.userRepo.Update(ctx, user), ErrUserDuplicate)
	})
	if err != nil {
		return nil, err
	}

	if user.Status == model.StatusDisabled {
		s.revoke(ctx, user.ID)
	}
	return user, nil
}

func applyUserUpdate(user *model.User, input *UserUpdate) error {
	if input == nil {
		return nil
	}
	if input.Username != nil && *input.Username != "" {
		user.Username = *input.Username
	}
	if input.Password != nil && *input.Password != "" {
		if len(*input.Password) < MinPasswordLength {
			return ErrPasswordTooShort
		}
		user.PlainPassword = *input.Password
	}
	if input.Email != nil {
		user.Email = model.NullString(*input.Email)
	}
	if input.Phone != nil {
		user.Phone = model.NullString(*input.Phone)
	}
	if input.Nickname != nil {
		user.Nickname = *input.Nickname
	}
	if input.Avatar != nil {
		user.Avatar = *input.Avatar
	}
	if input.Status != nil && *input.Status != "" {
		status, ok := model.ParseStatus(*input.Status)
		if !ok {
			return ErrInvalidStatus
		}
		user.Status = status
	}
	return nil
}

// checkUnique 检查用户名、邮箱、手机号在未删除用户中唯一
func (s *userService) checkUnique(ctx context.Context, user *model.User, excludeID string) error {
	checks := []struct {
		column string
		value  string
		err    *Error
	}{
		{"username", user.Username, ErrUsernameExists},
		{"email", string(user.Email), ErrEmailExists},
		{"phone", string(user.Phone), ErrPhoneExists},
	}
	for _, c := range checks {
		if c.value == "" {
			continue
		}
		exists, err := s.userRepo.ExistsBy(ctx, c.column, c.value, excludeID)
		if err != nil {
			return err
		}
		if exists {
			return c.err
		}
	}
	return nil
}

func (s *userService) RemoveByID(ctx context.Context, id string) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.userRepo.GetByID(ctx, id); err != nil {
			return asNotFound(err, ErrUserNotFound)
		}
		if _, err := s.userRoleRepo.DeleteByUserID(ctx, id); err != nil {
			return err
		}
		return s.userRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.revoke(ctx, id)
	return nil
}

func (s *userService) RemoveBatch(ctx context.Context, ids []string) error {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return ErrEmptyIDs
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		users, err := s.userRepo.ListByIDs(ctx, ids)
		if err != nil {
			return err
		}
		found := make(map[string]bool, len(users))
		for _, u := range users {
			found[u.ID] = true
		}
		if missing := firstMissing(ids, found); missing != "" {
			return NotFound("用户 %s 不存在", missing)
		}
		if _, err := s.userRoleRepo.DeleteByUserID(ctx, ids...); err != nil {
			return err
		}
		return s.userRepo.Delete(ctx, ids...)
	})
	if err != nil {
		return err
	}
	for _, id := range ids {
		s.revoke(ctx, id)
	}
	return nil
}

func (s *userService) UpdateStatus(ctx context.Context, id, status string) error {
	parsed, ok := model.ParseStatus(status)
	if !ok {
		return ErrInvalidStatus
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.userRepo.GetByID(ctx, id); err != nil {
			return asNotFound(err, ErrUserNotFound)
		}
		return s.userRepo.UpdateStatus(ctx, id, parsed)
	})
	if err != nil {
		return err
	}
	if parsed == model.StatusDisabled {
		s.revoke(ctx, id)
	}
	return nil
}

// revoke 撤销用户会话，失败只记录日志
func (s *userService) revoke(ctx context.Context, userID string) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.DeleteByUserID(ctx, userID); err != nil {
		zap.L().Warn("撤销用户会话失败", zap.String("user_id", userID), zap.Error(err))
	}
}
