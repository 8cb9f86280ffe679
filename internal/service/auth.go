package service

import (
	"context"
	"errors"
	"time"

	"github.com/pu-ac-cn/rbac-admin/internal/model"
	"github.com/pu-ac-cn/rbac-admin/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrWrongOldPassword 原密码错误
var ErrWrongOldPassword = BadRequest("原密码错误")

// LoginInput 登录参数
type LoginInput struct {
	Username  string
	Password  string
	IP        string
	UserAgent string
}

// LoginResult 登录结果
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *model.User `json:"user"`
}

// UserInfo 当前用户信息
type UserInfo struct {
	User        *model.User         `json:"user"`
	Roles       []string            `json:"roles"`
	Permissions []string            `json:"permissions"`
	Menus       []*model.Permission `json:"menus"`
}

// AuthService 认证服务接口
type AuthService interface {
	Login(ctx context.Context, input *LoginInput) (*LoginResult, error)
	Logout(ctx context.Context, tokenString string) error
	// RevokeUser 强制用户所有会话下线
	RevokeUser(ctx context.Context, userID string) error
	// Authenticate 校验令牌并确认会话仍然有效
	Authenticate(ctx context.Context, tokenString string) (*TokenClaims, error)
	Info(ctx context.Context, userID string) (*UserInfo, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	Sessions(ctx context.Context, userID string) ([]*model.Session, error)
}

// authService 认证服务实现
type authService struct {
	userRepo repository.UserRepository
	userRole UserRoleService
	tokens   TokenService
	sessions SessionService
}

// NewAuthService 创建认证服务
func NewAuthService(userRepo repository.UserRepository, userRole UserRoleService, tokens TokenService, sessions SessionService) AuthService {
	return &authService{
		userRepo: userRepo,
		userRole: userRole,
		tokens:   tokens,
		sessions: sessions,
	}
}

// Login 验证用户名密码并签发令牌
func (s *authService) Login(ctx context.Context, input *LoginInput) (*LoginResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.VerifyPassword(input.Password) {
		zap.L().Info("登录失败", zap.String("username", input.Username), zap.String("ip", input.IP))
		return nil, ErrInvalidCredentials
	}
	if !user.IsEnabled() {
		return nil, ErrUserDisabled
	}

	claims := &TokenClaims{UserID: user.ID, Username: user.Username}
	token, err := s.tokens.GenerateAccessToken(ctx, claims)
	if err != nil {
		return nil, err
	}

	// 会话 ID 与令牌 jti 一致，退出登录时据此撤销
	if err := s.sessions.Create(ctx, &model.Session{
		ID:        claims.ID,
		UserID:    user.ID,
		Username:  user.Username,
		IPAddress: input.IP,
		UserAgent: input.UserAgent,
		ExpiresAt: claims.ExpiresAt.Time,
	}); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.userRepo.UpdateLogin(ctx, user.ID, now, input.IP); err != nil {
		zap.L().Warn("记录登录信息失败", zap.String("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLoginTime = &now
		user.LastLoginIP = input.IP
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      user,
	}, nil
}

// Logout 撤销令牌对应的会话
func (s *authService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.tokens.ValidateToken(ctx, tokenString)
	if err != nil {
		return err
	}
	return s.sessions.Delete(ctx, claims.ID)
}

func (s *authService) RevokeUser(ctx context.Context, userID string) error {
	return s.sessions.DeleteByUserID(ctx, userID)
}

// Authenticate 校验令牌
func (s *authService) Authenticate(ctx context.Context, tokenString string) (*TokenClaims, error) {
	claims, err := s.tokens.ValidateToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if _, err := s.sessions.Get(ctx, claims.ID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrSessionRevoked
		}
		return nil, err
	}
	return claims, nil
}

// Info 并发加载用户角色和权限
func (s *authService) Info(ctx context.Context, userID string) (*UserInfo, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, asNotFound(err, ErrUserNotFound)
	}

	var (
		roles []*model.Role
		perms []*model.Permission
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roles, err = s.userRole.FindByUserID(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		perms, err = s.userRole.GetUserPermissions(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	info := &UserInfo{
		User:        user,
		Roles:       make([]string, 0, len(roles)),
		Permissions: make([]string, 0, len(perms)),
	}
	for _, r := range roles {
		info.Roles = append(info.Roles, r.Code)
	}
	menus := make([]*model.Permission, 0)
	for _, p := range perms {
		info.Permissions = append(info.Permissions, p.Code)
		if p.Type == model.PermissionTypeMenu {
			menus = append(menus, p)
		}
	}
	info.Menus = model.BuildPermissionTree(menus)
	return info, nil
}

// ChangePassword 修改当前用户密码，成功后撤销全部会话
func (s *authService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return asNotFound(err, ErrUserNotFound)
	}
	if !user.VerifyPassword(oldPassword) {
		return ErrWrongOldPassword
	}
	user.PlainPassword = newPassword
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	return s.sessions.DeleteByUserID(ctx, userID)
}

// Sessions 当前用户的有效会话
func (s *authService) Sessions(ctx context.Context, userID string) ([]*model.Session, error) {
	return s.sessions.ListByUserID(ctx, userID)
}
