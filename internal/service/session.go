package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pu-ac-cn/rbac-admin/internal/model"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound 会话不存在或已过期
var ErrSessionNotFound = errors.New("会话不存在")

// SessionService 登录会话服务接口
type SessionService interface {
	Create(ctx context.Context, session *model.Session) error
	Get(ctx context.Context, sessionID string) (*model.Session, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteByUserID(ctx context.Context, userID string) error
	ListByUserID(ctx context.Context, userID string) ([]*model.Session, error)
}

// Redis key 前缀
const (
	sessionKeyPrefix   = "rbac:session:"
	userSessionsPrefix = "rbac:user_sessions:"
)

type sessionService struct {
	redis  *redis.Client
	expiry time.Duration
}

// NewSessionService 创建会话服务，expiry 为会话默认有效期
func NewSessionService(redisClient *redis.Client, expiry time.Duration) SessionService {
	if expiry <= 0 {
		expiry = DefaultAccessExpiry
	}
	return &sessionService{redis: redisClient, expiry: expiry}
}

// Create 创建会话
func (s *sessionService) Create(ctx context.Context, session *model.Session) error {
	if session.ID == "" {
		return errors.New("会话 ID 不能为空")
	}
	session.CreatedAt = time.Now()
	if session.ExpiresAt.IsZero() {
		session.ExpiresAt = session.CreatedAt.Add(s.expiry)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return errors.New("会话过期时间无效")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("序列化会话失败: %w", err)
	}

	userKey := userSessionsPrefix + session.UserID
	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+session.ID, data, ttl)
	pipe.SAdd(ctx, userKey, session.ID)
	// 用户会话索引比单个会话多保留一段时间
	pipe.Expire(ctx, userKey, s.expiry+time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("存储会话失败: %w", err)
	}
	return nil
}

// Get 获取会话
func (s *sessionService) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	data, err := s.redis.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("获取会话失败: %w", err)
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("解析会话失败: %w", err)
	}
	if session.IsExpired() {
		_ = s.Delete(ctx, sessionID)
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

// Delete 删除会话
func (s *sessionService) Delete(ctx context.Context, sessionID string) error {
	key := sessionKeyPrefix + sessionID
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("获取会话失败: %w", err)
	}

	if err := s.redis.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("删除会话失败: %w", err)
	}

	// 从用户会话索引中移除
	var session model.Session
	if len(data) > 0 && json.Unmarshal(data, &session) == nil {
		s.redis.SRem(ctx, userSessionsPrefix+session.UserID, sessionID)
	}
	return nil
}

// DeleteByUserID 删除用户的所有会话
func (s *sessionService) DeleteByUserID(ctx context.Context, userID string) error {
	userKey := userSessionsPrefix + userID
	sessionIDs, err := s.redis.SMembers(ctx, userKey).Result()
	if err != nil {
		return fmt.Errorf("获取用户会话失败: %w", err)
	}

	keys := make([]string, 0, len(sessionIDs)+1)
	for _, id := range sessionIDs {
		keys = append(keys, sessionKeyPrefix+id)
	}
	keys = append(keys, userKey)
	return s.redis.Del(ctx, keys...).Err()
}

// ListByUserID 列出用户的有效会话，顺带清理已过期的索引
func (s *sessionService) ListByUserID(ctx context.Context, userID string) ([]*model.Session, error) {
	userKey := userSessionsPrefix + userID
	sessionIDs, err := s.redis.SMembers(ctx, userKey).Result()
	if err != nil {
		return nil, fmt.Errorf("获取用户会话失败: %w", err)
	}

	sessions := make([]*model.Session, 0, len(sessionIDs))
	for _, id := range sessionIDs {
		session, err := s.Get(ctx, id)
		if err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				s.redis.SRem(ctx, userKey, id)
				continue
			}
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}
