package client

import (
	"sync"
	"time"
)

// Session 登录会话，Login 写入，Logout 或令牌过期时清空
type Session struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	user      *User
}

// NewSession 创建空会话
func NewSession() *Session {
	return &Session{}
}

// Token 当前令牌，未登录时为空
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User 当前登录用户
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Valid 是否持有未过期的令牌
func (s *Session) Valid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && (s.expiresAt.IsZero() || time.Now().Before(s.expiresAt))
}

// Set 写入登录结果
func (s *Session) Set(token string, expiresAt time.Time, user *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.expiresAt, s.user = token, expiresAt, user
}

// Clear 清空会话
func (s *Session) Clear() {
	s.Set("", time.Time{}, nil)
}
