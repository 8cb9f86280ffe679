package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims JWT 声明
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"uid"`
	Username string `json:"username"`
}

// TokenService 令牌服务接口
type TokenService interface {
	// GenerateAccessToken 生成访问令牌，claims 的 ID 和过期时间由此填充
	GenerateAccessToken(ctx context.Context, claims *TokenClaims) (string, error)
	// ValidateToken 校验签名、签发者和有效期
	ValidateToken(ctx context.Context, tokenString string) (*TokenClaims, error)
	// AccessExpiry 访问令牌有效期
	AccessExpiry() time.Duration
}

// tokenService 令牌服务实现
type tokenService struct {
	privateKey   *rsa.PrivateKey
	publicKey    *rsa.PublicKey
	keyID        string
	issuer       string
	accessExpiry time.Duration
}

// TokenServiceConfig 令牌服务配置
type TokenServiceConfig struct {
	PrivateKey   *rsa.PrivateKey
	KeyID        string
	Issuer       string
	AccessExpiry time.Duration
}

// NewTokenService 创建令牌服务
func NewTokenService(cfg *TokenServiceConfig) TokenService {
	expiry := cfg.AccessExpiry
	if expiry <= 0 {
		expiry = DefaultAccessExpiry
	}
	return &tokenService{
		privateKey:   cfg.PrivateKey,
		publicKey:    &cfg.PrivateKey.PublicKey,
		keyID:        cfg.KeyID,
		issuer:       cfg.Issuer,
		accessExpiry: expiry,
	}
}

// LoadPrivateKey 读取 PEM 私钥，路径为空时生成临时密钥
func LoadPrivateKey(path string) (*rsa.PrivateKey, error) {
	if path == "" {
		return rsa.GenerateKey(rand.Reader, 2048)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取私钥失败: %w", err)
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("解析私钥失败: %w", err)
	}
	return key, nil
}

// GenerateAccessToken 生成访问令牌
func (s *tokenService) GenerateAccessToken(ctx context.Context, claims *TokenClaims) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   claims.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.accessExpiry)),
		ID:        generateTokenID(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = s.keyID

	return token.SignedString(s.privateKey)
}

// ValidateToken 验证令牌
func (s *tokenService) ValidateToken(ctx context.Context, tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 验证签名算法
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("签名算法不匹配")
		}
		return s.publicKey, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *tokenService) AccessExpiry() time.Duration {
	return s.accessExpiry
}

// generateTokenID 生成令牌 ID
func generateTokenID() string {
	bytes := make([]byte, 18)
	_, _ = rand.Read(bytes)
	return base64.RawURLEncoding.EncodeToString(bytes)
}

// DefaultAccessExpiry 默认访问令牌有效期
const DefaultAccessExpiry = 12 * time.Hour
