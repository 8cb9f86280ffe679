package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/plugin/soft_delete"
)

// User 用户模型
type User struct {
	BaseModel
	Username      string     `gorm:"type:varchar(64);not null;uniqueIndex:uk_users_username" json:"username"`
	Password      string     `gorm:"type:varchar(255);not null" json:"-"`
	Email         NullString `gorm:"type:varchar(255);uniqueIndex:uk_users_email" json:"email"`
	Phone         NullString `gorm:"type:varchar(20);uniqueIndex:uk_users_phone" json:"phone"`
	Nickname      string     `gorm:"type:varchar(100)" json:"nickname"`
	Avatar        string     `gorm:"type:varchar(500)" json:"avatar"`
	Status        string     `gorm:"type:varchar(20);default:enabled" json:"status"`
	LastLoginTime *time.Time `json:"lastLoginTime"`
	LastLoginIP   string     `gorm:"type:varchar(45)" json:"lastLoginIp"`

	// DeletedAt 删除时间毫秒数，0 表示未删除
	DeletedAt soft_delete.DeletedAt `gorm:"softDelete:milli;default:0;index;uniqueIndex:uk_users_username;uniqueIndex:uk_users_email;uniqueIndex:uk_users_phone" json:"-"`

	// PlainPassword 待哈希的明文密码，不落库
	PlainPassword string `gorm:"-" json:"-"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// BeforeSave 保存前哈希明文密码，每次写入只哈希一次
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.PlainPassword == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(u.PlainPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	u.PlainPassword = ""
	return nil
}

// VerifyPassword 验证密码
func (u *User) VerifyPassword(password string) bool {
	if u.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// IsEnabled 检查用户是否启用
func (u *User) IsEnabled() bool {
	return u.Status == StatusEnabled
}
