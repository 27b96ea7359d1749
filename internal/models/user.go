package models

import "time"

// UserModel represents an account.
// Username is the stable external identifier: collection sharing and exports
// reference users by username, never by row id.
type UserModel struct {
	Base
	Username      string     `json:"username"   gorm:"uniqueIndex;not null"`
	Name          string     `json:"name"`
	Avatar        string     `json:"avatar"`
	Password      string     `json:"-"          gorm:"not null"` // bcrypt
	Mail          string     `json:"mail"`
	IsPublic      bool       `json:"is_public"  gorm:"default:false"`
	LastLoginTime *time.Time `json:"last_login_time"`
}

func (UserModel) TableName() string { return "users" }
