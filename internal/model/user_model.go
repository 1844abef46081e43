package model

import (
	"github.com/google/uuid"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID           uuid.UUID `gorm:"primaryKey;type:uuid" json:"id"`
	UserName     string    `gorm:"not null;uniqueIndex;type:varchar(30)" json:"userName"`
	FullName     string    `gorm:"not null" json:"fullName"`
	Email        string    `gorm:"not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         UserRole  `gorm:"not null;type:varchar(20)" json:"role"`
	BaseModel
}

type RegisterUserModel struct {
	UserName string `json:"userName" validate:"required,min=3,max=30"`
	FullName string `json:"fullName" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strong_password"`
}

type LoginModel struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strong_password"`
}

type TokenPairModel struct {
	AccessToken  string
	RefreshToken string
}

// Identity 已通過認證的呼叫者
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   UserRole
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// CanAccess 管理者可以存取所有資源, 一般使用者只能存取自己的
func (i Identity) CanAccess(ownerID uuid.UUID) bool {
	return i.IsAdmin() || i.UserID == ownerID
}
