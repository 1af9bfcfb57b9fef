package model

import (
	"time"
)

type UserRole string

const (
	SuperAdmin UserRole = "superadmin"
	Admin      UserRole = "admin"
	Teacher    UserRole = "teacher"
	Student    UserRole = "student"
)

// swagger:model User
type User struct {
	BaseModel
	OrganizationID uint      `gorm:"index" json:"organizationId"` // 超级管理员为 0
	Name           string    `gorm:"size:100;not null" json:"name"`
	Email          string    `gorm:"size:100;unique;not null" json:"email"`
	Password       string    `gorm:"size:100;not null" json:"-"`
	Role           UserRole  `gorm:"type:enum('superadmin','admin','teacher','student');default:'student'" json:"role"`
	Disabled       bool      `gorm:"default:false" json:"disabled"`
	AttemptedTests int       `gorm:"default:0" json:"attemptedTests"` // 累计完成的测试次数
	Avatar         string    `gorm:"size:255" json:"avatar"`
	LastLogin      time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
	LastSeen       time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
