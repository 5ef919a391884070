package model

import (
	"time"

	"gorm.io/gorm"
)

// UserRole 员工侧登录角色（密码登录）。顾客走 OTP，不在此表。
type UserRole string

const (
	RoleAdmin           UserRole = "admin"            // 平台管理员
	RoleRestaurantStaff UserRole = "restaurant_staff" // 餐厅员工
)

// User 员工账号：邮箱 + 密码哈希。
type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`

	FullName string `gorm:"size:255;not null" json:"full_name"`
	Phone    string `gorm:"size:20" json:"phone"`

	Role     UserRole `gorm:"size:32;not null" json:"role"`
	IsActive bool     `gorm:"not null;default:true" json:"is_active"`

	LastLogin *time.Time `json:"last_login"`
}

func (User) TableName() string { return "users" }

// UserRestaurant 员工与餐厅的多对多映射，重复指派由唯一索引拦截。
type UserRestaurant struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID       uint `gorm:"not null;uniqueIndex:uq_user_restaurant" json:"user_id"`
	RestaurantID uint `gorm:"not null;uniqueIndex:uq_user_restaurant" json:"restaurant_id"`
}

func (UserRestaurant) TableName() string { return "user_restaurants_map" }
