package model

import (
	"time"

	"gorm.io/gorm"
)

// Customer 顾客身份，以手机号为唯一键。
// 首次 OTP 验证成功时懒创建；OTP 挑战本身存 Redis，不落这张表。
type Customer struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Phone string `gorm:"size:20;uniqueIndex;not null" json:"phone"`

	Name  string `gorm:"size:255" json:"name"`
	Email string `gorm:"size:255" json:"email"`

	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	LastOrderAt *time.Time `json:"last_order_at"`
	TotalOrders int        `gorm:"not null;default:0" json:"total_orders"`
}

func (Customer) TableName() string { return "customers" }
