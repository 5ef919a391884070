package model

import (
	"time"

	"gorm.io/gorm"
)

// MenuCategory 菜单分类。restaurant_id 为空表示平台级全局分类。
type MenuCategory struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	RestaurantID *uint `gorm:"index" json:"restaurant_id"`

	Name         string `gorm:"size:100;not null" json:"name"`
	Description  string `gorm:"size:255" json:"description"`
	DisplayOrder int    `gorm:"not null;default:0" json:"display_order"`
	IsActive     bool   `gorm:"not null;default:true" json:"is_active"`
	IsGlobal     bool   `gorm:"not null;default:false" json:"is_global"`
}

func (MenuCategory) TableName() string { return "menu_categories" }
