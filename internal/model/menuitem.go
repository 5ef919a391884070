package model

import (
	"time"

	"gorm.io/gorm"
)

// MenuItem 菜单项，按餐厅隔离；category_id 外键由存储层约束。
type MenuItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	RestaurantID uint `gorm:"not null;index:ix_menu_items_restaurant_category" json:"restaurant_id"`
	CategoryID   uint `gorm:"not null;index:ix_menu_items_restaurant_category" json:"category_id"`

	Name        string  `gorm:"size:255;not null;index" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Price       float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	ImageURL    string  `gorm:"size:512" json:"image_url"`

	IsAvailable  bool `gorm:"not null;default:true;index" json:"is_available"`
	IsVegetarian bool `gorm:"not null;default:false" json:"is_vegetarian"`

	PreparationTimeMinutes *int `json:"preparation_time_minutes"`
}

func (MenuItem) TableName() string { return "menu_items" }

// MenuItemVariant 规格（小/中/大），同一菜品下名称唯一。
type MenuItemVariant struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ItemID uint `gorm:"not null;uniqueIndex:uq_menu_item_variants_item_name" json:"item_id"`

	Name            string  `gorm:"size:100;not null;uniqueIndex:uq_menu_item_variants_item_name" json:"name"`
	PriceAdjustment float64 `gorm:"type:decimal(10,2);not null;default:0" json:"price_adjustment"`
	IsDefault       bool    `gorm:"not null;default:false" json:"is_default"`
}

func (MenuItemVariant) TableName() string { return "menu_item_variants" }
