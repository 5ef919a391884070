package model

import (
	"time"

	"gorm.io/gorm"
)

// Restaurant 租户实体：一个餐厅就是一条数据隔离边界（tenant）。
type Restaurant struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name string `gorm:"size:255;uniqueIndex;not null" json:"name"`
	// Slug 由名称生成，作为对外 URL 标识，冲突时追加序号。
	Slug string `gorm:"size:255;uniqueIndex;not null" json:"slug"`
}

func (Restaurant) TableName() string { return "restaurants" }

// RestaurantSettings 每家餐厅一条的运营配置，首次访问时懒创建。
type RestaurantSettings struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RestaurantID uint `gorm:"not null;uniqueIndex" json:"restaurant_id"`

	TaxPercentage    *float64 `gorm:"type:decimal(5,2)" json:"tax_percentage"`
	ServiceCharge    *float64 `gorm:"type:decimal(5,2)" json:"service_charge"`
	AutoAcceptOrders bool     `gorm:"not null;default:false" json:"auto_accept_orders"`
	// OrderPreparationTime 单位分钟
	OrderPreparationTime *int `json:"order_preparation_time"`
}

func (RestaurantSettings) TableName() string { return "restaurant_settings" }
