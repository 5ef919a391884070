package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dinehub/internal/model"
	"dinehub/internal/slugutil"
)

// listRestaurants 公开的餐厅列表。
func listRestaurants(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var list []model.Restaurant
		if err := db.Find(&list).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": list})
	}
}

// getRestaurant 公开的餐厅详情。
func getRestaurant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uintParam(c, "restaurant_id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid restaurant id"})
			return
		}
		var r model.Restaurant
		if err := db.First(&r, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "restaurant not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": r})
	}
}

// createRestaurant 创建餐厅（仅 admin），slug 自动生成并保证唯一。
func createRestaurant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireAdmin(c); !ok {
			return
		}
		var req struct {
			Name string `json:"name" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		s, err := slugutil.UniqueRestaurantSlug(db, req.Name, 0)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		r := &model.Restaurant{Name: req.Name, Slug: s}
		if err := db.Create(r).Error; err != nil {
			if errorsLikeUnique(err) {
				c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "restaurant name already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": r})
	}
}

// getSettings 读取运营配置，不存在则按默认值懒创建。
func getSettings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		restaurantID, ok := uintParam(c, "restaurant_id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid restaurant id"})
			return
		}
		if !requireRestaurantAccess(c, db, restaurantID) {
			return
		}
		settings, err := getOrCreateSettings(db, restaurantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "restaurant not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": settings})
	}
}

// updateSettings 部分更新运营配置。
func updateSettings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		restaurantID, ok := uintParam(c, "restaurant_id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid restaurant id"})
			return
		}
		if !requireRestaurantAccess(c, db, restaurantID) {
			return
		}

		var req struct {
			TaxPercentage        *float64 `json:"tax_percentage"`
			ServiceCharge        *float64 `json:"service_charge"`
			AutoAcceptOrders     *bool    `json:"auto_accept_orders"`
			OrderPreparationTime *int     `json:"order_preparation_time"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		settings, err := getOrCreateSettings(db, restaurantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "restaurant not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}

		updates := map[string]any{}
		if req.TaxPercentage != nil {
			updates["tax_percentage"] = *req.TaxPercentage
		}
		if req.ServiceCharge != nil {
			updates["service_charge"] = *req.ServiceCharge
		}
		if req.AutoAcceptOrders != nil {
			updates["auto_accept_orders"] = *req.AutoAcceptOrders
		}
		if req.OrderPreparationTime != nil {
			updates["order_preparation_time"] = *req.OrderPreparationTime
		}
		if len(updates) > 0 {
			if err := db.Model(settings).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": settings})
	}
}

// getOrCreateSettings 餐厅存在的前提下取配置，缺失则建默认行。
func getOrCreateSettings(db *gorm.DB, restaurantID uint) (*model.RestaurantSettings, error) {
	var restaurant model.Restaurant
	if err := db.First(&restaurant, restaurantID).Error; err != nil {
		return nil, err
	}

	var settings model.RestaurantSettings
	err := db.Where("restaurant_id = ?", restaurantID).First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	settings = model.RestaurantSettings{RestaurantID: restaurantID, AutoAcceptOrders: false}
	if createErr := db.Create(&settings).Error; createErr != nil {
		// 并发创建撞唯一索引时回读一次。
		if readErr := db.Where("restaurant_id = ?", restaurantID).First(&settings).Error; readErr != nil {
			return nil, createErr
		}
	}
	return &settings, nil
}
