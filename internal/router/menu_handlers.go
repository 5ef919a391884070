package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dinehub/internal/model"
)

// listCategories 公开接口：餐厅自有分类 + 全局分类。
func listCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		restaurantID, ok := uintParam(c, "restaurant_id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid restaurant id"})
			return
		}
		var list []model.MenuCategory
		err := db.Where("restaurant_id = ? OR is_global = ?", restaurantID, true).
			Order("display_order asc").
			Find(&list).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": list})
	}
}

func createCategory(db *gorm.DB) gin.HandlerFunc {
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
			Name         string `json:"name" binding:"required,max=100"`
			Description  string `json:"description" binding:"max=255"`
			DisplayOrder int    `json:"display_order"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		category := &model.MenuCategory{
			RestaurantID: &restaurantID,
			Name:         req.Name,
			Description:  req.Description,
			DisplayOrder: req.DisplayOrder,
			IsActive:     true,
		}
		if err := db.Create(category).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": category})
	}
}

func updateCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		restaurantID, ok := uintParam(c, "restaurant_id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid restaurant id"})
			return
		}
		categoryID, ok := uintParam(c, "category_id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid category id"})
			return
		}
		if !requireRestaurantAccess(c, db, restaurantID) {
			return
		}

		var category model.MenuCategory
		err := db.Where("id = ? AND restaurant_id = ?", categoryID, restaurantID).First(&category).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "category not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}

		var req struct {
			Name         *string `json:"name"`
			Description  *string `json:"description"`
			DisplayOrder *int    `json:"display_order"`
			IsActive     *bool   `json:"is_active"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		updates := map[string]any{}
		if req.Name != nil {
			updates["name"] = *req.Name
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.DisplayOrder != nil {
			updates["display_order"] = *req.DisplayOrder
		}
		if req.IsActive != nil {
			updates["is_active"] = *req.IsActive
		}
		if len(updates) > 0 {
			if err := db.Model(&category).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": category})
	}
}

func deleteCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		restaurantID, ok := uintParam(c, "restaurant_id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid restaurant id"})
			return
		}
		categoryID, ok := uintParam(c, "category_id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid category id"})
			return
		}
		if !requireRestaurantAccess(c, db, restaurantID) {
			return
		}

		res := db.Where("id = ? AND restaurant_id = ?", categoryID, restaurantID).Delete(&model.MenuCategory{})
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": res.Error.Error()})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "category not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "deleted"})
	}
}

// listMenuItems 公开接口，支持 ?category_id= 过滤。
func listMenuItems(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		restaurantID, ok := uintParam(c, "restaurant_id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid restaurant id"})
			return
		}
		query := db.Where("restaurant_id = ?", restaurantID)
		if categoryID := c.Query("category_id"); categoryID != "" {
			query = query.Where("category_id = ?", categoryID)
		}
		var list []model.MenuItem
		if err := query.Find(&list).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": list})
	}
}

func getMenuItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		restaurantID, ok := uintParam(c, "restaurant_id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid restaurant id"})
			return
		}
		itemID, ok := uintParam(c, "item_id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid item id"})
			return
		}
		var item model.MenuItem
		err := db.Where("id = ? AND restaurant_id = ?", itemID, restaurantID).First(&item).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "menu item not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": item})
	}
}

func createMenuItem(db *gorm.DB) gin.HandlerFunc {
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
			Name                   string  `json:"name" binding:"required,max=255"`
			CategoryID             uint    `json:"category_id" binding:"required,min=1"`
			Price                  float64 `json:"price" binding:"required,min=0"`
			Description            string  `json:"description"`
			ImageURL               string  `json:"image_url" binding:"max=512"`
			IsAvailable            *bool   `json:"is_available"`
			IsVegetarian           bool    `json:"is_vegetarian"`
			PreparationTimeMinutes *int    `json:"preparation_time_minutes"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		var category model.MenuCategory
		err := db.Where("id = ? AND (restaurant_id = ? OR is_global = ?)", req.CategoryID, restaurantID, true).
			First(&category).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "category not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}

		available := true
		if req.IsAvailable != nil {
			available = *req.IsAvailable
		}
		item := &model.MenuItem{
			RestaurantID:           restaurantID,
			CategoryID:             req.CategoryID,
			Name:                   req.Name,
			Description:            req.Description,
			Price:                  req.Price,
			ImageURL:               req.ImageURL,
			IsAvailable:            available,
			IsVegetarian:           req.IsVegetarian,
			PreparationTimeMinutes: req.PreparationTimeMinutes,
		}
		if err := db.Create(item).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": item})
	}
}

func updateMenuItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		restaurantID, ok := uintParam(c, "restaurant_id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid restaurant id"})
			return
		}
		itemID, ok := uintParam(c, "item_id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid item id"})
			return
		}
		if !requireRestaurantAccess(c, db, restaurantID) {
			return
		}

		var item model.MenuItem
		err := db.Where("id = ? AND restaurant_id = ?", itemID, restaurantID).First(&item).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "menu item not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}

		var req struct {
			Name                   *string  `json:"name"`
			CategoryID             *uint    `json:"category_id"`
			Price                  *float64 `json:"price"`
			Description            *string  `json:"description"`
			ImageURL               *string  `json:"image_url"`
			IsAvailable            *bool    `json:"is_available"`
			IsVegetarian           *bool    `json:"is_vegetarian"`
			PreparationTimeMinutes *int     `json:"preparation_time_minutes"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		updates := map[string]any{}
		if req.Name != nil {
			updates["name"] = *req.Name
		}
		if req.CategoryID != nil {
			updates["category_id"] = *req.CategoryID
		}
		if req.Price != nil {
			updates["price"] = *req.Price
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.ImageURL != nil {
			updates["image_url"] = *req.ImageURL
		}
		if req.IsAvailable != nil {
			updates["is_available"] = *req.IsAvailable
		}
		if req.IsVegetarian != nil {
			updates["is_vegetarian"] = *req.IsVegetarian
		}
		if req.PreparationTimeMinutes != nil {
			updates["preparation_time_minutes"] = *req.PreparationTimeMinutes
		}
		if len(updates) > 0 {
			if err := db.Model(&item).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": item})
	}
}

func deleteMenuItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		restaurantID, ok := uintParam(c, "restaurant_id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid restaurant id"})
			return
		}
		itemID, ok := uintParam(c, "item_id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid item id"})
			return
		}
		if !requireRestaurantAccess(c, db, restaurantID) {
			return
		}

		res := db.Where("id = ? AND restaurant_id = ?", itemID, restaurantID).Delete(&model.MenuItem{})
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": res.Error.Error()})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "menu item not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "deleted"})
	}
}

// findTenantItem 规格操作共用的菜品定位。
func findTenantItem(db *gorm.DB, restaurantID, itemID uint) (*model.MenuItem, error) {
	var item model.MenuItem
	err := db.Where("id = ? AND restaurant_id = ?", itemID, restaurantID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func listVariants(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		restaurantID, ok := uintParam(c, "restaurant_id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid restaurant id"})
			return
		}
		itemID, ok := uintParam(c, "item_id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid item id"})
			return
		}
		if _, err := findTenantItem(db, restaurantID, itemID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "menu item not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		var list []model.MenuItemVariant
		if err := db.Where("item_id = ?", itemID).Find(&list).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": list})
	}
}

func createVariant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		restaurantID, ok := uintParam(c, "restaurant_id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid restaurant id"})
			return
		}
		itemID, ok := uintParam(c, "item_id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid item id"})
			return
		}
		if !requireRestaurantAccess(c, db, restaurantID) {
			return
		}
		if _, err := findTenantItem(db, restaurantID, itemID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "menu item not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}

		var req struct {
			Name            string  `json:"name" binding:"required,max=100"`
			PriceAdjustment float64 `json:"price_adjustment"`
			IsDefault       bool    `json:"is_default"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		variant := &model.MenuItemVariant{
			ItemID:          itemID,
			Name:            req.Name,
			PriceAdjustment: req.PriceAdjustment,
			IsDefault:       req.IsDefault,
		}
		if err := db.Create(variant).Error; err != nil {
			if errorsLikeUnique(err) {
				c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "variant name already exists for this item"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": variant})
	}
}

func deleteVariant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		restaurantID, ok := uintParam(c, "restaurant_id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid restaurant id"})
			return
		}
		itemID, ok := uintParam(c, "item_id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid item id"})
			return
		}
		variantID, ok := uintParam(c, "variant_id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid variant id"})
			return
		}
		if !requireRestaurantAccess(c, db, restaurantID) {
			return
		}
		if _, err := findTenantItem(db, restaurantID, itemID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "menu item not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}

		res := db.Where("id = ? AND item_id = ?", variantID, itemID).Delete(&model.MenuItemVariant{})
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": res.Error.Error()})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "variant not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "deleted"})
	}
}
