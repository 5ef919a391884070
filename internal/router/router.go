package router

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"dinehub/internal/auth"
	"dinehub/internal/config"
	"dinehub/internal/importer"
	"dinehub/internal/middleware"
	"dinehub/internal/model"
	"dinehub/internal/otp"
)

// Setup 注册全部 HTTP 路由。
// 读菜单是公开接口；写路径统一过 RequireAuth + AuthorizeRestaurant。
func Setup(r *gin.Engine, db *gorm.DB, rdb *rd.Client, eng *importer.Engine, otpSvc *otp.Service, issuer *auth.TokenIssuer, cfg config.AppConfig) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "pong"})
	})

	// Auth
	r.POST("/api/auth/login", staffLogin(db, issuer))
	r.POST("/api/auth/customer/request-otp",
		middleware.OTPRateLimit(rdb, cfg.OTPRateLimit, cfg.OTPRateWindow), requestOTP(otpSvc))
	r.POST("/api/auth/customer/verify-otp", verifyOTP(otpSvc))

	authed := r.Group("", auth.RequireAuth(issuer))

	// Staff 管理（仅 admin）
	authed.POST("/api/users", createStaff(db))
	authed.POST("/api/restaurants/:restaurant_id/staff", assignStaff(db))

	// Restaurants
	r.GET("/api/restaurants", listRestaurants(db))
	r.GET("/api/restaurants/:restaurant_id", getRestaurant(db))
	authed.POST("/api/restaurants", createRestaurant(db))
	authed.GET("/api/restaurants/:restaurant_id/settings", getSettings(db))
	authed.PATCH("/api/restaurants/:restaurant_id/settings", updateSettings(db))

	// Menu categories
	r.GET("/api/restaurants/:restaurant_id/categories", listCategories(db))
	authed.POST("/api/restaurants/:restaurant_id/categories", createCategory(db))
	authed.PATCH("/api/restaurants/:restaurant_id/categories/:category_id", updateCategory(db))
	authed.DELETE("/api/restaurants/:restaurant_id/categories/:category_id", deleteCategory(db))

	// Menu items（import 路由在动态 :item_id 之前注册）
	authed.POST("/api/restaurants/:restaurant_id/menu-items/import", submitImport(eng, db))
	authed.GET("/api/restaurants/:restaurant_id/menu-items/import/:job_id", getImportJob(eng, db))
	r.GET("/api/restaurants/:restaurant_id/menu-items", listMenuItems(db))
	r.GET("/api/restaurants/:restaurant_id/menu-items/:item_id", getMenuItem(db))
	authed.POST("/api/restaurants/:restaurant_id/menu-items", createMenuItem(db))
	authed.PATCH("/api/restaurants/:restaurant_id/menu-items/:item_id", updateMenuItem(db))
	authed.DELETE("/api/restaurants/:restaurant_id/menu-items/:item_id", deleteMenuItem(db))

	// Variants
	r.GET("/api/restaurants/:restaurant_id/menu-items/:item_id/variants", listVariants(db))
	authed.POST("/api/restaurants/:restaurant_id/menu-items/:item_id/variants", createVariant(db))
	authed.DELETE("/api/restaurants/:restaurant_id/menu-items/:item_id/variants/:variant_id", deleteVariant(db))
}

// uintParam 解析路径参数为 uint，失败时由调用方回 400。
func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(v), true
}

// requireRestaurantAccess 统一的租户写权限检查，失败时已写响应。
func requireRestaurantAccess(c *gin.Context, db *gorm.DB, restaurantID uint) bool {
	p, ok := auth.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "msg": "authentication required"})
		return false
	}
	if err := auth.AuthorizeRestaurant(db, p, restaurantID); err != nil {
		if errors.Is(err, auth.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"code": 403, "msg": "no access to this restaurant"})
			return false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
		return false
	}
	return true
}

// requireAdmin 平台管理员专属入口。
func requireAdmin(c *gin.Context) (auth.Principal, bool) {
	p, ok := auth.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "msg": "authentication required"})
		return auth.Principal{}, false
	}
	if p.Type != auth.PrincipalStaff || p.Role != model.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"code": 403, "msg": "admin only"})
		return auth.Principal{}, false
	}
	return p, true
}
