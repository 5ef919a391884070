package router

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dinehub/internal/auth"
	"dinehub/internal/model"
	"dinehub/internal/otp"
)

// staffLogin 员工密码登录，成功签发 staff 凭证。
func staffLogin(db *gorm.DB, issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		var user model.User
		err := db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error
		if err != nil || !user.IsActive || !auth.CheckPassword(user.PasswordHash, req.Password) {
			// 账号不存在与密码错误返回同一提示，不泄露账号存在性。
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "msg": "invalid email or password"})
			return
		}

		token, err := issuer.Issue(user.ID, auth.PrincipalStaff, user.Role)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}

		now := time.Now()
		_ = db.Model(&model.User{}).Where("id = ?", user.ID).Update("last_login", now).Error

		c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{
			"access_token": token,
			"token_type":   "bearer",
		}})
	}
}

// createStaff 创建员工账号（仅 admin）。
func createStaff(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireAdmin(c); !ok {
			return
		}

		var req struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required,min=8"`
			FullName string `json:"full_name" binding:"required"`
			Phone    string `json:"phone"`
			Role     string `json:"role" binding:"required,oneof=admin restaurant_staff"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		user := &model.User{
			Email:        strings.ToLower(req.Email),
			PasswordHash: hash,
			FullName:     req.FullName,
			Phone:        req.Phone,
			Role:         model.UserRole(req.Role),
			IsActive:     true,
		}
		if err := db.Create(user).Error; err != nil {
			if errorsLikeUnique(err) {
				c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "email already registered"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": user})
	}
}

// assignStaff 把员工指派到餐厅，重复指派由唯一索引拦截。
func assignStaff(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireAdmin(c); !ok {
			return
		}
		restaurantID, ok := uintParam(c, "restaurant_id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid restaurant id"})
			return
		}

		var req struct {
			UserID uint `json:"user_id" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		var user model.User
		if err := db.First(&user, req.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "user not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}

		m := &model.UserRestaurant{UserID: req.UserID, RestaurantID: restaurantID}
		if err := db.Create(m).Error; err != nil {
			if errorsLikeUnique(err) {
				c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "user already assigned to this restaurant"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": m})
	}
}

// requestOTP 顾客请求验证码；验证码只走短信通道，响应里不回显。
func requestOTP(svc *otp.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Phone string `json:"phone" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		if err := svc.Request(c.Request.Context(), req.Phone); err != nil {
			if errors.Is(err, otp.ErrInvalidPhone) {
				c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid phone number"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "otp sent"})
	}
}

// verifyOTP 校验验证码，成功返回 customer 凭证。
// 过期/超限/错码分别给出可行动的提示。
func verifyOTP(svc *otp.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Phone string `json:"phone" binding:"required"`
			OTP   string `json:"otp" binding:"required,len=6,numeric"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		token, customer, err := svc.Verify(c.Request.Context(), req.Phone, req.OTP)
		if err != nil {
			switch {
			case errors.Is(err, otp.ErrInvalidPhone):
				c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid phone number"})
			case errors.Is(err, otp.ErrExpiredOrNotFound):
				c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "otp expired or not found, request a new one"})
			case errors.Is(err, otp.ErrTooManyAttempts):
				c.JSON(http.StatusTooManyRequests, gin.H{"code": 429, "msg": "too many attempts, request a new otp"})
			case errors.Is(err, otp.ErrInvalidCode):
				c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "invalid otp"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{
			"access_token": token,
			"token_type":   "bearer",
			"customer":     customer,
		}})
	}
}

// errorsLikeUnique 识别存储层唯一约束冲突（SQLite/MySQL 文案差异用包含匹配兜底）。
func errorsLikeUnique(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "UNIQUE") || strings.Contains(s, "unique") || strings.Contains(s, "Duplicate")
}
