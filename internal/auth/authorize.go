package auth

import (
	"errors"

	"gorm.io/gorm"

	"dinehub/internal/model"
)

// ErrForbidden 主体无权访问目标餐厅的资源。
var ErrForbidden = errors.New("forbidden")

// AuthorizeRestaurant 是唯一的租户访问检查入口：
// admin 放行；restaurant_staff 需在映射表中指派到该餐厅；其余一律拒绝。
// 所有按餐厅隔离的写路径统一走这里，不在各 handler 里重复判断。
func AuthorizeRestaurant(db *gorm.DB, p Principal, restaurantID uint) error {
	if p.Type != PrincipalStaff {
		return ErrForbidden
	}
	if p.Role == model.RoleAdmin {
		return nil
	}
	if p.Role != model.RoleRestaurantStaff {
		return ErrForbidden
	}
	var m model.UserRestaurant
	err := db.Where("user_id = ? AND restaurant_id = ?", p.SubjectID, restaurantID).
		Limit(1).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrForbidden
		}
		return err
	}
	return nil
}
