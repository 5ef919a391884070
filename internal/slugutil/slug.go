package slugutil

import (
	"errors"
	"fmt"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"dinehub/internal/model"
)

// UniqueRestaurantSlug 由名称生成 URL slug，与既有餐厅冲突时追加序号。
// excludeID 用于更新场景排除自身。
func UniqueRestaurantSlug(db *gorm.DB, name string, excludeID uint) (string, error) {
	base := slug.Make(name)
	candidate := base

	for counter := 1; ; counter++ {
		query := db.Model(&model.Restaurant{}).Where("slug = ?", candidate)
		if excludeID != 0 {
			query = query.Where("id <> ?", excludeID)
		}
		var existing model.Restaurant
		err := query.Limit(1).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}
