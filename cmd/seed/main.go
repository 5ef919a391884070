package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"dinehub/internal/auth"
	"dinehub/internal/model"
	"dinehub/internal/slugutil"
)

// 初始化工具：建管理员账号 + 示例餐厅与分类，便于本地联调。
func main() {
	dbPath := flag.String("db", "dinehub.db", "sqlite db path")
	email := flag.String("email", "admin@example.com", "admin email")
	password := flag.String("password", "admin123456", "admin password")
	restaurant := flag.String("restaurant", "Demo Diner", "demo restaurant name")
	flag.Parse()

	log := logrus.New()

	db, err := gorm.Open(sqlite.Open(*dbPath+"?_foreign_keys=on"), &gorm.Config{})
	if err != nil {
		log.WithError(err).Fatal("db open")
	}
	if err := db.AutoMigrate(
		&model.Restaurant{},
		&model.RestaurantSettings{},
		&model.MenuCategory{},
		&model.MenuItem{},
		&model.MenuItemVariant{},
		&model.User{},
		&model.UserRestaurant{},
		&model.Customer{},
		&model.ImportJob{},
	); err != nil {
		log.WithError(err).Fatal("db migrate")
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		log.WithError(err).Fatal("hash password")
	}
	admin := &model.User{
		Email:        strings.ToLower(*email),
		PasswordHash: hash,
		FullName:     "Platform Admin",
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	if err := db.Where("email = ?", admin.Email).FirstOrCreate(admin).Error; err != nil {
		log.WithError(err).Fatal("create admin")
	}

	s, err := slugutil.UniqueRestaurantSlug(db, *restaurant, 0)
	if err != nil {
		log.WithError(err).Fatal("generate slug")
	}
	r := &model.Restaurant{Name: *restaurant, Slug: s}
	if err := db.Where("name = ?", r.Name).FirstOrCreate(r).Error; err != nil {
		log.WithError(err).Fatal("create restaurant")
	}

	rid := r.ID
	category := &model.MenuCategory{
		RestaurantID: &rid,
		Name:         "Mains",
		DisplayOrder: 1,
		IsActive:     true,
	}
	if err := db.Where("restaurant_id = ? AND name = ?", rid, category.Name).FirstOrCreate(category).Error; err != nil {
		log.WithError(err).Fatal("create category")
	}

	fmt.Printf("admin: %s\nrestaurant: %s (id=%d, slug=%s)\ncategory: %s (id=%d)\n",
		admin.Email, r.Name, r.ID, r.Slug, category.Name, category.ID)
}
