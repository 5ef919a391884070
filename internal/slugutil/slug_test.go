package slugutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"dinehub/internal/model"
)

func newSlugDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.Restaurant{}))
	return db
}

func TestUniqueRestaurantSlug(t *testing.T) {
	db := newSlugDB(t)

	s, err := UniqueRestaurantSlug(db, "The Green Bowl", 0)
	require.NoError(t, err)
	require.Equal(t, "the-green-bowl", s)

	require.NoError(t, db.Create(&model.Restaurant{Name: "The Green Bowl", Slug: s}).Error)

	s2, err := UniqueRestaurantSlug(db, "The Green Bowl", 0)
	require.NoError(t, err)
	require.Equal(t, "the-green-bowl-1", s2)
}

func TestUniqueRestaurantSlugExcludesSelf(t *testing.T) {
	db := newSlugDB(t)
	r := &model.Restaurant{Name: "Cafe One", Slug: "cafe-one"}
	require.NoError(t, db.Create(r).Error)

	s, err := UniqueRestaurantSlug(db, "Cafe One", r.ID)
	require.NoError(t, err)
	require.Equal(t, "cafe-one", s)
}
