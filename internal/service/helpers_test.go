package service

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/cache"
	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/config"
	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/db"
)

type fixture struct {
	db         *gorm.DB
	cache      *cache.Categories
	categories *Categories
	general    *General
}

func newFixture(t *testing.T, perPage uint64) *fixture {
	t.Helper()

	cfg := &config.Config{
		DBDriver:        config.DriverSQLite,
		DBName:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String()),
		PaginationLimit: perPage,
		LogLevel:        "error",
		BcryptCost:      bcrypt.MinCost,
	}
	l := zap.NewNop().Sugar()

	conn, err := db.NewGormClient(cfg, l)
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, err := conn.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	c := cache.NewCategories(l)
	categories := NewCategories(conn, c, cfg, l)
	return &fixture{
		db:         conn,
		cache:      c,
		categories: categories,
		general:    NewGeneral(conn, categories, cfg, l),
	}
}

func (f *fixture) user(t *testing.T, email string) *db.User {
	t.Helper()
	u := db.User{Email: email, Password: "x", Token: uuid.New().String()}
	require.NoError(t, f.db.Create(&u).Error)
	return &u
}

func (f *fixture) category(t *testing.T, userID uint64, name string, parent *uint64) *db.Category {
	t.Helper()
	c, err := f.categories.Create(userID, CategoryInput{Name: name, ParentCategory: parent})
	require.NoError(t, err)
	return c
}

func ptr(v uint64) *uint64 { return &v }

func str(v string) *string { return &v }
