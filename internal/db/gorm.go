package db

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/config"
)

type (
	GormForkedModel struct {
		ID        uint64 `gorm:"primarykey"`
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	User struct {
		GormForkedModel
		Email      string `gorm:"unique;not null"`
		Password   string `gorm:"not null"`
		Token      string `gorm:"not null;index"`
		Categories []Category
		Links      []Link
		Tags       []Tag
	}

	// Category references its parent by id only. Children are found through
	// the parent_category column, never through a pointer.
	Category struct {
		GormForkedModel
		UserID          uint64 `gorm:"not null;index"`
		Name            string `gorm:"not null"`
		Description     *string
		ParentCategory  *uint64    `gorm:"column:parent_category;index"`
		ChildCategories []Category `gorm:"foreignKey:ParentCategory;constraint:OnDelete:SET NULL"`
		Links           []Link     `gorm:"constraint:OnDelete:SET NULL"`
	}

	Link struct {
		GormForkedModel
		UserID      uint64  `gorm:"not null;index"`
		CategoryID  *uint64 `gorm:"index"`
		URL         string  `gorm:"not null"`
		Title       *string
		Description *string
		IsPrivate   bool  `gorm:"not null;default:false"`
		Tags        []Tag `gorm:"many2many:link_tags;"`
	}

	Tag struct {
		GormForkedModel
		Name   string `gorm:"not null;uniqueIndex:uidx_name_user_id"`
		Links  []Link `gorm:"many2many:link_tags;"`
		UserID uint64 `gorm:"not null;uniqueIndex:uidx_name_user_id"`
	}
)

// IsTopLevel reports whether the category has no parent.
func (c *Category) IsTopLevel() bool {
	return c.ParentCategory == nil
}

// gormWriter routes gorm's log lines into zap.
type gormWriter struct {
	logger *zap.SugaredLogger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.logger.Debugf(format, args...)
}

func NewGormClient(cfg *config.Config, l *zap.SugaredLogger) (*gorm.DB, error) {
	newLogger := logger.New(gormWriter{logger: l.Named("gorm")}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormLogLevel(cfg.LogLevel),
		Colorful:                  false,
		IgnoreRecordNotFoundError: true,
	})

	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DBName)
	default:
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	if cfg.DBDriver == config.DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "get sql db")
		}
		// sqlite allows a single writer; shared-cache memory databases lock otherwise
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}); err != nil {
		return errors.Wrap(err, "migrate user")
	}
	if err := db.AutoMigrate(&Category{}); err != nil {
		return errors.Wrap(err, "migrate category")
	}
	if err := db.AutoMigrate(&Link{}); err != nil {
		return errors.Wrap(err, "migrate link")
	}
	if err := db.AutoMigrate(&Tag{}); err != nil {
		return errors.Wrap(err, "migrate tag")
	}
	return nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		return logger.Info
	case "info", "warn":
		return logger.Warn
	default:
		return logger.Error
	}
}
