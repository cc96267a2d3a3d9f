package repositories

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/maxaizer/jobs-board/internal/entities"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DbContext struct {
	DB *gorm.DB
}

func NewDbContext(connectionString string) (*DbContext, error) {
	if err := ensureDatabaseDir(connectionString); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(connectionString), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}

	return &DbContext{DB: db}, nil
}

func (c *DbContext) Migrate() error {
	if err := c.DB.AutoMigrate(entities.Job{}); err != nil {
		return fmt.Errorf("failed to migrate Job entity: %w", err)
	}

	if err := c.DB.AutoMigrate(entities.SavedJob{}); err != nil {
		return fmt.Errorf("failed to migrate SavedJob entity: %w", err)
	}

	return nil
}

func (c *DbContext) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return err
	}

	return db.Close()
}

func ensureDatabaseDir(connectionString string) error {
	if strings.HasPrefix(connectionString, "file:") || strings.Contains(connectionString, ":memory:") {
		return nil
	}
	dir := filepath.Dir(connectionString)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}
	return nil
}
