package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lac-hong-legacy/portfolio_api/model"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// gormBackend keeps each document as one row, the body is the same JSON the file backend
// writes.
type gormBackend struct {
	db     *gorm.DB
	driver string
}

func openGormBackend(driver, dsn string) (*gormBackend, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for STORAGE_DRIVER=%s", driver)
	}

	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported gorm driver %q", driver)
	}

	var (
		db  *gorm.DB
		err error
	)

	maxRetries := 5
	retryDelay := time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		db, err = gorm.Open(dialector, &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})
		if err == nil {
			sqlDB, dbErr := db.DB()
			if dbErr == nil {
				if err = sqlDB.Ping(); err == nil {
					break
				}
			} else {
				err = dbErr
			}
		}

		if attempt == maxRetries {
			return nil, fmt.Errorf("failed to connect to %s after %d attempts: %w", driver, maxRetries, err)
		}

		log.Printf("Database connection failed: %v. Retrying in %v...", err, retryDelay)
		time.Sleep(retryDelay)
		retryDelay *= 2
	}

	if err := db.AutoMigrate(&model.Document{}); err != nil {
		return nil, fmt.Errorf("failed to migrate documents table: %w", err)
	}

	log.WithField("driver", driver).Info("Database connected and migrated successfully")
	return &gormBackend{db: db, driver: driver}, nil
}

func (b *gormBackend) Name() string {
	return "gorm:" + b.driver
}

func (b *gormBackend) ReadDocument(ctx context.Context, name string) ([]byte, error) {
	var doc model.Document
	err := b.db.WithContext(ctx).Where("name = ?", name).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.Body, nil
}

func (b *gormBackend) WriteDocument(ctx context.Context, name string, body []byte) error {
	doc := model.Document{
		Name:      name,
		Body:      body,
		UpdatedAt: time.Now().UTC(),
	}

	return b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(&doc).Error
}

func (b *gormBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
