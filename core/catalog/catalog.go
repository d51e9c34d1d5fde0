package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Entry represents the 'asset_catalog' table: one row per logical asset key,
// mapping it to the object that backs it in the bundle store.
type Entry struct {
	Key         string `gorm:"column:asset_key;primaryKey"`
	ObjectName  string `gorm:"column:object_name"`
	ContentType string `gorm:"column:content_type"`
}

// TableName overrides the gorm default.
func (Entry) TableName() string {
	return "asset_catalog"
}

// Catalog resolves logical asset keys to bundle object names.
type Catalog struct {
	db *gorm.DB
}

// New wraps an existing database connection. db may come from Connect or from
// a test dialector.
func New(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

// Lookup returns the catalog entry for key, or (nil, nil) when the key has no
// row. Callers treat a missing row as "use the key as the object name".
func (c *Catalog) Lookup(ctx context.Context, key string) (*Entry, error) {
	var entry Entry
	err := c.db.WithContext(ctx).Where("asset_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog lookup for %q: %w", key, err)
	}
	return &entry, nil
}

// Connect establishes a connection to the MySQL catalog database.
// The catalog is optional, so callers should handle the error gracefully.
func Connect(cfg Config) (*gorm.DB, error) {
	// Special characters in the password must be URL encoded for the DSN.
	userInfo := url.UserPassword(cfg.User, cfg.Password).String()

	// Ensure timeout defaults if not set
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	// timeout: connection setup, readTimeout/writeTimeout: I/O
	dsn := fmt.Sprintf("%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%ds&readTimeout=%ds&writeTimeout=%ds",
		userInfo, cfg.Host, cfg.Port, cfg.Name, timeout, timeout, timeout)

	// Suppress GORM logging so a missing optional catalog only surfaces as a
	// single warning from the main logger.
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(mysql.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to catalog database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Verify connection with context timeout
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping catalog database: %w", err)
	}

	return db, nil
}
