package catalog

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestLookup(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		db, mock := setupMockDB(t)
		cat := New(db)

		rows := sqlmock.NewRows([]string{"asset_key", "object_name", "content_type"}).
			AddRow("characters/enemy", "bundles/enemy_v3.bin", "application/octet-stream")
		mock.ExpectQuery("SELECT \\* FROM `asset_catalog` WHERE asset_key = \\?").
			WithArgs("characters/enemy", 1).
			WillReturnRows(rows)

		entry, err := cat.Lookup(context.Background(), "characters/enemy")
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, "bundles/enemy_v3.bin", entry.ObjectName)
		assert.Equal(t, "application/octet-stream", entry.ContentType)
	})

	t.Run("Missing row is not an error", func(t *testing.T) {
		db, mock := setupMockDB(t)
		cat := New(db)

		mock.ExpectQuery("SELECT \\* FROM `asset_catalog`").
			WillReturnRows(sqlmock.NewRows([]string{"asset_key", "object_name", "content_type"}))

		entry, err := cat.Lookup(context.Background(), "uncatalogued")
		require.NoError(t, err)
		assert.Nil(t, entry)
	})
}

func TestConnect(t *testing.T) {
	t.Run("Invalid Connection", func(t *testing.T) {
		cfg := Config{
			Host:     "localhost",
			Port:     9999, // Unused port
			User:     "root",
			Password: "wrongpassword",
			Name:     "assets",
		}

		// Connect should fail (timeout or refused)
		db, err := Connect(cfg)
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}
