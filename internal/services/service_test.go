package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Daniel-Osman/nfd-express/internal/logger"
	"github.com/Daniel-Osman/nfd-express/internal/requestdata"
	"github.com/Daniel-Osman/nfd-express/internal/types"
)

// The production schema leans on postgres defaults (uuid_generate_v4, now)
// that sqlite cannot parse, so tests create the tables directly. Services
// always set ids and timestamps in code, so the defaults never matter here.
var testSchema = []string{
	`CREATE TABLE profile (
		id TEXT PRIMARY KEY,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		full_name TEXT NOT NULL,
		phone_number TEXT,
		subscription_tier TEXT NOT NULL DEFAULT 'free',
		uae_mailbox_id TEXT NOT NULL UNIQUE,
		is_admin NUMERIC NOT NULL DEFAULT 0,
		avatar_bucket_key TEXT,
		avatar_url TEXT
	)`,
	`CREATE TABLE user_token (
		id TEXT PRIMARY KEY,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME,
		user_id TEXT NOT NULL,
		access_token TEXT NOT NULL UNIQUE,
		refresh_token TEXT NOT NULL UNIQUE,
		expires_at DATETIME
	)`,
	`CREATE TABLE shipment (
		id TEXT PRIMARY KEY,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME,
		tracking_number TEXT NOT NULL UNIQUE,
		user_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		weight_kg REAL,
		dimensions TEXT,
		arrival_photo_url TEXT,
		verification_status NUMERIC NOT NULL DEFAULT 0,
		admin_notes TEXT,
		is_consolidated NUMERIC NOT NULL DEFAULT 0,
		parent_shipment_id TEXT
	)`,
	`CREATE TABLE shipment_event (
		id TEXT PRIMARY KEY,
		shipment_id TEXT NOT NULL,
		status TEXT NOT NULL,
		location TEXT,
		timestamp DATETIME NOT NULL
	)`,
}

func testLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	// One connection keeps concurrent queries from tripping sqlite's
	// shared-cache table locks.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	for _, stmt := range testSchema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedProfile(t *testing.T, db *gorm.DB, tier types.SubscriptionTier, isAdmin bool) *types.Profile {
	t.Helper()
	id := uuid.New()
	profile := &types.Profile{
		ID:               id,
		Email:            fmt.Sprintf("%s@example.com", id.String()[:8]),
		Password:         "hashed",
		FullName:         "Test User",
		SubscriptionTier: tier,
		MailboxID:        fmt.Sprintf("NFD-%s", strings.ToUpper(id.String()[:6])),
		IsAdmin:          isAdmin,
	}
	require.NoError(t, db.Create(profile).Error)
	return profile
}

func adminCtx(userID uuid.UUID) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID:  userID,
		IsAdmin: true,
	})
}

func userCtx(userID uuid.UUID) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID: userID,
	})
}
