package transactions

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSchema = `
CREATE TABLE stores (
    store_id      INTEGER PRIMARY KEY,
    store_name    TEXT NOT NULL,
    store_address TEXT,
    store_phone   TEXT,
    store_email   TEXT,
    created_at    TIMESTAMP
);
CREATE TABLE point_of_service (
    pos_id     INTEGER PRIMARY KEY,
    pos_name   TEXT NOT NULL,
    store_id   INTEGER NOT NULL,
    camera_id  INTEGER NOT NULL,
    created_at TIMESTAMP
);
CREATE TABLE transactions (
    transaction_id     INTEGER PRIMARY KEY,
    transaction_number TEXT NOT NULL,
    transaction_date   TIMESTAMP NOT NULL,
    pos_id             INTEGER NOT NULL,
    thumbnail_link     TEXT,
    footage_link       TEXT,
    created_at         TIMESTAMP,
    updated_at         TIMESTAMP
);
CREATE TABLE transaction_items (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    transaction_id INTEGER NOT NULL,
    item_name      TEXT NOT NULL,
    item_price     NUMERIC(12,2) NOT NULL,
    created_at     TIMESTAMP,
    UNIQUE (transaction_id, item_name)
);
`

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := conn.Exec(testSchema).Error; err != nil {
		t.Fatalf("failed to apply test schema: %v", err)
	}
	return conn
}
