package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createUserTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		identification TEXT,
		phone TEXT,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createContractTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE contracts (
		id TEXT PRIMARY KEY,
		collaborator_id TEXT NOT NULL,
		contract_type TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		start_date DATETIME NOT NULL,
		end_date DATETIME,
		monthly_payment REAL,
		payment_per_session REAL,
		status TEXT NOT NULL,
		contract_file_id TEXT,
		signed_file_id TEXT,
		approved_by TEXT,
		notes TEXT,
		created_by TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createDocumentTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE documents (
		id TEXT PRIMARY KEY,
		contract_id TEXT NOT NULL,
		document_type TEXT NOT NULL,
		file_id TEXT NOT NULL,
		file_name TEXT,
		expiry_date DATETIME,
		status TEXT NOT NULL,
		review_notes TEXT,
		uploaded_by TEXT NOT NULL,
		reviewed_by TEXT,
		reviewed_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME,
		UNIQUE (contract_id, document_type)
	);`)
}

func createPaymentTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE payments (
		id TEXT PRIMARY KEY,
		contract_id TEXT NOT NULL,
		amount REAL NOT NULL,
		payment_date DATETIME NOT NULL,
		description TEXT,
		bill_file_id TEXT,
		voucher_file_id TEXT,
		status TEXT NOT NULL,
		rejection_reason TEXT,
		created_by TEXT NOT NULL,
		approved_by TEXT,
		rejected_by TEXT,
		confirmed_by TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createAuditTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE audit_log (
		id TEXT PRIMARY KEY,
		actor_id TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		action TEXT NOT NULL,
		from_status TEXT,
		to_status TEXT NOT NULL,
		occurred_at DATETIME NOT NULL
	);`)
}

func createNotificationTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT,
		entity_type TEXT,
		entity_id TEXT,
		read BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME
	);`)
}
