package database

import (
	"testing"
)

// NewTestDB creates an in-memory database with migrations applied.
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// CreateTestUser inserts a user and returns it.
func CreateTestUser(t *testing.T, db *DB, sourceType, identifier string) *User {
	t.Helper()

	u, err := db.GetOrCreateUserByIdentifier(sourceType, identifier, "Test User")
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return u
}
