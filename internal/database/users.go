package database

import (
	"database/sql"
	"fmt"
	"time"
)

// User represents a chat user identified by their messaging address.
type User struct {
	ID         int64
	SourceType string
	Identifier string
	Name       *string
	CreatedAt  time.Time
}

// GetOrCreateUserByIdentifier looks up a user by source type and messaging
// identifier, creating the row on first contact.
func (d *DB) GetOrCreateUserByIdentifier(sourceType, identifier, name string) (*User, error) {
	u, err := d.getUserByIdentifier(sourceType, identifier)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return u, nil
	}

	var namePtr *string
	if name != "" {
		namePtr = &name
	}

	res, err := d.Exec(`
		INSERT INTO users (source_type, identifier, name)
		VALUES (?, ?, ?)
	`, sourceType, identifier, namePtr)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get user id: %w", err)
	}

	return d.GetUserByID(id)
}

// GetUserByID returns the user with the given id.
func (d *DB) GetUserByID(id int64) (*User, error) {
	var u User
	err := d.QueryRow(`
		SELECT id, source_type, identifier, name, created_at
		FROM users WHERE id = ?
	`, id).Scan(&u.ID, &u.SourceType, &u.Identifier, &u.Name, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (d *DB) getUserByIdentifier(sourceType, identifier string) (*User, error) {
	var u User
	err := d.QueryRow(`
		SELECT id, source_type, identifier, name, created_at
		FROM users WHERE source_type = ? AND identifier = ?
	`, sourceType, identifier).Scan(&u.ID, &u.SourceType, &u.Identifier, &u.Name, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return &u, nil
}
