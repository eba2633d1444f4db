package database

import (
	"fmt"
	"time"
)

const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// MessageRecord is a logged chat message, either received or sent.
type MessageRecord struct {
	ID        int64
	UserID    int64
	Direction string
	Text      string
	CreatedAt time.Time
}

// LogMessage records a message exchanged with a user.
func (d *DB) LogMessage(userID int64, direction, text string) error {
	_, err := d.Exec(`
		INSERT INTO messages (user_id, direction, text)
		VALUES (?, ?, ?)
	`, userID, direction, text)
	if err != nil {
		return fmt.Errorf("failed to log message: %w", err)
	}
	return nil
}

// RecentMessages returns the most recent messages for a user, newest first.
func (d *DB) RecentMessages(userID int64, limit int) ([]MessageRecord, error) {
	rows, err := d.Query(`
		SELECT id, user_id, direction, text, created_at
		FROM messages
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var msgs []MessageRecord
	for rows.Next() {
		var m MessageRecord
		if err := rows.Scan(&m.ID, &m.UserID, &m.Direction, &m.Text, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
