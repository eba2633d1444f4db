package database

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/oauth2"
)

// getEncryptionKey derives a 32-byte key for AES-256 encryption
func getEncryptionKey() ([]byte, error) {
	// Try WOOSTER_ENCRYPTION_KEY first
	if envKey := os.Getenv("WOOSTER_ENCRYPTION_KEY"); envKey != "" {
		hash := sha256.Sum256([]byte(envKey))
		return hash[:], nil
	}

	// Fall back to deriving from ANTHROPIC_API_KEY
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		hash := sha256.Sum256([]byte("wooster-encryption-" + apiKey))
		return hash[:], nil
	}

	return nil, fmt.Errorf("no encryption key available: set WOOSTER_ENCRYPTION_KEY or ANTHROPIC_API_KEY")
}

// encryptToken encrypts an OAuth token for storage
func encryptToken(token string) ([]byte, error) {
	key, err := getEncryptionKey()
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(token), nil)
	return ciphertext, nil
}

// decryptToken decrypts an OAuth token from storage
func decryptToken(ciphertext []byte) (string, error) {
	key, err := getEncryptionKey()
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}

	return string(plaintext), nil
}

// GetGoogleToken retrieves the OAuth2 token for a user. Returns (nil, nil)
// when the user has never linked a calendar.
func (d *DB) GetGoogleToken(userID int64) (*oauth2.Token, error) {
	var accessTokenEnc []byte
	var refreshTokenEnc []byte
	var tokenType sql.NullString
	var expiry sql.NullTime

	err := d.QueryRow(`
		SELECT access_token_encrypted, refresh_token_encrypted, token_type, expiry
		FROM google_tokens WHERE user_id = ?
	`, userID).Scan(&accessTokenEnc, &refreshTokenEnc, &tokenType, &expiry)

	if err == sql.ErrNoRows {
		return nil, nil // No token stored
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get google token: %w", err)
	}

	accessToken, err := decryptToken(accessTokenEnc)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}

	token := &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   tokenType.String,
	}

	if len(refreshTokenEnc) > 0 {
		refreshToken, err := decryptToken(refreshTokenEnc)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt refresh token: %w", err)
		}
		token.RefreshToken = refreshToken
	}

	if expiry.Valid {
		token.Expiry = expiry.Time
	}

	return token, nil
}

// SaveGoogleToken stores an OAuth2 token for a user (upsert)
func (d *DB) SaveGoogleToken(userID int64, token *oauth2.Token) error {
	accessTokenEnc, err := encryptToken(token.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}

	var refreshTokenEnc []byte
	if token.RefreshToken != "" {
		refreshTokenEnc, err = encryptToken(token.RefreshToken)
		if err != nil {
			return fmt.Errorf("failed to encrypt refresh token: %w", err)
		}
	}

	var expiry *time.Time
	if !token.Expiry.IsZero() {
		expiry = &token.Expiry
	}

	_, err = d.Exec(`
		INSERT INTO google_tokens (user_id, access_token_encrypted, refresh_token_encrypted, token_type, expiry, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET
			access_token_encrypted = excluded.access_token_encrypted,
			refresh_token_encrypted = excluded.refresh_token_encrypted,
			token_type = excluded.token_type,
			expiry = excluded.expiry,
			updated_at = CURRENT_TIMESTAMP
	`, userID, accessTokenEnc, refreshTokenEnc, token.TokenType, expiry)

	if err != nil {
		return fmt.Errorf("failed to save google token: %w", err)
	}

	return nil
}

// DeleteGoogleToken removes the OAuth2 token for a user
func (d *DB) DeleteGoogleToken(userID int64) error {
	_, err := d.Exec(`DELETE FROM google_tokens WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete google token: %w", err)
	}
	return nil
}
