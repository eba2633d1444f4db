package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateUserByIdentifier(t *testing.T) {
	db := NewTestDB(t)

	u, err := db.GetOrCreateUserByIdentifier("whatsapp", "15551234567@s.whatsapp.net", "Bertie")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "whatsapp", u.SourceType)
	assert.Equal(t, "15551234567@s.whatsapp.net", u.Identifier)
	require.NotNil(t, u.Name)
	assert.Equal(t, "Bertie", *u.Name)

	// Same identifier returns the same row
	again, err := db.GetOrCreateUserByIdentifier("whatsapp", "15551234567@s.whatsapp.net", "Different Name")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)
	assert.Equal(t, "Bertie", *again.Name)
}

func TestGetOrCreateUserDistinctSources(t *testing.T) {
	db := NewTestDB(t)

	a, err := db.GetOrCreateUserByIdentifier("whatsapp", "same-id", "")
	require.NoError(t, err)
	b, err := db.GetOrCreateUserByIdentifier("telegram", "same-id", "")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Nil(t, a.Name)
}

func TestGetUserByIDNotFound(t *testing.T) {
	db := NewTestDB(t)

	_, err := db.GetUserByID(9999)
	assert.Error(t, err)
}
