package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	s := NewSigner("test-secret", time.Hour)

	token, err := s.Sign("AB3D", "player-1", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "AB3D", claims.RoomID)
	assert.Equal(t, "player-1", claims.PlayerID)
	assert.Equal(t, "alice", claims.DisplayName)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewSigner("secret-a", time.Hour).Sign("AB3D", "player-1", "alice")
	require.NoError(t, err)

	_, err = NewSigner("secret-b", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	s := NewSigner("test-secret", time.Nanosecond)

	token, err := s.Sign("AB3D", "player-1", "alice")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	s := NewSigner("test-secret", time.Hour)
	_, err := s.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
