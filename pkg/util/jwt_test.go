package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-testing"

func TestGenerateTokenPair(t *testing.T) {
	for _, role := range []string{"VOLUNTEER", "NGO", "MODERATOR", "ADMIN"} {
		t.Run(role, func(t *testing.T) {
			tokens, err := GenerateTokenPair(7, "volunteer@example.com", role, testSecret, 15*time.Minute, 720*time.Hour)
			require.NoError(t, err)
			require.NotNil(t, tokens)
			assert.NotEmpty(t, tokens.AccessToken)
			assert.NotEmpty(t, tokens.RefreshToken)
			assert.NotEqual(t, tokens.AccessToken, tokens.RefreshToken)
			assert.WithinDuration(t, time.Now().Add(15*time.Minute), tokens.ExpiresAt, 5*time.Second)
		})
	}
}

func TestValidateToken(t *testing.T) {
	tokens, err := GenerateTokenPair(123, "alice@example.com", "VOLUNTEER", testSecret, 15*time.Minute, 720*time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name     string
		token    string
		secret   string
		wantKind string
		wantErr  error
	}{
		{name: "Valid access token", token: tokens.AccessToken, secret: testSecret, wantKind: tokenKindAccess},
		{name: "Valid refresh token", token: tokens.RefreshToken, secret: testSecret, wantKind: tokenKindRefresh},
		{name: "Wrong secret", token: tokens.AccessToken, secret: "wrong-secret", wantErr: ErrInvalidToken},
		{name: "Garbage", token: "invalid.token.format", secret: testSecret, wantErr: ErrInvalidToken},
		{name: "Empty token", token: "", secret: testSecret, wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateToken(tt.token, tt.secret)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, claims)
			assert.Equal(t, uint(123), claims.UserID)
			assert.Equal(t, "alice@example.com", claims.Email)
			assert.Equal(t, "VOLUNTEER", claims.Role)
			assert.Equal(t, tt.wantKind, claims.Kind)
			assert.True(t, claims.IssuedAt.Before(claims.ExpiresAt.Time))
		})
	}
}

func TestValidateToken_Expired(t *testing.T) {
	tokens, err := GenerateTokenPair(1, "alice@example.com", "VOLUNTEER", testSecret, time.Nanosecond, time.Nanosecond)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	claims, err := ValidateToken(tokens.AccessToken, testSecret)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Nil(t, claims)
}

func TestClaims_IsRefresh(t *testing.T) {
	tokens, err := GenerateTokenPair(5, "bob@example.com", "NGO", testSecret, time.Minute, time.Hour)
	require.NoError(t, err)

	access, err := ValidateToken(tokens.AccessToken, testSecret)
	require.NoError(t, err)
	assert.False(t, access.IsRefresh())

	refresh, err := ValidateToken(tokens.RefreshToken, testSecret)
	require.NoError(t, err)
	assert.True(t, refresh.IsRefresh())
}
