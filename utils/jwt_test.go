package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendance-backend/models"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("test-secret", 42, models.RoleModerator, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken("test-secret", token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, models.RoleModerator, claims.Role)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret-a", 1, models.RoleStudent, time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken("secret-b", token)
	assert.EqualError(t, err, "invalid token")
}

func TestValidateTokenExpired(t *testing.T) {
	token, err := GenerateToken("test-secret", 1, models.RoleStudent, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken("test-secret", token)
	assert.EqualError(t, err, "token has expired")
}
