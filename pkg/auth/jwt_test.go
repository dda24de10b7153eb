package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jabinweb/church-manager-sub003/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	userID := uuid.New()

	token, err := m.GenerateToken(userID, "sarah@church.local", "Sarah", model.UserRoleLeader)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "sarah@church.local", claims.Email)
	assert.Equal(t, model.UserRoleLeader, claims.Role)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTManager("secret-a", time.Hour).
		GenerateToken(uuid.New(), "x@church.local", "X", model.UserRoleMember)
	require.NoError(t, err)

	_, err = NewJWTManager("secret-b", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	m := NewJWTManager("test-secret", -time.Minute)
	token, err := m.GenerateToken(uuid.New(), "x@church.local", "X", model.UserRoleMember)
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.Error(t, err)
}
