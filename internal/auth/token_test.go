package auth_test

import (
	"testing"
	"time"

	"github.com/hormatech/blockplant/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionManager_IssueAndValidate(t *testing.T) {
	sm := auth.NewSessionManager("test-secret-key-with-length", time.Hour)

	token, err := sm.Issue("user-1", "operator@plant.test", "operator")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := sm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "operator@plant.test", claims.Email)
	assert.Equal(t, "operator", claims.Role)
}

func TestSessionManager_RejectsWrongSecret(t *testing.T) {
	sm := auth.NewSessionManager("test-secret-key-with-length", time.Hour)
	other := auth.NewSessionManager("another-secret-key-entirely", time.Hour)

	token, err := sm.Issue("user-1", "operator@plant.test", "operator")
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestSessionManager_RejectsExpiredToken(t *testing.T) {
	sm := auth.NewSessionManager("test-secret-key-with-length", -time.Minute)

	token, err := sm.Issue("user-1", "operator@plant.test", "operator")
	require.NoError(t, err)

	_, err = sm.Validate(token)
	assert.Error(t, err)
}

func TestSessionManager_RejectsGarbage(t *testing.T) {
	sm := auth.NewSessionManager("test-secret-key-with-length", time.Hour)

	_, err := sm.Validate("not-a-token")
	assert.Error(t, err)
}
