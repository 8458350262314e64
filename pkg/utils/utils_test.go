package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_AccessTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	userID := uuid.New()

	token, err := m.GenerateAccessToken(userID, "front@clinic.my", []string{"front-desk"}, []string{"manage-receipts"})
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "front@clinic.my", claims.Email)
	assert.Equal(t, []string{"front-desk"}, claims.Roles)
	assert.Equal(t, []string{"manage-receipts"}, claims.Permissions)
}

func TestJWTManager_RefreshToken(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	userID := uuid.New()

	token, err := m.GenerateRefreshToken(userID)
	require.NoError(t, err)

	got, err := m.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err, "refresh token must not pass as an access token")
}

func TestJWTManager_RejectsExpiredAndForeignTokens(t *testing.T) {
	m := NewJWTManager("test-secret", time.Minute, time.Minute)
	token, err := m.GenerateAccessToken(uuid.New(), "dr@clinic.my", nil, nil)
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)

	other := NewJWTManager("another-secret", time.Hour, time.Hour)
	fresh, err := other.GenerateAccessToken(uuid.New(), "dr@clinic.my", nil, nil)
	require.NoError(t, err)
	_, err = NewJWTManager("test-secret", time.Hour, time.Hour).ValidateAccessToken(fresh)
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
	assert.False(t, CheckPasswordHash("anything", ""))
}

func TestGenerateReceiptNo(t *testing.T) {
	issued := time.Date(2026, 1, 17, 9, 30, 0, 0, time.UTC)
	no := GenerateReceiptNo(issued)

	assert.Regexp(t, regexp.MustCompile(`^RC-20260117-[0-9A-F]{8}$`), no)
	assert.NotEqual(t, no, GenerateReceiptNo(issued))
}

func TestRandomState(t *testing.T) {
	a, err := RandomState()
	require.NoError(t, err)
	b, err := RandomState()
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
