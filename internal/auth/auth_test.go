package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subscription_console/internal/models"
)

var testSecret = []byte("test-secret")

func testUser() models.User {
	return models.User{ID: 7, Email: "jane@example.com", Role: models.UserRoleUser}
}

func TestIssueAndParseToken(t *testing.T) {
	now := time.Now()
	token, err := IssueToken(testSecret, testUser(), time.Hour, now)
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, "7", claims.Subject)

	exp, ok := ExpiresAt(token)
	require.True(t, ok)
	assert.WithinDuration(t, now.Add(time.Hour), exp, time.Second)
}

func TestParseToken_Rejects(t *testing.T) {
	expired, err := IssueToken(testSecret, testUser(), time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = ParseToken(testSecret, expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	valid, err := IssueToken(testSecret, testUser(), time.Hour, time.Now())
	require.NoError(t, err)
	_, err = ParseToken([]byte("other-secret"), valid)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	_, err = ParseToken(testSecret, "not.a.token")
	assert.Error(t, err)
}

func TestExpiresAt_NoExp(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1"}).SignedString(testSecret)
	require.NoError(t, err)

	_, ok := ExpiresAt(token)
	assert.False(t, ok)

	_, ok = ExpiresAt("opaque-token")
	assert.False(t, ok)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)
	assert.True(t, CheckPasswordHash("password123", hash))
	assert.False(t, CheckPasswordHash("password124", hash))
}

func TestPermissions(t *testing.T) {
	admin := &models.User{Role: models.UserRoleAdmin}
	user := &models.User{Role: models.UserRoleUser}

	assert.True(t, Can(admin, PermPlansWrite))
	assert.True(t, Can(admin, PermAnalyticsRead))
	assert.True(t, Can(user, PermPlansRead))
	assert.True(t, Can(user, PermProfileRead))
	assert.False(t, Can(user, PermPlansWrite))
	assert.False(t, Can(user, PermUsersRead))
	assert.False(t, Can(nil, PermPlansRead))
	assert.False(t, HasPermission("guest", PermPlansRead))
}
