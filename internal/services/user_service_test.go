package services

import (
	"log/slog"
	"os"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macworldgithub/westside-backend/internal/models"
	"github.com/macworldgithub/westside-backend/internal/validator"
)

func TestNewUserService(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	v := validator.New()

	svc := NewUserService(nil, nil, logger, v, nil, "secret")
	assert.NotNil(t, svc)
}

func TestIssueToken(t *testing.T) {
	svc := &userService{jwtSecret: "test-secret"}

	user := &models.User{
		ID:    42,
		Email: "tech@example.com",
		Role:  models.RoleTechnician,
	}

	tokenString, err := svc.issueToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(42), claims["user_id"])
	assert.Equal(t, "tech@example.com", claims["email"])
	assert.Equal(t, "Technician", claims["role"])
	assert.NotZero(t, claims["exp"])
}

func TestHasSnapshotFor(t *testing.T) {
	history := []models.StaffSnapshot{
		{Name: "Ana", Email: "ana@example.com"},
		{Name: "Ben", Email: "ben@example.com"},
	}

	assert.True(t, hasSnapshotFor(history, "ana@example.com"))
	assert.False(t, hasSnapshotFor(history, "cara@example.com"))
	assert.False(t, hasSnapshotFor(nil, "ana@example.com"))
}
