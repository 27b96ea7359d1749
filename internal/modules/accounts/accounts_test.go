package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/waylog/core/internal/database"
	"github.com/waylog/core/internal/pkg/jwt"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewService(db)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)

	u, err := svc.Register(RegisterDTO{Username: "explorer", Password: "hunter22", Name: "Explorer"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "hunter22", u.Password)

	token, logged, err := svc.Login("explorer", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)
	assert.NotNil(t, logged.LastLoginTime)

	claims, err := jwt.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
}

func TestRegisterRejectsTakenUsername(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(RegisterDTO{Username: "explorer", Password: "hunter22"})
	require.NoError(t, err)

	_, err = svc.Register(RegisterDTO{Username: "explorer", Password: "other-pass"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Register(RegisterDTO{Username: "explorer", Password: "hunter22"})
	require.NoError(t, err)

	_, _, err = svc.Login("explorer", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login("nobody", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	svc := newTestService(t)
	u, err := svc.Register(RegisterDTO{Username: "explorer", Password: "hunter22"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.ChangePassword(u.ID, "wrong", "new-secret"), ErrInvalidCredentials)
	require.NoError(t, svc.ChangePassword(u.ID, "hunter22", "new-secret"))

	_, _, err = svc.Login("explorer", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login("explorer", "new-secret")
	assert.NoError(t, err)
}

func TestSetVisibility(t *testing.T) {
	svc := newTestService(t)
	u, err := svc.Register(RegisterDTO{Username: "explorer", Password: "hunter22"})
	require.NoError(t, err)
	assert.False(t, u.IsPublic)

	updated, err := svc.SetVisibility(u.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsPublic)
}
