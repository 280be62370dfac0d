package repository

import (
	"testing"
	"time"

	"github.com/ashascraft/storefront-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupUserTest(t *testing.T) UserRepository {
	return NewUserRepository(setupTestDB(t))
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := setupUserTest(t)

	user := &model.User{
		Email:        "owner@ashascraft.test",
		PasswordHash: "hashed",
		Name:         "Asha",
		Role:         model.RoleAdmin,
	}
	require.NoError(t, repo.Create(user))
	assert.NotZero(t, user.ID)

	byID, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.True(t, byID.IsAdmin())

	byEmail, err := repo.FindByEmail("owner@ashascraft.test")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.FindByEmail("nobody@ashascraft.test")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.FindByID(999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo := setupUserTest(t)

	require.NoError(t, repo.Create(&model.User{Email: "dup@ashascraft.test", PasswordHash: "h", Name: "One", Role: model.RoleAdmin}))
	assert.Error(t, repo.Create(&model.User{Email: "dup@ashascraft.test", PasswordHash: "h", Name: "Two", Role: model.RoleAdmin}))
}

func TestUserRepository_TouchLastLogin(t *testing.T) {
	repo := setupUserTest(t)
	user := &model.User{Email: "staff@ashascraft.test", PasswordHash: "h", Name: "Staff", Role: model.RoleAdmin}
	require.NoError(t, repo.Create(user))

	at := time.Now().Truncate(time.Second)
	require.NoError(t, repo.TouchLastLogin(user.ID, at))

	found, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, found.LastLoginAt)
	assert.WithinDuration(t, at, *found.LastLoginAt, time.Second)
}
