package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupIdentityTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(&identity.User{}, &identity.Admin{}, &identity.VerificationLog{})
	require.NoError(t, err)

	return db
}

func TestGormUserRepository(t *testing.T) {
	db := setupIdentityTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	user, err := identity.NewUser("ravi_k", "Ravi@Example.com", "s3cretPass!", "Ravi", "Kumar")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, user))

	t.Run("find by email is case insensitive on input", func(t *testing.T) {
		got, err := repo.FindByEmail(ctx, "RAVI@example.COM")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("find by username", func(t *testing.T) {
		got, err := repo.FindByUsername(ctx, "Ravi_K")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("exists checks", func(t *testing.T) {
		exists, err := repo.ExistsByUsername(ctx, "ravi_k")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("find by verification token", func(t *testing.T) {
		expiry := time.Now().Add(10 * time.Minute)
		require.NoError(t, user.IssueVerification("123456", "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6", expiry))
		require.NoError(t, repo.Update(ctx, user))

		got, err := repo.FindByVerificationToken(ctx, "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)

		_, err = repo.FindByVerificationToken(ctx, "ffffffffffffffffffffffffffffffff")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("verified state survives a round trip", func(t *testing.T) {
		require.NoError(t, user.VerifyOTP("123456", time.Now()))
		require.NoError(t, repo.Update(ctx, user))

		got, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, got.IsEmailVerified)
		assert.Nil(t, got.VerificationOTP)
		assert.Nil(t, got.VerificationToken)
	})

	t.Run("filter by verification state", func(t *testing.T) {
		users, total, err := repo.FindAll(ctx, identity.NewUserFilter().WithVerified(true))
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, users, 1)
		assert.Equal(t, user.ID, users[0].ID)
	})

	t.Run("keyword searches name fields", func(t *testing.T) {
		users, total, err := repo.FindAll(ctx, identity.NewUserFilter().WithKeyword("Kumar"))
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, users, 1)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, user.ID))
		_, err := repo.FindByID(ctx, user.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, user.ID), shared.ErrNotFound)
	})
}

func TestGormAdminRepository(t *testing.T) {
	db := setupIdentityTestDB(t)
	repo := NewGormAdminRepository(db)
	ctx := context.Background()

	admin, err := identity.NewAdmin("backoffice", "ops@example.com", "adminPass12!", "Store Ops")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, admin))

	got, err := repo.FindByUsername(ctx, "backoffice")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, got.ID)
	assert.True(t, got.VerifyPassword("adminPass12!"))

	exists, err := repo.ExistsByUsername(ctx, "backoffice")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.FindByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormVerificationLogRepository(t *testing.T) {
	db := setupIdentityTestDB(t)
	repo := NewGormVerificationLogRepository(db)
	ctx := context.Background()

	userID := uuid.New()

	sent := identity.NewVerificationLog(userID, "ravi@example.com", "123456", identity.VerificationActionSent)
	sent.CreatedAt = time.Now().Add(-time.Minute)
	require.NoError(t, repo.Create(ctx, sent))

	verified := identity.NewVerificationLog(userID, "ravi@example.com", "123456", identity.VerificationActionVerified)
	require.NoError(t, repo.Create(ctx, verified))

	logs, err := repo.FindByUserID(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, identity.VerificationActionVerified, logs[0].Action, "trail reads newest first")
}
