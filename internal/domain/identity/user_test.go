package identity

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser(t *testing.T) *User {
	t.Helper()
	user, err := NewUser("testuser", "test@example.com", "Password123", "Test", "User")
	require.NoError(t, err)
	user.ClearDomainEvents()
	return user
}

func issueTestVerification(t *testing.T, user *User) {
	t.Helper()
	expiry := time.Now().Add(15 * time.Minute)
	require.NoError(t, user.IssueVerification("123456", "abcdefghijklmnopqrstuvwxyz012345", expiry))
}

func TestNewUser(t *testing.T) {
	t.Run("creates unverified user with valid input", func(t *testing.T) {
		user, err := NewUser("testuser", "test@example.com", "Password123", "Test", "User")

		require.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, "testuser", user.Username)
		assert.Equal(t, "test@example.com", user.Email)
		assert.NotEmpty(t, user.PasswordHash)
		assert.False(t, user.IsEmailVerified)
		assert.Nil(t, user.VerificationOTP)
		assert.Nil(t, user.VerificationToken)
		assert.Zero(t, user.OTPAttempts)

		events := user.GetDomainEvents()
		assert.Len(t, events, 1)
		_, ok := events[0].(*UserRegisteredEvent)
		assert.True(t, ok)
	})

	t.Run("normalizes username and email to lowercase", func(t *testing.T) {
		user, err := NewUser("TestUser", "Test@Example.COM", "Password123", "Test", "User")

		require.NoError(t, err)
		assert.Equal(t, "testuser", user.Username)
		assert.Equal(t, "test@example.com", user.Email)
	})

	t.Run("fails with short username", func(t *testing.T) {
		_, err := NewUser("ab", "test@example.com", "Password123", "Test", "User")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "at least 3 characters")
	})

	t.Run("fails with invalid email", func(t *testing.T) {
		_, err := NewUser("testuser", "not-an-email", "Password123", "Test", "User")

		assert.Error(t, err)
	})

	t.Run("fails with short password", func(t *testing.T) {
		_, err := NewUser("testuser", "test@example.com", "12345", "Test", "User")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "at least 6 characters")
	})

	t.Run("fails without names", func(t *testing.T) {
		_, err := NewUser("testuser", "test@example.com", "Password123", "", "User")

		assert.Error(t, err)
	})

	t.Run("does not store plaintext password", func(t *testing.T) {
		user, err := NewUser("testuser", "test@example.com", "Password123", "Test", "User")

		require.NoError(t, err)
		assert.NotEqual(t, "Password123", user.PasswordHash)
		assert.True(t, user.VerifyPassword("Password123"))
		assert.False(t, user.VerifyPassword("wrong"))
	})
}

func TestUserIssueVerification(t *testing.T) {
	t.Run("stores secrets and resets attempts", func(t *testing.T) {
		user := newTestUser(t)
		user.OTPAttempts = 3
		expiry := time.Now().Add(15 * time.Minute)

		err := user.IssueVerification("654321", "abcdefghijklmnopqrstuvwxyz012345", expiry)

		require.NoError(t, err)
		require.NotNil(t, user.VerificationOTP)
		assert.Equal(t, "654321", *user.VerificationOTP)
		require.NotNil(t, user.VerificationToken)
		assert.Zero(t, user.OTPAttempts)

		events := user.GetDomainEvents()
		assert.Len(t, events, 1)
		_, ok := events[0].(*VerificationIssuedEvent)
		assert.True(t, ok)
	})

	t.Run("overwrites a prior outstanding OTP", func(t *testing.T) {
		user := newTestUser(t)
		issueTestVerification(t, user)

		err := user.IssueVerification("999999", "zyxwvutsrqponmlkjihgfedcba543210", time.Now().Add(15*time.Minute))

		require.NoError(t, err)
		assert.Equal(t, "999999", *user.VerificationOTP)
		assert.Equal(t, "zyxwvutsrqponmlkjihgfedcba543210", *user.VerificationToken)
	})

	t.Run("fails when already verified", func(t *testing.T) {
		user := newTestUser(t)
		user.IsEmailVerified = true

		err := user.IssueVerification("123456", "abcdefghijklmnopqrstuvwxyz012345", time.Now().Add(15*time.Minute))

		assert.Error(t, err)
	})

	t.Run("rejects malformed secrets", func(t *testing.T) {
		user := newTestUser(t)

		assert.Error(t, user.IssueVerification("123", "abcdefghijklmnopqrstuvwxyz012345", time.Now().Add(time.Minute)))
		assert.Error(t, user.IssueVerification("123456", "short", time.Now().Add(time.Minute)))
	})
}

func TestUserVerifyOTP(t *testing.T) {
	t.Run("correct code verifies and clears secrets", func(t *testing.T) {
		user := newTestUser(t)
		issueTestVerification(t, user)
		user.ClearDomainEvents()

		err := user.VerifyOTP("123456", time.Now())

		require.NoError(t, err)
		assert.True(t, user.IsEmailVerified)
		assert.Nil(t, user.VerificationOTP)
		assert.Nil(t, user.VerificationToken)
		assert.Nil(t, user.OTPExpiresAt)
		assert.Zero(t, user.OTPAttempts)

		events := user.GetDomainEvents()
		assert.Len(t, events, 1)
		_, ok := events[0].(*UserEmailVerifiedEvent)
		assert.True(t, ok)
	})

	t.Run("no outstanding OTP returns not found", func(t *testing.T) {
		user := newTestUser(t)

		err := user.VerifyOTP("123456", time.Now())

		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("already consumed OTP returns not found", func(t *testing.T) {
		user := newTestUser(t)
		issueTestVerification(t, user)
		require.NoError(t, user.VerifyOTP("123456", time.Now()))

		err := user.VerifyOTP("123456", time.Now())

		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("expired OTP rejected even with correct code", func(t *testing.T) {
		user := newTestUser(t)
		expiry := time.Now().Add(-time.Minute)
		require.NoError(t, user.IssueVerification("123456", "abcdefghijklmnopqrstuvwxyz012345", expiry))

		err := user.VerifyOTP("123456", time.Now())

		assert.True(t, errors.Is(err, shared.ErrExpired))
		assert.False(t, user.IsEmailVerified)
	})

	t.Run("mismatch increments attempts and keeps OTP valid", func(t *testing.T) {
		user := newTestUser(t)
		issueTestVerification(t, user)

		err := user.VerifyOTP("000000", time.Now())

		assert.Error(t, err)
		assert.Equal(t, 1, user.OTPAttempts)
		require.NotNil(t, user.VerificationOTP)

		require.NoError(t, user.VerifyOTP("123456", time.Now()))
		assert.True(t, user.IsEmailVerified)
	})

	t.Run("leading zero codes compare exactly", func(t *testing.T) {
		user := newTestUser(t)
		require.NoError(t, user.IssueVerification("012345", "abcdefghijklmnopqrstuvwxyz012345", time.Now().Add(15*time.Minute)))

		assert.Error(t, user.VerifyOTP("12345", time.Now()))
		assert.NoError(t, user.VerifyOTP("012345", time.Now()))
	})

	t.Run("locks out after max failed attempts", func(t *testing.T) {
		user := newTestUser(t)
		issueTestVerification(t, user)

		for i := 0; i < MaxOTPAttempts; i++ {
			assert.Error(t, user.VerifyOTP("000000", time.Now()))
		}
		assert.True(t, user.IsLockedOut())

		// Correct code is refused once locked out.
		err := user.VerifyOTP("123456", time.Now())
		assert.True(t, errors.Is(err, shared.ErrLockedOut))
		assert.False(t, user.IsEmailVerified)
	})

	t.Run("reissue after lockout resets the counter", func(t *testing.T) {
		user := newTestUser(t)
		issueTestVerification(t, user)
		for i := 0; i < MaxOTPAttempts; i++ {
			_ = user.VerifyOTP("000000", time.Now())
		}
		require.True(t, user.IsLockedOut())

		require.NoError(t, user.IssueVerification("777777", "abcdefghijklmnopqrstuvwxyz012345", time.Now().Add(15*time.Minute)))
		assert.False(t, user.IsLockedOut())
		assert.NoError(t, user.VerifyOTP("777777", time.Now()))
	})
}

func TestUserVerifyToken(t *testing.T) {
	t.Run("valid token verifies without touching attempts", func(t *testing.T) {
		user := newTestUser(t)
		issueTestVerification(t, user)
		user.OTPAttempts = MaxOTPAttempts

		err := user.VerifyToken("abcdefghijklmnopqrstuvwxyz012345", time.Now())

		require.NoError(t, err)
		assert.True(t, user.IsEmailVerified)
		assert.Nil(t, user.VerificationToken)
	})

	t.Run("unknown token returns not found", func(t *testing.T) {
		user := newTestUser(t)
		issueTestVerification(t, user)

		err := user.VerifyToken("wrong-token", time.Now())

		assert.True(t, errors.Is(err, shared.ErrNotFound))
		assert.False(t, user.IsEmailVerified)
	})

	t.Run("token shares the OTP expiry window", func(t *testing.T) {
		user := newTestUser(t)
		require.NoError(t, user.IssueVerification("123456", "abcdefghijklmnopqrstuvwxyz012345", time.Now().Add(-time.Minute)))

		err := user.VerifyToken("abcdefghijklmnopqrstuvwxyz012345", time.Now())

		assert.True(t, errors.Is(err, shared.ErrExpired))
	})
}

func TestUserCanLogin(t *testing.T) {
	user := newTestUser(t)
	assert.False(t, user.CanLogin())

	issueTestVerification(t, user)
	require.NoError(t, user.VerifyOTP("123456", time.Now()))
	assert.True(t, user.CanLogin())
}

func TestUserUpdateProfile(t *testing.T) {
	t.Run("updates profile fields", func(t *testing.T) {
		user := newTestUser(t)

		err := user.UpdateProfile("New", "Name", "+91 99999 88888", "1 Market Street")

		require.NoError(t, err)
		assert.Equal(t, "New", user.FirstName)
		assert.Equal(t, "Name", user.LastName)
		assert.Equal(t, "+91 99999 88888", user.Phone)
		assert.Equal(t, "1 Market Street", user.Address)
		assert.Equal(t, "New Name", user.DisplayName())
	})

	t.Run("rejects empty names", func(t *testing.T) {
		user := newTestUser(t)

		assert.Error(t, user.UpdateProfile("", "Name", "", ""))
	})
}

func TestUserChangePassword(t *testing.T) {
	user := newTestUser(t)

	require.NoError(t, user.ChangePassword("NewPassword456"))
	assert.True(t, user.VerifyPassword("NewPassword456"))
	assert.False(t, user.VerifyPassword("Password123"))

	assert.Error(t, user.ChangePassword("short"))
}

func TestNewAdmin(t *testing.T) {
	t.Run("creates admin with valid input", func(t *testing.T) {
		admin, err := NewAdmin("siteadmin", "admin@example.com", "Password123", "Site Admin")

		require.NoError(t, err)
		assert.Equal(t, "siteadmin", admin.Username)
		assert.Equal(t, "Site Admin", admin.FullName)
		assert.True(t, admin.VerifyPassword("Password123"))
	})

	t.Run("fails without full name", func(t *testing.T) {
		_, err := NewAdmin("siteadmin", "admin@example.com", "Password123", "  ")

		assert.Error(t, err)
	})
}

func TestNewVerificationLog(t *testing.T) {
	user := newTestUser(t)

	log := NewVerificationLog(user.ID, user.Email, "123456", VerificationActionSent)

	assert.Equal(t, user.ID, log.UserID)
	assert.Equal(t, "test@example.com", log.Email)
	assert.Equal(t, VerificationActionSent, log.Action)
	assert.NotEqual(t, uuid.Nil, log.ID)
}
