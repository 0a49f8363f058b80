package identity

import (
	"strings"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
)

// Admin represents a back-office operator. Admins are provisioned out of
// band and never go through the customer verification flow.
type Admin struct {
	shared.BaseAggregateRoot
	Username     string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	FullName     string `gorm:"type:varchar(200);not null"`
}

// TableName returns the table name for GORM
func (Admin) TableName() string {
	return "admins"
}

// NewAdmin creates a back-office admin account
func NewAdmin(username, email, password, fullName string) (*Admin, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if strings.TrimSpace(fullName) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Full name is required")
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &Admin{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          strings.ToLower(strings.TrimSpace(username)),
		Email:             strings.ToLower(strings.TrimSpace(email)),
		PasswordHash:      passwordHash,
		FullName:          strings.TrimSpace(fullName),
	}, nil
}

// VerifyPassword checks the given password against the stored hash
func (a *Admin) VerifyPassword(password string) bool {
	return verifyHash(a.PasswordHash, password)
}

// ChangePassword replaces the stored password hash
func (a *Admin) ChangePassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	a.PasswordHash = hash
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}
