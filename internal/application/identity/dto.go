package identity

import (
	"time"

	"github.com/google/uuid"
)

// RegisterInput contains the input for user registration
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// RegisterResult contains the result of a successful registration
type RegisterResult struct {
	User      UserInfo
	EmailSent bool
}

// LoginInput contains the input for user login
type LoginInput struct {
	Username string
	Password string
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	TokenType   string
	User        UserInfo
}

// AdminLoginInput contains the input for back-office login
type AdminLoginInput struct {
	Username string
	Password string
}

// AdminLoginResult contains the result of a successful admin login
type AdminLoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	TokenType   string
	Admin       AdminInfo
}

// LogoutInput contains the input for logout
type LogoutInput struct {
	TokenJTI  string
	ExpiresAt time.Time
}

// UserInfo contains user information returned to the storefront
type UserInfo struct {
	ID              uuid.UUID
	Username        string
	Email           string
	FirstName       string
	LastName        string
	Phone           string
	Address         string
	IsEmailVerified bool
	CreatedAt       time.Time
}

// AdminInfo contains admin information returned to the back office
type AdminInfo struct {
	ID       uuid.UUID
	Username string
	Email    string
	FullName string
}

// UpdateProfileInput contains the input for profile updates
type UpdateProfileInput struct {
	UserID    uuid.UUID
	FirstName string
	LastName  string
	Phone     string
	Address   string
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// VerifyOTPInput contains the input for OTP verification
type VerifyOTPInput struct {
	Email string
	Code  string
}

// VerifyTokenInput contains the input for one-click link verification
type VerifyTokenInput struct {
	Token string
}

// ResendVerificationInput contains the input for resending verification
type ResendVerificationInput struct {
	Email string
}

// ListUsersInput contains the input for the back-office user listing
type ListUsersInput struct {
	Keyword  string
	Verified *bool
	Page     int
	PageSize int
}

// ListUsersResult contains a page of users
type ListUsersResult struct {
	Users    []UserInfo
	Total    int64
	Page     int
	PageSize int
}
