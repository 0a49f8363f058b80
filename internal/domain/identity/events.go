package identity

import (
	"github.com/storefront/backend/internal/domain/shared"
)

// Event types for the identity domain
const (
	EventTypeUserRegistered     = "identity.user_registered"
	EventTypeVerificationIssued = "identity.verification_issued"
	EventTypeUserEmailVerified  = "identity.user_email_verified"
)

// UserRegisteredEvent fires when a new customer account is created
type UserRegisteredEvent struct {
	shared.BaseDomainEvent
	Username string `json:"username"`
	Email    string `json:"email"`
}

// NewUserRegisteredEvent creates a UserRegisteredEvent
func NewUserRegisteredEvent(user *User) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRegistered, "User", user.ID),
		Username:        user.Username,
		Email:           user.Email,
	}
}

// VerificationIssuedEvent fires when a fresh OTP and token are stored for a user
type VerificationIssuedEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
}

// NewVerificationIssuedEvent creates a VerificationIssuedEvent
func NewVerificationIssuedEvent(user *User) *VerificationIssuedEvent {
	return &VerificationIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVerificationIssued, "User", user.ID),
		Email:           user.Email,
	}
}

// UserEmailVerifiedEvent fires when a user completes email verification
type UserEmailVerifiedEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
}

// NewUserEmailVerifiedEvent creates a UserEmailVerifiedEvent
func NewUserEmailVerifiedEvent(user *User) *UserEmailVerifiedEvent {
	return &UserEmailVerifiedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserEmailVerified, "User", user.ID),
		Email:           user.Email,
	}
}
