package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

// Verification limits
const (
	// MaxOTPAttempts is the number of wrong codes tolerated per issued OTP
	MaxOTPAttempts = 5
	// OTPLength is the number of digits in a verification code
	OTPLength = 6
	// TokenLength is the number of characters in a verification link token
	TokenLength = 32
)

// User represents a storefront customer.
// It is the aggregate root for registration and email verification.
type User struct {
	shared.BaseAggregateRoot
	Username     string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	FirstName    string `gorm:"type:varchar(100);not null"`
	LastName     string `gorm:"type:varchar(100);not null"`
	Phone        string `gorm:"type:varchar(50)"`
	Address      string `gorm:"type:text"`

	// Email verification state. The three secrets are nullable: they exist
	// only between issue and successful verification.
	IsEmailVerified   bool       `gorm:"not null;default:false"`
	VerificationOTP   *string    `gorm:"type:varchar(6)"`
	VerificationToken *string    `gorm:"type:varchar(32);index"`
	OTPExpiresAt      *time.Time `gorm:""`
	OTPAttempts       int        `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a new, unverified user
func NewUser(username, email, password, firstName, lastName string) (*User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if firstName == "" || lastName == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "First and last name are required")
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          strings.ToLower(strings.TrimSpace(username)),
		Email:             strings.ToLower(strings.TrimSpace(email)),
		PasswordHash:      passwordHash,
		FirstName:         strings.TrimSpace(firstName),
		LastName:          strings.TrimSpace(lastName),
	}

	user.AddDomainEvent(NewUserRegisteredEvent(user))

	return user, nil
}

// SetPhone sets the user's phone number
func (u *User) SetPhone(phone string) error {
	if phone != "" && len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}
	u.Phone = strings.TrimSpace(phone)
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// SetAddress sets the user's default shipping address
func (u *User) SetAddress(address string) {
	u.Address = strings.TrimSpace(address)
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

// UpdateProfile updates the mutable profile fields
func (u *User) UpdateProfile(firstName, lastName, phone, address string) error {
	if firstName == "" || lastName == "" {
		return shared.NewDomainError("INVALID_NAME", "First and last name are required")
	}
	if err := u.SetPhone(phone); err != nil {
		return err
	}
	u.FirstName = strings.TrimSpace(firstName)
	u.LastName = strings.TrimSpace(lastName)
	u.Address = strings.TrimSpace(address)
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// VerifyPassword checks the given password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return verifyHash(u.PasswordHash, password)
}

// ChangePassword replaces the stored password hash
func (u *User) ChangePassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// CanLogin returns true when the login gate is open for this user.
// Password verification is a separate, independent check.
func (u *User) CanLogin() bool {
	return u.IsEmailVerified
}

// IssueVerification stores a freshly generated OTP/token pair, overwriting
// any prior secrets and resetting the attempt counter.
func (u *User) IssueVerification(otp, token string, expiresAt time.Time) error {
	if u.IsEmailVerified {
		return shared.NewDomainError("ALREADY_VERIFIED", "Email address is already verified")
	}
	if len(otp) != OTPLength {
		return shared.NewDomainError("INVALID_OTP", "OTP must be 6 digits")
	}
	if len(token) != TokenLength {
		return shared.NewDomainError("INVALID_TOKEN", "Verification token must be 32 characters")
	}

	u.VerificationOTP = &otp
	u.VerificationToken = &token
	u.OTPExpiresAt = &expiresAt
	u.OTPAttempts = 0
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	u.AddDomainEvent(NewVerificationIssuedEvent(u))

	return nil
}

// VerifyOTP checks the submitted code against the outstanding OTP.
// On success the user becomes verified and all secrets are cleared; the
// transition is irreversible. On mismatch the attempt counter is
// incremented but the OTP stays valid until MaxOTPAttempts is reached.
func (u *User) VerifyOTP(code string, now time.Time) error {
	if u.VerificationOTP == nil {
		// Covers both "never issued" and "already consumed".
		return shared.ErrNotFound
	}
	if u.OTPExpiresAt != nil && now.After(*u.OTPExpiresAt) {
		return shared.ErrExpired
	}
	if u.OTPAttempts >= MaxOTPAttempts {
		return shared.ErrLockedOut
	}

	// Exact string comparison: "012345" must not equal "12345".
	if *u.VerificationOTP != code {
		u.OTPAttempts++
		u.UpdatedAt = time.Now()
		u.IncrementVersion()
		return shared.NewDomainError("OTP_MISMATCH", "Incorrect verification code")
	}

	u.markVerified()
	return nil
}

// VerifyToken consumes the verification link token. The link path skips the
// attempt counter but shares the OTP's expiry window.
func (u *User) VerifyToken(token string, now time.Time) error {
	if u.VerificationToken == nil || *u.VerificationToken != token {
		return shared.ErrNotFound
	}
	if u.OTPExpiresAt != nil && now.After(*u.OTPExpiresAt) {
		return shared.ErrExpired
	}

	u.markVerified()
	return nil
}

// IsLockedOut reports whether the current OTP has exhausted its attempts
func (u *User) IsLockedOut() bool {
	return u.VerificationOTP != nil && u.OTPAttempts >= MaxOTPAttempts
}

// DisplayName returns the customer-facing name
func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) markVerified() {
	u.IsEmailVerified = true
	u.VerificationOTP = nil
	u.VerificationToken = nil
	u.OTPExpiresAt = nil
	u.OTPAttempts = 0
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	u.AddDomainEvent(NewUserEmailVerifiedEvent(u))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func verifyHash(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if len(username) < 3 {
		return shared.NewDomainError("INVALID_USERNAME", "Username must be at least 3 characters")
	}
	if len(username) > 50 {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 50 characters")
	}
	if !usernamePattern.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME", "Username can only contain letters, numbers, dots, underscores, and hyphens")
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 255 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 255 characters")
	}
	if !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Email address is not valid")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 6 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 6 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}
	return nil
}
