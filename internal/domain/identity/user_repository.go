package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for customer persistence
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// Update updates an existing user
	Update(ctx context.Context, user *User) error

	// Delete deletes a user by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByVerificationToken finds a user by an outstanding link token
	FindByVerificationToken(ctx context.Context, token string) (*User, error)

	// FindAll returns users with pagination
	FindAll(ctx context.Context, filter UserFilter) ([]*User, int64, error)

	// ExistsByUsername checks if a username already exists
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail checks if an email already exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Count returns the total number of users
	Count(ctx context.Context) (int64, error)
}

// AdminRepository defines the interface for back-office admin persistence
type AdminRepository interface {
	// Create creates a new admin
	Create(ctx context.Context, admin *Admin) error

	// Update updates an existing admin
	Update(ctx context.Context, admin *Admin) error

	// FindByID finds an admin by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Admin, error)

	// FindByUsername finds an admin by username
	FindByUsername(ctx context.Context, username string) (*Admin, error)

	// ExistsByUsername checks if an admin username already exists
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// VerificationLogRepository persists the OTP audit trail
type VerificationLogRepository interface {
	// Create appends an audit record
	Create(ctx context.Context, log *VerificationLog) error

	// FindByUserID returns the audit trail for a user, newest first
	FindByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*VerificationLog, error)
}

// UserFilter contains filter options for querying users
type UserFilter struct {
	// Search keyword for username, email, or name
	Keyword string

	// Filter by verification state
	Verified *bool

	// Pagination
	Page     int
	PageSize int

	// Sorting
	SortBy    string
	SortOrder string // "asc" or "desc"
}

// NewUserFilter creates a new UserFilter with default values
func NewUserFilter() UserFilter {
	return UserFilter{
		Page:      1,
		PageSize:  20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
}

// WithKeyword sets the search keyword
func (f UserFilter) WithKeyword(keyword string) UserFilter {
	f.Keyword = keyword
	return f
}

// WithVerified sets the verification state filter
func (f UserFilter) WithVerified(verified bool) UserFilter {
	f.Verified = &verified
	return f
}

// WithPagination sets pagination parameters
func (f UserFilter) WithPagination(page, pageSize int) UserFilter {
	f.Page = page
	f.PageSize = pageSize
	return f
}

// Offset returns the offset for pagination
func (f UserFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Limit returns the limit for pagination
func (f UserFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}
