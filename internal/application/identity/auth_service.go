package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthService handles registration, login, and account operations for
// storefront users and back-office admins
type AuthService struct {
	userRepo     identity.UserRepository
	adminRepo    identity.AdminRepository
	verification *VerificationService
	jwtService   *auth.JWTService
	blacklist    auth.TokenBlacklist
	logger       *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	adminRepo identity.AdminRepository,
	verification *VerificationService,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		adminRepo:    adminRepo,
		verification: verification,
		jwtService:   jwtService,
		blacklist:    blacklist,
		logger:       logger,
	}
}

// Register creates a new user account and issues its first
// verification email
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	if taken, err := s.userRepo.ExistsByUsername(ctx, input.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, shared.NewDomainError("USERNAME_TAKEN", "Username is already in use")
	}
	if taken, err := s.userRepo.ExistsByEmail(ctx, input.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, shared.NewDomainError("EMAIL_TAKEN", "Email address is already in use")
	}

	user, err := identity.NewUser(input.Username, input.Email, input.Password, input.FirstName, input.LastName)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	sent, err := s.verification.Issue(ctx, user)
	if err != nil {
		s.logger.Error("failed to issue verification after registration",
			zap.String("email", user.Email),
			zap.Error(err))
	}

	s.logger.Info("user registered",
		zap.String("username", user.Username),
		zap.Bool("email_sent", sent))

	return &RegisterResult{User: toUserInfo(user), EmailSent: sent}, nil
}

// Login authenticates a storefront user. Unverified accounts are
// rejected with a distinguishable code so the storefront can route to
// the verification page.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		s.logger.Warn("login attempt for unknown username", zap.String("username", input.Username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("invalid password attempt", zap.String("username", input.Username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	if !user.CanLogin() {
		s.logger.Info("login blocked for unverified email", zap.String("username", input.Username))
		return nil, shared.NewDomainError("EMAIL_NOT_VERIFIED", "Email address has not been verified").
			WithDetail("user_id", user.ID.String())
	}

	issued, err := s.jwtService.GenerateToken(user.ID, user.Username, auth.RoleUser)
	if err != nil {
		s.logger.Error("failed to generate token", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate session token")
	}

	return &LoginResult{
		AccessToken: issued.Token,
		ExpiresAt:   issued.ExpiresAt,
		TokenType:   issued.TokenType,
		User:        toUserInfo(user),
	}, nil
}

// AdminLogin authenticates a back-office admin. Admins have no email
// verification gate.
func (s *AuthService) AdminLogin(ctx context.Context, input AdminLoginInput) (*AdminLoginResult, error) {
	admin, err := s.adminRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		s.logger.Warn("admin login attempt for unknown username", zap.String("username", input.Username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	if !admin.VerifyPassword(input.Password) {
		s.logger.Warn("invalid admin password attempt", zap.String("username", input.Username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	issued, err := s.jwtService.GenerateToken(admin.ID, admin.Username, auth.RoleAdmin)
	if err != nil {
		s.logger.Error("failed to generate admin token", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate session token")
	}

	return &AdminLoginResult{
		AccessToken: issued.Token,
		ExpiresAt:   issued.ExpiresAt,
		TokenType:   issued.TokenType,
		Admin: AdminInfo{
			ID:       admin.ID,
			Username: admin.Username,
			Email:    admin.Email,
			FullName: admin.FullName,
		},
	}, nil
}

// Logout blacklists the session token until its natural expiry
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	ttl := time.Until(input.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.AddToBlacklist(ctx, input.TokenJTI, ttl); err != nil {
		s.logger.Error("failed to blacklist token", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to invalidate session")
	}
	return nil
}

// GetProfile returns the authenticated user's profile
func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	info := toUserInfo(user)
	return &info, nil
}

// UpdateProfile mutates the user's contact fields
func (s *AuthService) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if err := user.UpdateProfile(input.FirstName, input.LastName, input.Phone, input.Address); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	info := toUserInfo(user)
	return &info, nil
}

// ChangePassword rotates the user's password after checking the old one
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if !user.VerifyPassword(input.OldPassword) {
		return shared.NewDomainError("INVALID_CREDENTIALS", "Current password is incorrect")
	}
	if err := user.ChangePassword(input.NewPassword); err != nil {
		return err
	}
	return s.userRepo.Update(ctx, user)
}

// ListUsers returns a page of users for the back office
func (s *AuthService) ListUsers(ctx context.Context, input ListUsersInput) (*ListUsersResult, error) {
	filter := identity.NewUserFilter().
		WithKeyword(input.Keyword).
		WithPagination(input.Page, input.PageSize)
	if input.Verified != nil {
		filter = filter.WithVerified(*input.Verified)
	}

	users, total, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	infos := make([]UserInfo, 0, len(users))
	for _, u := range users {
		infos = append(infos, toUserInfo(u))
	}

	return &ListUsersResult{
		Users:    infos,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.Limit(),
	}, nil
}

func toUserInfo(user *identity.User) UserInfo {
	return UserInfo{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		Phone:           user.Phone,
		Address:         user.Address,
		IsEmailVerified: user.IsEmailVerified,
		CreatedAt:       user.CreatedAt,
	}
}
