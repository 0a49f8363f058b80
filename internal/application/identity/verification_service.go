package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	verificationExpiry = 15 * time.Minute
	otpDigits          = 6
	tokenBytes         = 16 // hex encoded to 32 chars
)

// VerificationService drives the email verification workflow: secret
// generation, delivery, and the OTP/token verification paths.
type VerificationService struct {
	userRepo identity.UserRepository
	logRepo  identity.VerificationLogRepository
	sender   identity.EmailSender
	logger   *zap.Logger
}

// NewVerificationService creates a new verification service
func NewVerificationService(
	userRepo identity.UserRepository,
	logRepo identity.VerificationLogRepository,
	sender identity.EmailSender,
	logger *zap.Logger,
) *VerificationService {
	return &VerificationService{
		userRepo: userRepo,
		logRepo:  logRepo,
		sender:   sender,
		logger:   logger,
	}
}

// Issue generates fresh secrets for the user, persists them, records
// the audit row, and attempts delivery. The secrets are stored before
// the send, so a mail outage never loses the issued OTP; the returned
// bool reports whether delivery succeeded.
func (s *VerificationService) Issue(ctx context.Context, user *identity.User) (bool, error) {
	otp, err := generateOTP()
	if err != nil {
		return false, fmt.Errorf("generate otp: %w", err)
	}
	token, err := generateToken()
	if err != nil {
		return false, fmt.Errorf("generate token: %w", err)
	}

	if err := user.IssueVerification(otp, token, time.Now().Add(verificationExpiry)); err != nil {
		return false, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return false, err
	}

	s.audit(ctx, user, otp, identity.VerificationActionSent)

	if err := s.sender.SendVerificationEmail(ctx, user.Email, user.DisplayName(), otp, token); err != nil {
		s.logger.Warn("verification email delivery failed",
			zap.String("email", user.Email),
			zap.Error(err))
		return false, nil
	}

	return true, nil
}

// Resend reissues verification secrets for an unverified account. The
// reissue resets the attempt counter and invalidates the previous OTP
// and token.
func (s *VerificationService) Resend(ctx context.Context, input ResendVerificationInput) (bool, error) {
	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		return false, err
	}
	if user.IsEmailVerified {
		return false, shared.NewDomainError("ALREADY_VERIFIED", "Email address is already verified")
	}
	return s.Issue(ctx, user)
}

// VerifyOTP checks the submitted code against the stored OTP. Failed
// and expired attempts leave audit rows; five mismatches lock the code
// until a resend.
func (s *VerificationService) VerifyOTP(ctx context.Context, input VerifyOTPInput) error {
	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		return err
	}
	if user.IsEmailVerified {
		return shared.NewDomainError("ALREADY_VERIFIED", "Email address is already verified")
	}

	verifyErr := user.VerifyOTP(input.Code, time.Now())

	// The attempt counter (and verified flag on success) must persist
	// whatever the outcome.
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	switch {
	case verifyErr == nil:
		s.audit(ctx, user, input.Code, identity.VerificationActionVerified)
		s.logger.Info("email verified via otp", zap.String("email", user.Email))
		return nil
	case errors.Is(verifyErr, shared.ErrExpired):
		s.audit(ctx, user, input.Code, identity.VerificationActionExpired)
		return verifyErr
	default:
		s.audit(ctx, user, input.Code, identity.VerificationActionFailed)
		return verifyErr
	}
}

// VerifyToken consumes the one-click link token. The token shares the
// OTP expiry window but is exempt from the attempt counter.
func (s *VerificationService) VerifyToken(ctx context.Context, input VerifyTokenInput) error {
	user, err := s.userRepo.FindByVerificationToken(ctx, input.Token)
	if err != nil {
		return err
	}

	verifyErr := user.VerifyToken(input.Token, time.Now())
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	switch {
	case verifyErr == nil:
		s.audit(ctx, user, "", identity.VerificationActionVerified)
		s.logger.Info("email verified via link", zap.String("email", user.Email))
		return nil
	case errors.Is(verifyErr, shared.ErrExpired):
		s.audit(ctx, user, "", identity.VerificationActionExpired)
		return verifyErr
	default:
		return verifyErr
	}
}

func (s *VerificationService) audit(ctx context.Context, user *identity.User, code string, action identity.VerificationAction) {
	log := identity.NewVerificationLog(user.ID, user.Email, code, action)
	if err := s.logRepo.Create(ctx, log); err != nil {
		s.logger.Error("failed to write verification audit row",
			zap.String("email", user.Email),
			zap.String("action", string(action)),
			zap.Error(err))
	}
}

// generateOTP returns a uniformly random 6-digit code, zero padded
func generateOTP() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < otpDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n), nil
}

// generateToken returns a 32-character hex link token
func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
