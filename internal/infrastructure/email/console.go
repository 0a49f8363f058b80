package email

import (
	"context"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ConsoleSender writes verification mail to the application log instead
// of delivering it. Local development transport.
type ConsoleSender struct {
	baseURL string
}

// NewConsoleSender creates a new ConsoleSender
func NewConsoleSender(baseURL string) *ConsoleSender {
	return &ConsoleSender{baseURL: baseURL}
}

// SendVerificationEmail logs the OTP and verification link
func (s *ConsoleSender) SendVerificationEmail(ctx context.Context, toAddress, displayName, otpCode, verificationToken string) error {
	logger.L(ctx).Info("verification email (console transport)",
		zap.String("to", toAddress),
		zap.String("name", displayName),
		zap.String("otp", otpCode),
		zap.String("link", verificationLink(s.baseURL, verificationToken)),
	)
	return nil
}

var _ identity.EmailSender = (*ConsoleSender)(nil)
