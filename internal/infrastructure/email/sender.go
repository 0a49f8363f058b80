package email

import (
	"fmt"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// NewSender builds the identity.EmailSender for the configured
// transport. The console transport is for local development only and
// is rejected by config validation in production.
func NewSender(cfg config.EmailConfig, baseURL string) (identity.EmailSender, error) {
	switch cfg.Transport {
	case "console", "":
		return NewConsoleSender(baseURL), nil
	case "smtp":
		return NewSMTPSender(cfg, baseURL)
	default:
		return nil, fmt.Errorf("email: unknown transport %q", cfg.Transport)
	}
}

// verificationLink builds the one-click verification URL embedded in
// outgoing mail
func verificationLink(baseURL, token string) string {
	return fmt.Sprintf("%s/api/v1/auth/verify-link?token=%s", baseURL, token)
}
