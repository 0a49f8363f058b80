package identity

import "context"

// EmailSender delivers verification mail to customers. Implementations
// live in infrastructure; a console transport is used in development.
type EmailSender interface {
	// SendVerificationEmail sends the OTP code and verification link token
	// to the given address. A delivery failure must not discard the stored
	// secrets; callers log and continue.
	SendVerificationEmail(ctx context.Context, toAddress, displayName, otpCode, verificationToken string) error
}
