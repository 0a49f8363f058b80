package payment

import "errors"

// RazorpayConfig contains credentials and endpoints for the Razorpay API
type RazorpayConfig struct {
	// KeyID is the public API key, also handed to the storefront checkout
	KeyID string
	// KeySecret signs API requests and checkout callback signatures
	KeySecret string
	// WebhookSecret signs webhook notification bodies
	WebhookSecret string
	// BaseURL is the API base, overridable for tests
	BaseURL string
}

// Errors for configuration validation
var (
	ErrRazorpayMissingKeyID         = errors.New("razorpay: missing key id")
	ErrRazorpayMissingKeySecret     = errors.New("razorpay: missing key secret")
	ErrRazorpayMissingWebhookSecret = errors.New("razorpay: missing webhook secret")
)

// Validate validates the configuration
func (c *RazorpayConfig) Validate() error {
	if c.KeyID == "" {
		return ErrRazorpayMissingKeyID
	}
	if c.KeySecret == "" {
		return ErrRazorpayMissingKeySecret
	}
	if c.WebhookSecret == "" {
		return ErrRazorpayMissingWebhookSecret
	}
	return nil
}
