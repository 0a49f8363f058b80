package payment

import "context"

// SessionRequest describes the remote payment session to open.
// AmountMinorUnits is the order total in the gateway's minor currency
// unit (paise for INR), converted exactly before the call.
type SessionRequest struct {
	AmountMinorUnits int64
	Currency         string
	ReceiptRef       string
	Metadata         map[string]string
}

// PaymentDetails is the authoritative state of one payment attempt as
// reported by the gateway itself
type PaymentDetails struct {
	PaymentID        string
	Status           string
	Method           string
	AmountMinorUnits int64
	Currency         string
	RawResponse      string
}

// Gateway is the outbound boundary to the hosted payment provider.
// Implementations map transport failures to shared.ErrUpstreamFailure.
type Gateway interface {
	// CreateSession opens a remote payment session and returns its id
	CreateSession(ctx context.Context, req SessionRequest) (sessionID string, err error)

	// FetchPaymentDetails retrieves a payment's authoritative state.
	// Client callbacks are never trusted beyond the signature-verified
	// ids; this call supplies everything else.
	FetchPaymentDetails(ctx context.Context, paymentID string) (*PaymentDetails, error)

	// VerifySignature checks the checkout callback signature for
	// sessionID and paymentID in constant time
	VerifySignature(sessionID, paymentID, signature string) bool

	// VerifyWebhookSignature checks the vendor signature header over the
	// raw webhook body in constant time
	VerifyWebhookSignature(body []byte, signature string) bool

	// KeyID returns the public key identifier embedded in checkout
	// parameters returned to the storefront
	KeyID() string
}
