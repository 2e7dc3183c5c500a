package twilio

import (
	"strings"

	"github.com/twilio/twilio-go/client"

	"github.com/teich/phone-gate-bridge/domain"
)

// SignatureVerifierImpl implements domain.SignatureVerifier using the Twilio
// SDK's request validator (HMAC-SHA1 over the public callback URL plus the
// key-sorted form parameters, base64-encoded, constant-time compared).
type SignatureVerifierImpl struct {
	validator client.RequestValidator
}

// NewSignatureVerifier creates a verifier bound to the account's auth token
func NewSignatureVerifier(authToken string) domain.SignatureVerifier {
	return &SignatureVerifierImpl{
		validator: client.NewRequestValidator(authToken),
	}
}

// Verify implements domain.SignatureVerifier. A missing or malformed
// signature is a plain rejection; there is no fallback.
func (v *SignatureVerifierImpl) Verify(url string, params map[string]string, signature string) bool {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return false
	}
	return v.validator.Validate(url, params, signature)
}
