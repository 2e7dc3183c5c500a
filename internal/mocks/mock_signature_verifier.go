package mocks

import "github.com/teich/phone-gate-bridge/domain"

// MockSignatureVerifier implements domain.SignatureVerifier for testing
type MockSignatureVerifier struct {
	VerifyFunc func(url string, params map[string]string, signature string) bool
}

// NewMockSignatureVerifier creates a new MockSignatureVerifier with default behaviors
func NewMockSignatureVerifier() *MockSignatureVerifier {
	return &MockSignatureVerifier{}
}

// Verify validates a webhook signature
func (m *MockSignatureVerifier) Verify(url string, params map[string]string, signature string) bool {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(url, params, signature)
	}
	// Default behavior: accept every signature
	return true
}

// Compile-time interface compliance verification
var _ domain.SignatureVerifier = (*MockSignatureVerifier)(nil)
