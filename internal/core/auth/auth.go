// Package auth provides HMAC-based request signing for the remote rule
// evaluation service.
//
// The evaluator authenticates clients by API key plus an HMAC-SHA256
// signature of the request body. Keys use the format
// fg-v1-<secret_id>-<random_data>; the secret_id selects the shared secret
// used for signing, enabling rotation without client redeploys.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
)

// Header names understood by the evaluation service.
const (
	HeaderAPIKey    = "X-Formgate-Key"
	HeaderSignature = "X-Formgate-Signature"
)

// Signer signs outbound evaluation requests with a configured API key and
// its matching HMAC secret.
type Signer struct {
	apiKey   string
	secretID string
	secret   []byte
}

// NewSigner creates a signer from an API key and the secret map loaded from
// the environment. The key's embedded secret_id must resolve to a secret.
func NewSigner(apiKey string, secrets map[string][]byte) (*Signer, error) {
	secretID, _, err := ParseAPIKey(apiKey)
	if err != nil {
		return nil, err
	}
	secret, ok := secrets[secretID]
	if !ok {
		return nil, ErrUnknownKey
	}
	return &Signer{apiKey: apiKey, secretID: secretID, secret: secret}, nil
}

// Sign attaches the API key and body signature headers to a request.
// The signature covers the exact bytes of the serialized body.
func (s *Signer) Sign(req *http.Request, body []byte) {
	req.Header.Set(HeaderAPIKey, s.apiKey)
	req.Header.Set(HeaderSignature, hex.EncodeToString(ComputeHMAC(s.secret, body)))
}

// ParseAPIKey extracts secret_id and random_data from API key format.
// Format: fg-v1-<secret_id>-<random_data>.
// Returns ErrInvalidKeyFormat if format doesn't match.
func ParseAPIKey(key string) (secretID, randomData string, err error) {
	parts := strings.Split(key, "-")
	if len(parts) != 4 {
		return "", "", ErrInvalidKeyFormat
	}

	if parts[0] != "fg" || parts[1] != "v1" {
		return "", "", ErrInvalidKeyFormat
	}

	secretID = parts[2]
	randomData = parts[3]

	// secret_id is 32 hex chars (UUID without hyphens), random_data 64 hex
	// chars (256 bits)
	if len(secretID) != 32 || len(randomData) != 64 {
		return "", "", ErrInvalidKeyFormat
	}

	for _, c := range secretID + randomData {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return "", "", ErrInvalidKeyFormat
		}
	}

	return secretID, randomData, nil
}

// FormatAPIKey constructs an API key from components.
// Used during key provisioning.
func FormatAPIKey(secretID, randomData string) string {
	return fmt.Sprintf("fg-v1-%s-%s", secretID, randomData)
}

// ComputeHMAC computes the HMAC-SHA256 signature of data using secret.
func ComputeHMAC(secret, data []byte) []byte {
	h := hmac.New(sha256.New, secret)
	h.Write(data)
	return h.Sum(nil)
}

// VerifyHMAC verifies an HMAC signature using constant-time comparison.
// Constant-time comparison prevents timing attacks. Used by tests standing
// in for the evaluation service.
func VerifyHMAC(expected, computed []byte) bool {
	return hmac.Equal(expected, computed)
}
