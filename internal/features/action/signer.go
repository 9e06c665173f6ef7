package action

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureHeader carries the webhook body signature. Receivers recompute
// the HMAC over the exact bytes they received and compare.
const SignatureHeader = "X-Hub-Signature-256"

// SignaturePrefix is prepended to the hex digest in the header value.
const SignaturePrefix = "sha256="

// Sign computes the lowercase hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
