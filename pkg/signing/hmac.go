package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// BuildHMACSignature creates an HMAC-SHA256 signature over
// timestamp+method+path+body for API-key authenticated requests to the
// gateway and metadata services. The secret is URL-safe base64.
func BuildHMACSignature(secret string, timestamp int64, method string, requestPath string, body interface{}) (string, error) {
	decodedSecret, err := base64.URLEncoding.DecodeString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to decode secret: %w", err)
	}

	message := fmt.Sprintf("%d%s%s", timestamp, method, requestPath)

	if body != nil {
		bodyJSON, err := json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("failed to marshal body: %w", err)
		}
		message += string(bodyJSON)
	}

	h := hmac.New(sha256.New, decodedSecret)
	h.Write([]byte(message))

	return base64.URLEncoding.EncodeToString(h.Sum(nil)), nil
}
