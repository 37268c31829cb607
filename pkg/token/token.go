// Package token implements the opaque share-token format used in deep links.
//
// A file token is the base64 encoding of "{unix-timestamp}_{random}". A batch
// token carries a "batch_" prefix in front of the same encoding so the two
// namespaces never collide.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// BatchPrefix marks batch tokens apart from file tokens.
	BatchPrefix = "batch_"

	fileRandomLen  = 10
	batchRandomLen = 12

	alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewFile generates a fresh single-file share token.
func NewFile() string {
	return encode(time.Now().Unix(), fileRandomLen)
}

// NewBatch generates a fresh batch share token.
func NewBatch() string {
	return BatchPrefix + encode(time.Now().Unix(), batchRandomLen)
}

// ParseFile validates a single-file token. Batch tokens and strings that do
// not decode to the internal "{timestamp}_{random}" form are rejected.
func ParseFile(s string) (string, error) {
	if strings.HasPrefix(s, BatchPrefix) {
		return "", fmt.Errorf("token %q is a batch token", s)
	}
	if err := validate(s); err != nil {
		return "", err
	}
	return s, nil
}

// ParseBatch validates a batch token, requiring the batch prefix.
func ParseBatch(s string) (string, error) {
	if !strings.HasPrefix(s, BatchPrefix) {
		return "", fmt.Errorf("token %q lacks the batch prefix", s)
	}
	if err := validate(strings.TrimPrefix(s, BatchPrefix)); err != nil {
		return "", err
	}
	return s, nil
}

// IsBatch reports whether the raw deep-link payload is in the batch namespace.
func IsBatch(s string) bool {
	return strings.HasPrefix(s, BatchPrefix)
}

// DeepLink builds the t.me start link for a token.
func DeepLink(botUsername, tok string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", botUsername, tok)
}

func encode(ts int64, randomLen int) string {
	raw := fmt.Sprintf("%d_%s", ts, randomString(randomLen))
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

func validate(s string) error {
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid token encoding: %w", err)
	}

	parts := strings.SplitN(string(decoded), "_", 2)
	if len(parts) != 2 || parts[1] == "" {
		return fmt.Errorf("invalid token format")
	}
	if _, err := strconv.ParseInt(parts[0], 10, 64); err != nil {
		return fmt.Errorf("invalid token timestamp: %w", err)
	}
	return nil
}

func randomString(length int) string {
	buf := make([]byte, length)
	// rand.Read never fails on supported platforms
	rand.Read(buf)
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf)
}
