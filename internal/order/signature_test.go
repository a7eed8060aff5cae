package order

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "shpss_test_secret"
	body := []byte(`{"id":123,"line_items":[]}`)

	assert.True(t, VerifySignature(secret, body, sign(secret, body)))
	assert.False(t, VerifySignature(secret, body, sign("wrong_secret", body)))
	assert.False(t, VerifySignature(secret, []byte(`{"id":124}`), sign(secret, body)))
	assert.False(t, VerifySignature(secret, body, ""))
	assert.False(t, VerifySignature(secret, body, "not-base64-!!"))
}

func TestVerifySignature_TamperedBody(t *testing.T) {
	secret := "shpss_test_secret"
	body := []byte(`{"id":123,"total_price":"10.00"}`)
	tampered := []byte(`{"id":123,"total_price":"1.00"}`)

	assert.False(t, VerifySignature(secret, tampered, sign(secret, body)))
}
