package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookVerifier_RoundTrip(t *testing.T) {
	v := NewWebhookVerifier("top-secret")
	body := []byte(`{"reference":"MM-1","status":"COMPLETED"}`)
	require.NoError(t, v.Verify(body, v.Sign(body)))
}

func TestWebhookVerifier_TamperedBody(t *testing.T) {
	v := NewWebhookVerifier("top-secret")
	sig := v.Sign([]byte(`{"reference":"MM-1","status":"COMPLETED"}`))
	err := v.Verify([]byte(`{"reference":"MM-1","status":"FAILED"}`), sig)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestWebhookVerifier_WrongSecret(t *testing.T) {
	body := []byte(`{"reference":"MM-1"}`)
	sig := NewWebhookVerifier("other").Sign(body)
	assert.ErrorIs(t, NewWebhookVerifier("top-secret").Verify(body, sig), ErrBadSignature)
}

func TestWebhookVerifier_MalformedSignature(t *testing.T) {
	v := NewWebhookVerifier("top-secret")
	assert.ErrorIs(t, v.Verify([]byte("x"), "not-hex"), ErrBadSignature)
}
