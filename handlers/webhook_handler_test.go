package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testSecretKey = "super-secret-signing-key"

var testSecret = "whsec_" + base64.StdEncoding.EncodeToString([]byte(testSecretKey))

func signedRequest(body string, at time.Time, secretKey string) *http.Request {
	id := "msg_2abc"
	ts := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(id + "." + ts + "." + body))

	r := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", strings.NewReader(body))
	r.Header.Set("svix-id", id)
	r.Header.Set("svix-timestamp", ts)
	r.Header.Set("svix-signature", "v1,bogus v1,"+base64.StdEncoding.EncodeToString(mac.Sum(nil)))
	return r
}

func newTestWebhookHandler(now time.Time) *WebhookHandler {
	h := NewWebhookHandler(nil, testSecret)
	h.now = func() time.Time { return now }
	return h
}

func TestWebhookAcceptsValidSignature(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	w := httptest.NewRecorder()

	newTestWebhookHandler(now).HandleClerkWebhook(w, signedRequest(`{"type":"session.created","data":{}}`, now, testSecretKey))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhookRejectsWrongKey(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	w := httptest.NewRecorder()

	newTestWebhookHandler(now).HandleClerkWebhook(w, signedRequest(`{"type":"session.created"}`, now, "other-key"))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookRejectsStaleTimestamp(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	w := httptest.NewRecorder()

	newTestWebhookHandler(now).HandleClerkWebhook(w, signedRequest(`{"type":"session.created"}`, now.Add(-time.Hour), testSecretKey))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookRejectsMissingHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", strings.NewReader(`{}`))

	newTestWebhookHandler(time.Now()).HandleClerkWebhook(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
