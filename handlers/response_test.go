package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zealAPI/internal/apperr"
	"zealAPI/internal/types/challenge"
	"zealAPI/internal/types/notification"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("challenge x: %w", apperr.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("tuesday: %w", apperr.ErrExerciseMismatch), http.StatusUnprocessableEntity},
		{fmt.Errorf("midnight: %w", apperr.ErrDayRolledOver), http.StatusConflict},
		{fmt.Errorf("already joined: %w", apperr.ErrInvariantViolation), http.StatusConflict},
		{fmt.Errorf("connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestServiceErrorHidesInternals(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/challenges", nil)

	respondWithServiceError(w, r, fmt.Errorf("dial tcp 10.0.0.3:5432: refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.3")
}

func TestDecodeAndValidateRegisterDevice(t *testing.T) {
	var req notification.RegisterDeviceRequest
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"token":"abc","platform":"android"}`))
	require.NoError(t, decodeAndValidate(r, &req))
	assert.Equal(t, "abc", req.Token)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"token":"abc","platform":"symbian"}`))
	err := decodeAndValidate(r, &req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Platform")
}

func TestDecodeAndValidateCreateChallenge(t *testing.T) {
	body := `{
		"name": "Core",
		"type": "community",
		"challenge_start": "2024-01-01T00:00:00Z",
		"challenge_end": "2024-01-07T00:00:00Z",
		"exercises": [{"name": "Plank", "duration": 60, "kind": "time"}],
		"days": [{"day": "Monday", "isActive": true}]
	}`
	var req challenge.CreateChallengeRequest
	require.NoError(t, decodeAndValidate(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), &req))
	assert.Equal(t, challenge.TypeCommunity, req.Type)

	bad := strings.Replace(body, `"community"`, `"solo"`, 1)
	assert.Error(t, decodeAndValidate(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(bad)), &req))

	assert.Error(t, decodeAndValidate(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`)), &req))
}

func TestPathUUID(t *testing.T) {
	r := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": "not-a-uuid"})

	_, err := pathUUID(r, "id")

	assert.EqualError(t, err, "invalid id")
}
