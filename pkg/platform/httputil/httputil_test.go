package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "nexus/pkg/domain-errors"
)

func decodeErrorBody(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestWriteError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantDesc   string
	}{
		{
			name:       "bad request surfaces description",
			err:        dErrors.New(dErrors.CodeBadRequest, "invalid request body"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "bad_request",
			wantDesc:   "invalid request body",
		},
		{
			name:       "validation maps to unprocessable entity",
			err:        dErrors.New(dErrors.CodeValidation, "scope fields are mutually exclusive"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "validation",
			wantDesc:   "scope fields are mutually exclusive",
		},
		{
			name:       "not found",
			err:        dErrors.New(dErrors.CodeNotFound, "notification not found"),
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
			wantDesc:   "notification not found",
		},
		{
			name:       "uncoded error falls back to internal",
			err:        http.ErrBodyNotAllowed,
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tc.err)

			assert.Equal(t, tc.wantStatus, w.Code)
			body := decodeErrorBody(t, w)
			assert.Equal(t, tc.wantCode, body["error"])
			assert.Equal(t, tc.wantDesc, body["error_description"])
		})
	}
}

func TestWriteError_InternalOmitsDescription(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, dErrors.New(dErrors.CodeInternal, "pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeErrorBody(t, w)
	assert.Equal(t, "internal_error", body["error"])
	_, leaked := body["error_description"]
	assert.False(t, leaked, "internal detail must not reach the client")
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusCreated, map[string]int{"unread": 3})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"unread":3}`, w.Body.String())
}
