package httputil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	err := WriteJSON(rec, http.StatusTeapot, map[string]string{"k": "v"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"k": "v"}`, rec.Body.String())
}

func TestWriteSuccess(t *testing.T) {
	rec := httptest.NewRecorder()

	require.NoError(t, WriteSuccess(rec, map[string]bool{"success": true}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success": true}`, rec.Body.String())
}

func TestWriteCreated(t *testing.T) {
	rec := httptest.NewRecorder()

	require.NoError(t, WriteCreated(rec, map[string]string{"id": "abc"}))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id": "abc"}`, rec.Body.String())
}

func TestWriteErrorHelpers(t *testing.T) {
	tests := []struct {
		name     string
		write    func(w http.ResponseWriter)
		wantCode int
		wantBody string
	}{
		{
			name:     "error",
			write:    func(w http.ResponseWriter) { WriteError(w, http.StatusConflict, errors.New("boom")) },
			wantCode: http.StatusConflict,
			wantBody: `{"error": "boom"}`,
		},
		{
			name:     "bad request",
			write:    func(w http.ResponseWriter) { WriteBadRequest(w, "bad input") },
			wantCode: http.StatusBadRequest,
			wantBody: `{"error": "bad input"}`,
		},
		{
			name:     "not found",
			write:    func(w http.ResponseWriter) { WriteNotFoundError(w, "Object not found") },
			wantCode: http.StatusNotFound,
			wantBody: `{"error": "Object not found"}`,
		},
		{
			name:     "internal",
			write:    func(w http.ResponseWriter) { WriteInternalError(w, errors.New("oops")) },
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error": "oops"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
