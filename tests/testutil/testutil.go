// Package testutil provides common test utilities for the fulfillment
// service: multipart upload builders and response envelope decoding.
package testutil

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MultipartFile builds a multipart/form-data body carrying one file field.
func MultipartFile(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err, "Failed to create form file")
	_, err = fw.Write(content)
	require.NoError(t, err, "Failed to write form file")
	require.NoError(t, mw.Close())

	return &body, mw.FormDataContentType()
}

// UploadCSV performs a multipart CSV upload against the engine and returns
// the recorder.
func UploadCSV(t *testing.T, engine *gin.Engine, path, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := MultipartFile(t, "file", filename, content)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

// Get performs a GET request against the engine.
func Get(t *testing.T, engine *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

// DecodeData decodes the "data" member of the API response envelope into out.
func DecodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), "invalid response envelope")
	require.True(t, envelope.Success, "expected a success envelope, got %s", rec.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}
