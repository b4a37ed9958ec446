package http

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/pkg/middleware"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (e *testEnv) upload(t *testing.T, field, filename string, content []byte) (int, envelope) {
	t.Helper()
	body, ct := multipartBody(t, field, filename, content)
	req := newRequest(http.MethodPost, "/api/v1/admin/uploads", body, e.token(t, adminID, middleware.RoleAdmin))
	req.Header.Set("Content-Type", ct)
	rec := serve(e, req)
	return rec.Code, decodeEnvelope(t, rec)
}

func TestUploadHandler_PNG(t *testing.T) {
	env := newTestEnv(t)
	body, ct := multipartBody(t, "image", "shoe.png", pngHeader)
	req := newRequest(http.MethodPost, "/api/v1/admin/uploads", body, env.token(t, adminID, middleware.RoleAdmin))
	req.Header.Set("Content-Type", ct)

	rec := serve(env, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res UploadResponse
	decodeData(t, rec, &res)
	assert.Equal(t, "image/png", res.ContentType)
	assert.Equal(t, len(pngHeader), res.Size)
	assert.True(t, strings.HasPrefix(res.URL, "data:image/png;base64,"))
}

func TestUploadHandler_Rejects(t *testing.T) {
	env := newTestEnv(t)

	oversize := make([]byte, MaxImageSize+1024)
	copy(oversize, pngHeader)

	tests := []struct {
		name     string
		field    string
		content  []byte
		wantCode int
		wantErr  string
	}{
		{"not an image", "image", []byte("just some text"), http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE"},
		{"too large", "image", oversize, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
		{"wrong field", "file", pngHeader, http.StatusBadRequest, "INVALID_INPUT"},
		{"empty file", "image", nil, http.StatusBadRequest, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := env.upload(t, tt.field, "upload.bin", tt.content)
			assert.Equal(t, tt.wantCode, code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantErr, resp.Error.Code)
		})
	}
}
