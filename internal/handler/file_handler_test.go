package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mchat/internal/pkg/auth/jwt"
)

// stubStorage records the keys handed to it and serves canned URLs, so
// handler behavior is testable without a bucket.
type stubStorage struct {
	downloadURL string
	downloadKey string
	uploadKey   string
	deletedKey  string
	err         error
}

func (s *stubStorage) PresignUpload(_ context.Context, key, _ string, _ int64, _ time.Duration) (string, error) {
	return "https://bucket.test/upload/" + key, s.err
}

func (s *stubStorage) Upload(_ context.Context, key, _ string, _ io.Reader) error {
	s.uploadKey = key
	return s.err
}

func (s *stubStorage) PresignDownload(_ context.Context, key string, _ time.Duration) (string, error) {
	s.downloadKey = key
	return s.downloadURL, s.err
}

func (s *stubStorage) Delete(_ context.Context, key string) error {
	s.deletedKey = key
	return s.err
}

func authedRequest(method, target string, body io.Reader) *http.Request {
	r := httptest.NewRequest(method, target, body)
	ctx := context.WithValue(r.Context(), jwt.ContextAuthPayloadKey, &jwt.Payload{ID: "u1"})
	return r.WithContext(ctx)
}

func TestHandlePresignAvatarDownload_RedirectsToSignedURL(t *testing.T) {
	req := require.New(t)

	stub := &stubStorage{downloadURL: "https://bucket.test/signed"}
	deps := &AppDeps{StorageService: stub}

	w := httptest.NewRecorder()
	HandlePresignAvatarDownload(deps)(w, authedRequest(http.MethodGet, "/api/user/avatar?k=avatars/u2", nil))

	req.Equal(http.StatusFound, w.Code)
	req.Equal("https://bucket.test/signed", w.Header().Get("Location"))
	req.Equal("avatars/u2", stub.downloadKey)
}

func TestHandlePresignAvatarDownload_RejectsMissingOrForeignKey(t *testing.T) {
	req := require.New(t)

	for target, status := range map[string]int{
		"/api/user/avatar":                  http.StatusBadRequest,
		"/api/user/avatar?k=backups/secret": http.StatusUnauthorized,
	} {
		stub := &stubStorage{}
		deps := &AppDeps{StorageService: stub}

		w := httptest.NewRecorder()
		HandlePresignAvatarDownload(deps)(w, authedRequest(http.MethodGet, target, nil))

		req.Equal(status, w.Code, target)
		req.Empty(stub.downloadKey, target)
	}
}

func avatarForm(t *testing.T, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("avatar", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func TestHandleUploadAvatar_RejectsNonImage(t *testing.T) {
	req := require.New(t)

	stub := &stubStorage{}
	deps := &AppDeps{StorageService: stub}

	// CreateFormFile marks the part application/octet-stream, which the
	// avatar type check refuses.
	body, contentType := avatarForm(t, "notes.txt", []byte("plain text"))

	r := authedRequest(http.MethodPost, "/api/user/avatar", body)
	r.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	HandleUploadAvatar(deps)(w, r)

	req.Equal(http.StatusBadRequest, w.Code)
	req.Empty(stub.uploadKey)
}
