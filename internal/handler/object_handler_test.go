package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bondst/guitarvault/internal/acl"
	"github.com/bondst/guitarvault/internal/middleware"
	appErrors "github.com/bondst/guitarvault/pkg/errors"
	"github.com/bondst/guitarvault/pkg/objectstore"
)

type objectServiceMock struct {
	uploadURL    string
	uploadErr    error
	resolveErr   error
	resolvedPath string
	allowed      bool
	lastUser     string
	searchErr    error
	downloadErr  error
	partial      bool
	downloadTTL  time.Duration
}

func (m *objectServiceMock) IssueUploadURL(ctx context.Context) (string, error) {
	return m.uploadURL, m.uploadErr
}

func (m *objectServiceMock) Resolve(ctx context.Context, logicalPath string) (*objectstore.ObjectInfo, error) {
	m.resolvedPath = logicalPath
	if m.resolveErr != nil {
		return nil, m.resolveErr
	}
	return &objectstore.ObjectInfo{Bucket: "bucket", Key: "private/x"}, nil
}

func (m *objectServiceMock) SearchPublic(ctx context.Context, filePath string) (*objectstore.ObjectInfo, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return &objectstore.ObjectInfo{Bucket: "bucket", Key: "public" + filePath}, nil
}

func (m *objectServiceMock) CanAccess(ctx context.Context, info *objectstore.ObjectInfo, userID string, permission acl.Permission) (bool, error) {
	m.lastUser = userID
	return m.allowed, nil
}

func (m *objectServiceMock) Download(ctx context.Context, w http.ResponseWriter, info *objectstore.ObjectInfo, cacheTTL time.Duration) error {
	m.downloadTTL = cacheTTL
	if m.partial {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("par"))
		return errors.New("connection reset")
	}
	if m.downloadErr != nil {
		return m.downloadErr
	}
	w.WriteHeader(http.StatusOK)
	_, err := w.Write([]byte("bytes"))
	return err
}

func newObjectContext(method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, target, nil)
	c.Request = req
	return c, w
}

func TestObjectHandlerUpload(t *testing.T) {
	handler := NewObjectHandler(&objectServiceMock{uploadURL: "https://signed.example/put"}, time.Hour, nil)
	c, w := newObjectContext(http.MethodPost, "/api/objects/upload")
	handler.Upload(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uploadURL":"https://signed.example/put"}`, w.Body.String())
}

func TestObjectHandlerUploadConfigError(t *testing.T) {
	handler := NewObjectHandler(&objectServiceMock{uploadErr: appErrors.ErrConfiguration}, time.Hour, nil)
	c, w := newObjectContext(http.MethodPost, "/api/objects/upload")
	handler.Upload(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestObjectHandlerDownloadAllowed(t *testing.T) {
	mockSvc := &objectServiceMock{allowed: true}
	handler := NewObjectHandler(mockSvc, time.Hour, nil)
	c, w := newObjectContext(http.MethodGet, "/objects/uploads/abc")
	c.Params = gin.Params{{Key: "objectPath", Value: "/uploads/abc"}}
	c.Set(middleware.ContextUserKey, "user-1")
	handler.Download(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/objects/uploads/abc", mockSvc.resolvedPath)
	assert.Equal(t, "user-1", mockSvc.lastUser)
	assert.Equal(t, time.Hour, mockSvc.downloadTTL)
	assert.Equal(t, "bytes", w.Body.String())
}

func TestObjectHandlerDownloadDeniedLooksMissing(t *testing.T) {
	handler := NewObjectHandler(&objectServiceMock{allowed: false}, time.Hour, nil)
	c, w := newObjectContext(http.MethodGet, "/objects/uploads/abc")
	c.Params = gin.Params{{Key: "objectPath", Value: "/uploads/abc"}}
	handler.Download(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestObjectHandlerDownloadMissing(t *testing.T) {
	handler := NewObjectHandler(&objectServiceMock{resolveErr: appErrors.ErrNotFound}, time.Hour, nil)
	c, w := newObjectContext(http.MethodGet, "/objects/nope")
	c.Params = gin.Params{{Key: "objectPath", Value: "/nope"}}
	handler.Download(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestObjectHandlerDownloadFailsBeforeBytes(t *testing.T) {
	handler := NewObjectHandler(&objectServiceMock{allowed: true, downloadErr: appErrors.ErrInternal}, time.Hour, nil)
	c, w := newObjectContext(http.MethodGet, "/objects/x")
	c.Params = gin.Params{{Key: "objectPath", Value: "/x"}}
	handler.Download(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestObjectHandlerDownloadFailsMidStream(t *testing.T) {
	handler := NewObjectHandler(&objectServiceMock{allowed: true, partial: true}, time.Hour, nil)
	c, w := newObjectContext(http.MethodGet, "/objects/x")
	c.Params = gin.Params{{Key: "objectPath", Value: "/x"}}
	handler.Download(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "par", w.Body.String())
	assert.True(t, c.IsAborted())
}

func TestObjectHandlerPublicDownload(t *testing.T) {
	handler := NewObjectHandler(&objectServiceMock{}, time.Hour, nil)
	c, w := newObjectContext(http.MethodGet, "/public-objects/logo.png")
	c.Params = gin.Params{{Key: "filePath", Value: "/logo.png"}}
	handler.PublicDownload(c)
	assert.Equal(t, http.StatusOK, w.Code)

	handler = NewObjectHandler(&objectServiceMock{searchErr: appErrors.ErrNotFound}, time.Hour, nil)
	c, w = newObjectContext(http.MethodGet, "/public-objects/missing.png")
	c.Params = gin.Params{{Key: "filePath", Value: "/missing.png"}}
	handler.PublicDownload(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type pingerStub struct{ err error }

func (p pingerStub) Ping(ctx context.Context) error { return p.err }

func TestMetricsHandlerReady(t *testing.T) {
	handler := NewMetricsHandler(nil, pingerStub{}, nil)
	c, w := newObjectContext(http.MethodGet, "/ready")
	handler.Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)

	handler = NewMetricsHandler(nil, pingerStub{err: errors.New("down")}, nil)
	c, w = newObjectContext(http.MethodGet, "/ready")
	handler.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
