package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bondst/guitarvault/internal/acl"
	"github.com/bondst/guitarvault/internal/models"
	appErrors "github.com/bondst/guitarvault/pkg/errors"
	"github.com/bondst/guitarvault/pkg/objectstore"
	"github.com/bondst/guitarvault/pkg/response"
)

var errObjectHidden = appErrors.Clone(appErrors.ErrNotFound, "object not found")

type objectService interface {
	IssueUploadURL(ctx context.Context) (string, error)
	Resolve(ctx context.Context, logicalPath string) (*objectstore.ObjectInfo, error)
	SearchPublic(ctx context.Context, filePath string) (*objectstore.ObjectInfo, error)
	CanAccess(ctx context.Context, info *objectstore.ObjectInfo, userID string, permission acl.Permission) (bool, error)
	Download(ctx context.Context, w http.ResponseWriter, info *objectstore.ObjectInfo, cacheTTL time.Duration) error
}

// ObjectHandler serves image uploads and gated downloads.
type ObjectHandler struct {
	service  objectService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewObjectHandler builds a new handler.
func NewObjectHandler(service objectService, cacheTTL time.Duration, logger *zap.Logger) *ObjectHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ObjectHandler{service: service, cacheTTL: cacheTTL, logger: logger}
}

// Upload godoc
// @Summary Issue a signed upload URL
// @Tags Objects
// @Produce json
// @Success 200 {object} models.UploadURL
// @Failure 500 {object} response.ErrorBody
// @Router /api/objects/upload [post]
func (h *ObjectHandler) Upload(c *gin.Context) {
	uploadURL, err := h.service.IssueUploadURL(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, models.UploadURL{UploadURL: uploadURL})
}

// Download streams an uploaded object when the caller may read it. Denied reads answer 404.
func (h *ObjectHandler) Download(c *gin.Context) {
	ctx := c.Request.Context()
	info, err := h.service.Resolve(ctx, "/objects"+c.Param("objectPath"))
	if err != nil {
		response.Error(c, err)
		return
	}
	allowed, err := h.service.CanAccess(ctx, info, callerID(c), acl.PermissionRead)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !allowed {
		response.Error(c, errObjectHidden)
		return
	}
	h.stream(c, info)
}

// PublicDownload streams the first match for filePath under the public roots.
func (h *ObjectHandler) PublicDownload(c *gin.Context) {
	info, err := h.service.SearchPublic(c.Request.Context(), c.Param("filePath"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.stream(c, info)
}

func (h *ObjectHandler) stream(c *gin.Context, info *objectstore.ObjectInfo) {
	err := h.service.Download(c.Request.Context(), c.Writer, info, h.cacheTTL)
	if err == nil {
		return
	}
	if c.Writer.Written() {
		h.logger.Warn("object stream interrupted", zap.String("bucket", info.Bucket), zap.String("key", info.Key), zap.Error(err))
		c.Abort()
		return
	}
	response.Error(c, err)
}
