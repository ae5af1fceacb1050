package marathons

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/recepoint/backend/pkg/response"
	"github.com/recepoint/backend/pkg/storage"
)

// ImageUploadURLRequest is the body for POST /marathonImageUploadUrl.
type ImageUploadURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type"`
	FileSize    int64  `json:"file_size" binding:"required,gt=0"`
}

// GenerateImageUploadURL handles POST /marathonImageUploadUrl (gated).
// Returns a presigned PUT URL so the browser uploads the cover image
// directly to S3; the returned public URL goes into the marathon's image field.
func (h *Handler) GenerateImageUploadURL(s3 *storage.S3) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s3 == nil {
			response.ServiceUnavailable(c, "image upload not configured")
			return
		}
		var req ImageUploadURLRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request: "+err.Error())
			return
		}
		if req.FileSize > storage.MaxImageFileSize {
			response.BadRequest(c, "file size exceeds 5MB limit")
			return
		}
		if !storage.ValidateImageFileType(req.ContentType, req.Filename) {
			response.BadRequest(c, "invalid file type: only jpg, png and webp images allowed")
			return
		}

		contentType := storage.ContentTypeForFilename(req.Filename)
		if req.ContentType != "" {
			if _, ok := storage.AllowedImageTypes[req.ContentType]; ok {
				contentType = req.ContentType
			}
		}

		// Random prefix so uploads for the same filename never collide.
		key := storage.ImageKey(uuid.New().String(), req.Filename)
		url, err := s3.GeneratePresignedUploadURL(c.Request.Context(), s3.ImagesBucket(), key, contentType, s3.PresignExpire())
		if err != nil {
			h.logger.Error("generate presigned upload URL failed", zap.Error(err), zap.String("bucket", s3.ImagesBucket()))
			response.Internal(c, "image upload unavailable")
			return
		}

		response.OK(c, gin.H{
			"upload_url":   url,
			"s3_key":       key,
			"content_type": contentType,
			"image_url":    s3.PublicObjectURL(s3.ImagesBucket(), key),
		})
	}
}
