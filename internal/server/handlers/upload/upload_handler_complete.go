package upload

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chatterspace/mediahub/internal/server/handlers/api"
	"github.com/chatterspace/mediahub/internal/server/media"
)

// CompleteUpload finalizes a session. The request body carries no part
// manifest; the storage backend's own record of received parts decides what
// gets stitched.
func (h *UploadHandler) CompleteUpload(ctx *gin.Context) {
	var req CompleteUploadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		api.AbortWithValidationError(ctx, err)
		return
	}

	info, err := h.uploads.Complete(ctx, req.FileName, req.UploadID)
	if err != nil {
		abortWithServiceError(ctx, err)
		return
	}

	// The object is durable at this point; an index write failure must not fail
	// the request.
	if err := h.media.Set(&media.MediaInfo{
		Key:         info.Key,
		Owner:       ctx.GetString(userContextKey),
		ETag:        info.ETag,
		Size:        info.Size,
		ContentType: req.FileType,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		slog.Warn("media index write failed", "key", info.Key, "error", err)
	}

	ctx.JSON(http.StatusOK, &CompleteUploadResponse{
		Success: true,
		Message: "upload completed",
		Data:    info,
	})
}
