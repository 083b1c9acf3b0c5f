package upload

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chatterspace/mediahub/internal/server/handlers/api"
)

// Download issues a time-bounded read URL for a stored object.
func (h *UploadHandler) Download(ctx *gin.Context) {
	var req DownloadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		api.AbortWithValidationError(ctx, err)
		return
	}

	url, err := h.uploads.PresignDownload(ctx, req.Key)
	if err != nil {
		abortWithServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, &DownloadResponse{
		Success: true,
		URL:     url,
	})
}
