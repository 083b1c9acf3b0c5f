package upload

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chatterspace/mediahub/internal/server/handlers/api"
)

// GeneratePresignedURLs issues one part-write URL per chunk. urls[i] is bound
// to part number i+1, so the caller can upload chunks in any order.
func (h *UploadHandler) GeneratePresignedURLs(ctx *gin.Context) {
	var req PresignedURLsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		api.AbortWithValidationError(ctx, err)
		return
	}

	urls, err := h.uploads.AuthorizeParts(ctx, req.FileName, req.UploadID, req.FileType, req.NumChunks)
	if err != nil {
		abortWithServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, &PresignedURLsResponse{
		Success: true,
		URLs:    urls,
	})
}
