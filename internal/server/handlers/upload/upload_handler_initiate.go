package upload

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chatterspace/mediahub/internal/server/handlers/api"
)

// InitiateUpload opens a new upload session and returns its backend-issued ID.
func (h *UploadHandler) InitiateUpload(ctx *gin.Context) {
	var req InitiateUploadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		api.AbortWithValidationError(ctx, err)
		return
	}

	uploadID, err := h.uploads.Initiate(ctx, req.FileName, req.FileType)
	if err != nil {
		abortWithServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, &InitiateUploadResponse{
		Success: true,
		Response: InitiatedSession{
			UploadID: uploadID,
			Key:      req.FileName,
		},
	})
}
