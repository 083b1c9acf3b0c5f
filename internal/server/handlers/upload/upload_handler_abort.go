package upload

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chatterspace/mediahub/internal/server/handlers/api"
)

// AbortUpload discards all received parts for a session.
func (h *UploadHandler) AbortUpload(ctx *gin.Context) {
	var req AbortUploadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		api.AbortWithValidationError(ctx, err)
		return
	}

	if err := h.uploads.Abort(ctx, req.FileName, req.UploadID); err != nil {
		abortWithServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, &MessageResponse{
		Success: true,
		Message: "upload aborted",
	})
}
