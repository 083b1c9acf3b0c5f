package upload

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chatterspace/mediahub/internal/server/handlers/api"
)

// Delete removes a stored object and its index record.
func (h *UploadHandler) Delete(ctx *gin.Context) {
	var req DeleteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		api.AbortWithValidationError(ctx, err)
		return
	}

	if err := h.uploads.Delete(ctx, req.Key); err != nil {
		abortWithServiceError(ctx, err)
		return
	}

	if err := h.media.Remove(req.Key); err != nil {
		slog.Warn("media index remove failed", "key", req.Key, "error", err)
	}

	ctx.JSON(http.StatusOK, &MessageResponse{
		Success: true,
		Message: "media deleted",
	})
}
