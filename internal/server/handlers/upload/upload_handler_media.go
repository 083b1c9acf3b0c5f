package upload

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chatterspace/mediahub/internal/server/handlers/api"
)

// ListMedia returns the caller's completed objects, newest first.
func (h *UploadHandler) ListMedia(ctx *gin.Context) {
	owner := ctx.GetString(userContextKey)

	items, err := h.media.ListByOwner(owner)
	if err != nil {
		api.AbortWithError(ctx, http.StatusInternalServerError, api.CodeMediaListFailed, err)
		return
	}

	ctx.JSON(http.StatusOK, &MediaListResponse{
		Success: true,
		Media:   items,
	})
}
