package upload

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chatterspace/mediahub/internal/server/handlers/api"
	"github.com/chatterspace/mediahub/internal/server/upload"
)

// UploadChunk stores one chunk through the service. The proxy alternative to
// presigned direct-to-backend uploads; the form index is zero-based and maps
// to part number index+1.
func (h *UploadHandler) UploadChunk(ctx *gin.Context) {
	uploadID := ctx.Query("uploadId")
	if uploadID == "" {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeValidationFailed,
			fmt.Errorf("query parameter uploadId is required"))
		return
	}

	var req ChunkUploadRequest
	if err := ctx.ShouldBind(&req); err != nil {
		api.AbortWithValidationError(ctx, err)
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeValidationFailed,
			fmt.Errorf("form file is required: %w", err))
		return
	}

	body, err := fileHeader.Open()
	if err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeValidationFailed,
			fmt.Errorf("failed to open form file: %w", err))
		return
	}
	defer body.Close()

	part, err := h.uploads.UploadChunk(ctx, &upload.UploadPartParams{
		Key:         req.FileName,
		UploadID:    uploadID,
		PartNumber:  int32(*req.Index + 1),
		ContentType: req.FileType,
		Body:        body,
		Size:        fileHeader.Size,
	})
	if err != nil {
		abortWithServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, &ChunkUploadResponse{
		Success: true,
		Data:    part,
	})
}
