package upload

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chatterspace/mediahub/internal/server/handlers/api"
	"github.com/chatterspace/mediahub/internal/server/media"
	"github.com/chatterspace/mediahub/internal/server/upload"
)

const userContextKey = "user"

type UploadHandler struct {
	uploads *upload.Service
	media   *media.MediaIndex
}

func New(uploads *upload.Service, mediaIndex *media.MediaIndex) *UploadHandler {
	return &UploadHandler{
		uploads: uploads,
		media:   mediaIndex,
	}
}

// abortWithServiceError translates coordinator sentinels into the public
// error taxonomy. Unknown errors never leak backend details beyond the message.
func abortWithServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, upload.ErrInvalidKey),
		errors.Is(err, upload.ErrInvalidContentType),
		errors.Is(err, upload.ErrTooManyParts):
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeValidationFailed, err)
	case errors.Is(err, upload.ErrNoPartsUploaded):
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeNoPartsUploaded, err)
	case errors.Is(err, upload.ErrCompletionRejected):
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeCompletionRejected, err)
	case errors.Is(err, upload.ErrAlreadyFinalized):
		api.AbortWithError(ctx, http.StatusConflict, api.CodeUploadFinalized, err)
	case errors.Is(err, upload.ErrChunkUploadFailed):
		api.AbortWithError(ctx, http.StatusBadGateway, api.CodeChunkUploadFailed, err)
	case errors.Is(err, upload.ErrBackendUnavailable):
		api.AbortWithError(ctx, http.StatusBadGateway, api.CodeBackendUnavailable, err)
	default:
		api.AbortWithError(ctx, http.StatusInternalServerError, api.CodeInternalError, err)
	}
}
