package upload

import (
	"github.com/chatterspace/mediahub/internal/server/media"
	"github.com/chatterspace/mediahub/internal/server/upload"
)

type InitiateUploadRequest struct {
	FileName string `json:"fileName" binding:"required"`
	FileType string `json:"filetype" binding:"required"`
}

type InitiateUploadResponse struct {
	Success  bool             `json:"success"`
	Response InitiatedSession `json:"response"`
}

type InitiatedSession struct {
	UploadID string `json:"uploadId"`
	Key      string `json:"key"`
}

type PresignedURLsRequest struct {
	FileName  string `json:"fileName" binding:"required"`
	UploadID  string `json:"uploadId" binding:"required"`
	FileType  string `json:"filetype" binding:"required"`
	NumChunks int    `json:"numChunks" binding:"required,min=1,max=10000"`
}

type PresignedURLsResponse struct {
	Success bool     `json:"success"`
	URLs    []string `json:"urls"`
}

type CompleteUploadRequest struct {
	FileName string `json:"fileName" binding:"required"`
	UploadID string `json:"uploadId" binding:"required"`
	FileType string `json:"filetype"`
}

type CompleteUploadResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Data    *upload.ObjectInfo `json:"data"`
}

type AbortUploadRequest struct {
	FileName string `json:"fileName" binding:"required"`
	UploadID string `json:"uploadId" binding:"required"`
}

type ChunkUploadRequest struct {
	FileName string `form:"fileName" binding:"required"`
	FileType string `form:"filetype" binding:"required"`
	Index    *int   `form:"index" binding:"required,min=0"`
}

type ChunkUploadResponse struct {
	Success bool         `json:"success"`
	Data    *upload.Part `json:"data"`
}

type DownloadRequest struct {
	Key string `json:"key" binding:"required"`
}

type DownloadResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}

type DeleteRequest struct {
	Key string `json:"key" binding:"required"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type MediaListResponse struct {
	Success bool               `json:"success"`
	Media   []*media.MediaInfo `json:"media"`
}
