package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	uploadH "github.com/chatterspace/mediahub/internal/server/handlers/upload"
	"github.com/chatterspace/mediahub/internal/server/middlewares"
	"github.com/chatterspace/mediahub/internal/version"
)

func SetupRoutes(config *Config, svc *Services) http.Handler {
	r := gin.New()
	r.MaxMultipartMemory = 32 << 20 // 32 MiB, chunk payloads buffer here

	handler := uploadH.New(svc.Upload, svc.Media)

	r.Use(middlewares.Logger())
	r.Use(gin.Recovery())
	r.Use(middlewares.GZIP())
	r.Use(middlewares.CORS())

	r.GET("/", IndexHandler)
	r.GET("/healthz", HealthHandler)

	v1 := r.Group("/api/v1")
	v1.Use(middlewares.JWTAuth(svc.Auth))
	v1.Use(middlewares.RateLimiter(config.RateLimit))
	{
		v1.POST("/upload/initiate-upload", handler.InitiateUpload)
		v1.POST("/upload/generate-presigned-url", handler.GeneratePresignedURLs)
		v1.POST("/upload/complete-upload", handler.CompleteUpload)
		v1.PUT("/upload/chunk", handler.UploadChunk)
		v1.POST("/upload/chunk", handler.UploadChunk)
		v1.POST("/upload/abort-upload", handler.AbortUpload)
		v1.POST("/upload/download", handler.Download)
		v1.POST("/upload/delete", handler.Delete)
		v1.GET("/upload/media", handler.ListMedia)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "not found",
		})
	})

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error": "method not allowed",
		})
	})

	return r.Handler()
}

func IndexHandler(ctx *gin.Context) {
	ctx.String(http.StatusOK, version.DetailedWithApp())
}

func HealthHandler(ctx *gin.Context) {
	ctx.PureJSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}
