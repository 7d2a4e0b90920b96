package router

import (
	"VidVault/internal/handler"
	"VidVault/internal/middleware"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
)

// Options 路由的可选配置
type Options struct {
	// MaxBodyBytes 上传接口的请求体上限，<=0 表示不限制
	MaxBodyBytes int64
	// MediaDir 非空时在/media/下提供本地媒体文件
	MediaDir string
}

func SetupRouter(videoHandler handler.VideoHandler, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pang",
		})
	})

	if opts.MediaDir != "" {
		r.Static("/media", opts.MediaDir)
	}

	api := r.Group("/api")
	{
		api.GET("/videos", videoHandler.ListVideos)
		api.GET("/videos/:id", videoHandler.GetVideoByID)

		upload := api.Group("/")
		if opts.MaxBodyBytes > 0 {
			upload.Use(middleware.BodyLimit(opts.MaxBodyBytes))
		}
		upload.POST("/videos", videoHandler.CreateVideo)
	}

	return r
}

// WithCORS 在gin之外包一层CORS，预检请求不会进入gin的路由
func WithCORS(h http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})(h)
}
