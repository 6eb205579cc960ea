package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gigadrive/gigadrive/config"
	"github.com/gigadrive/gigadrive/controllers"
	"github.com/gigadrive/gigadrive/middleware"
	"github.com/gigadrive/gigadrive/services"
	"github.com/gigadrive/gigadrive/storage"
	"github.com/gigadrive/gigadrive/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, store storage.ObjectStore) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap access log
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl))
		r.Use(utils.RecoveryWithZap(gl))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, "ok", gin.H{"status": "ok"})
	})

	folderService := services.NewFolderService(db, store)
	fileService := services.NewFileService(db, store)

	authController := controllers.NewAuthController(db)
	userController := controllers.NewUserController(db)
	folderController := controllers.NewFolderController(folderService)
	fileController := controllers.NewFileController(fileService)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	// Registration stays open; everything else needs a bearer token.
	api.POST("/users", middleware.RateLimitMiddleware(), userController.Create)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired())

	protected.GET("/users", userController.List)
	protected.GET("/users/:id", userController.Get)
	protected.PUT("/users/:id", userController.Update)

	protected.POST("/files/upload", fileController.Upload)
	protected.GET("/files", fileController.List)
	protected.GET("/files/:fileId", fileController.Get)
	protected.DELETE("/files/:fileId", fileController.Delete)
	protected.PUT("/files/:fileId/rename", fileController.Rename)
	protected.PUT("/files/:fileId/move", fileController.Move)

	protected.POST("/folders", folderController.Create)
	protected.GET("/folders/:folderId", folderController.Contents)
	protected.PUT("/folders/:folderId/rename", folderController.Rename)
	protected.DELETE("/folders/:folderId", folderController.Delete)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, "route not found", "")
	})

	return r
}
