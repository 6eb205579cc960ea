package main

import (
	"github.com/gigadrive/gigadrive/config"
	"github.com/gigadrive/gigadrive/models"
	"github.com/gigadrive/gigadrive/routes"
	"github.com/gigadrive/gigadrive/storage"
	"github.com/gigadrive/gigadrive/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.User{}, &models.Folder{}, &models.File{})

	store, err := storage.NewS3Store(cfg)
	if err != nil {
		utils.Sugar.Fatalf("object store init failed: %v", err)
	}

	r := routes.SetupRouter(db, store)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
