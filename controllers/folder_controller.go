package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/gigadrive/gigadrive/middleware"
	"github.com/gigadrive/gigadrive/models"
	"github.com/gigadrive/gigadrive/services"
	"github.com/gigadrive/gigadrive/utils"
)

// FolderController exposes the folder tree over HTTP.
type FolderController struct {
	folders *services.FolderService
}

// NewFolderController creates the controller.
func NewFolderController(folders *services.FolderService) *FolderController {
	return &FolderController{folders: folders}
}

func folderJSON(n *services.FolderNode) gin.H {
	return gin.H{
		"id":         n.Folder.ID,
		"name":       n.Folder.Name,
		"full_path":  n.FullPath,
		"parent_id":  n.Folder.ParentID,
		"created_at": n.Folder.CreatedAt,
	}
}

func fileJSON(f *models.File) gin.H {
	return gin.H{
		"id":            f.ID,
		"access_url":    f.AccessURL,
		"original_name": f.OriginalName,
		"mime_type":     f.MimeType,
		"size":          f.Size,
		"upload_date":   f.UploadDate,
		"folder_id":     f.FolderID,
	}
}

type folderCreateRequest struct {
	Name     string `json:"name"`
	ParentID string `json:"parent_id"`
}

// Create makes a folder, optionally under a parent.
func (f *FolderController) Create(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)

	var req folderCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, 400, "invalid request body", "")
		return
	}

	node, err := f.folders.Create(ctx.Request.Context(), userID, req.Name, normalizeFolderID(req.ParentID))
	if err != nil {
		respondServiceError(ctx, "error creating folder", err)
		return
	}

	utils.Created(ctx, "folder created", folderJSON(node))
}

// Contents lists one folder scope; ":folderId" may be "root".
func (f *FolderController) Contents(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)

	contents, err := f.folders.Contents(ctx.Request.Context(), userID, ctx.Param("folderId"))
	if err != nil {
		respondServiceError(ctx, "error fetching folder contents", err)
		return
	}

	var current gin.H
	if contents.Current != nil {
		current = folderJSON(contents.Current)
	}
	subfolders := make([]gin.H, 0, len(contents.Subfolders))
	for i := range contents.Subfolders {
		subfolders = append(subfolders, folderJSON(&contents.Subfolders[i]))
	}
	files := make([]gin.H, 0, len(contents.Files))
	for i := range contents.Files {
		files = append(files, fileJSON(&contents.Files[i]))
	}

	utils.Success(ctx, "ok", gin.H{
		"current_folder": current,
		"subfolders":     subfolders,
		"files":          files,
	})
}

type folderRenameRequest struct {
	Name string `json:"name"`
}

// Rename changes a folder's name.
func (f *FolderController) Rename(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)

	var req folderRenameRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, 400, "invalid request body", "")
		return
	}

	node, err := f.folders.Rename(ctx.Request.Context(), userID, ctx.Param("folderId"), req.Name)
	if err != nil {
		respondServiceError(ctx, "error renaming folder", err)
		return
	}

	utils.Success(ctx, "folder renamed", folderJSON(node))
}

// Delete removes a folder with everything underneath it.
func (f *FolderController) Delete(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)

	folders, files, err := f.folders.Delete(ctx.Request.Context(), userID, ctx.Param("folderId"))
	if err != nil {
		respondServiceError(ctx, "error deleting folder", err)
		return
	}

	utils.Sugar.Infow("folder deleted", "user", userID, "folders", folders, "files", files)
	utils.Success(ctx, "folder, subfolders and all their contents deleted", gin.H{
		"folders_deleted": folders,
		"files_deleted":   files,
	})
}
