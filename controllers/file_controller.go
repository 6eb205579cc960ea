package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gigadrive/gigadrive/middleware"
	"github.com/gigadrive/gigadrive/services"
	"github.com/gigadrive/gigadrive/utils"
)

// FileController exposes the file registry over HTTP.
type FileController struct {
	files *services.FileService
}

// NewFileController creates the controller.
func NewFileController(files *services.FileService) *FileController {
	return &FileController{files: files}
}

// Upload stores a multipart batch of files, optionally into a folder.
// Files whose storage key already exists are silently skipped; the
// response says when that happened.
func (f *FileController) Upload(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)

	form, err := ctx.MultipartForm()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, "no files sent", "at least one file is required")
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		utils.Error(ctx, http.StatusBadRequest, "no files sent", "at least one file is required")
		return
	}

	folderID := normalizeFolderID(ctx.PostForm("folder_id"))

	batch := make([]services.Incoming, 0, len(headers))
	for _, h := range headers {
		src, err := h.Open()
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, "error reading upload", err.Error())
			return
		}
		defer src.Close()
		batch = append(batch, services.Incoming{
			Name:     h.Filename,
			MimeType: h.Header.Get("Content-Type"),
			Size:     h.Size,
			Body:     src,
		})
	}

	result, err := f.files.Upload(ctx.Request.Context(), userID, folderID, batch)
	if err != nil {
		respondServiceError(ctx, "error uploading files", err)
		return
	}

	message := "files uploaded successfully"
	if result.Skipped > 0 {
		message = "some files already exist and were not duplicated, check the file names and try again"
	}
	utils.Created(ctx, message, gin.H{
		"uploaded": len(result.Stored),
		"skipped":  result.Skipped,
	})
}

// Get returns one file with a live access URL.
func (f *FileController) Get(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)

	file, err := f.files.Get(ctx.Request.Context(), userID, ctx.Param("fileId"))
	if err != nil {
		respondServiceError(ctx, "error fetching file", err)
		return
	}

	utils.Success(ctx, "ok", fileJSON(file))
}

// List returns all of the caller's files.
func (f *FileController) List(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)

	files, err := f.files.List(ctx.Request.Context(), userID)
	if err != nil {
		respondServiceError(ctx, "error fetching files", err)
		return
	}

	out := make([]gin.H, 0, len(files))
	for i := range files {
		out = append(out, fileJSON(&files[i]))
	}
	utils.Success(ctx, "ok", gin.H{"files": out})
}

type fileRenameRequest struct {
	Name string `json:"name"`
}

// Rename changes a file's display name, keeping its extension.
func (f *FileController) Rename(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)

	var req fileRenameRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request body", "")
		return
	}

	file, err := f.files.Rename(ctx.Request.Context(), userID, ctx.Param("fileId"), req.Name)
	if err != nil {
		respondServiceError(ctx, "error renaming file", err)
		return
	}

	utils.Success(ctx, "file renamed", fileJSON(file))
}

type fileMoveRequest struct {
	FolderID string `json:"folder_id"`
}

// Move changes a file's folder placement.
func (f *FileController) Move(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)

	var req fileMoveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request body", "")
		return
	}

	file, err := f.files.Move(ctx.Request.Context(), userID, ctx.Param("fileId"), normalizeFolderID(req.FolderID))
	if err != nil {
		respondServiceError(ctx, "error moving file", err)
		return
	}

	utils.Success(ctx, "file moved", fileJSON(file))
}

// Delete removes a file and its blob.
func (f *FileController) Delete(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)

	if err := f.files.Delete(ctx.Request.Context(), userID, ctx.Param("fileId")); err != nil {
		respondServiceError(ctx, "error deleting file", err)
		return
	}

	utils.Success(ctx, "file deleted", nil)
}
