package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gigadrive/gigadrive/services"
	"github.com/gigadrive/gigadrive/utils"
)

// respondServiceError translates service sentinel failures into the
// HTTP error taxonomy. Nothing escapes unhandled: unknown errors become
// a generic 500 with the action as message.
func respondServiceError(ctx *gin.Context, action string, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.Error(ctx, http.StatusBadRequest, action, err.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, action, err.Error())
	case errors.Is(err, services.ErrForbidden):
		utils.Error(ctx, http.StatusForbidden, "access denied", err.Error())
	case errors.Is(err, services.ErrConflict):
		utils.Error(ctx, http.StatusConflict, action, err.Error())
	case errors.Is(err, services.ErrPartialDelete):
		// Distinct from a plain 500: some blobs may be gone already and
		// the caller must retry to finish the removal.
		utils.Error(ctx, http.StatusInternalServerError,
			"error deleting folder, some files may have been deleted",
			"please retry to make sure all files are removed")
	default:
		utils.Sugar.Errorf("%s: %v", action, err)
		utils.Error(ctx, http.StatusInternalServerError, action, err.Error())
	}
}

// normalizeFolderID maps the empty string and the "root" sentinel to a
// nil scope; anything else is a real folder id.
func normalizeFolderID(raw string) *string {
	if raw == "" || raw == services.RootFolderID {
		return nil
	}
	return &raw
}
