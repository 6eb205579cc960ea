package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gigadrive/gigadrive/middleware"
	"github.com/gigadrive/gigadrive/models"
	"github.com/gigadrive/gigadrive/utils"
)

// AuthController handles login, logout and identity echo.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates the controller.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and issues a bearer token.
func (a *AuthController) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		utils.Error(ctx, http.StatusBadRequest, "email and password are required", "")
		return
	}

	var user models.User
	err := a.db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusUnauthorized, "user not found", "")
		return
	}
	if err != nil {
		utils.Sugar.Errorf("login lookup: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "internal server error", "")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, "invalid password", "")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, utils.TokenDuration)
	if err != nil {
		utils.Sugar.Errorf("token generation: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "internal server error", "")
		return
	}

	utils.Success(ctx, "ok", gin.H{
		"user":  gin.H{"id": user.ID, "email": user.Email},
		"token": token,
	})
}

// Logout revokes the presented token until its natural expiry.
func (a *AuthController) Logout(ctx *gin.Context) {
	tokenVal, ok := ctx.Get(middleware.ContextTokenKey)
	token, _ := tokenVal.(string)
	if !ok || token == "" {
		utils.Error(ctx, http.StatusUnauthorized, "token not provided", "")
		return
	}

	claims, err := utils.ParseToken(token)
	if err == nil && claims.ExpiresAt != nil {
		utils.BlacklistToken(token, claims.ExpiresAt.Time)
	}
	utils.Success(ctx, "logged out", nil)
}

// Me echoes the authenticated identity.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	email, _ := ctx.Get(middleware.ContextEmailKey)
	utils.Success(ctx, "ok", gin.H{"id": userID, "email": email})
}
