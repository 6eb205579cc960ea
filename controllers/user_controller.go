package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gigadrive/gigadrive/models"
	"github.com/gigadrive/gigadrive/utils"
)

// UserController handles identity records: registration, lookup and
// credential updates.
type UserController struct {
	db *gorm.DB
}

// NewUserController creates the controller.
func NewUserController(db *gorm.DB) *UserController {
	return &UserController{db: db}
}

func publicUser(u *models.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"email":      u.Email,
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	}
}

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Create registers a new identity with a case-normalized unique email.
func (u *UserController) Create(ctx *gin.Context) {
	var req createUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		utils.Error(ctx, http.StatusBadRequest, "email and password are required", "")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Sugar.Errorf("password hash: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "error creating user", "")
		return
	}

	user := models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
	}
	if err := u.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Error(ctx, http.StatusConflict, "email already in use", "")
			return
		}
		utils.Sugar.Errorf("user create: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, "error creating user", "")
		return
	}

	utils.Created(ctx, "user created", publicUser(&user))
}

// List returns the first users with public fields only.
func (u *UserController) List(ctx *gin.Context) {
	var users []models.User
	if err := u.db.Limit(10).Find(&users).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "error fetching users", err.Error())
		return
	}
	out := make([]gin.H, 0, len(users))
	for i := range users {
		out = append(out, publicUser(&users[i]))
	}
	utils.Success(ctx, "ok", out)
}

// Get returns one user's public fields.
func (u *UserController) Get(ctx *gin.Context) {
	var user models.User
	err := u.db.Where("id = ?", ctx.Param("id")).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, "user not found", "")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "error fetching user", err.Error())
		return
	}
	utils.Success(ctx, "ok", publicUser(&user))
}

type updateUserRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	NewPassword string `json:"new_password"`
}

// Update changes email and/or password after verifying the current
// password. The new password must differ from the current one.
func (u *UserController) Update(ctx *gin.Context) {
	var req updateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request body", "")
		return
	}
	if req.Email == "" && req.NewPassword == "" {
		utils.Error(ctx, http.StatusBadRequest, "provide at least one field to update", "")
		return
	}
	if req.Password == "" {
		utils.Error(ctx, http.StatusBadRequest, "current password is required", "")
		return
	}

	var user models.User
	err := u.db.Where("id = ?", ctx.Param("id")).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, "user not found", "")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "error updating user", err.Error())
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusBadRequest, "current password is incorrect", "")
		return
	}

	if req.Email != "" {
		user.Email = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if req.NewPassword != "" {
		if req.NewPassword == req.Password {
			utils.Error(ctx, http.StatusBadRequest, "new password must differ from the current one", "")
			return
		}
		hash, err := utils.HashPassword(req.NewPassword)
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, "error updating user", "")
			return
		}
		user.PasswordHash = hash
	}

	user.Revision++
	if err := u.db.Save(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Error(ctx, http.StatusConflict, "email already in use", "")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "error updating user", err.Error())
		return
	}

	utils.Success(ctx, "user updated", publicUser(&user))
}
