package utils

import "github.com/gin-gonic/gin"

// JSONResponse defines the uniform structure for API responses.
type JSONResponse struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Respond writes a JSON response with the given status code.
func Respond(ctx *gin.Context, status int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// Success returns a 200 response with a payload.
func Success(ctx *gin.Context, message string, data interface{}) {
	Respond(ctx, 200, message, data)
}

// Created returns a 201 response with a payload.
func Created(ctx *gin.Context, message string, data interface{}) {
	Respond(ctx, 201, message, data)
}

// Error returns an error response with an explanatory detail string.
func Error(ctx *gin.Context, status int, message string, detail string) {
	ctx.JSON(status, JSONResponse{
		Status:  status,
		Message: message,
		Error:   detail,
	})
}
