package controller

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"readearn-backend/logic"
	"readearn-backend/models"
)

// UserController handles user account requests
type UserController struct {
	userLogic *logic.UserLogic
}

func NewUserController(userLogic *logic.UserLogic) *UserController {
	return &UserController{userLogic: userLogic}
}

// GetUser handles GET /user. The record is created on first authenticated
// contact.
func (c *UserController) GetUser(ctx *gin.Context) {
	uid, email, err := extractUserUID(ctx)
	if err != nil {
		return
	}

	user, err := c.userLogic.EnsureUser(ctx.Request.Context(), uid, email)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, gin.H{"user": user})
}

// Promote handles POST /admin/promote
func (c *UserController) Promote(ctx *gin.Context) {
	type Request struct {
		UID    string `json:"uid" binding:"required"`
		Secret string `json:"secret" binding:"required"`
	}
	var req Request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondError(ctx, fmt.Errorf("%w: uid and secret are required", models.ErrValidation))
		return
	}

	if err := c.userLogic.PromoteToAdmin(ctx.Request.Context(), req.UID, req.Secret); err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, gin.H{"message": "user promoted to admin"})
}
