package controller

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"readearn-backend/logic"
	"readearn-backend/models"
)

// WithdrawalController handles withdrawal requests and settlement
type WithdrawalController struct {
	withdrawalLogic *logic.WithdrawalLogic
}

func NewWithdrawalController(withdrawalLogic *logic.WithdrawalLogic) *WithdrawalController {
	return &WithdrawalController{withdrawalLogic: withdrawalLogic}
}

// Request handles POST /withdrawals
func (c *WithdrawalController) Request(ctx *gin.Context) {
	uid, _, err := extractUserUID(ctx)
	if err != nil {
		return
	}

	type Request struct {
		UserID  string          `json:"userId"`
		Amount  decimal.Decimal `json:"amount"`
		Method  string          `json:"method" binding:"required"`
		Details string          `json:"details"`
	}
	var req Request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondError(ctx, fmt.Errorf("%w: amount and method are required", models.ErrValidation))
		return
	}
	// A caller may only request a withdrawal from its own wallet.
	if req.UserID != "" && req.UserID != uid {
		respondError(ctx, models.ErrUnauthorized)
		return
	}

	request, err := c.withdrawalLogic.Request(ctx.Request.Context(), uid, req.Amount, req.Method, req.Details)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, gin.H{"withdrawal": request})
}

// Settle handles POST /withdrawals/settle
func (c *WithdrawalController) Settle(ctx *gin.Context) {
	uid, _, err := extractUserUID(ctx)
	if err != nil {
		return
	}

	type Request struct {
		WithdrawalID  string `json:"withdrawalId" binding:"required"`
		Action        string `json:"action" binding:"required"`
		ActingAdminID string `json:"actingAdminId"`
	}
	var req Request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondError(ctx, fmt.Errorf("%w: withdrawalId and action are required", models.ErrValidation))
		return
	}
	if req.ActingAdminID != "" && req.ActingAdminID != uid {
		respondError(ctx, models.ErrUnauthorized)
		return
	}

	withdrawalID, err := uuid.Parse(req.WithdrawalID)
	if err != nil {
		respondError(ctx, fmt.Errorf("%w: invalid withdrawalId", models.ErrValidation))
		return
	}

	if err := c.withdrawalLogic.Settle(ctx.Request.Context(), withdrawalID, req.Action, uid); err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, gin.H{})
}

// List handles GET /withdrawals
func (c *WithdrawalController) List(ctx *gin.Context) {
	uid, _, err := extractUserUID(ctx)
	if err != nil {
		return
	}

	requests, err := c.withdrawalLogic.List(ctx.Request.Context(), uid, ctx.Query("status"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, gin.H{"withdrawals": requests})
}
