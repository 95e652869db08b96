package controller

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"readearn-backend/logic"
	"readearn-backend/models"
)

// ViewController handles view submissions
type ViewController struct {
	viewLogic *logic.ViewLogic
}

func NewViewController(viewLogic *logic.ViewLogic) *ViewController {
	return &ViewController{viewLogic: viewLogic}
}

// RecordView handles POST /views
func (c *ViewController) RecordView(ctx *gin.Context) {
	type Request struct {
		ArticleID     string `json:"articleId" binding:"required"`
		BeneficiaryID string `json:"beneficiaryId"`
		Fingerprint   string `json:"fingerprint"`
		ViewKind      string `json:"viewKind"`
	}
	var req Request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondError(ctx, fmt.Errorf("%w: articleId is required", models.ErrValidation))
		return
	}

	articleID, err := uuid.Parse(req.ArticleID)
	if err != nil {
		respondError(ctx, fmt.Errorf("%w: invalid articleId", models.ErrValidation))
		return
	}

	receipt, err := c.viewLogic.RecordView(ctx.Request.Context(), logic.ViewSubmission{
		ArticleID:     articleID,
		BeneficiaryID: req.BeneficiaryID,
		IP:            ctx.ClientIP(),
		Fingerprint:   req.Fingerprint,
		Kind:          req.ViewKind,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	payload := gin.H{"earned": receipt.Credited}
	if receipt.Duplicate {
		payload["message"] = "cooldown active"
	}
	respondOK(ctx, payload)
}
