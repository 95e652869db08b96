package controller

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"readearn-backend/logic"
	"readearn-backend/models"
)

// SettingsController handles admin settings updates
type SettingsController struct {
	settingsLogic *logic.SettingsLogic
}

func NewSettingsController(settingsLogic *logic.SettingsLogic) *SettingsController {
	return &SettingsController{settingsLogic: settingsLogic}
}

// Update handles PUT /admin/settings
func (c *SettingsController) Update(ctx *gin.Context) {
	uid, _, err := extractUserUID(ctx)
	if err != nil {
		return
	}

	type Request struct {
		EarningPerView       decimal.Decimal `json:"earningPerView"`
		EarningPerSelfView   decimal.Decimal `json:"earningPerSelfView"`
		MinWithdrawal        decimal.Decimal `json:"minWithdrawal"`
		CooldownMinutes      int             `json:"cooldownMinutes"`
		VisitDurationSeconds int             `json:"visitDurationSeconds"`
		PaymentMethods       []string        `json:"paymentMethods"`
	}
	var req Request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondError(ctx, fmt.Errorf("%w: invalid settings payload", models.ErrValidation))
		return
	}
	if req.EarningPerView.IsNegative() || req.EarningPerSelfView.IsNegative() ||
		req.MinWithdrawal.IsNegative() || req.CooldownMinutes < 0 || req.VisitDurationSeconds < 0 {
		respondError(ctx, fmt.Errorf("%w: settings values must not be negative", models.ErrValidation))
		return
	}

	settings := &models.Settings{
		EarningPerView:       req.EarningPerView,
		EarningPerSelfView:   req.EarningPerSelfView,
		MinWithdrawal:        req.MinWithdrawal,
		CooldownMinutes:      req.CooldownMinutes,
		VisitDurationSeconds: req.VisitDurationSeconds,
		PaymentMethods:       req.PaymentMethods,
	}
	if err := c.settingsLogic.Update(ctx.Request.Context(), uid, settings); err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, gin.H{})
}
