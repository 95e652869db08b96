package controller

import (
	"errors"
	"net/http"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"

	"readearn-backend/models"
)

// respondOK writes the success envelope. Business-rule outcomes, including
// suppressed duplicates, always travel in a 200 response.
func respondOK(ctx *gin.Context, payload gin.H) {
	if payload == nil {
		payload = gin.H{}
	}
	payload["success"] = true
	ctx.JSON(http.StatusOK, payload)
}

// respondError maps the error taxonomy onto the wire. Business failures keep
// status 200 with success=false; authorization failures are 403; anything
// unrecognized collapses to a uniform 500 so no storage error leaks.
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrUnauthorized):
		ctx.JSON(http.StatusForbidden, gin.H{"success": false, "error": "unauthorized"})
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrNotFound),
		errors.Is(err, models.ErrConflict),
		errors.Is(err, models.ErrTxConflict),
		errors.Is(err, models.ErrInsufficientBalance):
		ctx.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "service unavailable"})
	}
}

func extractUserUID(c *gin.Context) (string, string, error) {
	userClaims, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "user not found in context"})
		return "", "", errors.New("user not found in context")
	}

	claims, ok := userClaims.(jwt.MapClaims)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "invalid user claims"})
		return "", "", errors.New("invalid user claims")
	}

	uid, ok := claims["uid"].(string)
	if !ok || uid == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "uid not found in token"})
		return "", "", errors.New("uid not found in token")
	}

	email, _ := claims["email"].(string)
	return uid, email, nil
}
