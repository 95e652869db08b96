package controller

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"readearn-backend/logic"
	"readearn-backend/models"
)

// ArticleController serves the read-only article surface
type ArticleController struct {
	store logic.Store
}

func NewArticleController(store logic.Store) *ArticleController {
	return &ArticleController{store: store}
}

// List handles GET /articles
func (c *ArticleController) List(ctx *gin.Context) {
	articles, err := c.store.Articles().ListActive(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondOK(ctx, gin.H{"articles": articles})
}

// Get handles GET /articles/:id
func (c *ArticleController) Get(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		respondError(ctx, fmt.Errorf("%w: invalid article id", models.ErrValidation))
		return
	}
	article, err := c.store.Articles().Get(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if !article.Active {
		respondError(ctx, fmt.Errorf("%w: article", models.ErrNotFound))
		return
	}
	respondOK(ctx, gin.H{"article": article})
}
