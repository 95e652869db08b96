package dao

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"readearn-backend/models"
)

// ArticleDAO handles article-related database operations
type ArticleDAO struct {
	db *gorm.DB
}

func NewArticleDAO(db *gorm.DB) *ArticleDAO {
	return &ArticleDAO{db: db}
}

func (d *ArticleDAO) Get(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	var article models.Article
	if err := d.db.WithContext(ctx).First(&article, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &article, nil
}

func (d *ArticleDAO) ListActive(ctx context.Context) ([]models.Article, error) {
	var articles []models.Article
	err := d.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at DESC").
		Find(&articles).Error
	if err != nil {
		return nil, translateError(err)
	}
	return articles, nil
}

// IncrementViews bumps the view counter by exactly one.
func (d *ArticleDAO) IncrementViews(ctx context.Context, id uuid.UUID) error {
	res := d.db.WithContext(ctx).Model(&models.Article{}).
		Where("id = ?", id).
		Update("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}
