package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Article is a piece of content readers earn on. Content fields are owned by
// the authoring side; only Views is mutated here.
type Article struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	Thumbnail   string    `json:"thumbnail"`
	Content     string    `json:"content"`
	Views       uint64    `gorm:"not null;default:0" json:"views"`
	Active      bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (a *Article) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
