package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ViewKindSelf    = "self"
	ViewKindShared  = "shared"
	ViewKindUnknown = "unknown"
)

// ViewEvent is one accepted view. Events are append-only: they are never
// updated or deleted, and they are the index the duplicate detector reads.
// The composite indexes back the three keyed recency lookups.
type ViewEvent struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ArticleID     uuid.UUID `gorm:"type:uuid;not null;index:idx_views_article_ip,priority:1;index:idx_views_article_fp,priority:1;index:idx_views_article_ben,priority:1" json:"article_id"`
	BeneficiaryID *string   `gorm:"index:idx_views_article_ben,priority:2" json:"beneficiary_id"`
	IP            string    `gorm:"not null;index:idx_views_article_ip,priority:2" json:"ip"`
	Fingerprint   *string   `gorm:"index:idx_views_article_fp,priority:2" json:"fingerprint"`
	ViewKind      string    `gorm:"not null;default:unknown" json:"view_kind"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

func (v *ViewEvent) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// NormalizeViewKind maps arbitrary client input onto a known kind.
func NormalizeViewKind(kind string) string {
	switch kind {
	case ViewKindSelf, ViewKindShared:
		return kind
	default:
		return ViewKindUnknown
	}
}
