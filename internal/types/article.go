package types

import (
	"time"

	"github.com/google/uuid"
)

// ScratchTitle is the placeholder title of the transient article used to
// anchor references while a user is still composing.
const ScratchTitle = "TMP"

type Article struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string       `gorm:"uniqueIndex;not null;column:title" json:"title"`
	Synthesis    string       `gorm:"type:text;column:synthesis" json:"synthesis"`
	CreationDate time.Time    `gorm:"index;column:creation_date" json:"creation_date"`
	UpdateDate   time.Time    `gorm:"index;column:update_date" json:"update_date"`
	UserID       uuid.UUID    `gorm:"index;not null;column:user_id" json:"user_id"`
	User         *User        `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	References   []*Reference `gorm:"constraint:OnDelete:CASCADE;foreignKey:ArticleID;references:ID" json:"-"`
}

func (Article) TableName() string {
	return "article"
}

func (a *Article) ToDict() map[string]interface{} {
	references := make([]string, 0, len(a.References))
	for _, ref := range a.References {
		references = append(references, ref.Description)
	}
	return map[string]interface{}{
		"id":            a.ID.String(),
		"title":         a.Title,
		"synthesis":     a.Synthesis,
		"creation_date": a.CreationDate.UTC().Format(time.RFC3339),
		"update_date":   a.UpdateDate.UTC().Format(time.RFC3339),
		"user_id":       a.UserID.String(),
		"references":    references,
	}
}

// FromDict applies title/synthesis. CreationDate is set only when the
// article is new; UpdateDate moves on every application.
func (a *Article) FromDict(data map[string]interface{}, newArticle bool) {
	if title, ok := data["title"].(string); ok {
		a.Title = title
	}
	if synthesis, ok := data["synthesis"].(string); ok {
		a.Synthesis = synthesis
	}
	now := time.Now().UTC()
	if newArticle {
		a.CreationDate = now
	}
	a.UpdateDate = now
}
