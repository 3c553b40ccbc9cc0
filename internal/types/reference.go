package types

import (
	"github.com/google/uuid"
)

type Reference struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Description string    `gorm:"index;column:description" json:"description"`
	ArticleID   uuid.UUID `gorm:"index;not null;column:article_id" json:"article_id"`
	Article     *Article  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ArticleID;references:ID" json:"-"`
}

func (Reference) TableName() string {
	return "reference"
}
