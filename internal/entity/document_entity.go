package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document is one indexed source document. Its content is split into chunks
// for embedding; the chunks carry the vectors.
type Document struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title     string
	Source    string `gorm:"index"`
	Content   string `gorm:"type:text"`
	Domain    string `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
