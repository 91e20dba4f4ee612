package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DocumentChunk is one embedded slice of a document.
type DocumentChunk struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Content        string          `gorm:"type:text"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // nomic-embed-text and text-embedding-004 are 768-dim
	ChunkIndex     int             `gorm:"default:0"`
	Metadata       datatypes.JSON  `gorm:"type:jsonb"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt  `gorm:"index"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
