package entity

import (
	"time"

	"github.com/google/uuid"
)

// Feedback is one user rating of a generated answer.
type Feedback struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionId string    `gorm:"index"`
	Rating    int
	Comment   string `gorm:"type:text"`
	Helpful   bool
	CreatedAt time.Time
}
