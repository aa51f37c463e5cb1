package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/meganoshop/megano-backend/pkg/enums"
)

// ImportJob is one processed seller listing import file.
type ImportJob struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FileName   string             `gorm:"column:file_name;not null"`
	Status     enums.ImportStatus `gorm:"column:status;not null;default:'pending';index"`
	Processed  int                `gorm:"column:processed;not null;default:0"`
	Failed     int                `gorm:"column:failed;not null;default:0"`
	Message    string             `gorm:"column:message;not null;default:''"`
	StartedAt  *time.Time         `gorm:"column:started_at"`
	FinishedAt *time.Time         `gorm:"column:finished_at"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
}
