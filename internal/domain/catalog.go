package domain

import (
	"time"

	"github.com/google/uuid"
)

// Path is an ordered curriculum of modules. Read-only after seeding.
type Path struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"not null" json:"description"`
	Image       string    `gorm:"not null" json:"image"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

type Module struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	ContentType string    `gorm:"not null" json:"content_type"` // "youtube_video", ...
	Content     string    `gorm:"not null" json:"content"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// PathModule defines the sequence of a path. Order starts at 1 per path,
// unique per (path_id, order). A module may appear in several paths.
type PathModule struct {
	PathID    uuid.UUID `gorm:"type:uuid;primaryKey;uniqueIndex:idx_path_order" json:"path_id"`
	ModuleID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"module_id"`
	Order     int       `gorm:"not null;uniqueIndex:idx_path_order" json:"order"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
