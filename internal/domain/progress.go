package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserPathAssignment grants a user access to a path. Created for every
// existing path when the account is registered.
type UserPathAssignment struct {
	UserID      uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	PathID      uuid.UUID  `gorm:"type:uuid;primaryKey" json:"path_id"`
	LastActive  time.Time  `json:"last_active"`
	CompletedAt *time.Time `json:"completed_at"` // set once, never cleared
	CreatedAt   time.Time  `json:"-"`
	UpdatedAt   time.Time  `json:"-"`
}

// UserModuleCompletion is immutable once created. The composite primary key
// is the uniqueness constraint that rejects duplicate completions under
// concurrent requests.
type UserModuleCompletion struct {
	UserID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	PathID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"path_id"`
	ModuleID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"module_id"`
	CompletedAt time.Time `json:"completed_at"`
	CreatedAt   time.Time `json:"-"`
}
