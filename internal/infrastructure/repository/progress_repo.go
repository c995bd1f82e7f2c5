package repository

import (
	"context"
	"errors"

	"learnpath/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProgressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// CreateAssignment is idempotent so the registration fan-out can be retried.
func (r *ProgressRepository) CreateAssignment(ctx context.Context, a *domain.UserPathAssignment) error {
	return r.db.WithContext(ctx).
		Where(domain.UserPathAssignment{UserID: a.UserID, PathID: a.PathID}).
		Attrs(domain.UserPathAssignment{LastActive: a.LastActive}).
		FirstOrCreate(a).Error
}

func (r *ProgressRepository) GetAssignment(ctx context.Context, userID, pathID uuid.UUID) (*domain.UserPathAssignment, error) {
	var a domain.UserPathAssignment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND path_id = ?", userID, pathID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ProgressRepository) ListAssignments(ctx context.Context, userID uuid.UUID) ([]domain.UserPathAssignment, error) {
	var assignments []domain.UserPathAssignment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&assignments).Error
	return assignments, err
}

func (r *ProgressRepository) SaveAssignment(ctx context.Context, a *domain.UserPathAssignment) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *ProgressRepository) GetCompletion(ctx context.Context, userID, pathID, moduleID uuid.UUID) (*domain.UserModuleCompletion, error) {
	var c domain.UserModuleCompletion
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND path_id = ? AND module_id = ?", userID, pathID, moduleID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ProgressRepository) ListCompletions(ctx context.Context, userID, pathID uuid.UUID) ([]domain.UserModuleCompletion, error) {
	var completions []domain.UserModuleCompletion
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND path_id = ?", userID, pathID).
		Find(&completions).Error
	return completions, err
}

func (r *ProgressRepository) CountCompletions(ctx context.Context, userID, pathID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.UserModuleCompletion{}).
		Where("user_id = ? AND path_id = ?", userID, pathID).
		Count(&count).Error
	return count, err
}

// CreateCompletion records a completion at most once. Returns created=false
// when the row already exists; a duplicate-key error from a racing insert is
// collapsed into the same branch, the primary key being the safety net.
func (r *ProgressRepository) CreateCompletion(ctx context.Context, c *domain.UserModuleCompletion) (bool, error) {
	res := r.db.WithContext(ctx).
		Where(domain.UserModuleCompletion{UserID: c.UserID, PathID: c.PathID, ModuleID: c.ModuleID}).
		Attrs(domain.UserModuleCompletion{CompletedAt: c.CompletedAt}).
		FirstOrCreate(c)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			err := r.db.WithContext(ctx).
				Where("user_id = ? AND path_id = ? AND module_id = ?", c.UserID, c.PathID, c.ModuleID).
				First(c).Error
			return false, err
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
