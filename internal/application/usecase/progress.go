package usecase

import (
	"context"
	"errors"
	"time"

	"learnpath/internal/apperrors"
	"learnpath/internal/domain"
	"learnpath/internal/infrastructure/repository"
	"learnpath/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PathSummary is the per-assignment aggregate returned by the catalog view.
type PathSummary struct {
	ID               uuid.UUID  `json:"_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Image            string     `json:"image"`
	LastActive       time.Time  `json:"last_active"`
	CompletedAt      *time.Time `json:"completed_at"`
	TotalModules     int        `json:"total_modules"`
	CompletedModules int        `json:"completed_modules"`
	Progress         float64    `json:"progress"`
}

// ModuleStatus is one module of a path annotated with the user's completion.
type ModuleStatus struct {
	ID          uuid.UUID  `json:"_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Image       string     `json:"image"`
	ContentType string     `json:"content_type"`
	Content     string     `json:"content"`
	Order       int        `json:"order"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type PathDetail struct {
	PathSummary
	Modules []ModuleStatus `json:"modules"`
}

type ProgressSummary struct {
	TotalModules     int     `json:"total_modules"`
	CompletedModules int     `json:"completed_modules"`
	Percentage       float64 `json:"percentage"`
	PathCompleted    bool    `json:"path_completed"`
}

type CompletionResult struct {
	Completion  *domain.UserModuleCompletion
	AlreadyDone bool
	Progress    ProgressSummary
}

type ProgressUseCase struct {
	catalog  *repository.CatalogRepository
	progress *repository.ProgressRepository
	log      *logger.Logger
}

func NewProgressUseCase(c *repository.CatalogRepository, p *repository.ProgressRepository, log *logger.Logger) *ProgressUseCase {
	return &ProgressUseCase{catalog: c, progress: p, log: log}
}

// progressPercent derives the percentage from completion counts. Never stored.
func progressPercent(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

// Unlocked reports whether a module at the given position may be interacted
// with: already completed, first in sequence, or predecessor completed. A
// missing predecessor (a gap in order values) leaves the module unlocked.
func Unlocked(order int, selfCompleted, prevExists, prevCompleted bool) bool {
	if selfCompleted || order <= 1 {
		return true
	}
	if !prevExists {
		return true
	}
	return prevCompleted
}

// ListPaths returns every path assigned to the user with aggregate progress.
func (uc *ProgressUseCase) ListPaths(ctx context.Context, userID uuid.UUID) ([]PathSummary, error) {
	assignments, err := uc.progress.ListAssignments(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]PathSummary, 0, len(assignments))
	for _, a := range assignments {
		path, err := uc.catalog.GetPath(ctx, a.PathID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Assignment pointing at a deleted path, skip it.
				uc.log.Warn("assignment without path", "path_id", a.PathID)
				continue
			}
			return nil, err
		}

		total, err := uc.catalog.CountPathModules(ctx, a.PathID)
		if err != nil {
			return nil, err
		}
		completed, err := uc.progress.CountCompletions(ctx, userID, a.PathID)
		if err != nil {
			return nil, err
		}

		summaries = append(summaries, PathSummary{
			ID:               path.ID,
			Title:            path.Title,
			Description:      path.Description,
			Image:            path.Image,
			LastActive:       a.LastActive,
			CompletedAt:      a.CompletedAt,
			TotalModules:     int(total),
			CompletedModules: int(completed),
			Progress:         progressPercent(int(completed), int(total)),
		})
	}
	return summaries, nil
}

// GetPathDetail returns the path's modules annotated with completion status,
// ordered by position, plus aggregate progress. A path that exists but is not
// assigned to the user is indistinguishable from a nonexistent one.
func (uc *ProgressUseCase) GetPathDetail(ctx context.Context, userID, pathID uuid.UUID) (*PathDetail, error) {
	assignment, err := uc.progress.GetAssignment(ctx, userID, pathID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPathNotAssigned
		}
		return nil, err
	}

	path, err := uc.catalog.GetPath(ctx, pathID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPathNotFound
		}
		return nil, err
	}

	pms, err := uc.catalog.ListPathModules(ctx, pathID)
	if err != nil {
		return nil, err
	}

	moduleIDs := make([]uuid.UUID, 0, len(pms))
	for _, pm := range pms {
		moduleIDs = append(moduleIDs, pm.ModuleID)
	}
	modules, err := uc.catalog.GetModulesByIDs(ctx, moduleIDs)
	if err != nil {
		return nil, err
	}

	completions, err := uc.progress.ListCompletions(ctx, userID, pathID)
	if err != nil {
		return nil, err
	}
	completedByModule := make(map[uuid.UUID]domain.UserModuleCompletion, len(completions))
	for _, c := range completions {
		completedByModule[c.ModuleID] = c
	}

	// Aggregate counts come from the same listing as the per-module flags so
	// the summary can never disagree with the displayed modules.
	statuses := make([]ModuleStatus, 0, len(pms))
	completedCount := 0
	for _, pm := range pms {
		module, ok := modules[pm.ModuleID]
		if !ok {
			// Sequence entry pointing at a deleted module, skip it.
			uc.log.Warn("path module without module", "path_id", pathID, "module_id", pm.ModuleID)
			continue
		}
		status := ModuleStatus{
			ID:          module.ID,
			Title:       module.Title,
			Description: module.Description,
			Image:       module.Image,
			ContentType: module.ContentType,
			Content:     module.Content,
			Order:       pm.Order,
		}
		if c, done := completedByModule[pm.ModuleID]; done {
			status.IsCompleted = true
			completedAt := c.CompletedAt
			status.CompletedAt = &completedAt
			completedCount++
		}
		statuses = append(statuses, status)
	}

	return &PathDetail{
		PathSummary: PathSummary{
			ID:               path.ID,
			Title:            path.Title,
			Description:      path.Description,
			Image:            path.Image,
			LastActive:       assignment.LastActive,
			CompletedAt:      assignment.CompletedAt,
			TotalModules:     len(statuses),
			CompletedModules: completedCount,
			Progress:         progressPercent(completedCount, len(statuses)),
		},
		Modules: statuses,
	}, nil
}

// CompleteModule marks a module complete for the user, enforcing sequential
// prerequisite order. Completing an already-completed module is a no-op
// success carrying the prior record. All validation short-circuits before any
// write.
func (uc *ProgressUseCase) CompleteModule(ctx context.Context, userID, pathID, moduleID uuid.UUID) (*CompletionResult, error) {
	assignment, err := uc.progress.GetAssignment(ctx, userID, pathID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPathNotAssigned
		}
		return nil, err
	}

	pm, err := uc.catalog.GetPathModule(ctx, pathID, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrModuleNotInPath
		}
		return nil, err
	}

	// Idempotence fast path.
	if existing, err := uc.progress.GetCompletion(ctx, userID, pathID, moduleID); err == nil {
		summary, err := uc.summarize(ctx, userID, pathID)
		if err != nil {
			return nil, err
		}
		return &CompletionResult{Completion: existing, AlreadyDone: true, Progress: summary}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	prevExists, prevCompleted := false, false
	if pm.Order > 1 {
		prev, err := uc.catalog.GetPathModuleByOrder(ctx, pathID, pm.Order-1)
		switch {
		case err == nil:
			prevExists = true
			if _, err := uc.progress.GetCompletion(ctx, userID, pathID, prev.ModuleID); err == nil {
				prevCompleted = true
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Gap in the seeded order values: no predecessor to demand,
			// the module counts as unlocked.
		default:
			return nil, err
		}
	}
	if !Unlocked(pm.Order, false, prevExists, prevCompleted) {
		return nil, apperrors.ErrPrerequisiteNotMet
	}

	now := time.Now()
	completion := &domain.UserModuleCompletion{
		UserID:      userID,
		PathID:      pathID,
		ModuleID:    moduleID,
		CompletedAt: now,
	}
	created, err := uc.progress.CreateCompletion(ctx, completion)
	if err != nil {
		return nil, err
	}

	summary, err := uc.summarize(ctx, userID, pathID)
	if err != nil {
		return nil, err
	}

	if created {
		assignment.LastActive = now
		if summary.PathCompleted && assignment.CompletedAt == nil {
			assignment.CompletedAt = &now
		}
		if err := uc.progress.SaveAssignment(ctx, assignment); err != nil {
			return nil, err
		}
	}

	return &CompletionResult{Completion: completion, AlreadyDone: !created, Progress: summary}, nil
}

func (uc *ProgressUseCase) summarize(ctx context.Context, userID, pathID uuid.UUID) (ProgressSummary, error) {
	total, err := uc.catalog.CountPathModules(ctx, pathID)
	if err != nil {
		return ProgressSummary{}, err
	}
	completed, err := uc.progress.CountCompletions(ctx, userID, pathID)
	if err != nil {
		return ProgressSummary{}, err
	}
	return ProgressSummary{
		TotalModules:     int(total),
		CompletedModules: int(completed),
		Percentage:       progressPercent(int(completed), int(total)),
		PathCompleted:    total > 0 && completed == total,
	}, nil
}
