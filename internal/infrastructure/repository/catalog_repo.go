package repository

import (
	"context"

	"learnpath/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) CreatePath(ctx context.Context, path *domain.Path) error {
	return r.db.WithContext(ctx).Create(path).Error
}

func (r *CatalogRepository) CreateModule(ctx context.Context, module *domain.Module) error {
	return r.db.WithContext(ctx).Create(module).Error
}

func (r *CatalogRepository) CreatePathModule(ctx context.Context, pm *domain.PathModule) error {
	return r.db.WithContext(ctx).Create(pm).Error
}

func (r *CatalogRepository) GetPath(ctx context.Context, id uuid.UUID) (*domain.Path, error) {
	var path domain.Path
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&path).Error
	if err != nil {
		return nil, err
	}
	return &path, nil
}

func (r *CatalogRepository) ListPaths(ctx context.Context) ([]domain.Path, error) {
	var paths []domain.Path
	err := r.db.WithContext(ctx).Find(&paths).Error
	return paths, err
}

func (r *CatalogRepository) CountPaths(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Path{}).Count(&count).Error
	return count, err
}

// ListPathModules returns the sequence of a path, sorted by order ascending.
func (r *CatalogRepository) ListPathModules(ctx context.Context, pathID uuid.UUID) ([]domain.PathModule, error) {
	var pms []domain.PathModule
	err := r.db.WithContext(ctx).
		Where("path_id = ?", pathID).
		Order(`"order" ASC`).
		Find(&pms).Error
	return pms, err
}

func (r *CatalogRepository) GetPathModule(ctx context.Context, pathID, moduleID uuid.UUID) (*domain.PathModule, error) {
	var pm domain.PathModule
	err := r.db.WithContext(ctx).
		Where("path_id = ? AND module_id = ?", pathID, moduleID).
		First(&pm).Error
	if err != nil {
		return nil, err
	}
	return &pm, nil
}

func (r *CatalogRepository) GetPathModuleByOrder(ctx context.Context, pathID uuid.UUID, order int) (*domain.PathModule, error) {
	var pm domain.PathModule
	err := r.db.WithContext(ctx).
		Where(`path_id = ? AND "order" = ?`, pathID, order).
		First(&pm).Error
	if err != nil {
		return nil, err
	}
	return &pm, nil
}

func (r *CatalogRepository) CountPathModules(ctx context.Context, pathID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.PathModule{}).
		Where("path_id = ?", pathID).
		Count(&count).Error
	return count, err
}

// GetModulesByIDs fetches module content for a set of IDs, keyed by ID.
func (r *CatalogRepository) GetModulesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Module, error) {
	out := make(map[uuid.UUID]domain.Module, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var modules []domain.Module
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&modules).Error
	if err != nil {
		return nil, err
	}
	for _, m := range modules {
		out[m.ID] = m
	}
	return out, nil
}
