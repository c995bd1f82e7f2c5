package usecase

import (
	"context"
	"errors"
	"time"

	"learnpath/internal/apperrors"
	"learnpath/internal/domain"
	"learnpath/internal/infrastructure/cache"
	"learnpath/internal/infrastructure/repository"
	"learnpath/internal/infrastructure/security"
	"learnpath/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthUseCase struct {
	users        *repository.UserRepository
	catalog      *repository.CatalogRepository
	progress     *repository.ProgressRepository
	tokenCache   *cache.TokenCache
	hasher       *security.PasswordHasher
	tokenManager *security.TokenManager
	log          *logger.Logger
}

func NewAuthUseCase(
	ur *repository.UserRepository,
	cr *repository.CatalogRepository,
	pr *repository.ProgressRepository,
	tc *cache.TokenCache,
	h *security.PasswordHasher,
	tm *security.TokenManager,
	log *logger.Logger,
) *AuthUseCase {
	return &AuthUseCase{
		users:        ur,
		catalog:      cr,
		progress:     pr,
		tokenCache:   tc,
		hasher:       h,
		tokenManager: tm,
		log:          log,
	}
}

func (uc *AuthUseCase) Register(ctx context.Context, username, email, password string) (string, error) {
	hash, err := uc.hasher.Hash(password)
	if err != nil {
		return "", err
	}

	user := &domain.User{
		ID:       uuid.New(),
		Username: username,
		Email:    email,
		Password: hash,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", apperrors.ErrUserExists
		}
		return "", err
	}

	uc.assignAllPaths(ctx, user)

	return user.ID.String(), nil
}

// assignAllPaths fans out one assignment per existing path for a fresh
// account. Failures are logged and never fail the registration itself.
func (uc *AuthUseCase) assignAllPaths(ctx context.Context, user *domain.User) {
	paths, err := uc.catalog.ListPaths(ctx)
	if err != nil {
		uc.log.Error("failed to list paths for new user", "user_id", user.ID, "error", err)
		return
	}

	assigned := 0
	for _, path := range paths {
		a := &domain.UserPathAssignment{
			UserID:     user.ID,
			PathID:     path.ID,
			LastActive: time.Now(),
		}
		if err := uc.progress.CreateAssignment(ctx, a); err != nil {
			uc.log.Error("failed to assign path to new user", "user_id", user.ID, "path_id", path.ID, "error", err)
			continue
		}
		assigned++
	}
	uc.log.Info("assigned paths to new user", "user_id", user.ID, "count", assigned)
}

func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (string, string, error) {
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return "", "", apperrors.ErrInvalidCredentials
	}
	if err := uc.hasher.Compare(user.Password, password); err != nil {
		return "", "", apperrors.ErrInvalidCredentials
	}
	return uc.generateAndSaveTokens(ctx, user.ID.String())
}

func (uc *AuthUseCase) Refresh(ctx context.Context, oldRefreshToken string) (string, string, error) {
	userID, err := uc.tokenManager.ValidateRefreshToken(oldRefreshToken)
	if err != nil {
		return "", "", apperrors.ErrTokenRevoked
	}

	cachedID, err := uc.tokenCache.CheckRefresh(ctx, oldRefreshToken)
	if err != nil || cachedID != userID {
		return "", "", apperrors.ErrTokenRevoked
	}
	_ = uc.tokenCache.DeleteRefresh(ctx, oldRefreshToken)

	return uc.generateAndSaveTokens(ctx, userID)
}

func (uc *AuthUseCase) Logout(ctx context.Context, refreshToken string) error {
	return uc.tokenCache.DeleteRefresh(ctx, refreshToken)
}

func (uc *AuthUseCase) ValidateAccess(token string) (string, error) {
	return uc.tokenManager.ValidateAccessToken(token)
}

func (uc *AuthUseCase) generateAndSaveTokens(ctx context.Context, userID string) (string, string, error) {
	access, refresh, err := uc.tokenManager.Generate(userID)
	if err != nil {
		return "", "", err
	}
	if err := uc.tokenCache.SaveRefresh(ctx, userID, refresh); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}
