package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"learnpath/internal/application/usecase"
	"learnpath/internal/domain"
	"learnpath/internal/infrastructure/cache"
	"learnpath/internal/infrastructure/repository"
	"learnpath/internal/infrastructure/security"
	"learnpath/internal/middleware"
	"learnpath/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type serverEnv struct {
	router   *gin.Engine
	catalog  *repository.CatalogRepository
	progress *repository.ProgressRepository
	tokens   *security.TokenManager
}

func newServer(t *testing.T) *serverEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&domain.User{},
		&domain.Path{},
		&domain.Module{},
		&domain.PathModule{},
		&domain.UserPathAssignment{},
		&domain.UserModuleCompletion{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	catalogRepo := repository.NewCatalogRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	userRepo := repository.NewUserRepository(db)

	lg := logger.NewNop()
	tokenManager := security.NewTokenManager("access-secret", "refresh-secret")
	// Redis is only hit by login/refresh and the login rate limiter, which
	// these tests avoid. Tokens are minted directly.
	rdb := redis.NewClient(&redis.Options{})
	tokenCache := cache.NewTokenCache(rdb)

	authUC := usecase.NewAuthUseCase(userRepo, catalogRepo, progressRepo, tokenCache, security.NewPasswordHasher(), tokenManager, lg)
	progressUC := usecase.NewProgressUseCase(catalogRepo, progressRepo, lg)

	router := NewRouter(lg, NewAuthHandler(authUC), NewProgressHandler(progressUC), middleware.NewRateLimiter(rdb), authUC, "")

	return &serverEnv{
		router:   router,
		catalog:  catalogRepo,
		progress: progressRepo,
		tokens:   tokenManager,
	}
}

func (e *serverEnv) seedPath(t *testing.T, moduleCount int) (uuid.UUID, []uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	path := &domain.Path{ID: uuid.New(), Title: "Path", Description: "d", Image: "i"}
	if err := e.catalog.CreatePath(ctx, path); err != nil {
		t.Fatalf("create path: %v", err)
	}
	moduleIDs := make([]uuid.UUID, 0, moduleCount)
	for i := 1; i <= moduleCount; i++ {
		module := &domain.Module{ID: uuid.New(), Title: fmt.Sprintf("M%d", i), ContentType: "youtube_video", Content: "vid"}
		if err := e.catalog.CreateModule(ctx, module); err != nil {
			t.Fatalf("create module: %v", err)
		}
		if err := e.catalog.CreatePathModule(ctx, &domain.PathModule{PathID: path.ID, ModuleID: module.ID, Order: i}); err != nil {
			t.Fatalf("create path module: %v", err)
		}
		moduleIDs = append(moduleIDs, module.ID)
	}
	return path.ID, moduleIDs
}

func (e *serverEnv) newUser(t *testing.T, pathIDs ...uuid.UUID) (uuid.UUID, string) {
	t.Helper()
	userID := uuid.New()
	for _, pathID := range pathIDs {
		err := e.progress.CreateAssignment(context.Background(), &domain.UserPathAssignment{
			UserID:     userID,
			PathID:     pathID,
			LastActive: time.Now(),
		})
		if err != nil {
			t.Fatalf("assign: %v", err)
		}
	}
	access, _, err := e.tokens.Generate(userID.String())
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return userID, access
}

func (e *serverEnv) do(t *testing.T, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	env := newServer(t)
	w := env.do(t, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body := decode(t, w); body["serverUp"] != true {
		t.Fatalf("body = %v", body)
	}
}

func TestPathsRequireAuth(t *testing.T) {
	env := newServer(t)
	for _, target := range []string{"/api/v1/paths", "/api/v1/paths/" + uuid.NewString()} {
		w := env.do(t, http.MethodGet, target, "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d, want 401", target, w.Code)
		}
	}
	w := env.do(t, http.MethodPost, "/api/v1/progress", "", map[string]string{})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("progress: status = %d, want 401", w.Code)
	}
}

func TestGetPath_BadID(t *testing.T) {
	env := newServer(t)
	_, token := env.newUser(t)
	w := env.do(t, http.MethodGet, "/api/v1/paths/not-a-uuid", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetPath_NotAssignedLooksLikeMissing(t *testing.T) {
	env := newServer(t)
	pathID, _ := env.seedPath(t, 2)
	_, token := env.newUser(t) // no assignment

	unassigned := env.do(t, http.MethodGet, "/api/v1/paths/"+pathID.String(), token, nil)
	missing := env.do(t, http.MethodGet, "/api/v1/paths/"+uuid.NewString(), token, nil)

	if unassigned.Code != http.StatusNotFound || missing.Code != http.StatusNotFound {
		t.Fatalf("statuses = %d, %d, want 404 for both", unassigned.Code, missing.Code)
	}
	if unassigned.Body.String() != missing.Body.String() {
		t.Fatalf("unassigned and missing paths must be indistinguishable: %q vs %q",
			unassigned.Body.String(), missing.Body.String())
	}
}

func TestCompleteModule_MissingIDs(t *testing.T) {
	env := newServer(t)
	_, token := env.newUser(t)

	w := env.do(t, http.MethodPost, "/api/v1/progress", token, map[string]string{"path_id": uuid.NewString()})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	w = env.do(t, http.MethodPost, "/api/v1/progress", token, map[string]string{"path_id": "x", "module_id": "y"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed ids: status = %d, want 400", w.Code)
	}
}

func TestProgressFlow(t *testing.T) {
	env := newServer(t)
	pathID, moduleIDs := env.seedPath(t, 3)
	_, token := env.newUser(t, pathID)

	complete := func(moduleID uuid.UUID) *httptest.ResponseRecorder {
		return env.do(t, http.MethodPost, "/api/v1/progress", token, map[string]string{
			"path_id":   pathID.String(),
			"module_id": moduleID.String(),
		})
	}

	// Module 2 before module 1 is forbidden.
	if w := complete(moduleIDs[1]); w.Code != http.StatusForbidden {
		t.Fatalf("out of order: status = %d, want 403", w.Code)
	}

	for i, moduleID := range moduleIDs {
		w := complete(moduleID)
		if w.Code != http.StatusOK {
			t.Fatalf("module %d: status = %d body=%s", i+1, w.Code, w.Body.String())
		}
		body := decode(t, w)
		if body["message"] != "Module completed successfully" {
			t.Fatalf("module %d: message = %v", i+1, body["message"])
		}
	}

	// Last response carries the full-path summary.
	w := complete(moduleIDs[2])
	body := decode(t, w)
	if body["message"] != "Module already completed" {
		t.Fatalf("message = %v", body["message"])
	}
	progress, ok := body["progress"].(map[string]interface{})
	if !ok {
		t.Fatalf("progress missing: %v", body)
	}
	if progress["percentage"] != float64(100) || progress["path_completed"] != true {
		t.Fatalf("progress = %v", progress)
	}

	// Detail view reflects everything completed.
	w = env.do(t, http.MethodGet, "/api/v1/paths/"+pathID.String(), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("detail: status = %d", w.Code)
	}
	detail, ok := decode(t, w)["path"].(map[string]interface{})
	if !ok {
		t.Fatal("path missing in detail response")
	}
	if detail["completed_modules"] != float64(3) || detail["total_modules"] != float64(3) {
		t.Fatalf("detail counts = %v / %v", detail["completed_modules"], detail["total_modules"])
	}
	if detail["completed_at"] == nil {
		t.Fatal("path completed_at should be set")
	}
	modules, ok := detail["modules"].([]interface{})
	if !ok || len(modules) != 3 {
		t.Fatalf("modules = %v", detail["modules"])
	}
	for _, raw := range modules {
		m := raw.(map[string]interface{})
		if m["is_completed"] != true {
			t.Fatalf("module not completed: %v", m)
		}
	}

	// List view agrees.
	w = env.do(t, http.MethodGet, "/api/v1/paths", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status = %d", w.Code)
	}
	paths, ok := decode(t, w)["paths"].([]interface{})
	if !ok || len(paths) != 1 {
		t.Fatalf("paths = %v", paths)
	}
	summary := paths[0].(map[string]interface{})
	if summary["progress"] != float64(100) {
		t.Fatalf("summary progress = %v", summary["progress"])
	}
}

func TestCompleteModule_UnknownPathAndModule(t *testing.T) {
	env := newServer(t)
	pathID, moduleIDs := env.seedPath(t, 1)
	_, token := env.newUser(t, pathID)

	// Path not assigned (nonexistent).
	w := env.do(t, http.MethodPost, "/api/v1/progress", token, map[string]string{
		"path_id":   uuid.NewString(),
		"module_id": moduleIDs[0].String(),
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown path: status = %d, want 404", w.Code)
	}

	// Module not part of the path.
	w = env.do(t, http.MethodPost, "/api/v1/progress", token, map[string]string{
		"path_id":   pathID.String(),
		"module_id": uuid.NewString(),
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("foreign module: status = %d, want 404", w.Code)
	}
}

func TestRegisterEndpoint(t *testing.T) {
	env := newServer(t)
	env.seedPath(t, 2)

	w := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "student",
		"email":    "student@example.com",
		"password": "password123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	userID, err := uuid.Parse(fmt.Sprint(body["user_id"]))
	if err != nil {
		t.Fatalf("user_id = %v", body["user_id"])
	}

	// Fan-out assigned the seeded path to the new account.
	assignments, err := env.progress.ListAssignments(context.Background(), userID)
	if err != nil {
		t.Fatalf("list assignments: %v", err)
	}
	if len(assignments) != 1 {
		t.Fatalf("assignments = %d, want 1", len(assignments))
	}

	// Same email again conflicts.
	w = env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "other",
		"email":    "student@example.com",
		"password": "password123",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate: status = %d, want 409", w.Code)
	}
}
