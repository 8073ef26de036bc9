package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/fitstack/apiserver/internal/audit"
	"github.com/fitstack/apiserver/internal/services"
	"github.com/fitstack/apiserver/internal/store"
	"github.com/fitstack/apiserver/internal/token"
	"github.com/fitstack/apiserver/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memAuditRecorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *memAuditRecorder) Record(_ context.Context, event audit.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

type memUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]types.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[int]types.User)}
}

func (r *memUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = r.nextID
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = user
	return user, nil
}

func (r *memUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = user
	return user, nil
}

type memWorkoutRepo struct {
	mu       sync.Mutex
	nextID   int
	ticks    int
	workouts map[int]types.Workout
}

func newMemWorkoutRepo() *memWorkoutRepo {
	return &memWorkoutRepo{workouts: make(map[int]types.Workout)}
}

// tick produces strictly increasing creation times so ordering is
// deterministic regardless of wall-clock resolution.
func (r *memWorkoutRepo) tick() time.Time {
	r.ticks++
	return time.Unix(int64(r.ticks), 0)
}

func (r *memWorkoutRepo) ListByOwner(_ context.Context, userID int) ([]types.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	workouts := make([]types.Workout, 0)
	for _, workout := range r.workouts {
		if workout.UserID == userID {
			workouts = append(workouts, workout)
		}
	}
	sort.Slice(workouts, func(i, j int) bool {
		return workouts[i].CreatedAt.After(workouts[j].CreatedAt)
	})
	return workouts, nil
}

func (r *memWorkoutRepo) Create(_ context.Context, workout types.Workout) (types.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	workout.ID = r.nextID
	workout.CreatedAt = r.tick()
	workout.UpdatedAt = workout.CreatedAt
	r.workouts[workout.ID] = workout
	return workout, nil
}

func (r *memWorkoutRepo) Update(_ context.Context, workout types.Workout) (types.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.workouts[workout.ID]
	if !ok || existing.UserID != workout.UserID {
		return types.Workout{}, store.ErrNotFound
	}
	workout.CreatedAt = existing.CreatedAt
	workout.UpdatedAt = r.tick()
	r.workouts[workout.ID] = workout
	return workout, nil
}

func (r *memWorkoutRepo) Delete(_ context.Context, id, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.workouts[id]
	if !ok || existing.UserID != userID {
		return store.ErrNotFound
	}
	delete(r.workouts, id)
	return nil
}

type memNutritionRepo struct {
	mu      sync.Mutex
	nextID  int
	entries map[int]types.NutritionEntry
}

func newMemNutritionRepo() *memNutritionRepo {
	return &memNutritionRepo{entries: make(map[int]types.NutritionEntry)}
}

func (r *memNutritionRepo) ListByOwner(_ context.Context, userID int) ([]types.NutritionEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := make([]types.NutritionEntry, 0)
	for _, entry := range r.entries {
		if entry.UserID == userID {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ID > entries[j].ID
	})
	return entries, nil
}

func (r *memNutritionRepo) Create(_ context.Context, entry types.NutritionEntry) (types.NutritionEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	entry.ID = r.nextID
	now := time.Now()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	if entry.Date.IsZero() {
		entry.Date = now
	}
	r.entries[entry.ID] = entry
	return entry, nil
}

func (r *memNutritionRepo) Update(_ context.Context, entry types.NutritionEntry) (types.NutritionEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.entries[entry.ID]
	if !ok || existing.UserID != entry.UserID {
		return types.NutritionEntry{}, store.ErrNotFound
	}
	entry.CreatedAt = existing.CreatedAt
	entry.Date = existing.Date
	entry.UpdatedAt = time.Now()
	r.entries[entry.ID] = entry
	return entry, nil
}

func (r *memNutritionRepo) Delete(_ context.Context, id, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.entries[id]
	if !ok || existing.UserID != userID {
		return store.ErrNotFound
	}
	delete(r.entries, id)
	return nil
}

type memProgressRepo struct {
	mu      sync.Mutex
	nextID  int
	entries map[int]types.ProgressEntry
}

func newMemProgressRepo() *memProgressRepo {
	return &memProgressRepo{entries: make(map[int]types.ProgressEntry)}
}

func (r *memProgressRepo) ListByOwner(_ context.Context, userID int) ([]types.ProgressEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := make([]types.ProgressEntry, 0)
	for _, entry := range r.entries {
		if entry.UserID == userID {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
	return entries, nil
}

func (r *memProgressRepo) Create(_ context.Context, entry types.ProgressEntry) (types.ProgressEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	entry.ID = r.nextID
	entry.CreatedAt = time.Now()
	r.entries[entry.ID] = entry
	return entry, nil
}

func (r *memProgressRepo) Delete(_ context.Context, id, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.entries[id]
	if !ok || existing.UserID != userID {
		return store.ErrNotFound
	}
	delete(r.entries, id)
	return nil
}

// testEnv wires fake repositories behind the real handlers and router.
type testEnv struct {
	server    *httptest.Server
	issuer    *token.Issuer
	users     *memUserRepo
	workouts  *memWorkoutRepo
	nutrition *memNutritionRepo
	progress  *memProgressRepo
	auditor   *memAuditRecorder
}

func newTestEnv(t *testing.T) *testEnv {
	env := &testEnv{
		issuer:    token.NewIssuer("test-secret", time.Hour),
		users:     newMemUserRepo(),
		workouts:  newMemWorkoutRepo(),
		nutrition: newMemNutritionRepo(),
		progress:  newMemProgressRepo(),
		auditor:   &memAuditRecorder{},
	}

	logger := testLogger()
	userService := services.NewUserService(env.users)
	authMiddleware := RequireAuth(env.issuer)

	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, NewAuthHandler(userService, env.issuer, env.auditor, logger))
	})
	router.Route("/profile", func(r chi.Router) {
		ProfileRouter(r, NewProfileHandler(userService, nil, logger), authMiddleware)
	})
	router.Route("/workouts", func(r chi.Router) {
		WorkoutRouter(r, NewWorkoutHandler(services.NewWorkoutService(env.workouts), logger), authMiddleware)
	})
	router.Route("/nutrition", func(r chi.Router) {
		NutritionRouter(r, NewNutritionHandler(services.NewNutritionService(env.nutrition), logger), authMiddleware)
	})
	router.Route("/progress", func(r chi.Router) {
		ProgressRouter(r, NewProgressHandler(services.NewProgressService(env.progress), logger), authMiddleware)
	})

	env.server = httptest.NewServer(router)
	t.Cleanup(env.server.Close)
	return env
}

// doJSON issues a request against the test server and decodes the JSON
// body into out when out is non-nil. An empty token skips the
// Authorization header.
func (env *testEnv) doJSON(t *testing.T, method, path, bearer string, body, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, env.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := env.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// registerUser creates an account through the public endpoint and
// returns the issued token together with the stored user.
func (env *testEnv) registerUser(t *testing.T, username, email, password string) (string, types.User) {
	t.Helper()

	var resp AuthResponse
	status := env.doJSON(t, http.MethodPost, "/auth/register", "", RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	}, &resp)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp.User
}
