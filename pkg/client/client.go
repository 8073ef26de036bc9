// Package client is the Go API client for the fitstack server. It
// owns the session lifecycle: a successful login or registration
// stores the issued bearer token, every protected call attaches it,
// and any 401 from the server discards it again. Callers observe the
// session through Authenticated and the sentinel errors below.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/fitstack/apiserver/types"
)

// Session-state errors.
var (
	// ErrNotAuthenticated is returned when a protected method is
	// called without a stored token.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSessionExpired is returned when the server rejects the stored
	// token. The token has already been discarded; the caller must log
	// in again.
	ErrSessionExpired = errors.New("session expired")
)

// APIError is a non-session error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client talks to the fitstack API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// New constructs a Client for the given base URL. The client starts
// anonymous; call Login or Register to establish a session.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Authenticated reports whether a token is currently stored.
func (c *Client) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

// Logout discards the stored token.
func (c *Client) Logout() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

func (c *Client) storedToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) storeToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

type authResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

// Register creates an account and stores the issued token.
func (c *Client) Register(ctx context.Context, username, email, password string) (types.User, error) {
	payload := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", payload, &resp, false); err != nil {
		return types.User{}, err
	}
	c.storeToken(resp.Token)
	return resp.User, nil
}

// Login verifies credentials and stores the issued token.
func (c *Client) Login(ctx context.Context, email, password string) (types.User, error) {
	payload := map[string]string{
		"email":    email,
		"password": password,
	}
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", payload, &resp, false); err != nil {
		return types.User{}, err
	}
	c.storeToken(resp.Token)
	return resp.User, nil
}

// Me returns the account of the current session.
func (c *Client) Me(ctx context.Context) (types.User, error) {
	var user types.User
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user, true)
	return user, err
}

// WorkoutDraft is the payload for creating or updating a workout.
type WorkoutDraft struct {
	Name      string           `json:"name"`
	Category  string           `json:"category"`
	Exercises []types.Exercise `json:"exercises"`
	Tags      []string         `json:"tags,omitempty"`
}

// Workouts lists the caller's workouts, most recent first.
func (c *Client) Workouts(ctx context.Context) ([]types.Workout, error) {
	var workouts []types.Workout
	err := c.do(ctx, http.MethodGet, "/workouts", nil, &workouts, true)
	return workouts, err
}

// CreateWorkout creates a workout owned by the current session.
func (c *Client) CreateWorkout(ctx context.Context, draft WorkoutDraft) (types.Workout, error) {
	var workout types.Workout
	err := c.do(ctx, http.MethodPost, "/workouts", draft, &workout, true)
	return workout, err
}

// UpdateWorkout replaces a workout owned by the current session.
func (c *Client) UpdateWorkout(ctx context.Context, id int, draft WorkoutDraft) (types.Workout, error) {
	var workout types.Workout
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/workouts/%d", id), draft, &workout, true)
	return workout, err
}

// DeleteWorkout deletes a workout owned by the current session.
func (c *Client) DeleteWorkout(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/workouts/%d", id), nil, nil, true)
}

// NutritionDraft is the payload for creating or updating a nutrition entry.
type NutritionDraft struct {
	MealType  string           `json:"meal_type"`
	FoodItems []types.FoodItem `json:"food_items"`
	Date      string           `json:"date,omitempty"`
}

// NutritionEntries lists the caller's nutrition entries, most recent first.
func (c *Client) NutritionEntries(ctx context.Context) ([]types.NutritionEntry, error) {
	var entries []types.NutritionEntry
	err := c.do(ctx, http.MethodGet, "/nutrition", nil, &entries, true)
	return entries, err
}

// CreateNutritionEntry creates a nutrition entry owned by the current session.
func (c *Client) CreateNutritionEntry(ctx context.Context, draft NutritionDraft) (types.NutritionEntry, error) {
	var entry types.NutritionEntry
	err := c.do(ctx, http.MethodPost, "/nutrition", draft, &entry, true)
	return entry, err
}

// UpdateNutritionEntry replaces a nutrition entry owned by the current session.
func (c *Client) UpdateNutritionEntry(ctx context.Context, id int, draft NutritionDraft) (types.NutritionEntry, error) {
	var entry types.NutritionEntry
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/nutrition/%d", id), draft, &entry, true)
	return entry, err
}

// DeleteNutritionEntry deletes a nutrition entry owned by the current session.
func (c *Client) DeleteNutritionEntry(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/nutrition/%d", id), nil, nil, true)
}

// ProgressDraft is the payload for creating a progress entry.
type ProgressDraft struct {
	Weight             float64            `json:"weight"`
	BodyMeasurements   map[string]float64 `json:"body_measurements,omitempty"`
	PerformanceMetrics map[string]float64 `json:"performance_metrics,omitempty"`
	Date               string             `json:"date"`
}

// ProgressEntries lists the caller's progress entries in date order.
func (c *Client) ProgressEntries(ctx context.Context) ([]types.ProgressEntry, error) {
	var entries []types.ProgressEntry
	err := c.do(ctx, http.MethodGet, "/progress", nil, &entries, true)
	return entries, err
}

// CreateProgressEntry creates a progress entry owned by the current session.
func (c *Client) CreateProgressEntry(ctx context.Context, draft ProgressDraft) (types.ProgressEntry, error) {
	var entry types.ProgressEntry
	err := c.do(ctx, http.MethodPost, "/progress", draft, &entry, true)
	return entry, err
}

// DeleteProgressEntry deletes a progress entry owned by the current session.
func (c *Client) DeleteProgressEntry(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/progress/%d", id), nil, nil, true)
}

// Chat sends a message to the assistant and returns its reply.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	payload := map[string]string{"message": message}
	var resp struct {
		Reply string `json:"reply"`
	}
	if err := c.do(ctx, http.MethodPost, "/wingman/chat", payload, &resp, true); err != nil {
		return "", err
	}
	return resp.Reply, nil
}

// do performs one API call. Protected calls fail fast with
// ErrNotAuthenticated when no token is stored, and any 401 from the
// server drops the session before returning ErrSessionExpired.
func (c *Client) do(ctx context.Context, method, path string, body, out any, protected bool) error {
	var tokenValue string
	if protected {
		tokenValue = c.storedToken()
		if tokenValue == "" {
			return ErrNotAuthenticated
		}
	}

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tokenValue != "" {
		req.Header.Set("Authorization", "Bearer "+tokenValue)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.Logout()
		return ErrSessionExpired
	}
	if resp.StatusCode >= 400 {
		var payload ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		return &APIError{StatusCode: resp.StatusCode, Message: payload.Error}
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// ErrorResponse mirrors the server's error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
