package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credocarbon/config"
	"credocarbon/middleware"
	"credocarbon/registry"
	"credocarbon/storage"
)

// memStore is an in-memory document store for handler tests.
type memStore struct {
	docs map[string][]byte
}

func (m *memStore) ReadDocument(_ context.Context, name string) ([]byte, error) {
	data, ok := m.docs[name]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

func (m *memStore) WriteDocument(_ context.Context, name string, data []byte) error {
	m.docs[name] = data
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:     []byte("handler-test-secret-0123456789abcd"),
		TokenTTL:      time.Hour,
		AdminUsername: "admin",
		AdminPassword: "correct-password",
		RegistryFile:  "registryData.json",
		InsightsFile:  "insightsData.json",
	}
}

// testApp wires handlers the way routes.go does, over an in-memory store.
func testApp(t *testing.T, store *memStore) (*fiber.App, *config.Config) {
	t.Helper()
	cfg := testConfig()
	svc := registry.NewService(store, cfg)

	authHandler := NewAuthHandler(cfg)
	registryHandler := NewRegistryHandler(svc)
	insightsHandler := NewInsightsHandler(svc)

	app := fiber.New()
	api := app.Group("/api")
	api.Post("/auth/login", authHandler.Login)

	protected := api.Group("", middleware.RequireAuth(cfg.JWTSecret))
	protected.Get("/auth/me", authHandler.Me)
	protected.Get("/registry", registryHandler.GetRegistry)
	protected.Put("/registry", registryHandler.ReplaceRegistry)
	protected.Post("/registry/:type", registryHandler.CreateEntry)
	protected.Put("/registry/:type/:id", registryHandler.UpdateEntry)
	protected.Delete("/registry/:type/:id", registryHandler.DeleteEntry)
	protected.Get("/insights", insightsHandler.GetInsights)
	protected.Put("/insights", insightsHandler.ReplaceInsights)

	return app, cfg
}

func seedRegistry(t *testing.T, store *memStore, data *registry.Data) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	store.docs["registryData.json"] = raw
}

func sampleRegistry() *registry.Data {
	return &registry.Data{
		CarbonRegistries: []registry.Entry{
			{ID: "verra", Name: "Verra", Country: "United States", Issued: 1000, Retired: 400},
		},
		RecRegistries: []registry.Entry{
			{ID: "i-rec", Name: "I-REC", Country: "Netherlands", Issued: 300},
		},
		EtsRegistries: []registry.Entry{
			{ID: "eu-ets", Name: "EU ETS", Country: "Belgium"},
		},
	}
}

func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func login(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, err := app.Test(jsonRequest("POST", "/api/auth/login", LoginRequest{
		Username: "admin",
		Password: "correct-password",
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.AccessToken)
	require.Equal(t, "bearer", body.TokenType)
	return body.AccessToken
}

func authed(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestLoginIssuesUsableToken(t *testing.T) {
	store := &memStore{docs: map[string][]byte{}}
	app, _ := testApp(t, store)

	token := login(t, app)

	resp, err := app.Test(authed(httptest.NewRequest("GET", "/api/auth/me", nil), token))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "admin", body["username"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	store := &memStore{docs: map[string][]byte{}}
	app, _ := testApp(t, store)

	tests := []struct {
		name string
		req  LoginRequest
	}{
		{"wrong password", LoginRequest{Username: "admin", Password: "wrong"}},
		{"wrong username", LoginRequest{Username: "root", Password: "correct-password"}},
		{"empty", LoginRequest{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(jsonRequest("POST", "/api/auth/login", tt.req))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestRegistryRequiresAuth(t *testing.T) {
	store := &memStore{docs: map[string][]byte{}}
	app, _ := testApp(t, store)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/registry", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestGetRegistry(t *testing.T) {
	store := &memStore{docs: map[string][]byte{}}
	app, _ := testApp(t, store)
	seedRegistry(t, store, sampleRegistry())
	token := login(t, app)

	resp, err := app.Test(authed(httptest.NewRequest("GET", "/api/registry", nil), token))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var data registry.Data
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))
	assert.Len(t, data.CarbonRegistries, 1)
}

func TestGetRegistryMissingDataset(t *testing.T) {
	store := &memStore{docs: map[string][]byte{}}
	app, _ := testApp(t, store)
	token := login(t, app)

	resp, err := app.Test(authed(httptest.NewRequest("GET", "/api/registry", nil), token))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestReplaceRegistryRecomputesTotals(t *testing.T) {
	store := &memStore{docs: map[string][]byte{}}
	app, _ := testApp(t, store)
	token := login(t, app)

	resp, err := app.Test(authed(jsonRequest("PUT", "/api/registry", sampleRegistry()), token))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var data registry.Data
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))
	require.NotNil(t, data.Totals)
	assert.Equal(t, 3, data.Totals.TotalRegistries)
	assert.NotEmpty(t, data.LastUpdated)
}

func TestCreateEntryAssignsID(t *testing.T) {
	store := &memStore{docs: map[string][]byte{}}
	app, _ := testApp(t, store)
	seedRegistry(t, store, sampleRegistry())
	token := login(t, app)

	resp, err := app.Test(authed(jsonRequest("POST", "/api/registry/carbon", registry.Entry{
		Name:    "Gold Standard",
		Country: "Switzerland",
		Issued:  500,
	}), token))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var data registry.Data
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))
	require.Len(t, data.CarbonRegistries, 2)
	assert.NotEmpty(t, data.CarbonRegistries[1].ID)
	assert.Equal(t, float64(1500), data.Totals.Carbon.Issued)
}

func TestCreateEntryUnknownType(t *testing.T) {
	store := &memStore{docs: map[string][]byte{}}
	app, _ := testApp(t, store)
	seedRegistry(t, store, sampleRegistry())
	token := login(t, app)

	resp, err := app.Test(authed(jsonRequest("POST", "/api/registry/voluntary", registry.Entry{Name: "X"}), token))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUpdateEntryNotFound(t *testing.T) {
	store := &memStore{docs: map[string][]byte{}}
	app, _ := testApp(t, store)
	seedRegistry(t, store, sampleRegistry())
	token := login(t, app)

	resp, err := app.Test(authed(jsonRequest("PUT", "/api/registry/carbon/missing", registry.Entry{Name: "X"}), token))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeleteEntry(t *testing.T) {
	store := &memStore{docs: map[string][]byte{}}
	app, _ := testApp(t, store)
	seedRegistry(t, store, sampleRegistry())
	token := login(t, app)

	resp, err := app.Test(authed(httptest.NewRequest("DELETE", "/api/registry/ets/eu-ets", nil), token))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(authed(httptest.NewRequest("DELETE", "/api/registry/ets/eu-ets", nil), token))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestInsightsRoundTrip(t *testing.T) {
	store := &memStore{docs: map[string][]byte{}}
	app, _ := testApp(t, store)
	token := login(t, app)

	resp, err := app.Test(authed(jsonRequest("PUT", "/api/insights", map[string]any{
		"articles": []any{map[string]any{"title": "Market update"}},
	}), token))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(authed(httptest.NewRequest("GET", "/api/insights", nil), token))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var data map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))
	assert.NotEmpty(t, data["lastUpdated"])
}
