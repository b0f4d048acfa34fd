package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thidua-hub/school-merit-hub/internal/application/command"
	"github.com/thidua-hub/school-merit-hub/internal/application/query"
	"github.com/thidua-hub/school-merit-hub/internal/domain/period"
	"github.com/thidua-hub/school-merit-hub/internal/domain/ranking"
	"github.com/thidua-hub/school-merit-hub/internal/domain/shared"
	"github.com/thidua-hub/school-merit-hub/internal/infrastructure/export"
	"github.com/thidua-hub/school-merit-hub/internal/infrastructure/persistence/memory"
	"github.com/thidua-hub/school-merit-hub/pkg/logger"
)

type discardPublisher struct{}

func (discardPublisher) Publish(shared.Event) error { return nil }

// newTestServer wires a full server against the seeded in-memory store.
func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()

	store := memory.Fixture()
	log := logger.New(logger.Options{Output: io.Discard})
	events := discardPublisher{}
	resolver := period.NewResolver(store)
	calc := ranking.NewCalculator()
	cache := query.NewNoopCache()

	createEntry := command.NewCreateScoreEntryHandler(store, store, store, store, store, resolver, store, events, log)
	deleteEntry := command.NewDeleteScoreEntryHandler(store, store, store, store, resolver, store, events, log)
	setLock := command.NewSetLockStatusHandler(store, store, store, store, events, log)

	rankings := query.NewGetRankingsHandler(store, calc, cache, log)
	stats := query.NewGetViolationStatsHandler(store, calc, cache, log)
	auditLog := query.NewGetAuditLogHandler(store)

	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 0

	server := NewServer(cfg, Dependencies{
		Authenticate:   command.NewAuthenticateHandler(store, log),
		CreateEntry:    createEntry,
		DeleteEntry:    deleteEntry,
		SetLock:        setLock,
		Override:       command.NewOverrideCoordinator(createEntry, deleteEntry, setLock, log),
		Catalog:        command.NewCatalogHandler(store, store, store, store, store, store, store, log),
		UserAdmin:      command.NewUserAdminHandler(store, store, store, log),
		Rankings:       rankings,
		ViolationStats: stats,
		AuditLog:       auditLog,
		Export:         query.NewExportReportHandler(rankings, stats, auditLog, export.NewExcelExporter(), "Report", 0),
		Periods:        store,
		Settings:       store,
		Classes:        store,
		Violations:     store,
		Users:          store,
		Logger:         log,
	})
	return server, store
}

func doJSON(t *testing.T, server *Server, method, path, actor string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != "" {
		req.Header.Set("X-Actor-ID", actor)
	}

	rec := httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp struct {
		Success bool                   `json:"success"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Data
}

func TestServer_Health(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_Login(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "admin",
		"password": "Demo@123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeData(t, rec)
	assert.Equal(t, "u1", data["user_id"])
	assert.Equal(t, "ADMIN", data["role"])
	assert.Equal(t, true, data["must_change_password"])
}

func TestServer_LoginBadCredentials(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "admin",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_CreateScoreEntry(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/score-entries", "u2", map[string]interface{}{
		"week_id":       "w1",
		"class_id":      "c1",
		"violation_id":  "v1",
		"student_count": 3,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestServer_CreateScoreEntryLockedWeek(t *testing.T) {
	server, store := newTestServer(t)

	week, err := store.GetWeek(context.Background(), "w1")
	require.NoError(t, err)
	week.Status = period.StatusLocked
	require.NoError(t, store.SaveWeek(context.Background(), week))

	body := map[string]interface{}{
		"week_id":       "w1",
		"class_id":      "c1",
		"violation_id":  "v1",
		"student_count": 3,
	}

	t.Run("duty teacher gets 423", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/api/v1/score-entries", "u2", body)
		assert.Equal(t, http.StatusLocked, rec.Code)
	})

	t.Run("admin is parked then confirms", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/api/v1/score-entries", "u1", body)
		require.Equal(t, http.StatusAccepted, rec.Code)

		pending := doJSON(t, server, http.MethodGet, "/api/v1/override/pending", "u1", nil)
		assert.Equal(t, http.StatusOK, pending.Code)

		confirm := doJSON(t, server, http.MethodPost, "/api/v1/override/confirm", "u1", map[string]string{
			"reason": "late report accepted by the principal",
		})
		require.Equal(t, http.StatusOK, confirm.Code)

		entries, err := store.ListEntries(context.Background())
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}

func TestServer_ConfirmShortReasonKeepsPending(t *testing.T) {
	server, store := newTestServer(t)

	week, err := store.GetWeek(context.Background(), "w1")
	require.NoError(t, err)
	week.Status = period.StatusLocked
	require.NoError(t, store.SaveWeek(context.Background(), week))

	rec := doJSON(t, server, http.MethodPost, "/api/v1/score-entries", "u1", map[string]interface{}{
		"week_id":       "w1",
		"class_id":      "c1",
		"violation_id":  "v1",
		"student_count": 1,
	})
	require.Equal(t, http.StatusAccepted, rec.Code)

	confirm := doJSON(t, server, http.MethodPost, "/api/v1/override/confirm", "u1", map[string]string{
		"reason": "too shrt",
	})
	assert.Equal(t, http.StatusBadRequest, confirm.Code)

	// The parked action survives for a retry.
	pending := doJSON(t, server, http.MethodGet, "/api/v1/override/pending", "u1", nil)
	assert.Equal(t, http.StatusOK, pending.Code)
}

func TestServer_Rankings(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/api/v1/rankings?period_type=WEEK&target_id=w1", "u2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []ranking.Item `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 3)
	assert.Equal(t, 1, resp.Data[0].Rank)
	assert.InDelta(t, 100.0, resp.Data[0].TotalPoints, 1e-9)
}

func TestServer_RankingsMissingTarget(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/api/v1/rankings", "u2", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_SetLockForbiddenForDutyTeacher(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodPut, "/api/v1/locks", "u2", map[string]string{
		"target_type": "WEEK",
		"target_id":   "w1",
		"new_status":  "LOCKED",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestServer_Export(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/api/v1/export?kind=rankings&period_type=WEEK&target_id=w1", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "rankings-")
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestServer_UserListHidesPasswords(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/api/v1/users", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Demo@123")
}
