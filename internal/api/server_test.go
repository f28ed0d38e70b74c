// internal/api/server_test.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SDRoan/Filebox-sub002/internal/config"
	"github.com/SDRoan/Filebox-sub002/internal/organizer"
	"github.com/SDRoan/Filebox-sub002/internal/ratelimit"
)

func newTestServer(t *testing.T) (*Server, *organizer.Service) {
	t.Helper()

	cfg := &config.Config{
		RateLimit: ratelimit.Config{RatePerSecond: 1000, Burst: 1000},
	}
	cfg.ApplyDefaults()

	svc := organizer.NewService(organizer.NewMemoryStore(), cfg.Organizer, nil, zap.NewNop())
	t.Cleanup(svc.Close)

	return NewServer(cfg, zap.NewNop(), svc), svc
}

func doJSON(t *testing.T, handler http.Handler, method, path, owner string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if owner != "" {
		req.Header.Set("X-Owner-ID", owner)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestServer_MoveEventAndSuggestions(t *testing.T) {
	server, svc := newTestServer(t)

	move := map[string]interface{}{
		"file": map[string]interface{}{
			"id":           "f1",
			"display_name": "invoice_2024.pdf",
			"extension":    "pdf",
			"mime_type":    "application/pdf",
			"size":         2048,
		},
		"source_folder_id":        "inbox",
		"destination_folder_id":   "finance",
		"destination_folder_name": "Finance",
	}
	for i := 0; i < 3; i++ {
		rec := doJSON(t, server.Router(), http.MethodPost, "/api/organizer/events/move", "owner-1", move)
		assert.Equal(t, http.StatusAccepted, rec.Code)
	}
	svc.Flush()

	rec := doJSON(t, server.Router(), http.MethodGet,
		"/api/organizer/suggestions?display_name=invoice_2025.pdf&extension=pdf&mime_type=application/pdf&current_folder_id=inbox",
		"owner-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Suggestions []organizer.Suggestion `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Suggestions, 1)
	assert.Equal(t, "finance", resp.Suggestions[0].DestinationFolderID)
	assert.Equal(t, "Finance", resp.Suggestions[0].DestinationFolderName)
}

func TestServer_SuggestionsEmptyForNewOwner(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server.Router(), http.MethodGet,
		"/api/organizer/suggestions?extension=pdf", "fresh-owner", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Suggestions []organizer.Suggestion `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Suggestions)
}

func TestServer_Feedback(t *testing.T) {
	server, svc := newTestServer(t)

	p := svc.Record(context.Background(), organizer.MoveEvent{
		OwnerID:               "owner-1",
		File:                  organizer.FileDescriptor{DisplayName: "invoice_2024.pdf", Extension: "pdf"},
		SourceFolderID:        "inbox",
		DestinationFolderID:   "finance",
		DestinationFolderName: "Finance",
	})
	require.NotNil(t, p)

	t.Run("accept", func(t *testing.T) {
		rec := doJSON(t, server.Router(), http.MethodPost,
			fmt.Sprintf("/api/organizer/patterns/%s/feedback", p.ID), "owner-1",
			map[string]string{"action": "accepted"})
		require.Equal(t, http.StatusOK, rec.Code)

		var updated organizer.OrganizationPattern
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Greater(t, updated.Confidence, p.Confidence)
	})

	t.Run("unknown action is a 400", func(t *testing.T) {
		rec := doJSON(t, server.Router(), http.MethodPost,
			fmt.Sprintf("/api/organizer/patterns/%s/feedback", p.ID), "owner-1",
			map[string]string{"action": "shrugged"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("cross-tenant feedback is a 404", func(t *testing.T) {
		rec := doJSON(t, server.Router(), http.MethodPost,
			fmt.Sprintf("/api/organizer/patterns/%s/feedback", p.ID), "owner-2",
			map[string]string{"action": "accepted"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("dismiss", func(t *testing.T) {
		rec := doJSON(t, server.Router(), http.MethodPost,
			fmt.Sprintf("/api/organizer/patterns/%s/dismiss", p.ID), "owner-1", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var updated organizer.OrganizationPattern
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.False(t, updated.IsActive)
	})
}

func TestServer_MetricsLabelRoutePatterns(t *testing.T) {
	server, svc := newTestServer(t)

	p := svc.Record(context.Background(), organizer.MoveEvent{
		OwnerID:               "owner-1",
		File:                  organizer.FileDescriptor{DisplayName: "invoice_2024.pdf", Extension: "pdf"},
		SourceFolderID:        "inbox",
		DestinationFolderID:   "finance",
		DestinationFolderName: "Finance",
	})
	require.NotNil(t, p)

	rec := doJSON(t, server.Router(), http.MethodPost,
		fmt.Sprintf("/api/organizer/patterns/%s/feedback", p.ID), "owner-1",
		map[string]string{"action": "accepted"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, server.Router(), http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Request metrics are labeled with the route pattern, never the
	// raw path, so pattern ids cannot blow up label cardinality.
	body := rec.Body.String()
	assert.Contains(t, body, "/api/organizer/patterns/{patternID}/feedback")
	assert.NotContains(t, body, p.ID)
}

func TestServer_RequiresOwnerHeader(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server.Router(), http.MethodGet, "/api/organizer/suggestions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_MoveEventValidation(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server.Router(), http.MethodPost, "/api/organizer/events/move", "owner-1",
		map[string]interface{}{"file": map[string]string{"display_name": "a.pdf"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_RenameFolder(t *testing.T) {
	server, svc := newTestServer(t)

	p := svc.Record(context.Background(), organizer.MoveEvent{
		OwnerID:               "owner-1",
		File:                  organizer.FileDescriptor{DisplayName: "a.pdf", Extension: "pdf"},
		SourceFolderID:        "inbox",
		DestinationFolderID:   "finance",
		DestinationFolderName: "Finance",
	})
	require.NotNil(t, p)

	rec := doJSON(t, server.Router(), http.MethodPost, "/api/organizer/folders/finance/name",
		"owner-1", map[string]string{"name": "Accounting"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp["updated"])
}

func TestServer_Health(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server.Router(), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_Stats(t *testing.T) {
	server, svc := newTestServer(t)

	svc.Record(context.Background(), organizer.MoveEvent{
		OwnerID:             "owner-1",
		File:                organizer.FileDescriptor{DisplayName: "a.pdf", Extension: "pdf"},
		SourceFolderID:      "inbox",
		DestinationFolderID: "finance",
	})

	rec := doJSON(t, server.Router(), http.MethodGet, "/api/organizer/stats", "owner-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats organizer.OwnerStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.ActivePatterns)
}
