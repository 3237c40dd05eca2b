package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestClient_StartImport(t *testing.T) {
	var got CreateImportRequest
	client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/imports", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		writeJSON(w, http.StatusCreated, map[string]any{
			"data": map[string]any{
				"batch":    map[string]any{"id": "b-1", "status": "PENDING", "languages": []string{"fr"}},
				"warnings": []string{"looks like en"},
			},
		})
	})

	resp, err := client.StartImport(CreateImportRequest{ProductsCSV: "/data/p.csv", Language: "fr"})

	require.NoError(t, err)
	assert.Equal(t, CreateImportRequest{ProductsCSV: "/data/p.csv", Language: "fr"}, got)
	assert.Equal(t, "b-1", resp.Batch.ID)
	assert.False(t, resp.Batch.Terminal())
	assert.Equal(t, []string{"looks like en"}, resp.Warnings)
}

func TestClient_ListImportsQuery(t *testing.T) {
	client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "FAILED", r.URL.Query().Get("status"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, map[string]any{
			"data":  []map[string]any{{"id": "b-1", "status": "FAILED"}},
			"total": 1,
		})
	})

	batches, err := client.ListImports(ListImportsOpts{Status: "FAILED", Limit: 5})

	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.True(t, batches[0].Terminal())
}

func TestClient_StopJobEscapesID(t *testing.T) {
	client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/jobs/node_product_translation:fr/stop", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"data": map[string]any{"id": "node_product_translation:fr", "status": "STOPPING"},
		})
	})

	job, err := client.StopJob("node_product_translation:fr")

	require.NoError(t, err)
	assert.Equal(t, "STOPPING", job.Status)
}

func TestClient_APIError(t *testing.T) {
	client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": map[string]any{
				"code":    "VALIDATION_FAILED",
				"message": "request validation failed",
				"fields":  map[string]string{"language": "the field 'language' must be a language code"},
			},
		})
	})

	_, err := client.GetSettings()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "VALIDATION_FAILED")
	assert.Contains(t, err.Error(), "language")
}

func TestClient_ErrorWithoutBody(t *testing.T) {
	client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.ListJobs()

	assert.EqualError(t, err, "API error: HTTP 502")
}

func TestWaitBatch(t *testing.T) {
	calls := 0
	client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		b := map[string]any{"id": "b-1", "status": "RUNNING", "messages": []string{"Continuing with node_product (processed 2 items)"}}
		if calls > 1 {
			b = map[string]any{
				"id":       "b-1",
				"status":   "SUCCEEDED",
				"messages": []string{"Continuing with node_product (processed 2 items)", "Upgraded node_product (processed 3 items total)"},
				"summary":  map[string]any{"successes": 1, "notices": []map[string]string{{"severity": "status", "text": "Content imported successfully."}}},
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": b})
	})

	var stderr bytes.Buffer
	out := &Output{w: &bytes.Buffer{}, errW: &stderr}

	b, err := waitBatch(client, out, "b-1", 0)

	require.NoError(t, err)
	assert.Equal(t, "SUCCEEDED", b.Status)
	assert.Equal(t, 2, calls)
	assert.Equal(t,
		"Continuing with node_product (processed 2 items)\nUpgraded node_product (processed 3 items total)\n",
		stderr.String(),
	)

	stderr.Reset()
	out.Notices(b.Summary)
	assert.Equal(t, "Content imported successfully.\n", stderr.String())
}
