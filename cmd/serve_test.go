package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reva-ai/extract-cli/internal/checkpoint"
	"github.com/reva-ai/extract-cli/internal/model"
)

func newTestProgressServer(seed map[string]model.ExtractionResult) *httptest.Server {
	router := newServeRouter(func() (checkpoint.Store, error) {
		return &checkpoint.MemoryStore{Seed: seed}, nil
	})
	return httptest.NewServer(router)
}

func TestServeHealth(t *testing.T) {
	ts := newTestProgressServer(nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestServeProgress(t *testing.T) {
	seed := map[string]model.ExtractionResult{
		"1": {RecordID: "1", Status: model.StatusSuccess, Source: model.SourceScopus, Abstract: "a"},
		"2": {RecordID: "2", Status: model.StatusSuccess, Source: model.SourceCrossref, Abstract: "b"},
		"3": {RecordID: "3", Status: model.StatusFailed, Source: model.SourceNone, Error: model.ErrorNoContentFound},
	}
	ts := newTestProgressServer(seed)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/progress")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats model.RunStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 3, stats.Attempted)
	assert.Equal(t, 1, stats.SucceededPrimary)
	assert.Equal(t, 1, stats.SucceededFallback)
	assert.Equal(t, 1, stats.Failed)
}

func TestServeResultByID(t *testing.T) {
	seed := map[string]model.ExtractionResult{
		"7": {RecordID: "7", Status: model.StatusSuccess, Source: model.SourceScopus, Abstract: "deep learning"},
	}
	ts := newTestProgressServer(seed)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/results/7")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result model.ExtractionResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "7", result.RecordID)
	assert.Equal(t, "deep learning", result.Abstract)
}

func TestServeResultNotFound(t *testing.T) {
	ts := newTestProgressServer(nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/results/99")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
