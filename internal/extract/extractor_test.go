package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/reva-ai/extract-cli/internal/model"
)

// newCountingServer serves the given body and counts requests.
func newCountingServer(body string, status int) (*httptest.Server, *atomic.Int64) {
	var hits atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	return ts, &hits
}

func newTestExtractor(crossrefURL string) *Extractor {
	return New(
		NewPageSource(time.Second, "extract-cli-test/1.0"),
		NewCrossrefClient(crossrefURL, "extract-cli-test/1.0", time.Second),
	)
}

func TestExtractPrimarySuccess(t *testing.T) {
	page, pageHits := newCountingServer(abstractDivPage, http.StatusOK)
	defer page.Close()
	api, apiHits := newCountingServer(`{"message":{"abstract":"never used"}}`, http.StatusOK)
	defer api.Close()

	e := newTestExtractor(api.URL)
	res := e.Extract(context.Background(), Locator{URL: page.URL, DOI: "10.1/xyz"})

	assert.Equal(t, model.StatusSuccess, res.Status)
	assert.Equal(t, model.SourceScopus, res.Source)
	assert.Equal(t, "Found in the generic div.", res.Abstract)
	assert.Equal(t, model.ErrorNone, res.Error)
	assert.EqualValues(t, 1, pageHits.Load())
	// Fallback is never attempted when primary extraction succeeds.
	assert.EqualValues(t, 0, apiHits.Load())
}

func TestExtractFallbackOnDeadURL(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := page.URL
	page.Close()

	api, apiHits := newCountingServer(`{"message":{"abstract":"Found via DOI"}}`, http.StatusOK)
	defer api.Close()

	e := newTestExtractor(api.URL)
	res := e.Extract(context.Background(), Locator{URL: deadURL, DOI: "10.1/xyz"})

	assert.Equal(t, model.StatusSuccess, res.Status)
	assert.Equal(t, model.SourceCrossref, res.Source)
	assert.Equal(t, "Found via DOI", res.Abstract)
	assert.EqualValues(t, 1, apiHits.Load())
}

func TestExtractFallbackOnEmptyPage(t *testing.T) {
	page, _ := newCountingServer(emptyPage, http.StatusOK)
	defer page.Close()
	api, apiHits := newCountingServer(`{"message":{"abstract":"Found via DOI"}}`, http.StatusOK)
	defer api.Close()

	e := newTestExtractor(api.URL)
	res := e.Extract(context.Background(), Locator{URL: page.URL, DOI: "10.1/xyz"})

	assert.Equal(t, model.StatusSuccess, res.Status)
	assert.Equal(t, model.SourceCrossref, res.Source)
	assert.EqualValues(t, 1, apiHits.Load())
}

func TestExtractNoLocatorNoNetworkCalls(t *testing.T) {
	page, pageHits := newCountingServer(abstractDivPage, http.StatusOK)
	defer page.Close()
	api, apiHits := newCountingServer(`{}`, http.StatusOK)
	defer api.Close()

	e := newTestExtractor(api.URL)
	res := e.Extract(context.Background(), Locator{})

	assert.Equal(t, model.StatusFailed, res.Status)
	assert.Equal(t, model.SourceNone, res.Source)
	assert.Equal(t, model.ErrorNoContentFound, res.Error)
	assert.EqualValues(t, 0, pageHits.Load())
	assert.EqualValues(t, 0, apiHits.Load())
}

func TestExtractPrimaryFailsNoDOI(t *testing.T) {
	page, _ := newCountingServer("", http.StatusServiceUnavailable)
	defer page.Close()
	api, apiHits := newCountingServer(`{}`, http.StatusOK)
	defer api.Close()

	e := newTestExtractor(api.URL)
	res := e.Extract(context.Background(), Locator{URL: page.URL})

	assert.Equal(t, model.StatusFailed, res.Status)
	assert.Equal(t, model.ErrorSourceUnreachable, res.Error)
	assert.EqualValues(t, 0, apiHits.Load())
}

func TestExtractBothFail(t *testing.T) {
	page, _ := newCountingServer(emptyPage, http.StatusOK)
	defer page.Close()
	api, _ := newCountingServer("Resource not found.", http.StatusNotFound)
	defer api.Close()

	e := newTestExtractor(api.URL)
	res := e.Extract(context.Background(), Locator{URL: page.URL, DOI: "10.9999/missing"})

	assert.Equal(t, model.StatusFailed, res.Status)
	assert.Equal(t, model.SourceNone, res.Source)
	assert.Equal(t, model.ErrorFallbackUnavailable, res.Error)
}

func TestExtractMalformedFallback(t *testing.T) {
	page, _ := newCountingServer(emptyPage, http.StatusOK)
	defer page.Close()
	api, _ := newCountingServer(`{"message": broken`, http.StatusOK)
	defer api.Close()

	e := newTestExtractor(api.URL)
	res := e.Extract(context.Background(), Locator{URL: page.URL, DOI: "10.1/xyz"})

	assert.Equal(t, model.StatusFailed, res.Status)
	assert.Equal(t, model.ErrorMalformedResponse, res.Error)
}

func TestExtractDOIOnly(t *testing.T) {
	api, _ := newCountingServer(`{"message":{"abstract":"<jats:p>DOI only</jats:p>"}}`, http.StatusOK)
	defer api.Close()

	e := newTestExtractor(api.URL)
	res := e.Extract(context.Background(), Locator{DOI: "10.1/solo"})

	assert.Equal(t, model.StatusSuccess, res.Status)
	assert.Equal(t, model.SourceCrossref, res.Source)
	assert.Equal(t, "DOI only", res.Abstract)
}
