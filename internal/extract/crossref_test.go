package extract

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrossrefWork(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/works/10.1%2Fxyz", r.URL.EscapedPath())
		w.Write([]byte(`{"message":{"abstract":"<jats:p>Found via DOI</jats:p>","subject":["Economics","Climate","Economics"]}}`))
	}))
	defer ts.Close()

	c := NewCrossrefClient(ts.URL, "extract-cli-test/1.0", 5*time.Second)
	content, err := c.Work(context.Background(), "10.1/xyz")
	require.NoError(t, err)
	assert.Equal(t, "Found via DOI", content.Abstract)
	assert.Equal(t, []string{"Economics", "Climate"}, content.Keywords)
}

func TestCrossrefWorkNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Resource not found.", http.StatusNotFound)
	}))
	defer ts.Close()

	c := NewCrossrefClient(ts.URL, "extract-cli-test/1.0", 5*time.Second)
	content, err := c.Work(context.Background(), "10.9999/missing")
	assert.Error(t, err)
	assert.Nil(t, content)
	assert.NotErrorIs(t, err, ErrMalformed)
}

func TestCrossrefWorkMalformedJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": not json`))
	}))
	defer ts.Close()

	c := NewCrossrefClient(ts.URL, "extract-cli-test/1.0", 5*time.Second)
	content, err := c.Work(context.Background(), "10.1/xyz")
	assert.Nil(t, content)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestCrossrefWorkNoAbstract(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":{"title":["A work with no abstract"]}}`))
	}))
	defer ts.Close()

	c := NewCrossrefClient(ts.URL, "extract-cli-test/1.0", 5*time.Second)
	content, err := c.Work(context.Background(), "10.1/xyz")
	assert.Nil(t, content)
	assert.True(t, errors.Is(err, ErrNoAbstract))
}

func TestCrossrefWorkUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	c := NewCrossrefClient(url, "extract-cli-test/1.0", time.Second)
	content, err := c.Work(context.Background(), "10.1/xyz")
	assert.Error(t, err)
	assert.Nil(t, content)
}
