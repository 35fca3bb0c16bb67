package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/reva-ai/extract-cli/internal/normalize"
)

// Sentinel errors for fallback classification.
var (
	// ErrNoAbstract means CrossRef knows the work but carries no abstract.
	ErrNoAbstract = eris.New("crossref: work has no abstract")
	// ErrMalformed means a response arrived but could not be parsed.
	ErrMalformed = eris.New("crossref: malformed response")
)

// CrossrefClient looks up work metadata by DOI via the CrossRef REST API.
type CrossrefClient struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewCrossrefClient creates a client against the given API base URL
// (normally https://api.crossref.org).
func NewCrossrefClient(baseURL, userAgent string, timeout time.Duration) *CrossrefClient {
	return &CrossrefClient{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
	}
}

// crossrefWork mirrors the subset of the works response we consume.
// Abstracts arrive as JATS XML fragments; normalization strips the markup.
type crossrefWork struct {
	Message struct {
		Abstract string   `json:"abstract"`
		Subject  []string `json:"subject"`
	} `json:"message"`
}

// Work fetches the work for a DOI and returns its normalized abstract and
// subject keywords. Returns ErrNoAbstract when the work exists without an
// abstract, ErrMalformed when the body is not valid JSON.
func (c *CrossrefClient) Work(ctx context.Context, doi string) (*Content, error) {
	endpoint := c.baseURL + "/works/" + url.PathEscape(doi)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, eris.Wrap(err, "crossref: create request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "crossref: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("crossref: status %d for doi %s", resp.StatusCode, doi)
	}

	var work crossrefWork
	if err := json.NewDecoder(resp.Body).Decode(&work); err != nil {
		return nil, eris.Wrap(ErrMalformed, err.Error())
	}

	abstract := normalize.Text(work.Message.Abstract)
	if abstract == "" {
		return nil, ErrNoAbstract
	}

	var keywords []string
	for _, s := range work.Message.Subject {
		if kw := normalize.Text(s); kw != "" {
			keywords = append(keywords, kw)
		}
	}

	return &Content{Abstract: abstract, Keywords: normalize.Dedupe(keywords)}, nil
}
