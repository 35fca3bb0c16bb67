package extract

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/reva-ai/extract-cli/internal/model"
)

// PageSource extracts abstracts from the paper's own page. It is stateless
// apart from configuration; every call performs at most one fetch.
type PageSource struct {
	client     *http.Client
	userAgent  string
	strategies []Strategy
}

// NewPageSource creates a PageSource with the given timeout and strategy
// order. With no strategies, DefaultStrategies is used.
func NewPageSource(timeout time.Duration, userAgent string, strategies ...Strategy) *PageSource {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &PageSource{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: timeout,
				}).DialContext,
				TLSHandshakeTimeout: timeout,
			},
		},
		userAgent:  userAgent,
		strategies: strategies,
	}
}

// Extract fetches the page once and runs the strategies in order. A page
// that loads but matches no strategy is a plain absence, not an error; it
// reports ErrorNoContentFound so the caller can fall through to the DOI
// lookup exactly as for an unreachable host.
func (p *PageSource) Extract(ctx context.Context, pageURL string) (*Content, model.ErrorKind) {
	doc, err := p.fetch(ctx, pageURL)
	if err != nil {
		zap.L().Debug("page: fetch failed",
			zap.String("url", pageURL),
			zap.Error(err),
		)
		return nil, model.ErrorSourceUnreachable
	}

	for _, s := range p.strategies {
		text, ok := s.Extract(doc)
		if !ok {
			zap.L().Debug("page: strategy missed, trying next",
				zap.String("strategy", s.Name()),
				zap.String("url", pageURL),
			)
			continue
		}
		return &Content{Abstract: text, Keywords: pageKeywords(doc)}, model.ErrorNone
	}

	return nil, model.ErrorNoContentFound
}

func (p *PageSource) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "page: create request")
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "page: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("page: status %d from %s", resp.StatusCode, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "page: parse html")
	}
	return doc, nil
}
