package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"FilingScanner/internal/config"
	"FilingScanner/internal/domain"
	"FilingScanner/internal/scanner"
)

// EdgarClient fetches a company's latest annual filing page from SEC EDGAR
// and reduces it to plain text for the analysis core.
type EdgarClient struct {
	client      *http.Client
	urlTemplate string
	userAgent   string
}

var _ scanner.Scanner = (*EdgarClient)(nil)

// NewEdgarClient wires an HTTP client; a nil client gets a 20s timeout.
func NewEdgarClient(client *http.Client, cfg config.IngestionConfig) *EdgarClient {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &EdgarClient{
		client:      client,
		urlTemplate: cfg.URLTemplate,
		userAgent:   cfg.UserAgent,
	}
}

// Name identifies the strategy inside the registry.
func (c *EdgarClient) Name() string {
	return "edgar"
}

// Fetch downloads the filing document for the ticker and strips it to text.
func (c *EdgarClient) Fetch(ctx context.Context, req scanner.Request) (domain.FilingDocument, error) {
	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" {
		return domain.FilingDocument{}, fmt.Errorf("empty ticker")
	}

	pageURL := fmt.Sprintf(c.urlTemplate, url.QueryEscape(ticker))
	doc, err := c.fetchDocument(ctx, pageURL)
	if err != nil {
		return domain.FilingDocument{}, fmt.Errorf("ticker %s: %w", ticker, err)
	}

	return domain.FilingDocument{
		Identifier: fmt.Sprintf("%s-10K", ticker),
		Ticker:     ticker,
		FiledAt:    time.Now().UTC(),
		Text:       extractText(doc),
	}, nil
}

func (c *EdgarClient) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("edgar returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

// extractText drops markup and collapses runs of whitespace so the core
// sees a continuous prose stream with sentence punctuation intact.
func extractText(doc *goquery.Document) string {
	doc.Find("script, style, noscript").Remove()

	text := doc.Text()
	return strings.Join(strings.Fields(text), " ")
}
