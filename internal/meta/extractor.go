// Package meta fetches remote pages and extracts their Open Graph metadata.
package meta

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/MrSnakeDoc/marks/internal/domain"
	"github.com/MrSnakeDoc/marks/internal/utils"
)

// Extractor performs a single GET against a page and pulls the Open Graph
// tags out of its HTML. There is no retry logic: a fetch either succeeds
// or the failure propagates to the caller immediately.
type Extractor struct {
	client *http.Client
}

// New builds an Extractor with the given fetch timeout.
func New(timeout time.Duration) *Extractor {
	return &Extractor{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Extract fetches url and returns its Open Graph metadata.
//
// A 404 from the page yields domain.ErrPageNotFound. Everything else that
// goes wrong (transport failure, unparsable body, any required og: tag
// missing) yields domain.ErrMetadataParse. Which tag was missing is
// deliberately not reported.
func (e *Extractor) Extract(ctx context.Context, url string) (domain.PageMeta, error) {
	resp, err := e.get(ctx, url)
	if err != nil {
		return domain.PageMeta{}, fmt.Errorf("%w: %v", domain.ErrMetadataParse, err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return domain.PageMeta{}, domain.ErrPageNotFound
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return domain.PageMeta{}, fmt.Errorf("%w: %v", domain.ErrMetadataParse, err)
	}

	title, ok := ogProperty(doc, "og:title")
	if !ok {
		return domain.PageMeta{}, domain.ErrMetadataParse
	}
	description, ok := ogProperty(doc, "og:description")
	if !ok {
		return domain.PageMeta{}, domain.ErrMetadataParse
	}
	imageURL, ok := ogProperty(doc, "og:image")
	if !ok {
		return domain.PageMeta{}, domain.ErrMetadataParse
	}
	canonicalURL, ok := ogProperty(doc, "og:url")
	if !ok {
		return domain.PageMeta{}, domain.ErrMetadataParse
	}
	rawType, ok := ogProperty(doc, "og:type")
	if !ok {
		return domain.PageMeta{}, domain.ErrMetadataParse
	}

	return domain.PageMeta{
		Title:        title,
		Description:  description,
		ImageURL:     imageURL,
		CanonicalURL: canonicalURL,
		PageType:     domain.CoercePageType(rawType),
	}, nil
}

// Gone issues a plain existence check against url and reports whether the
// page is confirmed gone. Only an explicit 404 counts: any other status is
// "still there" and a transport failure is returned as an error so the
// caller can leave the record alone.
func (e *Extractor) Gone(ctx context.Context, url string) (bool, error) {
	resp, err := e.get(ctx, url)
	if err != nil {
		return false, fmt.Errorf("probe %s: %w", url, err)
	}
	defer utils.Close(resp.Body)

	return resp.StatusCode == http.StatusNotFound, nil
}

func (e *Extractor) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	return resp, nil
}

// ogProperty reads the content attribute of <meta property="og:...">.
func ogProperty(doc *goquery.Document, property string) (string, bool) {
	return doc.Find(fmt.Sprintf(`meta[property=%q]`, property)).Attr("content")
}
