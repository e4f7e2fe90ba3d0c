// Package enrich resolves display metadata (title, cover image, canonical
// link) for a tracked query's source page, typically its MyAnimeList entry.
// Lookups are cached in the guild store and never expire.
package enrich

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"feedbot/models"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

// CacheRepository is the store-backed cache the lookups go through.
type CacheRepository interface {
	Get(ctx context.Context, guildID int64, url string) (*models.Enrichment, error)
	Put(ctx context.Context, e *models.Enrichment) error
}

// Service fetches OpenGraph metadata with an indefinite per-guild cache.
type Service struct {
	cache  CacheRepository
	client *http.Client
}

// NewService creates an enrichment service over the given cache.
func NewService(cache CacheRepository) *Service {
	return &Service{
		cache:  cache,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Lookup returns the enrichment for a URL, fetching and caching it on a miss.
func (s *Service) Lookup(ctx context.Context, guildID int64, pageURL string) (*models.Enrichment, error) {
	cached, err := s.cache.Get(ctx, guildID, pageURL)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	enrichment, err := s.scrape(ctx, guildID, pageURL)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Put(ctx, enrichment); err != nil {
		// A failed cache write just means a refetch next time
		log.Warnf("Failed to cache enrichment for %s: %v", pageURL, err)
	}

	return enrichment, nil
}

// scrape pulls the page and extracts og:title / og:image / og:url, falling
// back to the document title.
func (s *Service) scrape(ctx context.Context, guildID int64, pageURL string) (*models.Enrichment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build enrichment request for %s: %w", pageURL, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}

	enrichment := &models.Enrichment{
		GuildID: guildID,
		URL:     pageURL,
	}

	if title := metaProperty(doc, "og:title"); title != "" {
		enrichment.Title = &title
	} else if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		enrichment.Title = &title
	}

	if image := metaProperty(doc, "og:image"); image != "" {
		enrichment.ImageURL = &image
	}

	if canonical := metaProperty(doc, "og:url"); canonical != "" {
		enrichment.CanonicalURL = &canonical
	}

	return enrichment, nil
}

func metaProperty(doc *goquery.Document, property string) string {
	content, _ := doc.Find(fmt.Sprintf(`meta[property=%q]`, property)).First().Attr("content")
	return strings.TrimSpace(content)
}
