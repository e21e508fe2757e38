package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/docrat/docrat/server/internal/config"
	"github.com/docrat/docrat/server/internal/reading"
)

// News reads environmental headlines from NewsAPI and caches them for
// cacheTTL so frequent refreshes do not burn the request quota.
type News struct {
	baseURL  string
	query    string
	pageSize int
	key      string
	cacheTTL time.Duration
	client   *http.Client
	limiter  *rate.Limiter
	now      func() time.Time

	mu        sync.Mutex
	cached    []reading.Article
	fetchedAt time.Time
}

// NewNews builds the NewsAPI source. An empty key makes every Fetch return
// ErrNoAPIKey.
func NewNews(cfg config.NewsConfig) *News {
	size := cfg.PageSize
	if size <= 0 {
		size = 5
	}
	return &News{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		query:    cfg.Query,
		pageSize: size,
		key:      cfg.Key(),
		cacheTTL: cfg.CacheTTL,
		client:   &http.Client{Timeout: defaultHTTPTimeout},
		limiter:  limiterPerMinute(cfg.RatePerMinute),
		now:      time.Now,
	}
}

func (s *News) Kind() reading.Kind { return reading.KindNews }

type newsAPIResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string    `json:"title"`
		URL         string    `json:"url"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

// Fetch returns the latest headlines, served from cache while fresh.
func (s *News) Fetch(ctx context.Context) (reading.Reading, error) {
	if s.key == "" {
		return nil, ErrNoAPIKey
	}

	now := s.now().UTC()
	s.mu.Lock()
	if s.cached != nil && now.Sub(s.fetchedAt) < s.cacheTTL {
		arts := append([]reading.Article(nil), s.cached...)
		s.mu.Unlock()
		return reading.News{Articles: arts, Timestamp: now}, nil
	}
	s.mu.Unlock()

	q := url.Values{}
	q.Set("q", s.query)
	q.Set("sortBy", "publishedAt")
	q.Set("language", "en")
	q.Set("pageSize", fmt.Sprint(s.pageSize))
	u := s.baseURL + "/v2/everything?" + q.Encode()

	var resp newsAPIResponse
	hdr := http.Header{"X-Api-Key": []string{s.key}}
	if err := getJSON(ctx, s.client, s.limiter, u, hdr, &resp); err != nil {
		return nil, fmt.Errorf("news: %w", err)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("news: api status %q: %s", resp.Status, resp.Message)
	}

	arts := make([]reading.Article, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		if a.Title == "" || a.Title == "[Removed]" {
			continue
		}
		arts = append(arts, reading.Article{
			Headline:    a.Title,
			Source:      a.Source.Name,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
		})
		if len(arts) == s.pageSize {
			break
		}
	}
	if len(arts) == 0 {
		return nil, fmt.Errorf("news: no articles returned")
	}

	s.mu.Lock()
	s.cached = arts
	s.fetchedAt = now
	s.mu.Unlock()

	return reading.News{Articles: append([]reading.Article(nil), arts...), Timestamp: now}, nil
}
