package search

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eidolonhq/eidolon/internal/cache"
	"github.com/eidolonhq/eidolon/internal/model"
)

// CachedSearcher replays identical queries from a cache instead of spending
// budget on them. Only successful responses are cached; a "none" outcome is
// retried on the next call.
type CachedSearcher struct {
	inner Searcher
	cache cache.Cache
	ttl   time.Duration
	log   *logrus.Logger
}

type cachedResponse struct {
	Provider string               `json:"provider"`
	Results  []model.SearchResult `json:"results"`
}

// NewCachedSearcher wraps a searcher with a response cache.
func NewCachedSearcher(inner Searcher, c cache.Cache, ttl time.Duration, log *logrus.Logger) *CachedSearcher {
	if log == nil {
		log = logrus.New()
	}
	return &CachedSearcher{inner: inner, cache: c, ttl: ttl, log: log}
}

func (s *CachedSearcher) Search(ctx context.Context, query string, limit int) (string, []model.SearchResult) {
	key := cache.Key("search", query, strconv.Itoa(limit))

	if data, ok := s.cache.Get(key); ok {
		var resp cachedResponse
		if err := json.Unmarshal(data, &resp); err == nil {
			s.log.WithFields(logrus.Fields{"query": query, "provider": resp.Provider}).Debug("search cache hit")
			return resp.Provider, resp.Results
		}
	}

	provider, results := s.inner.Search(ctx, query, limit)
	if provider == "none" {
		return provider, results
	}

	if data, err := json.Marshal(cachedResponse{Provider: provider, Results: results}); err == nil {
		if err := s.cache.Set(key, data, s.ttl); err != nil {
			s.log.WithError(err).Debug("search cache write failed")
		}
	}
	return provider, results
}
