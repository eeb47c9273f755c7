package selectors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/jonathan/careerstack/internal/cache"
	"github.com/jonathan/careerstack/internal/fetch"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CacheKey is the cache entry holding the last fetched remote document.
const CacheKey = "scrapers_config"

// DefaultTTL is how long a cached document is served without a background refresh.
const DefaultTTL = 6 * time.Hour

// DefaultSources are the published copies of the document, tried in order.
var DefaultSources = []string{
	"https://cdn.jsdelivr.net/gh/musavirchukkan/CareerStack-AI@main/src/config/selectors.json",
	"https://gist.github.com/musavirchukkan/018a11ff4c1c779a157377c1ca2c6bcb/raw/selectors.json",
	"https://raw.githubusercontent.com/musavirchukkan/CareerStack-AI/main/src/config/selectors.json",
}

// Source tells where a document returned by the Loader came from.
type Source string

const (
	SourceCache   Source = "cache"
	SourceRemote  Source = "remote"
	SourceBundled Source = "bundled"
)

// cacheEntry is the stored form of a fetched document. Timestamp is Unix milliseconds.
type cacheEntry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	Sources      []string
	TTL          time.Duration
	FetchOptions *fetch.Options
	Logger       *zap.Logger
	// Now is overridable for tests.
	Now func() time.Time
}

// Loader resolves the remote selector document: fresh cache first, a stale cache served
// while a background refresh runs, then an awaited fetch.
type Loader struct {
	store   cache.Store
	sources []string
	ttl     time.Duration
	opts    *fetch.Options
	logger  *zap.Logger
	now     func() time.Time

	group singleflight.Group
	wg    sync.WaitGroup
}

// NewLoader creates a Loader backed by store. A nil store disables caching.
func NewLoader(store cache.Store, opts LoaderOptions) *Loader {
	l := &Loader{
		store:   store,
		sources: opts.Sources,
		ttl:     opts.TTL,
		opts:    opts.FetchOptions,
		logger:  opts.Logger,
		now:     opts.Now,
	}
	if len(l.sources) == 0 {
		l.sources = DefaultSources
	}
	if l.ttl <= 0 {
		l.ttl = DefaultTTL
	}
	if l.logger == nil {
		l.logger = zap.NewNop()
	}
	if l.now == nil {
		l.now = time.Now
	}
	return l
}

// Get returns the override document for the scrapers and where it came from.
// It never fails: when neither cache nor network can supply a document it returns nil
// with SourceBundled, meaning the bundled tables apply unchanged.
func (l *Loader) Get(ctx context.Context) (*Document, Source) {
	doc, ts, err := l.cached(ctx)
	if err != nil && !errors.Is(err, cache.ErrNotFound) {
		l.logger.Warn("Selector cache read failed", zap.Error(err))
	}
	if doc != nil {
		age := l.now().Sub(time.UnixMilli(ts))
		if age > l.ttl {
			l.logger.Debug("Selector cache is stale, refreshing in background", zap.Duration("age", age))
			l.refreshInBackground()
		}
		return doc, SourceCache
	}

	fresh, err := l.Refresh(ctx)
	if err != nil {
		l.logger.Warn("Falling back to bundled selectors", zap.Error(err))
		return nil, SourceBundled
	}
	return fresh, SourceRemote
}

// Refresh fetches the document from the first source that serves a valid copy and caches it.
// Concurrent calls share a single fetch.
func (l *Loader) Refresh(ctx context.Context) (*Document, error) {
	v, err, _ := l.group.Do(CacheKey, func() (interface{}, error) {
		return l.fetchAndCache(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Document), nil
}

// Wait blocks until background refreshes started by Get have finished.
func (l *Loader) Wait() {
	l.wg.Wait()
}

func (l *Loader) refreshInBackground() {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), fetch.DefaultTimeout)
		defer cancel()
		if _, err := l.Refresh(ctx); err != nil {
			l.logger.Warn("Background selector refresh failed", zap.Error(err))
		}
	}()
}

func (l *Loader) cached(ctx context.Context) (*Document, int64, error) {
	if l.store == nil {
		return nil, 0, cache.ErrNotFound
	}
	raw, err := l.store.Get(ctx, CacheKey)
	if err != nil {
		return nil, 0, err
	}
	var entry cacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, 0, &ConfigError{Source: "cache", Message: "corrupt cache entry", Cause: err}
	}
	if len(entry.Data) == 0 || entry.Timestamp == 0 {
		return nil, 0, cache.ErrNotFound
	}
	doc, err := Parse(entry.Data)
	if err != nil {
		return nil, 0, &ConfigError{Source: "cache", Message: "cached document is invalid", Cause: err}
	}
	return doc, entry.Timestamp, nil
}

func (l *Loader) fetchAndCache(ctx context.Context) (*Document, error) {
	var lastErr error
	for _, source := range l.sources {
		doc, raw, err := l.fetchOne(ctx, source)
		if err != nil {
			l.logger.Warn("Selector source failed, trying next", zap.String("source", source), zap.Error(err))
			lastErr = err
			continue
		}

		if problems := Lint(doc); len(problems) > 0 {
			l.logger.Warn("Selector document has invalid selectors",
				zap.String("source", source),
				zap.Int("problems", len(problems)))
		}

		if l.store != nil {
			entry, err := json.Marshal(cacheEntry{Data: raw, Timestamp: l.now().UnixMilli()})
			if err == nil {
				err = l.store.Set(ctx, CacheKey, entry)
			}
			if err != nil {
				l.logger.Warn("Failed to cache selector document", zap.Error(err))
			}
		}

		l.logger.Info("Updated remote selector config", zap.String("version", doc.Version), zap.String("source", source))
		return doc, nil
	}
	return nil, &ConfigError{Source: "remote", Message: "all sources failed", Cause: lastErr}
}

func (l *Loader) fetchOne(ctx context.Context, source string) (*Document, []byte, error) {
	target, err := cacheBust(source, l.now())
	if err != nil {
		return nil, nil, &ConfigError{Source: source, Message: "invalid source URL", Cause: err}
	}
	result, err := fetch.URL(ctx, target, l.opts)
	if err != nil {
		return nil, nil, err
	}
	raw := []byte(result.HTML)
	doc, err := Parse(raw)
	if err != nil {
		return nil, nil, &ConfigError{Source: source, Message: "fetched document rejected", Cause: err}
	}
	return doc, raw, nil
}

// cacheBust appends t=<unix millis> so CDNs serve the latest copy.
func cacheBust(source string, now time.Time) (string, error) {
	u, err := url.Parse(source)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", source, err)
	}
	q := u.Query()
	q.Set("t", strconv.FormatInt(now.UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
