package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jonathan/careerstack/internal/cache"
	"github.com/jonathan/careerstack/internal/types"
)

// DefaultJobCacheTTL is how long a scraped job is reused before the page is scraped again.
const DefaultJobCacheTTL = time.Hour

// CachedJob is a scrape result kept between runs, with the analysis if one was made.
type CachedJob struct {
	Job       *types.JobData        `json:"scraped"`
	Analysis  *types.AnalysisResult `json:"analysis,omitempty"`
	Timestamp int64                 `json:"timestamp"`
}

// JobCache stores scrape results per job so repeated runs on the same posting skip the fetch.
type JobCache struct {
	store cache.Store
	ttl   time.Duration
	now   func() time.Time
}

// NewJobCache creates a JobCache. A zero ttl uses DefaultJobCacheTTL; nil now uses time.Now.
func NewJobCache(store cache.Store, ttl time.Duration, now func() time.Time) *JobCache {
	if ttl <= 0 {
		ttl = DefaultJobCacheTTL
	}
	if now == nil {
		now = time.Now
	}
	return &JobCache{store: store, ttl: ttl, now: now}
}

// JobCacheKey identifies the job a URL points at. LinkedIn currentJobId and Indeed vjk or jk
// parameters name the job; otherwise the URL without its query is used.
func JobCacheKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "job:" + rawURL
	}
	q := u.Query()
	if id := q.Get("currentJobId"); id != "" {
		return "job:linkedin:" + id
	}
	if vjk := q.Get("vjk"); vjk != "" {
		return "job:indeed:" + vjk
	}
	if jk := q.Get("jk"); jk != "" {
		return "job:indeed:" + jk
	}
	return fmt.Sprintf("job:%s://%s%s", u.Scheme, u.Host, u.Path)
}

// Get returns the cached entry for url if one exists and is younger than the TTL.
func (c *JobCache) Get(ctx context.Context, rawURL string) (*CachedJob, bool) {
	if c == nil || c.store == nil || rawURL == "" {
		return nil, false
	}
	data, err := c.store.Get(ctx, JobCacheKey(rawURL))
	if err != nil {
		return nil, false
	}
	var entry CachedJob
	if err := json.Unmarshal(data, &entry); err != nil || entry.Job == nil {
		return nil, false
	}
	age := c.now().Sub(time.UnixMilli(entry.Timestamp))
	if age > c.ttl {
		return nil, false
	}
	return &entry, true
}

// Put stores a scrape result for url, stamped with the current time.
func (c *JobCache) Put(ctx context.Context, rawURL string, job *types.JobData, analysis *types.AnalysisResult) error {
	if c == nil || c.store == nil {
		return errors.New("job cache not configured")
	}
	data, err := json.Marshal(CachedJob{Job: job, Analysis: analysis, Timestamp: c.now().UnixMilli()})
	if err != nil {
		return fmt.Errorf("failed to encode cached job: %w", err)
	}
	return c.store.Set(ctx, JobCacheKey(rawURL), data)
}
