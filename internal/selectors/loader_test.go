package selectors

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonathan/careerstack/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const remoteDoc = `{"version": "1.0.1", "linkedin": {}, "indeed": {"position": [".my-custom-title-class"]}}`

func serve(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.NotEmpty(t, r.URL.Query().Get("t"), "requests are cache-busted")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func seed(t *testing.T, store cache.Store, doc string, ts time.Time) {
	t.Helper()
	raw, err := json.Marshal(cacheEntry{Data: json.RawMessage(doc), Timestamp: ts.UnixMilli()})
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), CacheKey, raw))
}

func TestLoader_FreshCacheSkipsNetwork(t *testing.T) {
	server, hits := serve(t, http.StatusOK, remoteDoc)
	store := cache.NewMemoryStore()
	seed(t, store, `{"version": "cached", "linkedin": {}, "indeed": {}}`, time.Now().Add(-time.Hour))

	loader := NewLoader(store, LoaderOptions{Sources: []string{server.URL}})
	doc, source := loader.Get(context.Background())
	loader.Wait()

	require.NotNil(t, doc)
	assert.Equal(t, SourceCache, source)
	assert.Equal(t, "cached", doc.Version)
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestLoader_StaleCacheServedThenRefreshed(t *testing.T) {
	server, hits := serve(t, http.StatusOK, remoteDoc)
	store := cache.NewMemoryStore()
	seed(t, store, `{"version": "old", "linkedin": {}, "indeed": {}}`, time.Now().Add(-7*time.Hour))

	loader := NewLoader(store, LoaderOptions{Sources: []string{server.URL}})
	doc, source := loader.Get(context.Background())
	require.NotNil(t, doc)
	assert.Equal(t, SourceCache, source)
	assert.Equal(t, "old", doc.Version)

	loader.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))

	doc, source = loader.Get(context.Background())
	assert.Equal(t, SourceCache, source)
	assert.Equal(t, "1.0.1", doc.Version)
}

func TestLoader_NoCacheAwaitsFetch(t *testing.T) {
	server, _ := serve(t, http.StatusOK, remoteDoc)
	store := cache.NewMemoryStore()

	loader := NewLoader(store, LoaderOptions{Sources: []string{server.URL}})
	doc, source := loader.Get(context.Background())

	require.NotNil(t, doc)
	assert.Equal(t, SourceRemote, source)
	assert.Equal(t, []string{".my-custom-title-class"}, doc.Indeed.Position)

	_, err := store.Get(context.Background(), CacheKey)
	assert.NoError(t, err)
}

func TestLoader_FallsThroughSources(t *testing.T) {
	down, downHits := serve(t, http.StatusServiceUnavailable, "")
	malformed, malformedHits := serve(t, http.StatusOK, `{"linkedin": {}}`)
	good, _ := serve(t, http.StatusOK, remoteDoc)

	loader := NewLoader(nil, LoaderOptions{Sources: []string{down.URL, malformed.URL, good.URL}})
	doc, source := loader.Get(context.Background())

	require.NotNil(t, doc)
	assert.Equal(t, SourceRemote, source)
	assert.Equal(t, "1.0.1", doc.Version)
	assert.Equal(t, int32(1), atomic.LoadInt32(downHits))
	assert.Equal(t, int32(1), atomic.LoadInt32(malformedHits))
}

func TestLoader_AllSourcesFailUsesBundled(t *testing.T) {
	down, _ := serve(t, http.StatusNotFound, "")

	loader := NewLoader(cache.NewMemoryStore(), LoaderOptions{Sources: []string{down.URL}})
	doc, source := loader.Get(context.Background())

	assert.Nil(t, doc)
	assert.Equal(t, SourceBundled, source)

	_, err := loader.Refresh(context.Background())
	var configErr *ConfigError
	assert.ErrorAs(t, err, &configErr)
}

func TestCacheBust(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	got, err := cacheBust("https://cdn.example.com/selectors.json?ref=main", now)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/selectors.json?ref=main&t=1700000000000", got)
}
