package identity

import (
	"net/http"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
)

// NewCachingHTTPClient creates an HTTP client with disk-based caching for
// identity calls that set Cache-Control headers (e.g. key material and
// profile reads). An empty cacheDir falls back to an in-memory cache.
func NewCachingHTTPClient(cacheDir string) *http.Client {
	if cacheDir == "" {
		return &http.Client{
			Transport: httpcache.NewTransport(httpcache.NewMemoryCache()),
		}
	}

	cache := diskcache.New(cacheDir)
	return &http.Client{
		Transport: httpcache.NewTransport(cache),
	}
}
