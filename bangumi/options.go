package bangumi

import (
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the public Bangumi API
	DefaultBaseURL = "https://api.bgm.tv"
	// DefaultUserAgent is sent when no user agent is configured
	DefaultUserAgent = "bgmbot (https://github.com/s0up4200/bgmbot)"
	// DefaultTimeout bounds a single HTTP exchange
	DefaultTimeout = 30 * time.Second
)

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	baseURL            string
	userAgent          string
	timeout            time.Duration
	httpClient         *http.Client
	minInterval        time.Duration
	cacheTTL           time.Duration
	cacheSize          int
	clock              Clock
	insecureSkipVerify bool
}

func defaultOptions() clientOptions {
	return clientOptions{
		baseURL:     DefaultBaseURL,
		userAgent:   DefaultUserAgent,
		timeout:     DefaultTimeout,
		minInterval: DefaultMinInterval,
		cacheTTL:    DefaultCacheTTL,
		cacheSize:   DefaultCacheSize,
		clock:       SystemClock(),
	}
}

// WithBaseURL points the client at another API host.
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		if baseURL != "" {
			o.baseURL = baseURL
		}
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		if userAgent != "" {
			o.userAgent = userAgent
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = timeout
	}
}

// WithHTTPClient replaces the HTTP client. Timeout and TLS options are
// ignored when set.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithMinInterval sets the minimum spacing between request starts.
func WithMinInterval(interval time.Duration) Option {
	return func(o *clientOptions) {
		if interval > 0 {
			o.minInterval = interval
		}
	}
}

// WithCacheTTL sets how long search pages stay cached. Zero disables the cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *clientOptions) {
		if ttl >= 0 {
			o.cacheTTL = ttl
		}
	}
}

// WithCacheSize bounds the number of cached search pages.
func WithCacheSize(size int) Option {
	return func(o *clientOptions) {
		if size > 0 {
			o.cacheSize = size
		}
	}
}

// WithClock injects the time source for the limiter and the cache.
func WithClock(clock Clock) Option {
	return func(o *clientOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithInsecureSkipVerify disables certificate verification.
// Use with caution and only for development/testing.
func WithInsecureSkipVerify() Option {
	return func(o *clientOptions) {
		o.insecureSkipVerify = true
	}
}
