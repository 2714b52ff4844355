package crawler

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/net/proxy"
	"golang.org/x/time/rate"
)

const (
	// DefaultFetchTimeout bounds a single request.
	DefaultFetchTimeout = 30 * time.Second

	// DefaultMaxBodySize caps how much of a response body is read.
	DefaultMaxBodySize int64 = 5 * 1024 * 1024

	// maxRedirects stops redirect loops.
	maxRedirects = 10
)

// Fetcher retrieves the textual body of a single page.
// Every failure is reported as an error wrapping ErrDeadLink.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// HTTPFetcher is a Fetcher backed by net/http.
type HTTPFetcher struct {
	// client performs the requests. When nil at construction a client is
	// built from the timeout and proxy settings.
	client *http.Client

	// timeout is applied to every request.
	timeout time.Duration

	// userAgent is sent with every request when non-empty.
	userAgent string

	// maxBodySize limits the number of body bytes read.
	maxBodySize int64

	// proxyAddress is an optional SOCKS5 proxy (host:port).
	proxyAddress string

	// limiter paces requests globally when set.
	limiter *rate.Limiter
}

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum number of body bytes read per page.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *HTTPFetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithProxy routes all requests through the SOCKS5 proxy at address.
// An empty address disables the proxy.
func WithProxy(address string) FetcherOption {
	return func(f *HTTPFetcher) {
		f.proxyAddress = address
	}
}

// WithRateLimit allows at most rps requests per second across all tasks.
// Zero or a negative value disables pacing.
func WithRateLimit(rps float64) FetcherOption {
	return func(f *HTTPFetcher) {
		if rps <= 0 {
			f.limiter = nil
			return
		}
		f.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithHTTPClient uses client instead of building one. Timeout and proxy
// options are then ignored for transport setup.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *HTTPFetcher) {
		f.client = client
	}
}

// NewHTTPFetcher creates an HTTPFetcher. It fails only when the proxy
// dialer cannot be built.
func NewHTTPFetcher(opts ...FetcherOption) (*HTTPFetcher, error) {
	f := &HTTPFetcher{
		timeout:     DefaultFetchTimeout,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		client, err := newHTTPClient(f.timeout, f.proxyAddress)
		if err != nil {
			return nil, err
		}
		f.client = client
	}
	return f, nil
}

// newHTTPClient builds the default client, dialing through a SOCKS5 proxy
// when proxyAddress is set.
func newHTTPClient(timeout time.Duration, proxyAddress string) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyAddress != "" {
		dialer, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidProxy, proxyAddress, err)
		}
		transport.Proxy = nil
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = cd.DialContext
		} else {
			transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}, nil
}

// Fetch performs a GET request and returns the body decoded to UTF-8.
// Network errors, non-2xx responses and non-textual content types are
// returned as errors wrapping ErrDeadLink.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: %w", ErrDeadLink, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDeadLink, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDeadLink, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck // best effort
		return "", &StatusError{StatusCode: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	if !isTextual(contentType) {
		return "", fmt.Errorf("%w (%s)", ErrNotTextual, contentType)
	}

	body := io.LimitReader(resp.Body, f.maxBodySize)
	reader, err := charset.NewReader(body, contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDeadLink, err)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDeadLink, err)
	}
	return string(data), nil
}

// isTextual reports whether a Content-Type header denotes a text body.
// A missing header is treated as text.
func isTextual(contentType string) bool {
	if strings.TrimSpace(contentType) == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	switch {
	case strings.HasPrefix(mediaType, "text/"):
		return true
	case strings.Contains(mediaType, "xml"),
		strings.Contains(mediaType, "json"),
		strings.Contains(mediaType, "javascript"):
		return true
	default:
		return false
	}
}
