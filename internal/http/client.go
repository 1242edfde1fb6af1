package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

const (
	// DefaultTimeout bounds every single request, body included.
	DefaultTimeout = 60 * time.Second

	// DefaultUserAgent is sent with every request unless overridden.
	DefaultUserAgent = "osu-beatmap-downloader"
)

// Client wraps HTTP operations with a cookie jar and osu!-friendly defaults.
//
// Client provides:
//   - A cookie jar shared by every request, so a login carries over
//   - Configured User-Agent header
//   - Per-request timeout handling
//   - Form posts with extra headers
//   - Streaming a response body to disk with progress tracking
//
// Example usage:
//
//	client, err := NewClient(WithTimeout(30 * time.Second))
//
//	// Fetch a page, collecting its cookies
//	_, err = client.Get(ctx, "https://osu.ppy.sh/home")
//	token := client.Cookie("https://osu.ppy.sh", "XSRF-TOKEN")
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout. Zero or negative values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header. An empty value keeps the default.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTransport replaces the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient.Transport = rt
	}
}

// NewClient creates a new HTTP client with an empty cookie jar.
//
// The client is configured with:
//   - 60 second timeout
//   - "osu-beatmap-downloader" User-Agent header
//   - a cookie jar using the public suffix list
func NewClient(opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Jar:     jar,
		},
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithoutRedirects returns a client sharing the same cookie jar, transport
// and timeout that returns redirect responses instead of following them.
func (c *Client) WithoutRedirects() *Client {
	hc := *c.httpClient
	hc.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &Client{httpClient: &hc, userAgent: c.userAgent}
}

// ProgressWriter wraps a writer to track download progress.
//
// Use this to monitor large downloads by providing an OnUpdate callback
// that receives the current bytes written and total expected bytes.
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header).
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	// Parameters are (bytesWritten, totalExpected).
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// Do sends the request, adding the configured User-Agent when the request
// does not carry one.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return c.httpClient.Do(req)
}

// Get performs a GET request and returns the response body as bytes.
//
// Cookies set by the response are stored in the client's jar.
//
// Returns an error if:
//   - The request fails
//   - The response status is not 200 OK
//   - Reading the body fails
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	return io.ReadAll(resp.Body)
}

// PostForm sends a URL-encoded form with the given extra headers.
//
// The caller must close the response body.
func (c *Client) PostForm(ctx context.Context, url string, form url.Values, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if host := header.Get("Host"); host != "" {
		req.Host = host
	}

	return c.Do(req)
}

// Cookie returns the value of the named cookie the jar would send to rawURL,
// or an empty string.
func (c *Client) Cookie(rawURL, name string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	for _, cookie := range c.httpClient.Jar.Cookies(u) {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}

// SaveBody streams body to destPath and returns the number of bytes written.
//
// The file is created (or truncated if it exists). If writing fails the
// partial file is removed.
//
// Parameters:
//   - body: Reader to copy from, usually a response body
//   - destPath: Local file path to save to
//   - total: Expected size, or -1 if unknown
//   - onProgress: Optional callback called with (bytesWritten, totalBytes)
//     Pass nil to disable progress tracking
func SaveBody(body io.Reader, destPath string, total int64, onProgress func(written, total int64)) (int64, error) {
	file, err := os.Create(destPath)
	if err != nil {
		return 0, err
	}

	pw := &ProgressWriter{
		Writer:   file,
		Total:    total,
		OnUpdate: onProgress,
	}

	_, copyErr := io.Copy(pw, body)
	closeErr := file.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		os.Remove(destPath)
		return pw.Written, copyErr
	}

	return pw.Written, nil
}
