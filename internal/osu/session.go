package osu

import (
	"context"
	"net/http"
	"strings"

	httpclient "github.com/handiism/osu-beatmap-downloader/internal/http"
)

// Session is an authenticated osu! website session.
//
// The cookie jar lives in the client; every request made through the session
// sends the login cookies and stores whatever the server updates. A Session
// is not safe for concurrent use.
type Session struct {
	client  *httpclient.Client
	baseURL string
}

// NewSession wraps a client that already carries the login cookies.
func NewSession(client *httpclient.Client, baseURL string) *Session {
	return &Session{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// BeatmapsetURL returns the public page of a beatmapset.
func (s *Session) BeatmapsetURL(id string) string {
	return s.baseURL + "/beatmapsets/" + id
}

// DownloadURL returns the package download endpoint of a beatmapset.
func (s *Session) DownloadURL(id string) string {
	return s.BeatmapsetURL(id) + "/download"
}

// OpenBeatmapset requests the package of a beatmapset.
//
// The Referer header is set to the beatmapset page; the site refuses
// downloads without it. The caller must close the response body.
func (s *Session) OpenBeatmapset(ctx context.Context, id string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.DownloadURL(id), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Referer", s.BeatmapsetURL(id))

	return s.client.Do(req)
}
