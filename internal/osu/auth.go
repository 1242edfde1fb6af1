package osu

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	httpclient "github.com/handiism/osu-beatmap-downloader/internal/http"
	"github.com/handiism/osu-beatmap-downloader/internal/model"
)

const (
	tokenCookie = "XSRF-TOKEN"
	tokenHeader = "X-CSRF-Token"
	tokenField  = "_token"

	landingPath = "/home"
	sessionPath = "/session"
	probePath   = "/home/account/edit"
)

// Authenticator logs in to the osu! website.
type Authenticator struct {
	client  *httpclient.Client
	baseURL string
	logger  *slog.Logger
}

// NewAuthenticator creates an Authenticator for the site at baseURL.
//
// The client's cookie jar becomes the session state; pass a fresh client for
// every batch. A nil logger uses slog.Default().
func NewAuthenticator(client *httpclient.Client, baseURL string, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Authenticate performs the login and verifies it.
//
// Steps:
//  1. GET the landing page to receive the XSRF-TOKEN cookie
//  2. POST the login form with the token as form field and header
//  3. GET an account page that only signed-in users can open
//
// Every failure, including network errors, is reported as ErrAuth so the
// caller can abort before downloading anything.
func (a *Authenticator) Authenticate(ctx context.Context, creds *model.Credentials) (*Session, error) {
	if creds == nil || !creds.HasLogin() {
		return nil, authError(fmt.Errorf("username and password are required"), "missing credentials")
	}
	a.logger.Debug("authenticating", slog.Any("credentials", creds), slog.String("base_url", a.baseURL))

	landing := a.baseURL + landingPath
	if _, err := a.client.Get(ctx, landing); err != nil {
		return nil, authError(err, "failed to fetch landing page", goerr.V("url", landing))
	}

	token := a.client.Cookie(a.baseURL, tokenCookie)
	if token == "" {
		return nil, authError(fmt.Errorf("no %s cookie", tokenCookie), "landing page did not set anti-forgery token")
	}
	// Cookie values are percent-encoded; '+' is a literal plus, not a space.
	if unescaped, err := url.PathUnescape(token); err == nil {
		token = unescaped
	}

	if err := a.login(ctx, creds, landing, token); err != nil {
		return nil, err
	}

	if err := a.probe(ctx); err != nil {
		return nil, err
	}

	a.logger.Debug("authenticated", slog.String("username", creds.Username))
	return NewSession(a.client, a.baseURL), nil
}

func (a *Authenticator) login(ctx context.Context, creds *model.Credentials, landing, token string) error {
	base, err := url.Parse(a.baseURL)
	if err != nil {
		return authError(err, "invalid base URL", goerr.V("base_url", a.baseURL))
	}

	form := url.Values{
		"username": {creds.Username},
		"password": {creds.Password},
		tokenField: {token},
	}
	header := http.Header{}
	header.Set("Host", base.Host)
	header.Set("Origin", base.Scheme+"://"+base.Host)
	header.Set("Referer", landing)
	header.Set(tokenHeader, token)

	resp, err := a.client.PostForm(ctx, a.baseURL+sessionPath, form, header)
	if err != nil {
		return authError(err, "login request failed")
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	a.logger.Debug("login response", slog.Int("status", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		return authError(fmt.Errorf("HTTP %d", resp.StatusCode), "login rejected", goerr.V("status", resp.StatusCode))
	}
	return nil
}

// probe opens a page that redirects or refuses anonymous visitors.
func (a *Authenticator) probe(ctx context.Context) error {
	target := a.baseURL + probePath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return authError(err, "failed to build probe request")
	}

	resp, err := a.client.WithoutRedirects().Do(req)
	if err != nil {
		return authError(err, "probe request failed", goerr.V("url", target))
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	a.logger.Debug("probe response", slog.Int("status", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		return authError(fmt.Errorf("HTTP %d", resp.StatusCode), "session is not signed in", goerr.V("status", resp.StatusCode))
	}
	return nil
}

func authError(cause error, msg string, opts ...goerr.Option) error {
	return goerr.Wrap(fmt.Errorf("%w: %w", ErrAuth, cause), msg, opts...)
}
