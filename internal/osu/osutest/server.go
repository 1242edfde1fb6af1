// Package osutest provides an in-process fake of the osu! website endpoints
// used by the downloader, for tests.
package osutest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
)

const sessionCookie = "osu_session"

// Package is a downloadable beatmapset served by the fake site.
type Package struct {
	// FileName is sent in the Content-Disposition header. Empty means the
	// header is omitted, as the site does for unavailable sets.
	FileName string

	// Body is the package content.
	Body []byte

	// Status defaults to 200.
	Status int
}

// Server is a fake osu! website.
//
// Fields must be set before the first request.
type Server struct {
	*httptest.Server

	Username string
	Password string
	APIKey   string

	// Token is the raw XSRF-TOKEN cookie value. The login form must echo it
	// percent-decoded.
	Token string

	// Beatmaps maps beatmap IDs to beatmapset IDs for the legacy API.
	Beatmaps map[string]string

	// Packages maps beatmapset IDs to their download.
	Packages map[string]Package

	// SkipToken makes the landing page omit the XSRF-TOKEN cookie.
	SkipToken bool

	// AcceptAnyLogin makes the login form succeed but never sets the session
	// cookie, like a login that silently fails.
	AcceptAnyLogin bool

	mu        sync.Mutex
	lookups   int
	downloads []string
	referers  map[string]string
}

// NewServer starts a fake site with one known user.
func NewServer() *Server {
	s := &Server{
		Username: "player",
		Password: "hunter2",
		APIKey:   "legacy-key",
		Token:    "csrf-token",
		Beatmaps: map[string]string{},
		Packages: map[string]Package{},
		referers: map[string]string{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /home", s.handleLanding)
	mux.HandleFunc("POST /session", s.handleLogin)
	mux.HandleFunc("GET /home/account/edit", s.handleAccount)
	mux.HandleFunc("POST /api/get_beatmaps", s.handleLookup)
	mux.HandleFunc("GET /beatmapsets/{id}/download", s.handleDownload)

	s.Server = httptest.NewServer(mux)
	return s
}

// Lookups returns how many legacy API calls were made.
func (s *Server) Lookups() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookups
}

// Downloads returns the beatmapset IDs requested for download, in order.
func (s *Server) Downloads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.downloads...)
}

// Referer returns the Referer header of the last download of id.
func (s *Server) Referer(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.referers[id]
}

func (s *Server) sessionValue() string {
	return "signed-in-" + s.Username
}

func (s *Server) signedIn(r *http.Request) bool {
	c, err := r.Cookie(sessionCookie)
	return err == nil && c.Value == s.sessionValue()
}

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	if !s.SkipToken {
		http.SetCookie(w, &http.Cookie{Name: "XSRF-TOKEN", Value: s.Token, Path: "/"})
	}
	fmt.Fprint(w, "<html>osu!</html>")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	if s.AcceptAnyLogin {
		w.WriteHeader(http.StatusOK)
		return
	}

	decoded, _ := url.PathUnescape(s.Token)
	cookie, err := r.Cookie("XSRF-TOKEN")
	switch {
	case err != nil || cookie.Value != s.Token,
		r.Header.Get("X-CSRF-Token") != decoded,
		r.PostForm.Get("_token") != decoded:
		http.Error(w, "token mismatch", 419)
		return
	case r.Header.Get("Referer") == "" || r.Header.Get("Origin") == "":
		http.Error(w, "missing origin", http.StatusForbidden)
		return
	case r.PostForm.Get("username") != s.Username || r.PostForm.Get("password") != s.Password:
		http.Error(w, `{"error":"incorrect sign in"}`, http.StatusUnprocessableEntity)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: s.sessionValue(), Path: "/"})
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	if !s.signedIn(r) {
		http.Error(w, "sign in required", http.StatusUnauthorized)
		return
	}
	fmt.Fprint(w, "<html>account</html>")
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.lookups++
	s.mu.Unlock()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if r.PostForm.Get("k") != s.APIKey {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"Please provide a valid API key."}`)
		return
	}

	setID, ok := s.Beatmaps[r.PostForm.Get("b")]
	if !ok {
		fmt.Fprint(w, `[]`)
		return
	}
	fmt.Fprintf(w, `[{"beatmap_id":%q,"beatmapset_id":%q}]`, r.PostForm.Get("b"), setID)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	s.downloads = append(s.downloads, id)
	s.referers[id] = r.Header.Get("Referer")
	s.mu.Unlock()

	if !s.signedIn(r) {
		http.Error(w, "sign in required", http.StatusUnauthorized)
		return
	}

	pkg, ok := s.Packages[id]
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	if pkg.FileName != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment;filename="%s";`, pkg.FileName))
	}
	w.Header().Set("Content-Type", "application/x-osu-beatmap-archive")
	status := pkg.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	w.Write(pkg.Body)
}
