package testing

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// Call is one request received by [FakeSpotify].
type Call struct {
	Method      string
	Path        string
	Query       string
	Auth        string
	ContentType string
	Body        string
}

// Token returns the bearer token the call was made with.
func (c Call) Token() string {
	return strings.TrimPrefix(c.Auth, "Bearer ")
}

// FakeSpotify is an httptest server standing in for the Web API and accounts service.
//
// Routes use [http.ServeMux] patterns, e.g. "POST /me/playlists". Unrouted requests get a 404.
type FakeSpotify struct {
	Server *httptest.Server

	mu    sync.Mutex
	calls []Call
}

// NewFakeSpotify starts a fake serving routes. The server is closed when the test ends.
func NewFakeSpotify(t *testing.T, routes map[string]http.HandlerFunc) *FakeSpotify {
	t.Helper()

	f := &FakeSpotify{}
	mux := http.NewServeMux()
	for pattern, h := range routes {
		mux.HandleFunc(pattern, h)
	}

	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		f.mu.Lock()
		f.calls = append(f.calls, Call{
			Method:      r.Method,
			Path:        r.URL.Path,
			Query:       r.URL.RawQuery,
			Auth:        r.Header.Get("Authorization"),
			ContentType: r.Header.Get("Content-Type"),
			Body:        string(body),
		})
		f.mu.Unlock()

		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.Server.Close)

	return f
}

// URL is the fake's base URL.
func (f *FakeSpotify) URL() string {
	return f.Server.URL
}

// Calls returns every request received so far.
func (f *FakeSpotify) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsTo returns the requests matching method and path.
func (f *FakeSpotify) CallsTo(method, path string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Status returns a handler that only writes status with a provider style error body.
func Status(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, status, map[string]any{
			"error": map[string]any{"status": status, "message": http.StatusText(status)},
		})
	}
}
