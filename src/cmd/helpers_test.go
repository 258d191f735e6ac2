package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/facetrace/cli/src/display"
	"github.com/facetrace/cli/src/paths"
	"github.com/facetrace/cli/src/session"
)

// setupTest isolates HOME, resets flags and config, and makes the
// environment non-interactive without a display
func setupTest(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("FACETRACE_SEARCH_POLL_INTERVAL", "1ms")

	resetFlags()

	prevEnv, prevOpener, prevTUI := detectEnv, newOpener, runTUI
	detectEnv = func() display.Env { return display.Env{} }
	t.Cleanup(func() {
		detectEnv, newOpener, runTUI = prevEnv, prevOpener, prevTUI
		resetFlags()
	})
	return home
}

func resetFlags() {
	viper.Reset()
	setupHook = nil
	for _, fs := range []*pflag.FlagSet{rootCmd.Flags(), rootCmd.PersistentFlags()} {
		fs.VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
}

// execute runs the root command and returns stdout and stderr
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// saveSession writes a logged in session for email
func saveSession(t *testing.T, apiKey, email string) {
	t.Helper()
	store := session.NewStore(paths.SessionFile())
	if err := store.Save(&session.Session{APIKey: apiKey, Email: email, OnboardingCompleted: true}); err != nil {
		t.Fatalf("saving session: %v", err)
	}
}

// writeImage creates a small image file and returns its path
func writeImage(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("\xff\xd8\xff\xe0fake-jpeg"), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

// fakeAPI is a scripted FaceTrace service
type fakeAPI struct {
	t      *testing.T
	server *httptest.Server
	mux    *http.ServeMux

	mu       sync.Mutex
	hits     map[string]int
	statuses []string
	forms    []map[string]string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{t: t, mux: http.NewServeMux(), hits: map[string]int{}}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.hits[r.URL.Path]++
		f.mu.Unlock()
		f.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) URL() string {
	return f.server.URL
}

// total returns the number of requests received
func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.hits {
		n += c
	}
	return n
}

func (f *fakeAPI) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

// handleJSON answers path with status and body
func (f *fakeAPI) handleJSON(path string, status int, body string) {
	f.mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

// handleStart accepts a search submission and records its form fields
func (f *fakeAPI) handleStart(jobID string) {
	f.mux.HandleFunc("/search/face/start", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer key_test" {
			f.t.Errorf("Authorization = %q", got)
		}
		form := map[string]string{}
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				f.t.Errorf("ParseMultipartForm: %v", err)
			}
			if _, hdr, err := r.FormFile("image"); err == nil {
				form["image"] = hdr.Filename
			}
		} else if err := r.ParseForm(); err != nil {
			f.t.Errorf("ParseForm: %v", err)
		}
		for k := range r.Form {
			form[k] = r.Form.Get(k)
		}
		f.mu.Lock()
		f.forms = append(f.forms, form)
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"search_id": jobID, "status": "pending"})
	})
}

// handleStatus serves the scripted status bodies in order, repeating the last
func (f *fakeAPI) handleStatus(jobID string, bodies ...string) {
	f.statuses = bodies
	f.mux.HandleFunc("/search/status/"+jobID, func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		i := f.hits[r.URL.Path] - 1
		if i >= len(f.statuses) {
			i = len(f.statuses) - 1
		}
		body := f.statuses[i]
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
}

func (f *fakeAPI) lastForm() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.forms) == 0 {
		return nil
	}
	return f.forms[len(f.forms)-1]
}

const completeTwoMatches = `{"status":"complete","progress":100,"found":2,"remaining_credits":4,"results":[
	{"platform":"instagram","score":92,"url":"https://instagram.com/alice","username":"alice"},
	{"platform":"vk","score":78,"url":"https://vk.com/id1"}]}`

// fakeOpener records opened URLs
type fakeOpener struct {
	mu     sync.Mutex
	opened []string
}

func (o *fakeOpener) Open(_ context.Context, url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opened = append(o.opened, url)
	return nil
}

func (o *fakeOpener) OpenAll(ctx context.Context, urls []string) (int, error) {
	for _, u := range urls {
		_ = o.Open(ctx, u)
	}
	return len(urls), nil
}
