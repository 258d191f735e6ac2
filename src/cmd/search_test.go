package cmd

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/facetrace/cli/src/display"
	"github.com/facetrace/cli/src/model"
	"github.com/facetrace/cli/src/tui"
)

func TestSearchEndToEnd(t *testing.T) {
	setupTest(t)
	saveSession(t, "key_test", "me@example.com")

	api := newFakeAPI(t)
	api.handleStart("abc123")
	api.handleStatus("abc123",
		`{"status":"pending","progress":0,"found":0}`,
		`{"status":"running","progress":40,"found":1}`,
		completeTwoMatches,
	)

	image := writeImage(t, "face.jpg")
	exportPath := filepath.Join(t.TempDir(), "out", "results.csv")

	stdout, _, err := execute(t, "", image, "--server", api.URL(), "--output", exportPath)
	if err != nil {
		t.Fatalf("search error = %v\n%s", err, stdout)
	}

	for _, want := range []string{
		"Analyzing image: face.jpg",
		"Starting face search...",
		"[>]  40% | 1 found | running |",
		"[>] 100% | 2 found | complete |",
		"[+] Found 2 match(es)!",
		"instagram    | 92%   | @alice",
		"Remaining credits: 4 searches",
		"Results exported to: " + exportPath,
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}

	if n := api.count("/search/status/abc123"); n != 3 {
		t.Errorf("status queries = %d, want 3", n)
	}
	form := api.lastForm()
	if form["image"] != "face.jpg" || form["min_score"] != "70" {
		t.Errorf("submitted form = %v", form)
	}
	if _, ok := form["platform_filter"]; ok {
		t.Error("platform_filter should be omitted when --platform is not set")
	}

	f, err := os.Open(exportPath)
	if err != nil {
		t.Fatalf("export not written: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[1][0] != "instagram" {
		t.Errorf("csv rows = %v", rows)
	}
}

func TestSearchMinScoreAndPlatformPassThrough(t *testing.T) {
	setupTest(t)
	saveSession(t, "key_test", "me@example.com")

	api := newFakeAPI(t)
	api.handleStart("j1")
	api.handleStatus("j1", completeTwoMatches)

	_, _, err := execute(t, "", writeImage(t, "face.png"),
		"--server", api.URL(), "--min-score", "85", "--platform", "instagram")
	if err != nil {
		t.Fatalf("search error = %v", err)
	}

	form := api.lastForm()
	if form["min_score"] != "85" || form["platform_filter"] != "instagram" {
		t.Errorf("submitted form = %v", form)
	}
}

func TestSearchURLImage(t *testing.T) {
	setupTest(t)
	saveSession(t, "key_test", "me@example.com")

	api := newFakeAPI(t)
	api.handleStart("u1")
	api.handleStatus("u1", completeTwoMatches)
	api.mux.HandleFunc("/img/face.jpg", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("\xff\xd8\xff\xe0fake-jpeg"))
	})

	imageURL := api.URL() + "/img/face.jpg"
	stdout, _, err := execute(t, "", imageURL, "--server", api.URL())
	if err != nil {
		t.Fatalf("search error = %v", err)
	}

	if !strings.Contains(stdout, "Image downloaded") {
		t.Errorf("output = %s", stdout)
	}
	if api.count("/img/face.jpg") != 1 {
		t.Errorf("image downloaded %d times, want 1", api.count("/img/face.jpg"))
	}
	if got := api.lastForm()["image_url"]; got != imageURL {
		t.Errorf("image_url = %q, want %q", got, imageURL)
	}
}

func TestSearchJSONFormat(t *testing.T) {
	setupTest(t)
	saveSession(t, "key_test", "me@example.com")

	api := newFakeAPI(t)
	api.handleStart("j1")
	api.handleStatus("j1", completeTwoMatches)

	stdout, stderr, err := execute(t, "", writeImage(t, "face.jpg"), "--server", api.URL(), "--format", "json")
	if err != nil {
		t.Fatalf("search error = %v", err)
	}

	var doc struct {
		TotalMatches     int           `json:"total_matches"`
		Matches          []model.Match `json:"matches"`
		RemainingCredits int           `json:"remaining_credits"`
	}
	if err := json.Unmarshal([]byte(stdout), &doc); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout)
	}
	if doc.TotalMatches != 2 || doc.RemainingCredits != 4 {
		t.Errorf("doc = %+v", doc)
	}
	if !strings.Contains(stderr, "Starting face search...") {
		t.Errorf("status output should go to stderr:\n%s", stderr)
	}
}

func TestSearchTableFormat(t *testing.T) {
	setupTest(t)
	saveSession(t, "key_test", "me@example.com")

	api := newFakeAPI(t)
	api.handleStart("j1")
	api.handleStatus("j1", completeTwoMatches)

	stdout, _, err := execute(t, "", writeImage(t, "face.jpg"), "--server", api.URL(), "-f", "table")
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	if !strings.Contains(stdout, "FaceTrace Results - 2 matches found") {
		t.Errorf("output = %s", stdout)
	}
}

func TestSearchFormatFromConfig(t *testing.T) {
	setupTest(t)
	saveSession(t, "key_test", "me@example.com")
	t.Setenv("FACETRACE_OUTPUT_FORMAT", "table")

	api := newFakeAPI(t)
	api.handleStart("j1")
	api.handleStatus("j1", completeTwoMatches)

	stdout, _, err := execute(t, "", writeImage(t, "face.jpg"), "--server", api.URL())
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	if !strings.Contains(stdout, "FaceTrace Results - 2 matches found") {
		t.Errorf("configured format not used:\n%s", stdout)
	}
}

func TestSearchRejectedBeforeNetwork(t *testing.T) {
	tests := []struct {
		name  string
		flags []string
	}{
		{"min score too low", []string{"--min-score", "65"}},
		{"min score too high", []string{"--min-score", "101"}},
		{"top zero", []string{"--top", "0"}},
		{"top negative", []string{"--top", "-3"}},
		{"unknown format", []string{"--format", "xml"}},
		{"unsupported export", []string{"--output", "results.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTest(t)
			saveSession(t, "key_test", "me@example.com")
			api := newFakeAPI(t)

			args := append([]string{writeImage(t, "face.jpg"), "--server", api.URL()}, tt.flags...)
			_, _, err := execute(t, "", args...)

			if !model.IsValidation(err) {
				t.Errorf("error = %v, want ValidationError", err)
			}
			if api.total() != 0 {
				t.Errorf("server received %d requests, want 0", api.total())
			}
		})
	}
}

func TestSearchBadImage(t *testing.T) {
	setupTest(t)
	saveSession(t, "key_test", "me@example.com")
	api := newFakeAPI(t)

	_, _, err := execute(t, "", filepath.Join(t.TempDir(), "missing.jpg"), "--server", api.URL())
	if !model.IsValidation(err) {
		t.Errorf("error = %v, want ValidationError", err)
	}
	if api.total() != 0 {
		t.Errorf("server received %d requests", api.total())
	}
}

func TestSearchNotLoggedIn(t *testing.T) {
	setupTest(t)
	api := newFakeAPI(t)

	_, _, err := execute(t, "", writeImage(t, "face.jpg"), "--server", api.URL())
	if !errors.Is(err, model.ErrNotAuthenticated) {
		t.Errorf("error = %v, want ErrNotAuthenticated", err)
	}
	if api.total() != 0 {
		t.Errorf("server received %d requests", api.total())
	}
}

func TestSearchInsufficientCredits(t *testing.T) {
	setupTest(t)
	saveSession(t, "key_test", "me@example.com")

	api := newFakeAPI(t)
	api.handleJSON("/search/face/start", http.StatusPaymentRequired, `{"error":"Insufficient credits"}`)

	_, _, err := execute(t, "", writeImage(t, "face.jpg"), "--server", api.URL())
	if !errors.Is(err, model.ErrInsufficientCredits) {
		t.Fatalf("error = %v, want ErrInsufficientCredits", err)
	}
	var submitErr *model.SubmitError
	if !errors.As(err, &submitErr) {
		t.Errorf("error = %T, want a SubmitError in the chain", err)
	}

	var buf bytes.Buffer
	ReportError(&buf, err)
	if !strings.Contains(buf.String(), "No credits remaining") || !strings.Contains(buf.String(), "--add-credits") {
		t.Errorf("ReportError() = %q", buf.String())
	}
}

func TestSearchNoMatches(t *testing.T) {
	setupTest(t)
	saveSession(t, "key_test", "me@example.com")

	api := newFakeAPI(t)
	api.handleStart("j1")
	api.handleStatus("j1", `{"status":"complete","progress":100,"found":0,"results":[],"remaining_credits":2}`)

	stdout, _, err := execute(t, "", writeImage(t, "face.jpg"), "--server", api.URL(), "--min-score", "85")
	if err != nil {
		t.Fatalf("no matches should not be an error: %v", err)
	}
	for _, want := range []string{"No matches found above 85% similarity", "Try lowering --min-score", "Remaining credits: 2 searches"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestSearchPollTimeout(t *testing.T) {
	setupTest(t)
	saveSession(t, "key_test", "me@example.com")
	t.Setenv("FACETRACE_SEARCH_MAX_ATTEMPTS", "3")

	api := newFakeAPI(t)
	api.handleStart("slow")
	api.handleStatus("slow", `{"status":"running","progress":10,"found":0}`)

	_, _, err := execute(t, "", writeImage(t, "face.jpg"), "--server", api.URL())
	if !errors.Is(err, model.ErrPollTimeout) {
		t.Fatalf("error = %v, want ErrPollTimeout", err)
	}
	if n := api.count("/search/status/slow"); n != 3 {
		t.Errorf("status queries = %d, want 3", n)
	}
}

func TestSearchStatusTransportFailureAborts(t *testing.T) {
	setupTest(t)
	saveSession(t, "key_test", "me@example.com")

	api := newFakeAPI(t)
	api.handleStart("j1")
	api.mux.HandleFunc("/search/status/j1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})

	_, _, err := execute(t, "", writeImage(t, "face.jpg"), "--server", api.URL())
	if !model.IsTransport(err) {
		t.Fatalf("error = %v, want TransportError", err)
	}
	if n := api.count("/search/status/j1"); n != 1 {
		t.Errorf("status queries = %d, want 1", n)
	}
}

func TestSearchOpenWithoutDisplay(t *testing.T) {
	setupTest(t)
	saveSession(t, "key_test", "me@example.com")
	opener := &fakeOpener{}
	newOpener = func() urlOpener { return opener }

	api := newFakeAPI(t)
	api.handleStart("j1")
	api.handleStatus("j1", completeTwoMatches)

	stdout, _, err := execute(t, "", writeImage(t, "face.jpg"), "--server", api.URL(), "--open", "--top", "1")
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	if !strings.Contains(stdout, "open these URLs manually") {
		t.Errorf("output = %s", stdout)
	}
	if len(opener.opened) != 0 {
		t.Errorf("opened %v without a display", opener.opened)
	}
}

func TestSearchOpenTopMatches(t *testing.T) {
	setupTest(t)
	saveSession(t, "key_test", "me@example.com")
	detectEnv = func() display.Env { return display.Env{HasDisplay: true} }
	opener := &fakeOpener{}
	newOpener = func() urlOpener { return opener }

	api := newFakeAPI(t)
	api.handleStart("j1")
	api.handleStatus("j1", completeTwoMatches)

	stdout, _, err := execute(t, "", writeImage(t, "face.jpg"), "--server", api.URL(), "--open", "--top", "10")
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	if !strings.Contains(stdout, "Opening top 2 match(es) in browser...") {
		t.Errorf("output = %s", stdout)
	}
	want := []string{"https://instagram.com/alice", "https://vk.com/id1"}
	if len(opener.opened) != 2 || opener.opened[0] != want[0] || opener.opened[1] != want[1] {
		t.Errorf("opened = %v, want %v", opener.opened, want)
	}
}

func TestSearchTUI(t *testing.T) {
	setupTest(t)
	saveSession(t, "key_test", "me@example.com")
	detectEnv = func() display.Env {
		return display.Env{IsTerminal: true, Cols: 132, Rows: 40}
	}

	var shown []model.Match
	var width, height int
	runTUI = func(matches []model.Match, _ tui.OpenFunc, w, h int) error {
		shown = matches
		width, height = w, h
		return nil
	}

	api := newFakeAPI(t)
	api.handleStart("j1")
	api.handleStatus("j1", completeTwoMatches)

	stdout, _, err := execute(t, "", writeImage(t, "face.jpg"), "--server", api.URL(), "--tui")
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	if len(shown) != 2 {
		t.Errorf("TUI got %d matches, want 2", len(shown))
	}
	if width != 132 || height != 40 {
		t.Errorf("TUI size = %dx%d, want 132x40", width, height)
	}
	if strings.Contains(stdout, "Found 2 match(es)!") {
		t.Error("listing should not be printed when the TUI is shown")
	}
}

func TestSearchTUIFallsBackWithoutTerminal(t *testing.T) {
	setupTest(t)
	saveSession(t, "key_test", "me@example.com")
	runTUI = func([]model.Match, tui.OpenFunc, int, int) error {
		t.Error("TUI started without a terminal")
		return nil
	}

	api := newFakeAPI(t)
	api.handleStart("j1")
	api.handleStatus("j1", completeTwoMatches)

	stdout, _, err := execute(t, "", writeImage(t, "face.jpg"), "--server", api.URL(), "--tui")
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	if !strings.Contains(stdout, "--tui needs an interactive terminal") || !strings.Contains(stdout, "Found 2 match(es)!") {
		t.Errorf("output = %s", stdout)
	}
}
