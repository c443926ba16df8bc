package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/FranksOps/indexnow/pkg/indexnow"
)

const (
	testHost = "www.example.com"
	testKey  = "452aa38cc3fa4f7ea0893f6b371bc979"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return runTo(t, io.Discard, stdin, args...)
}

func runTo(t *testing.T, stderr io.Writer, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

type engine struct {
	mu     sync.Mutex
	bodies []indexnow.Submission
	status int
	reply  string
}

func (e *engine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/IndexNow" {
		http.NotFound(w, r)
		return
	}
	var sub indexnow.Submission
	_ = json.NewDecoder(r.Body).Decode(&sub)
	e.mu.Lock()
	e.bodies = append(e.bodies, sub)
	e.mu.Unlock()
	w.WriteHeader(e.status)
	_, _ = w.Write([]byte(e.reply))
}

func TestSubmit_Args(t *testing.T) {
	eng := &engine{status: http.StatusOK}
	ts := httptest.NewServer(eng)
	defer ts.Close()

	out, err := run(t, "",
		"submit", "--host", testHost, "--key", testKey, "--search-engine", ts.URL,
		"https://www.example.com/a", "https://www.example.com/b", "https://www.example.com/a", "https://other.example/x",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(eng.bodies) != 1 {
		t.Fatalf("expected exactly one request, got %d", len(eng.bodies))
	}
	got := eng.bodies[0]
	if got.Host != testHost || got.Key != testKey {
		t.Errorf("unexpected host/key %s/%s", got.Host, got.Key)
	}
	if len(got.URLList) != 2 || got.URLList[0] != "https://www.example.com/a" || got.URLList[1] != "https://www.example.com/b" {
		t.Errorf("unexpected url list %v", got.URLList)
	}
	if !strings.Contains(out, "Result:    accepted") || !strings.Contains(out, "(1 dropped: other host)") {
		t.Errorf("unexpected report:\n%s", out)
	}
}

func TestSubmit_FailureReturnsError(t *testing.T) {
	eng := &engine{status: http.StatusForbidden, reply: "key not valid"}
	ts := httptest.NewServer(eng)
	defer ts.Close()

	out, err := run(t, "",
		"submit", "--host", testHost, "--key", testKey, "--search-engine", ts.URL, "-o", "json",
		"https://www.example.com/a",
	)
	if err == nil {
		t.Fatal("expected error for 403")
	}
	if code, ok := indexnow.StatusCode(err); !ok || code != http.StatusForbidden {
		t.Errorf("expected status 403 in error chain, got %v", err)
	}

	var summary map[string]any
	if jsonErr := json.Unmarshal([]byte(out), &summary); jsonErr != nil {
		t.Fatalf("expected json report, got %q: %v", out, jsonErr)
	}
	if summary["error"] != "key not valid" || summary["status_code"] != float64(403) {
		t.Errorf("unexpected summary %v", summary)
	}
}

func TestSubmit_StdinAndKeyLocation(t *testing.T) {
	eng := &engine{status: http.StatusOK}
	ts := httptest.NewServer(eng)
	defer ts.Close()

	_, err := run(t, "https://www.example.com/one\n# skip\nhttps://www.example.com/two\n",
		"submit", "--host", testHost, "--key", testKey, "--search-engine", ts.URL,
		"--key-location", "https://www.example.com/k.txt", "--file", "-",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := eng.bodies[0]
	if len(got.URLList) != 2 || got.KeyLocation != "https://www.example.com/k.txt" {
		t.Errorf("unexpected submission %+v", got)
	}
}

func TestSubmit_Sitemap(t *testing.T) {
	eng := &engine{status: http.StatusOK}
	mux := http.NewServeMux()
	mux.Handle("/IndexNow", eng)
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
   <url><loc>https://www.example.com/from-sitemap</loc></url>
</urlset>`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	_, err := run(t, "",
		"submit", "--host", testHost, "--key", testKey, "--search-engine", ts.URL,
		"--sitemap", ts.URL+"/sitemap.xml",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(eng.bodies) != 1 || len(eng.bodies[0].URLList) != 1 || eng.bodies[0].URLList[0] != "https://www.example.com/from-sitemap" {
		t.Errorf("unexpected submissions %+v", eng.bodies)
	}
}

func TestSubmit_DryRun(t *testing.T) {
	var stderr bytes.Buffer
	out, err := runTo(t, &stderr, "",
		"submit", "--host", testHost, "--key", testKey, "--search-engine", "http://127.0.0.1:1", "--dry-run",
		"https://www.example.com",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sub map[string]any
	if err := json.Unmarshal([]byte(out), &sub); err != nil {
		t.Fatalf("expected json payload, got %q", out)
	}
	if sub["host"] != testHost || sub["key"] != testKey {
		t.Errorf("unexpected payload %v", sub)
	}
	if _, ok := sub["keyLocation"]; ok {
		t.Errorf("expected keyLocation omitted, got %v", sub)
	}
	if !strings.Contains(stderr.String(), "Result:    dry run, nothing sent") {
		t.Errorf("expected dry run summary on stderr, got:\n%s", stderr.String())
	}
}

func TestSubmit_BadOutputSendsNothing(t *testing.T) {
	eng := &engine{status: http.StatusOK}
	ts := httptest.NewServer(eng)
	defer ts.Close()

	_, err := run(t, "",
		"submit", "--host", testHost, "--key", testKey, "--search-engine", ts.URL, "--output", "yaml",
		"https://www.example.com/a",
	)
	if err == nil || !strings.Contains(err.Error(), "output must be text or json") {
		t.Errorf("expected output validation error, got %v", err)
	}
	if len(eng.bodies) != 0 {
		t.Errorf("expected no request to be sent, got %d", len(eng.bodies))
	}
}

func TestSubmit_NoURLs(t *testing.T) {
	_, err := run(t, "", "submit", "--host", testHost, "--key", testKey, "https://other.example/")
	if err == nil || !strings.Contains(err.Error(), "no urls to submit") {
		t.Errorf("expected no urls error, got %v", err)
	}
}

func TestSubmit_MissingConfig(t *testing.T) {
	t.Setenv("INDEXNOW_HOST", "")
	t.Setenv("INDEXNOW_KEY", "")
	_, err := run(t, "", "submit", "https://www.example.com/")
	if err == nil || !strings.Contains(err.Error(), "host must not be empty") {
		t.Errorf("expected config error, got %v", err)
	}
}

func TestSubmit_MetricsFile(t *testing.T) {
	eng := &engine{status: http.StatusOK}
	ts := httptest.NewServer(eng)
	defer ts.Close()

	path := filepath.Join(t.TempDir(), "indexnow.prom")
	_, err := run(t, "",
		"submit", "--host", testHost, "--key", testKey, "--search-engine", ts.URL, "--metrics-file", path,
		"https://www.example.com/a",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected metrics file: %v", err)
	}
	if !strings.Contains(string(data), "indexnow_notifications_total") {
		t.Errorf("expected notification counter in metrics file")
	}
}

func TestVerify(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/"+testKey+".txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testKey))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	out, err := run(t, "", "verify", "--host", testHost, "--key", testKey, "--key-location", ts.URL+"/"+testKey+".txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "key file OK") {
		t.Errorf("unexpected output %q", out)
	}

	_, err = run(t, "", "verify", "--host", testHost, "--key", "0000000000000000", "--key-location", ts.URL+"/"+testKey+".txt")
	if err == nil || !strings.Contains(err.Error(), "does not match") {
		t.Errorf("expected mismatch error, got %v", err)
	}
}

func TestKeygen(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "", "keygen", "--write-dir", dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	key := strings.TrimSpace(out)
	if len(key) != 32 {
		t.Fatalf("expected 32 char key, got %q", key)
	}
	data, err := os.ReadFile(filepath.Join(dir, key+".txt"))
	if err != nil {
		t.Fatalf("expected key file: %v", err)
	}
	if string(data) != key {
		t.Errorf("key file content %q does not match %q", data, key)
	}
}
