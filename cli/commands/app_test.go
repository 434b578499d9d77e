package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/petal-labs/genlang/cli/config"
	"github.com/petal-labs/genlang/cli/keystore"
	"github.com/petal-labs/genlang/gemini"
)

// testConfigLoader returns a loader that ignores the path and hands
// back cfg, or a minimal test config when cfg is nil.
func testConfigLoader(cfg *config.Config) ConfigLoader {
	return func(path string) (*config.Config, error) {
		if cfg != nil {
			return cfg, nil
		}
		return &config.Config{
			APIKey:       "test-key",
			KeyName:      config.DefaultKeyName,
			DefaultModel: "gemini-test",
		}, nil
	}
}

// testClientFactory builds clients against srv regardless of config.
func testClientFactory(srv *httptest.Server) ClientFactory {
	return func(cfg *config.Config, apiKey string, verbose bool) (*gemini.Client, error) {
		return gemini.New(apiKey,
			gemini.WithBaseURL(srv.URL),
			gemini.WithTimeout(5*time.Second),
			gemini.WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
		)
	}
}

func newTestApp(srv *httptest.Server, cfg *config.Config) (*App, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	opts := []AppOption{
		WithIO(strings.NewReader(""), &stdout, &stderr),
		WithConfigLoader(testConfigLoader(cfg)),
	}
	if srv != nil {
		opts = append(opts, WithClientFactory(testClientFactory(srv)))
	}
	return NewApp(opts...), &stdout, &stderr
}

func TestModelsListCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models" {
			t.Errorf("path = %q, want /v1beta/models", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"models": [
			{"name": "models/gemini-2.5-pro", "displayName": "Gemini 2.5 Pro", "inputTokenLimit": 1048576, "outputTokenLimit": 65536},
			{"name": "models/gemini-2.5-flash", "displayName": "Gemini 2.5 Flash"}
		]}`))
	}))
	defer server.Close()

	app, stdout, _ := newTestApp(server, nil)
	app.SetArgs([]string{"models", "list"})

	if err := app.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	out := stdout.String()
	for _, want := range []string{"models/gemini-2.5-pro", "Gemini 2.5 Pro", "models/gemini-2.5-flash"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestModelsListCommandJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"models": [{"name": "models/gemini-test"}], "nextPageToken": "tok"}`))
	}))
	defer server.Close()

	app, stdout, _ := newTestApp(server, nil)
	app.SetArgs([]string{"models", "list", "--json"})

	if err := app.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var list gemini.ModelList
	if err := json.Unmarshal(stdout.Bytes(), &list); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, stdout.String())
	}
	if len(list.Models) != 1 || list.Models[0].Name != "models/gemini-test" {
		t.Errorf("decoded list = %+v, want one model", list)
	}
	if list.NextPageToken != "tok" {
		t.Errorf("NextPageToken = %q, want tok", list.NextPageToken)
	}
}

func TestModelsGetCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-test" {
			t.Errorf("path = %q, want /v1beta/models/gemini-test", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name": "models/gemini-test", "displayName": "Test Model", "inputTokenLimit": 8192, "outputTokenLimit": 1024}`))
	}))
	defer server.Close()

	app, stdout, _ := newTestApp(server, nil)
	// The prefixed form normalizes to the same path.
	app.SetArgs([]string{"models", "get", "models/gemini-test"})

	if err := app.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	out := stdout.String()
	if !strings.Contains(out, "Test Model") {
		t.Errorf("output missing display name:\n%s", out)
	}
	if !strings.Contains(out, "8192") {
		t.Errorf("output missing input token limit:\n%s", out)
	}
}

func TestGenerateCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.RequestURI, "models/gemini-test:generateContent") {
			t.Errorf("request uri = %q, want generateContent action", r.RequestURI)
		}

		var req gemini.GenerateContentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.GenerationConfig == nil || req.GenerationConfig.Temperature == nil {
			t.Errorf("generationConfig = %+v, want temperature set", req.GenerationConfig)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "A haiku."}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 4, "candidatesTokenCount": 3, "totalTokenCount": 7}
		}`))
	}))
	defer server.Close()

	app, stdout, stderr := newTestApp(server, nil)
	app.SetArgs([]string{"generate", "--prompt", "Write a haiku", "--temperature", "0.3", "--verbose"})

	if err := app.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if got := strings.TrimSpace(stdout.String()); got != "A haiku." {
		t.Errorf("stdout = %q, want the generated text", got)
	}
	if !strings.Contains(stderr.String(), "7 total tokens") {
		t.Errorf("stderr = %q, want usage line", stderr.String())
	}
}

func TestGenerateCommandAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": {"code": 500, "message": "backend error", "status": "INTERNAL"}}`))
	}))
	defer server.Close()

	app, _, stderr := newTestApp(server, nil)
	app.SetArgs([]string{"generate", "--prompt", "hi"})

	err := app.Execute()
	if err == nil {
		t.Fatal("Execute() succeeded, want API error")
	}

	var ec *exitError
	if !errors.As(err, &ec) {
		t.Fatalf("error type = %T, want *exitError", err)
	}
	if ec.ExitCode() != ExitAPI {
		t.Errorf("ExitCode() = %d, want %d", ec.ExitCode(), ExitAPI)
	}
	if !strings.Contains(stderr.String(), "backend error") {
		t.Errorf("stderr = %q, want the API message", stderr.String())
	}
}

func TestCountTokensCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"totalTokens": 3}`))
	}))
	defer server.Close()

	app, stdout, _ := newTestApp(server, nil)
	app.SetArgs([]string{"count-tokens", "--text", "one two three"})

	if err := app.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := strings.TrimSpace(stdout.String()); got != "3" {
		t.Errorf("stdout = %q, want 3", got)
	}
}

func TestModelRequiredValidation(t *testing.T) {
	app, _, _ := newTestApp(nil, &config.Config{APIKey: "test-key"})
	app.SetArgs([]string{"count-tokens", "--text", "hi"})

	err := app.Execute()
	if err == nil {
		t.Fatal("Execute() succeeded without a model")
	}
	var ec *exitError
	if !errors.As(err, &ec) || ec.ExitCode() != ExitValidation {
		t.Errorf("error = %v, want validation exit code", err)
	}
}

func TestResolveAPIKeyFromKeystore(t *testing.T) {
	ks, err := keystore.OpenFile(filepath.Join(t.TempDir(), "keys.enc"))
	if err != nil {
		t.Fatal(err)
	}
	if err := ks.Set("gemini", "stored-key"); err != nil {
		t.Fatal(err)
	}

	app, _, _ := newTestApp(nil, &config.Config{KeyName: "gemini"})
	app.newKeystore = func() (keystore.Keystore, error) { return ks, nil }
	app.cfg = &config.Config{KeyName: "gemini"}

	key, err := app.resolveAPIKey()
	if err != nil {
		t.Fatalf("resolveAPIKey() error = %v", err)
	}
	if key != "stored-key" {
		t.Errorf("resolveAPIKey() = %q, want stored-key", key)
	}
}

func TestResolveAPIKeyMissing(t *testing.T) {
	ks, err := keystore.OpenFile(filepath.Join(t.TempDir(), "keys.enc"))
	if err != nil {
		t.Fatal(err)
	}

	app, _, _ := newTestApp(nil, nil)
	app.newKeystore = func() (keystore.Keystore, error) { return ks, nil }
	app.cfg = &config.Config{KeyName: "gemini"}

	_, err = app.resolveAPIKey()
	if err == nil {
		t.Fatal("resolveAPIKey() succeeded with no key anywhere")
	}
	if !strings.Contains(err.Error(), config.EnvAPIKey) {
		t.Errorf("error = %q, want a hint naming %s", err, config.EnvAPIKey)
	}
}

func TestKeysCommands(t *testing.T) {
	ks, err := keystore.OpenFile(filepath.Join(t.TempDir(), "keys.enc"))
	if err != nil {
		t.Fatal(err)
	}
	factory := func() (keystore.Keystore, error) { return ks, nil }

	// keys set reads the key from piped stdin.
	var stdout, stderr bytes.Buffer
	app := NewApp(
		WithIO(strings.NewReader("piped-secret\n"), &stdout, &stderr),
		WithConfigLoader(testConfigLoader(nil)),
		WithKeystoreFactory(factory),
	)
	app.SetArgs([]string{"keys", "set"})
	if err := app.Execute(); err != nil {
		t.Fatalf("keys set error = %v", err)
	}
	if got, err := ks.Get("gemini"); err != nil || got != "piped-secret" {
		t.Fatalf("stored key = (%q, %v), want piped-secret", got, err)
	}
	if strings.Contains(stdout.String(), "piped-secret") {
		t.Error("keys set echoed the key")
	}

	// keys list shows the name, never the value.
	stdout.Reset()
	app = NewApp(
		WithIO(strings.NewReader(""), &stdout, &stderr),
		WithConfigLoader(testConfigLoader(nil)),
		WithKeystoreFactory(factory),
	)
	app.SetArgs([]string{"keys", "list"})
	if err := app.Execute(); err != nil {
		t.Fatalf("keys list error = %v", err)
	}
	if !strings.Contains(stdout.String(), "gemini") {
		t.Errorf("keys list output = %q, want the entry name", stdout.String())
	}
	if strings.Contains(stdout.String(), "piped-secret") {
		t.Error("keys list leaked the value")
	}

	// keys delete removes the entry.
	stdout.Reset()
	app = NewApp(
		WithIO(strings.NewReader(""), &stdout, &stderr),
		WithConfigLoader(testConfigLoader(nil)),
		WithKeystoreFactory(factory),
	)
	app.SetArgs([]string{"keys", "delete"})
	if err := app.Execute(); err != nil {
		t.Fatalf("keys delete error = %v", err)
	}
	if _, err := ks.Get("gemini"); err == nil {
		t.Error("key still present after delete")
	}
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	var stdout, stderr bytes.Buffer
	app := NewApp(
		WithIO(strings.NewReader(""), &stdout, &stderr),
		WithConfigLoader(testConfigLoader(nil)),
	)
	app.SetArgs([]string{"init", "--config", path})

	if err := app.Execute(); err != nil {
		t.Fatalf("init error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	for _, want := range []string{"default_model:", "key_name:", "timeout_ms"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("config file missing %q:\n%s", want, data)
		}
	}

	// A second init must refuse to overwrite.
	app = NewApp(
		WithIO(strings.NewReader(""), &stdout, &stderr),
		WithConfigLoader(testConfigLoader(nil)),
	)
	app.SetArgs([]string{"init", "--config", path})
	if err := app.Execute(); err == nil {
		t.Error("second init succeeded, want already-exists error")
	}
}

func TestExitError(t *testing.T) {
	err := exitWithCode(ExitValidation, errors.New("test error"))

	if err.Error() != "test error" {
		t.Errorf("Error() = %q, want 'test error'", err.Error())
	}

	var ec *exitError
	if !errors.As(err, &ec) {
		t.Fatal("expected *exitError type")
	}
	if ec.ExitCode() != ExitValidation {
		t.Errorf("ExitCode() = %d, want %d", ec.ExitCode(), ExitValidation)
	}
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name string
		code int
		want int
	}{
		{"success", ExitSuccess, 0},
		{"validation", ExitValidation, 1},
		{"api", ExitAPI, 2},
		{"network", ExitNetwork, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code != tt.want {
				t.Errorf("Exit%s = %d, want %d", tt.name, tt.code, tt.want)
			}
		})
	}
}
