package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ga4x/internal/shared"
	tu "github.com/desertthunder/ga4x/internal/testing"
)

// testConfig returns a complete config whose database lives under t.TempDir.
func testConfig(t *testing.T) *shared.Config {
	t.Helper()
	config := shared.DefaultConfig()
	config.Credentials.Google.ClientID = "client-abc"
	config.Credentials.Google.ClientSecret = "secret"
	config.Credentials.Google.RedirectURI = "http://127.0.0.1:5500/oauth2callback"
	config.Analytics.PropertyID = "123456"
	config.Database.Path = filepath.Join(t.TempDir(), "ga4x.db")
	config.Database.MaxOpenConns = 1
	config.Database.MaxIdleConns = 1
	return config
}

func testRunner(t *testing.T, opts RunnerOpts) (*Runner, *bytes.Buffer) {
	t.Helper()
	output := &bytes.Buffer{}
	if opts.Config == nil {
		opts.Config = testConfig(t)
	}
	opts.Output = output
	opts.Logger = shared.NewLogger(io.Discard)
	return NewRunner(opts), output
}

func run(r *Runner, args ...string) error {
	return newApp(r).Run(context.Background(), append([]string{"ga4x"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			reporter := &tu.MockReporter{}
			auth := &tu.MockAuthenticator{}

			runner := NewRunner(RunnerOpts{
				Config:        config,
				Logger:        logger,
				Output:        output,
				HTTPClient:    httpClient,
				Reporter:      reporter,
				Authenticator: auth,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if !runner.fixedConfig {
				t.Error("expected provided config to be fixed")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.reports() != reporter {
				t.Error("expected reporter to be set")
			}
			if runner.auth() != auth {
				t.Error("expected authenticator to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.fixedConfig {
				t.Error("expected default config to be reloadable")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{HTTPClient: nil})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})

		t.Run("with no auth timeout uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.authTimeout != defaultAuthTimeout {
				t.Errorf("expected %v, got %v", defaultAuthTimeout, runner.authTimeout)
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/test/path/config.toml"})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("without injected collaborators builds Google clients", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.auth() == nil {
				t.Error("expected an authenticator")
			}
			if runner.reports() == nil {
				t.Error("expected a reporter")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writeJSON(map[string]string{"key": "value"}, true)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
			if err := runner.writeBytes([]byte("test")); err == nil {
				t.Error("expected writeBytes to fail too")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}
		for _, want := range []string{"serve", "report", "history", "setup"} {
			if !names[want] {
				t.Errorf("expected %s command to be registered", want)
			}
		}
	})

	t.Run("before", func(t *testing.T) {
		t.Run("sets log level", func(t *testing.T) {
			runner, _ := testRunner(t, RunnerOpts{})

			if err := run(runner, "--log-level", "warn", "setup", "database"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if runner.logger.GetLevel() != log.WarnLevel {
				t.Errorf("expected warn level, got %v", runner.logger.GetLevel())
			}
		})

		t.Run("verbose wins over log level", func(t *testing.T) {
			runner, _ := testRunner(t, RunnerOpts{})

			if err := run(runner, "--verbose", "--log-level", "error", "setup", "database"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if runner.logger.GetLevel() != log.DebugLevel {
				t.Errorf("expected debug level, got %v", runner.logger.GetLevel())
			}
		})

		t.Run("short verbose flag runs the command", func(t *testing.T) {
			runner, output := testRunner(t, RunnerOpts{})

			if err := run(runner, "-v", "setup", "database"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if runner.logger.GetLevel() != log.DebugLevel {
				t.Errorf("expected debug level, got %v", runner.logger.GetLevel())
			}
			if !strings.Contains(output.String(), "schema version 1") {
				t.Errorf("expected setup database to run, got %q", output.String())
			}
			if strings.Contains(output.String(), version) {
				t.Errorf("expected no version output, got %q", output.String())
			}
		})

		t.Run("version flag", func(t *testing.T) {
			runner, output := testRunner(t, RunnerOpts{})

			if err := run(runner, "-V"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(output.String(), "ga4x version "+version) {
				t.Errorf("expected version output, got %q", output.String())
			}
		})

		t.Run("rejects unknown log level", func(t *testing.T) {
			runner, _ := testRunner(t, RunnerOpts{})

			err := run(runner, "--log-level", "loud", "setup", "database")
			if !errors.Is(err, shared.ErrInvalidFlag) {
				t.Errorf("expected ErrInvalidFlag, got %v", err)
			}
		})

		t.Run("loads config from --config", func(t *testing.T) {
			dir := t.TempDir()
			configPath := filepath.Join(dir, "config.toml")
			contents := `
[analytics]
property_id = "987"

[database]
path = "` + filepath.ToSlash(filepath.Join(dir, "loaded.db")) + `"
`
			if err := os.WriteFile(configPath, []byte(contents), 0600); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: shared.NewLogger(io.Discard)})
			if err := run(runner, "--config", configPath, "setup", "database"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if runner.configPath != configPath {
				t.Errorf("expected configPath %s, got %s", configPath, runner.configPath)
			}
			if runner.config.Analytics.PropertyID != "987" {
				t.Errorf("expected property from file, got %q", runner.config.Analytics.PropertyID)
			}
			if _, err := os.Stat(filepath.Join(dir, "loaded.db")); err != nil {
				t.Errorf("expected database at configured path: %v", err)
			}
		})

		t.Run("fixed config is not reloaded", func(t *testing.T) {
			config := testConfig(t)
			runner, _ := testRunner(t, RunnerOpts{Config: config})

			if err := run(runner, "--config", "/does/not/exist.toml", "setup", "database"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if runner.config != config {
				t.Error("expected injected config to be kept")
			}
		})
	})
}
