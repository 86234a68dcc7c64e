package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ga4x/internal/analytics"
	"github.com/desertthunder/ga4x/internal/repositories"
	"github.com/desertthunder/ga4x/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultAuthTimeout = 2 * time.Minute

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config        *shared.Config
	configPath    string
	fixedConfig   bool
	authenticator analytics.Authenticator
	reporter      analytics.Reporter
	httpClient    *http.Client
	logger        *log.Logger
	output        io.Writer
	browser       func(url string) error
	authTimeout   time.Duration
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A non-nil Config is used as is and never reloaded from --config.
type RunnerOpts struct {
	Config        *shared.Config
	ConfigPath    string
	Authenticator analytics.Authenticator
	Reporter      analytics.Reporter
	HTTPClient    *http.Client
	Logger        *log.Logger
	Output        io.Writer
	Browser       func(url string) error
	AuthTimeout   time.Duration
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	fixed := opts.Config != nil
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Browser == nil {
		opts.Browser = shared.OpenBrowser
	}
	if opts.AuthTimeout <= 0 {
		opts.AuthTimeout = defaultAuthTimeout
	}

	return &Runner{
		config:        opts.Config,
		configPath:    opts.ConfigPath,
		fixedConfig:   fixed,
		authenticator: opts.Authenticator,
		reporter:      opts.Reporter,
		httpClient:    opts.HTTPClient,
		logger:        opts.Logger,
		output:        opts.Output,
		browser:       opts.Browser,
		authTimeout:   opts.AuthTimeout,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, reportCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// before applies the global flags: log level first, then configuration.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level := cmd.String("log-level")
	if cmd.Bool("verbose") {
		level = "debug"
	}
	ll, err := shared.ParseLogLevel(level)
	if err != nil {
		return ctx, err
	}
	shared.SetLogLevel(r.logger, ll)

	if err := r.loadConfig(cmd.String("config")); err != nil {
		return ctx, err
	}
	return ctx, nil
}

func (r *Runner) loadConfig(path string) error {
	if r.fixedConfig {
		return nil
	}

	config, err := shared.ResolveConfig(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	r.config = config
	r.configPath = path
	r.logger.Debug("configuration loaded", "path", path)
	return nil
}

// auth returns the injected Authenticator or one built from the loaded Google credentials.
func (r *Runner) auth() analytics.Authenticator {
	if r.authenticator != nil {
		return r.authenticator
	}
	return analytics.NewGoogleAuthenticator(analytics.NewOAuthConfig(r.config.Credentials.Google))
}

func (r *Runner) reports() analytics.Reporter {
	if r.reporter != nil {
		return r.reporter
	}
	return analytics.NewDataClient("", r.httpClient)
}

// openRepository opens the configured database with migrations applied.
// Callers close the returned handle.
func (r *Runner) openRepository() (*repositories.SnapshotRepository, *sql.DB, error) {
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, nil, err
	}
	return repositories.NewSnapshotRepository(db), db, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
