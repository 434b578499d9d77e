// Package commands implements the CLI command structure using Cobra.
package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/petal-labs/genlang/cli/config"
	"github.com/petal-labs/genlang/cli/keystore"
	"github.com/petal-labs/genlang/gemini"
)

// ConfigLoader loads CLI config from a path.
type ConfigLoader func(path string) (*config.Config, error)

// ClientFactory builds an API client from resolved configuration.
type ClientFactory func(cfg *config.Config, apiKey string, verbose bool) (*gemini.Client, error)

// KeystoreFactory opens a keystore instance.
type KeystoreFactory func() (keystore.Keystore, error)

// AppOption customizes App dependencies.
type AppOption func(*App)

// App holds CLI state and runtime dependencies.
type App struct {
	root *cobra.Command

	loadConfig  ConfigLoader
	newClient   ClientFactory
	newKeystore KeystoreFactory
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer

	cfgFile    string
	model      string
	jsonOutput bool
	verbose    bool
	cfg        *config.Config

	generatePrompt      string
	generateTemperature float64
	generateTopP        float64
	generateTopK        int
	generateMaxTokens   int
	countText           string
}

// WithConfigLoader injects a config loader dependency.
func WithConfigLoader(loader ConfigLoader) AppOption {
	return func(a *App) {
		if loader != nil {
			a.loadConfig = loader
		}
	}
}

// WithClientFactory injects a client factory dependency.
func WithClientFactory(factory ClientFactory) AppOption {
	return func(a *App) {
		if factory != nil {
			a.newClient = factory
		}
	}
}

// WithKeystoreFactory injects a keystore factory dependency.
func WithKeystoreFactory(factory KeystoreFactory) AppOption {
	return func(a *App) {
		if factory != nil {
			a.newKeystore = factory
		}
	}
}

// WithIO injects process I/O streams.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) AppOption {
	return func(a *App) {
		if stdin != nil {
			a.stdin = stdin
		}
		if stdout != nil {
			a.stdout = stdout
		}
		if stderr != nil {
			a.stderr = stderr
		}
	}
}

// NewApp creates a new CLI app with default dependencies.
func NewApp(opts ...AppOption) *App {
	a := &App{
		loadConfig:  config.Load,
		newKeystore: keystore.Open,
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
	}
	a.newClient = a.defaultClientFactory

	for _, opt := range opts {
		opt(a)
	}

	a.root = a.newRootCommand()
	return a
}

func (a *App) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "genlang",
		Short: "Genlang - Generative Language API CLI",
		Long: `Genlang is a command-line interface for the Google Generative
Language API.

Use it to browse available models, generate text and count tokens.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
		SilenceUsage: true,
	}

	// Global flags available to all commands.
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ~/.genlang/config.yaml)")
	root.PersistentFlags().StringVar(&a.model, "model", "", "model ID (e.g. gemini-2.5-flash)")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "emit JSON output")
	root.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "enable debug logging")

	root.AddCommand(a.newModelsCommand())
	root.AddCommand(a.newGenerateCommand())
	root.AddCommand(a.newCountTokensCommand())
	root.AddCommand(a.newKeysCommand())
	root.AddCommand(a.newInitCommand())
	root.AddCommand(a.newVersionCommand())

	return root
}

// Execute runs the root command.
func (a *App) Execute() error {
	return a.root.Execute()
}

// SetArgs overrides command-line arguments, primarily for tests.
func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}

func (a *App) initConfig() error {
	path := a.cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	cfg, err := a.loadConfig(path)
	if err != nil {
		return err
	}
	a.cfg = cfg

	// Apply the config default when the flag was not set.
	if a.model == "" && cfg.DefaultModel != "" {
		a.model = cfg.DefaultModel
	}

	return nil
}

// requireModel returns the effective model identifier, failing with a
// validation exit code when neither the flag nor the config supplies
// one.
func (a *App) requireModel() (gemini.ModelID, error) {
	if a.model == "" {
		return "", exitWithCode(ExitValidation,
			errors.New("model required: use --model or set default_model in config"))
	}
	return gemini.ModelID(a.model), nil
}

// resolveAPIKey returns the API key to use: the environment or config
// file value when present, otherwise the keystore entry named by the
// configuration.
func (a *App) resolveAPIKey() (string, error) {
	if a.cfg.APIKey != "" {
		return a.cfg.APIKey, nil
	}

	ks, err := a.newKeystore()
	if err != nil {
		return "", exitWithCode(ExitValidation, err)
	}
	key, err := ks.Get(a.cfg.KeyName)
	if err != nil {
		var notFound *keystore.ErrKeyNotFound
		if errors.As(err, &notFound) {
			return "", exitWithCode(ExitValidation,
				fmt.Errorf("no API key found: set %s or run 'genlang keys set'", config.EnvAPIKey))
		}
		return "", exitWithCode(ExitValidation, err)
	}
	return key, nil
}

// openClient resolves the API key and builds a client. The caller owns
// the returned client and must Close it.
func (a *App) openClient() (*gemini.Client, error) {
	apiKey, err := a.resolveAPIKey()
	if err != nil {
		return nil, err
	}
	client, err := a.newClient(a.cfg, apiKey, a.verbose)
	if err != nil {
		return nil, exitWithCode(ExitValidation, err)
	}
	return client, nil
}

// defaultClientFactory builds a production client from configuration.
func (a *App) defaultClientFactory(cfg *config.Config, apiKey string, verbose bool) (*gemini.Client, error) {
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))

	opts := []gemini.Option{gemini.WithLogger(logger)}
	if cfg.BaseURL != "" {
		opts = append(opts, gemini.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIVersion != "" {
		opts = append(opts, gemini.WithAPIVersion(cfg.APIVersion))
	}
	if cfg.PoolSize > 0 {
		opts = append(opts, gemini.WithPoolSize(cfg.PoolSize))
	}
	if d := cfg.Timeout(); d > 0 {
		opts = append(opts, gemini.WithTimeout(d))
	}
	return gemini.New(apiKey, opts...)
}

// Execute builds an App with default dependencies and runs its root
// command. Construction happens here, not at package init, so importing
// the package has no side effects.
func Execute() error {
	return NewApp().Execute()
}
