package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/petal-labs/genlang/cli/config"
	"github.com/petal-labs/genlang/gemini"
)

const configTemplate = `# genlang configuration
# Values here are overridden by GENLANG_* environment variables.

# API key resolution order: GEMINI_API_KEY / GOOGLE_API_KEY environment
# variables, then this file, then the encrypted keystore entry below.
# Prefer 'genlang keys set' over writing a key here.
#api_key: ""
key_name: {{.KeyName}}

default_model: {{.Model}}
#base_url: {{.BaseURL}}
#api_version: {{.APIVersion}}
#pool_size: {{.PoolSize}}
#timeout_ms: {{.TimeoutMS}}
#log_level: warn
`

type configTemplateData struct {
	KeyName    string
	Model      string
	BaseURL    string
	APIVersion string
	PoolSize   int
	TimeoutMS  int
}

func (a *App) newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		Long: `Write a starter configuration file with documented defaults.

The file goes to --config when set, otherwise to the default location
(~/.genlang/config.yaml). Existing files are never overwritten.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit()
		},
	}
}

func (a *App) runInit() error {
	path := a.cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()

	data := configTemplateData{
		KeyName:    config.DefaultKeyName,
		Model:      string(gemini.DefaultModel),
		BaseURL:    gemini.DefaultBaseURL,
		APIVersion: gemini.DefaultAPIVersion,
		PoolSize:   gemini.DefaultPoolSize,
		TimeoutMS:  int(gemini.DefaultTimeout.Milliseconds()),
	}
	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	fmt.Fprintf(a.stdout, "Wrote %s\n\n", path)
	fmt.Fprintln(a.stdout, "Next steps:")
	fmt.Fprintln(a.stdout, "  genlang keys set")
	fmt.Fprintln(a.stdout, "  genlang models list")
	return nil
}
