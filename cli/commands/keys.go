package commands

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/petal-labs/genlang/cli/config"
	"github.com/petal-labs/genlang/cli/keystore"
)

func (a *App) newKeysCommand() *cobra.Command {
	keys := &cobra.Command{
		Use:   "keys",
		Short: "Manage stored API keys",
		Long:  `Manage API keys. Keys are stored in an encrypted file and are never echoed or printed.`,
	}

	set := &cobra.Command{
		Use:   "set [name]",
		Short: "Store an API key",
		Long:  `Store an API key under a name (default "gemini"). The key is prompted without echo.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runKeysSet(keyNameArg(args))
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored key names",
		Long:  `List stored key names. Values are never shown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runKeysList()
		},
	}

	del := &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a stored API key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runKeysDelete(keyNameArg(args))
		},
	}

	keys.AddCommand(set)
	keys.AddCommand(list)
	keys.AddCommand(del)
	return keys
}

func keyNameArg(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return config.DefaultKeyName
}

func (a *App) runKeysSet(name string) error {
	fmt.Fprintf(a.stdout, "Enter API key for %s: ", name)

	apiKey, err := a.readSecretLine()
	if err != nil {
		return fmt.Errorf("read key: %w", err)
	}
	if apiKey == "" {
		return errors.New("API key cannot be empty")
	}

	ks, err := a.newKeystore()
	if err != nil {
		return fmt.Errorf("open keystore: %w", err)
	}
	if err := ks.Set(name, apiKey); err != nil {
		return fmt.Errorf("store key: %w", err)
	}

	fmt.Fprintf(a.stdout, "API key for %s stored.\n", name)
	return nil
}

// readSecretLine reads a key without echo when stdin is a terminal, and
// falls back to plain line reading for piped input.
func (a *App) readSecretLine() (string, error) {
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		keyBytes, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.stdout)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(keyBytes)), nil
	}

	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (a *App) runKeysList() error {
	ks, err := a.newKeystore()
	if err != nil {
		return fmt.Errorf("open keystore: %w", err)
	}

	names, err := ks.List()
	if err != nil {
		return fmt.Errorf("list keys: %w", err)
	}

	if len(names) == 0 {
		fmt.Fprintln(a.stdout, "No API keys stored.")
		return nil
	}

	fmt.Fprintln(a.stdout, "Stored keys:")
	for _, name := range names {
		fmt.Fprintf(a.stdout, "  - %s\n", name)
	}
	return nil
}

func (a *App) runKeysDelete(name string) error {
	ks, err := a.newKeystore()
	if err != nil {
		return fmt.Errorf("open keystore: %w", err)
	}

	if err := ks.Delete(name); err != nil {
		var notFound *keystore.ErrKeyNotFound
		if errors.As(err, &notFound) {
			return fmt.Errorf("no key stored for %s", name)
		}
		return fmt.Errorf("delete key: %w", err)
	}

	fmt.Fprintf(a.stdout, "API key for %s deleted.\n", name)
	return nil
}
