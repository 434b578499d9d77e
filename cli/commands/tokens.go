package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) newCountTokensCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count-tokens",
		Short: "Count the tokens in a text",
		Long: `Count how many tokens a text occupies for a model.

Examples:
  genlang count-tokens --text "The quick brown fox"
  genlang count-tokens --model gemini-2.5-pro --text "Hello" --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCountTokens(cmd)
		},
	}

	cmd.Flags().StringVar(&a.countText, "text", "", "text to count (required)")
	_ = cmd.MarkFlagRequired("text")

	return cmd
}

func (a *App) runCountTokens(cmd *cobra.Command) error {
	model, err := a.requireModel()
	if err != nil {
		return err
	}

	client, err := a.openClient()
	if err != nil {
		return err
	}
	defer client.Close()

	resp, err := client.CountTokens(cmd.Context(), model, a.countText).Wait(cmd.Context())
	if err != nil {
		return a.handleAPIError(err)
	}

	if a.jsonOutput {
		return a.outputJSON(resp)
	}

	fmt.Fprintf(a.stdout, "%d\n", resp.TotalTokens)
	return nil
}
