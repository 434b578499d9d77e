package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petal-labs/genlang/gemini"
)

func (a *App) newGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate text from a prompt",
		Long: `Send a prompt to a model and print the generated text.

Examples:
  genlang generate --prompt "Write a haiku about fog"
  genlang generate --model gemini-2.5-pro --prompt "Hello" --temperature 0.2
  genlang generate --prompt "Hello" --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate(cmd)
		},
	}

	cmd.Flags().StringVar(&a.generatePrompt, "prompt", "", "user prompt (required)")
	cmd.Flags().Float64Var(&a.generateTemperature, "temperature", -1, "sampling temperature (negative = server default)")
	cmd.Flags().Float64Var(&a.generateTopP, "top-p", -1, "nucleus sampling threshold (negative = server default)")
	cmd.Flags().IntVar(&a.generateTopK, "top-k", 0, "top-k sampling cutoff (0 = server default)")
	cmd.Flags().IntVar(&a.generateMaxTokens, "max-tokens", 0, "output token limit (0 = server default)")

	_ = cmd.MarkFlagRequired("prompt")

	return cmd
}

// generationConfig assembles the sampling overrides, or nil when every
// flag is at its server-default sentinel.
func (a *App) generationConfig() *gemini.GenerationConfig {
	var cfg gemini.GenerationConfig
	set := false

	if a.generateTemperature >= 0 {
		t := a.generateTemperature
		cfg.Temperature = &t
		set = true
	}
	if a.generateTopP >= 0 {
		p := a.generateTopP
		cfg.TopP = &p
		set = true
	}
	if a.generateTopK > 0 {
		k := a.generateTopK
		cfg.TopK = &k
		set = true
	}
	if a.generateMaxTokens > 0 {
		n := a.generateMaxTokens
		cfg.MaxOutputTokens = &n
		set = true
	}

	if !set {
		return nil
	}
	return &cfg
}

func (a *App) runGenerate(cmd *cobra.Command) error {
	model, err := a.requireModel()
	if err != nil {
		return err
	}

	client, err := a.openClient()
	if err != nil {
		return err
	}
	defer client.Close()

	resp, err := client.GenerateContent(cmd.Context(), model, a.generatePrompt, a.generationConfig()).Wait(cmd.Context())
	if err != nil {
		return a.handleAPIError(err)
	}

	if a.jsonOutput {
		return a.outputJSON(resp)
	}

	text := resp.Text()
	if text == "" && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		fmt.Fprintf(a.stderr, "Prompt blocked: %s\n", resp.PromptFeedback.BlockReason)
		return exitWithCode(ExitAPI, fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason))
	}
	fmt.Fprintln(a.stdout, text)

	if a.verbose && resp.UsageMetadata != nil {
		fmt.Fprintf(a.stderr, "Usage: %d prompt + %d completion = %d total tokens\n",
			resp.UsageMetadata.PromptTokenCount,
			resp.UsageMetadata.CandidatesTokenCount,
			resp.UsageMetadata.TotalTokenCount)
	}
	return nil
}
