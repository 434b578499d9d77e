package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/petal-labs/genlang/gemini"
)

func (a *App) newModelsCommand() *cobra.Command {
	models := &cobra.Command{
		Use:   "models",
		Short: "Browse available models",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List available models",
		Long: `List the models the API currently serves.

Examples:
  genlang models list
  genlang models list --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runModelsList(cmd)
		},
	}

	get := &cobra.Command{
		Use:   "get <model>",
		Short: "Show details for one model",
		Long: `Show metadata for a single model. The identifier may be bare or
carry the models/ prefix.

Examples:
  genlang models get gemini-2.5-flash
  genlang models get models/gemini-2.5-pro --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runModelsGet(cmd, args[0])
		},
	}

	models.AddCommand(list)
	models.AddCommand(get)
	return models
}

func (a *App) runModelsList(cmd *cobra.Command) error {
	client, err := a.openClient()
	if err != nil {
		return err
	}
	defer client.Close()

	list, err := client.ListModels(cmd.Context()).Wait(cmd.Context())
	if err != nil {
		return a.handleAPIError(err)
	}

	if a.jsonOutput {
		return a.outputJSON(list)
	}

	w := tabwriter.NewWriter(a.stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDISPLAY NAME\tINPUT\tOUTPUT")
	for _, m := range list.Models {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", m.Name, m.DisplayName, m.InputTokenLimit, m.OutputTokenLimit)
	}
	w.Flush()

	if list.NextPageToken != "" && a.verbose {
		fmt.Fprintf(a.stderr, "More models available (page token %s)\n", list.NextPageToken)
	}
	return nil
}

func (a *App) runModelsGet(cmd *cobra.Command, id string) error {
	client, err := a.openClient()
	if err != nil {
		return err
	}
	defer client.Close()

	model, err := client.GetModel(cmd.Context(), gemini.ModelID(id)).Wait(cmd.Context())
	if err != nil {
		return a.handleAPIError(err)
	}

	if a.jsonOutput {
		return a.outputJSON(model)
	}

	fmt.Fprintf(a.stdout, "%s\n", model.Name)
	fmt.Fprintf(a.stdout, "  display name:  %s\n", model.DisplayName)
	if model.Description != "" {
		fmt.Fprintf(a.stdout, "  description:   %s\n", model.Description)
	}
	if model.Version != "" {
		fmt.Fprintf(a.stdout, "  version:       %s\n", model.Version)
	}
	fmt.Fprintf(a.stdout, "  input tokens:  %d\n", model.InputTokenLimit)
	fmt.Fprintf(a.stdout, "  output tokens: %d\n", model.OutputTokenLimit)
	if len(model.SupportedGenerationMethods) > 0 {
		fmt.Fprintf(a.stdout, "  methods:       %s\n", strings.Join(model.SupportedGenerationMethods, ", "))
	}
	return nil
}
