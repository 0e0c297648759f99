package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/djelia-org/djelia-go"
)

func newLanguagesCmd(opts *globalOptions) *cobra.Command {
	var version int

	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List supported translation languages",
		Long: `List the languages supported by the translation model.

Examples:
  djelia languages
  djelia languages --json | jq '.[].code'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.createClient()
			if err != nil {
				return err
			}
			opts.printVerbose(cmd, "Listing languages from %s", client.BaseURL())

			langs, err := client.SupportedLanguages(context.Background(), version)
			if err != nil {
				return fmt.Errorf("list languages failed: %w", err)
			}
			return opts.outputResult(cmd.OutOrStdout(), langs)
		},
	}

	cmd.Flags().IntVar(&version, "version", djelia.DefaultVersion, "API version")
	return cmd
}
