package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/djelia-org/djelia-go"
)

func newTranslateCmd(opts *globalOptions) *cobra.Command {
	var (
		source  string
		target  string
		version int
	)

	cmd := &cobra.Command{
		Use:   "translate [text]",
		Short: "Translate text",
		Long: fmt.Sprintf(`Translate text between supported languages.

Supported language codes: %s

Examples:
  djelia translate --from en --to bam "Hello"
  djelia translate --from bam --to fr "I ni ce" --json`, strings.Join(djelia.Languages(), ", ")),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.createClient()
			if err != nil {
				return err
			}

			req := djelia.TranslateRequest{
				Text:    strings.Join(args, " "),
				Source:  source,
				Target:  target,
				Version: version,
			}
			opts.printVerbose(cmd, "Translating %d characters from %s to %s", len(req.Text), source, target)

			resp, err := client.Translate(context.Background(), req)
			if err != nil {
				return fmt.Errorf("translation failed: %w", err)
			}
			return opts.outputResult(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&source, "from", "en", "source language code")
	cmd.Flags().StringVar(&target, "to", "bam", "target language code")
	cmd.Flags().IntVar(&version, "version", djelia.DefaultVersion, "API version")
	return cmd
}
