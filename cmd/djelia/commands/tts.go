package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/djelia-org/djelia-go"
)

func newTTSCmd(opts *globalOptions) *cobra.Command {
	var (
		speaker    int
		version    int
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "tts [text]",
		Short: "Synthesize speech from text",
		Long: fmt.Sprintf(`Synthesize speech from text.

The audio is written to the output file. Valid speakers: %v

Examples:
  djelia tts -o greeting.wav "Aw ni ce"
  djelia tts --speaker 3 -o greeting.wav "I ni sogoma"`, djelia.Speakers()),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.createClient()
			if err != nil {
				return err
			}

			req := djelia.SpeechRequest{
				Text:    strings.Join(args, " "),
				Speaker: speaker,
				Version: version,
			}
			opts.printVerbose(cmd, "Synthesizing %d characters with speaker %d", len(req.Text), speaker)

			path, err := client.SynthesizeSpeechTo(context.Background(), req, djelia.FileSink(outputPath))
			if err != nil {
				return fmt.Errorf("speech synthesis failed: %w", err)
			}

			return opts.outputResult(cmd.OutOrStdout(), map[string]any{
				"output_file": path,
				"speaker":     speaker,
			})
		},
	}

	cmd.Flags().IntVar(&speaker, "speaker", djelia.DefaultSpeaker, "speaker id")
	cmd.Flags().IntVar(&version, "version", djelia.DefaultVersion, "API version")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "output.wav", "output audio file")
	return cmd
}
