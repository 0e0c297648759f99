package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/djelia-org/djelia-go"
)

func newTranscribeCmd(opts *globalOptions) *cobra.Command {
	var (
		stream  bool
		french  bool
		version int
	)

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe an audio file",
		Long: `Transcribe speech from an audio file.

With --stream, segments are printed as they arrive; with --json each
segment is one JSON line. With --french the result is a French translation
of the speech instead of timed segments.

Examples:
  djelia transcribe recording.wav
  djelia transcribe --version 2 --stream --json recording.wav
  djelia transcribe --french recording.wav`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.createClient()
			if err != nil {
				return err
			}

			req := djelia.TranscribeRequest{
				Audio:             djelia.AudioFile(args[0]),
				TranslateToFrench: french,
				Version:           version,
			}
			opts.printVerbose(cmd, "Transcribing %s (version %d, stream=%t)", args[0], version, stream)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			if !stream {
				resp, err := client.Transcribe(ctx, req)
				if err != nil {
					return fmt.Errorf("transcription failed: %w", err)
				}
				if resp.French != nil {
					return opts.outputResult(cmd.OutOrStdout(), resp.French)
				}
				return opts.outputResult(cmd.OutOrStdout(), resp.Segments)
			}

			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			count := 0
			for seg, err := range client.StreamTranscribe(ctx, req) {
				if err != nil {
					return fmt.Errorf("transcription stream failed: %w", err)
				}
				count++
				if opts.outputJSON {
					if err := enc.Encode(seg); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintf(out, "[%6.2f - %6.2f] %s\n", seg.Start, seg.End, seg.Text)
			}
			opts.printVerbose(cmd, "Received %d segments", count)
			return nil
		},
	}

	cmd.Flags().BoolVar(&stream, "stream", false, "print segments as they are produced")
	cmd.Flags().BoolVar(&french, "french", false, "return a French translation")
	cmd.Flags().IntVar(&version, "version", djelia.DefaultVersion, "API version (1 or 2)")
	return cmd
}
