package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/djelia-org/djelia-go"
	"github.com/djelia-org/djelia-go/config"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	apiKey     string
	baseURL    string
	cfgFile    string
	outputJSON bool
	verbose    bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "djelia",
		Short: "Djelia API CLI tool",
		Long: `Djelia CLI - A command line interface for the Djelia language API.

This tool lets you use Djelia's services for Bambara, French and English:
  - Translation
  - Speech transcription (batch or streaming)
  - Speech synthesis (TTS)

Examples:
  # Translate a sentence
  djelia translate --from en --to bam "Hello, how are you?"

  # Stream a transcription as JSON lines
  djelia transcribe --stream --json recording.wav

  # Synthesize speech
  djelia tts --speaker 2 -o greeting.wav "Aw ni ce"
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(opts.verbose)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.apiKey, "api-key", "", "Djelia API key (default: $DJELIA_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "API base URL")
	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVar(&opts.outputJSON, "json", false, "output as JSON (for piping)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(newLanguagesCmd(opts))
	rootCmd.AddCommand(newTranslateCmd(opts))
	rootCmd.AddCommand(newTranscribeCmd(opts))
	rootCmd.AddCommand(newTTSCmd(opts))
	rootCmd.AddCommand(newServeCmd(opts))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func setupLogging(verbose bool) {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// loadConfig reads the environment and optional config file; flags win.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.cfgFile != "" {
		cfg, err = config.LoadFile(o.cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if o.apiKey != "" {
		cfg.APIKey = o.apiKey
	}
	if o.baseURL != "" {
		cfg.BaseURL = o.baseURL
	}
	return cfg, nil
}

// createClient creates a Djelia API client from the resolved configuration.
func (o *globalOptions) createClient() (*djelia.Client, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return djelia.NewClient(cfg.APIKey, cfg.ClientOptions()...)
}

// outputResult writes result as YAML, or JSON when --json is set.
func (o *globalOptions) outputResult(w io.Writer, result any) error {
	if o.outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(result)
}

// printVerbose prints verbose output if enabled
func (o *globalOptions) printVerbose(cmd *cobra.Command, format string, args ...any) {
	if o.verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "[verbose] "+format+"\n", args...)
	}
}
