// Package main provides the Djelia CLI tool.
//
// Usage:
//
//	djelia [flags] <command> [args]
//
// Commands:
//
//	languages   - List languages supported by the translation model
//	translate   - Translate text between French, English and Bambara
//	transcribe  - Transcribe an audio file, optionally streaming segments
//	tts         - Synthesize speech from text
//	serve       - Run the HTTP gateway
//
// Configuration:
//
//	The API key is read from --api-key, the config file, or DJELIA_API_KEY.
package main

import (
	"fmt"
	"os"

	"github.com/djelia-org/djelia-go/cmd/djelia/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
