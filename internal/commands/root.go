// Package commands provides CLI commands for chatwidget.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verboseFlag bool
	outputFlag  string
	fileFlag    string
	copyFlag    bool

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "chatwidget [prompt]",
	Short: "Terminal chat widget for OpenAI chat completions",
	Long: `chatwidget is an embeddable AI chat assistant for the terminal. It keeps
one conversation per storage key, persists it locally, and talks to an
OpenAI-style chat completion endpoint.

Examples:
  chatwidget chat                       Open the interactive chat widget
  chatwidget config                     Configure API key, position, theme
  chatwidget "What is Go?"              Send a single prompt
  chatwidget -f prompt.md               Read prompt from file
  cat prompt.md | chatwidget            Read prompt from stdin
  chatwidget "Hello" -o response.md     Save reply to file
  chatwidget history show               Print the stored conversation`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("chatwidget %s (built %s)\n", Version, BuildTime)
			return nil
		}

		stat, _ := os.Stdin.Stat()
		hasStdin := (stat.Mode() & os.ModeCharDevice) == 0

		if fileFlag != "" {
			data, err := os.ReadFile(fileFlag)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			return runAsk(string(data))
		}

		if hasStdin {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			return runAsk(string(data))
		}

		if len(args) > 0 {
			return runAsk(args[0])
		}

		// No input - show help
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogging routes structured logs to stderr so they never interleave
// with the rendered reply on stdout.
func setupLogging() {
	level := zerolog.WarnLevel
	if verboseFlag {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Enable verbose logging")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save reply to file")
	rootCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read prompt from file")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")
	rootCmd.Flags().BoolVarP(&copyFlag, "copy", "c", false, "Copy reply to clipboard")

	// Add subcommands
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)
}
