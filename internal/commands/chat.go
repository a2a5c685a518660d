package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/diogo/chatwidget/internal/completion"
	"github.com/diogo/chatwidget/internal/config"
	"github.com/diogo/chatwidget/internal/session"
	"github.com/diogo/chatwidget/internal/store"
	"github.com/diogo/chatwidget/internal/tui"
	"github.com/diogo/chatwidget/internal/voice"
)

var (
	typingAnimationFlag bool
	microphoneFlag      bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive chat widget",
	Long: `Open the interactive chat widget.

The conversation is restored from local storage and every turn is
persisted as it happens. Type 'exit', 'quit', or press Esc/Ctrl+C to
close the widget; the conversation survives for the next session.

On first run, before an API key is configured, the configuration
dialog opens instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChatWidget()
	},
}

func init() {
	chatCmd.Flags().BoolVar(&typingAnimationFlag, "typing-animation", false,
		"Reveal replies with a typing animation")
	chatCmd.Flags().BoolVar(&microphoneFlag, "microphone", false,
		"Enable voice input when the host has a recognizer")
}

func runChatWidget() error {
	st, err := store.Default()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	cfg := config.Load(st)
	// Both features default off, as in the embedded widget; the flags are
	// the terminal counterpart of the embedder's props.
	cfg.EnableTypingAnimation = cfg.EnableTypingAnimation || typingAnimationFlag
	cfg.EnableMicrophone = cfg.EnableMicrophone || microphoneFlag

	if cfg.Credential == "" {
		// First run: the widget cannot open without a credential.
		saved, err := tui.RunConfig(st)
		if err != nil {
			return fmt.Errorf("configuration dialog failed: %w", err)
		}
		if !saved {
			return nil
		}
		cfg = config.Load(st)
	}

	var recognizer voice.Recognizer
	if cfg.EnableMicrophone {
		rec, ok := voice.Detect(cfg.ASRURL, cfg.ASRCommand)
		if ok {
			recognizer = rec
			log.Debug().Msg("speech recognition available")
		}
	}

	client, err := completion.NewClient(cfg.Credential)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	sess := session.New(st, cfg.StorageKey, client, cfg.SystemPrompt)
	return tui.Run(cfg, sess, recognizer)
}
