package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/diogo/chatwidget/internal/config"
	"github.com/diogo/chatwidget/internal/store"
	"github.com/diogo/chatwidget/internal/tui"
)

var (
	setKeyFlag bool
	resetFlag  bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Open the configuration dialog",
	Long: `Interactive dialog to configure the chat widget: API key, widget
position, and theme. Settings persist in the local store next to the
conversation history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Default()
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}

		if resetFlag {
			if err := config.ResetShell(st); err != nil {
				return fmt.Errorf("failed to reset configuration: %w", err)
			}
			fmt.Println("Configuration reset to defaults.")
			return nil
		}

		if setKeyFlag {
			return promptForKey(st)
		}

		saved, err := tui.RunConfig(st)
		if err != nil {
			return err
		}
		if saved {
			fmt.Println("Configuration saved.")
		}
		return nil
	},
}

// promptForKey reads the API key from the terminal without echo.
func promptForKey(st *store.Store) error {
	fmt.Fprint(os.Stderr, "API key: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to read key: %w", err)
	}

	key := strings.TrimSpace(string(raw))
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	cfg := config.Load(st)
	cfg.Credential = key
	if err := config.SaveShell(st, cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Println("API key saved.")
	return nil
}

func init() {
	configCmd.Flags().BoolVar(&setKeyFlag, "set-key", false, "Prompt for the API key without opening the dialog")
	configCmd.Flags().BoolVar(&resetFlag, "reset", false, "Reset all settings to defaults")
}
