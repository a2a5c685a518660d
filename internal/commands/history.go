package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diogo/chatwidget/internal/history"
	"github.com/diogo/chatwidget/internal/models"
	"github.com/diogo/chatwidget/internal/store"
)

var historyKeyFlag string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the stored conversation",
	Long:  `View and manage the locally persisted conversation.`,
}

var historyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored conversation",
	RunE:  runHistoryShow,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the stored conversation",
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyKeyFlag, "key", "",
		"Storage key of the conversation (defaults to the widget's)")
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)
}

func historyKey() string {
	if historyKeyFlag != "" {
		return historyKeyFlag
	}
	return history.DefaultKey
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	st, err := store.Default()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	msgs := history.Load(st, historyKey())
	if len(msgs) == 0 {
		fmt.Println("No conversation found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tROLE\tTIME\tCONTENT")
	_, _ = fmt.Fprintln(w, "-\t----\t----\t-------")

	for i, msg := range msgs {
		role := "You"
		if msg.Role == models.RoleAssistant {
			role = "Assistant"
		}
		content := msg.Content
		if len(content) > 60 {
			content = content[:60] + "..."
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			i+1, role, msg.Timestamp.Format("2006-01-02 15:04"), content)
	}

	return w.Flush()
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	st, err := store.Default()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	if err := history.Clear(st, historyKey()); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	fmt.Println("Conversation deleted.")
	return nil
}
