// reopen.go implements "llpm reopen" which revisits a finished section.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reopenCmd = &cobra.Command{
	Use:   "reopen <section-id>",
	Short: "Reopen a completed or skipped section",
	Args:  cobra.ExactArgs(1),
	RunE:  runReopen,
}

func runReopen(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	sessionID, err := a.resolveSession()
	if err != nil {
		return err
	}

	resp := a.handler.Reopen(sessionID, args[0])
	if jsonOutput {
		return printJSON(resp)
	}
	if resp.Error != nil {
		return callFailed(resp.Error)
	}

	fmt.Printf("Reopened section %s\n", resp.CurrentSection)
	if len(resp.PreviousAnswers) > 0 {
		fmt.Println("Previously recorded:")
		for _, ans := range resp.PreviousAnswers {
			fmt.Printf("  %s: %s\n", ans.Question, ans.Answer)
		}
	}
	printQuestion(resp.NextQuestion)
	return nil
}
