// status.go implements "llpm status" which reports session state.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the active session",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	resp := a.handler.State(sessionFlag)
	if jsonOutput {
		return printJSON(resp)
	}
	if resp.Error != nil {
		return callFailed(resp.Error)
	}

	fmt.Printf("Session %s (%s, %s)\n\n", resp.SessionID, resp.Domain, resp.Status)
	for _, sec := range resp.Sections {
		marker := " "
		if sec.ID == resp.CurrentSection {
			marker = ">"
		}
		fmt.Printf("%s %-20s %-12s %d answer(s)\n", marker, sec.Name, sec.Status, sec.Answered)
	}
	printQuestion(resp.NextQuestion)
	return nil
}
