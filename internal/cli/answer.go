// answer.go implements "llpm answer" which records one answer.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var answerCmd = &cobra.Command{
	Use:   "answer <question-id> <answer text>",
	Short: "Record an answer to the current section's question",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runAnswer,
}

func runAnswer(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	sessionID, err := a.resolveSession()
	if err != nil {
		return err
	}

	questionID := args[0]
	answerText := strings.Join(args[1:], " ")

	resp := a.handler.Answer(sessionID, questionID, answerText)
	if jsonOutput {
		return printJSON(resp)
	}
	if resp.Error != nil {
		return callFailed(resp.Error)
	}

	fmt.Printf("Recorded answer for %s\n", questionID)
	if resp.SectionComplete {
		fmt.Println("Section complete. Run 'llpm advance' to move on, or keep editing.")
		return nil
	}
	printQuestion(resp.NextQuestion)
	return nil
}
