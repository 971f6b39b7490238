// advance.go implements "llpm advance" and "llpm skip" which end the
// current section and move to the next pending one.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var advanceCmd = &cobra.Command{
	Use:   "advance",
	Short: "Mark the current section completed and move on",
	Args:  cobra.NoArgs,
	RunE:  runAdvance,
}

var skipCmd = &cobra.Command{
	Use:   "skip",
	Short: "Skip the current section and move on",
	Args:  cobra.NoArgs,
	RunE:  runSkip,
}

func runAdvance(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	sessionID, err := a.resolveSession()
	if err != nil {
		return err
	}

	resp := a.handler.Advance(sessionID)
	if jsonOutput {
		return printJSON(resp)
	}
	if resp.Error != nil {
		return callFailed(resp.Error)
	}

	fmt.Printf("Completed section %s\n", resp.PreviousSection)
	if resp.SessionComplete {
		fmt.Println("All sections finished. Run 'llpm doc' to generate the requirements document.")
		return nil
	}
	fmt.Printf("Now in section %s\n", resp.CurrentSection)
	printQuestion(resp.NextQuestion)
	return nil
}

func runSkip(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	sessionID, err := a.resolveSession()
	if err != nil {
		return err
	}

	resp := a.handler.Skip(sessionID)
	if jsonOutput {
		return printJSON(resp)
	}
	if resp.Error != nil {
		return callFailed(resp.Error)
	}

	fmt.Printf("Skipped section %s\n", resp.SkippedSection)
	if resp.CurrentSection != resp.SkippedSection {
		fmt.Printf("Now in section %s\n", resp.CurrentSection)
	}
	printQuestion(resp.NextQuestion)
	return nil
}
