// doc.go implements "llpm doc" which renders the requirements document.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var docOutFlag string

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Generate the requirements document from captured answers",
	Long: `Render the session's answers as a markdown requirements document.
Partial sessions render partial documents; completion is not required.`,
	Args: cobra.NoArgs,
	RunE: runDoc,
}

func init() {
	docCmd.Flags().StringVar(&docOutFlag, "out", "", "Write the document to this path (relative paths land in the docs dir)")
}

func runDoc(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	sessionID, err := a.resolveSession()
	if err != nil {
		return err
	}

	resp := a.handler.GenerateDocument(sessionID, docOutFlag)
	if jsonOutput {
		return printJSON(resp)
	}
	if resp.Error != nil {
		return callFailed(resp.Error)
	}

	if resp.SavedTo != "" {
		fmt.Printf("Document written to %s\n", resp.SavedTo)
		return nil
	}
	fmt.Print(resp.Document)
	return nil
}
