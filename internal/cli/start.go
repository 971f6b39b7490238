// start.go implements "llpm start" which begins a new elicitation session.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var startDomainFlag string

var startCmd = &cobra.Command{
	Use:   "start [project name]",
	Short: "Start a new elicitation session",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStart,
}

func init() {
	startCmd.Flags().StringVar(&startDomainFlag, "domain", "", "Project domain (default: from config)")
}

func runStart(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	name := a.cfg.Project.Name
	if len(args) > 0 {
		name = args[0]
	}
	domain := a.cfg.Project.Domain
	if startDomainFlag != "" {
		domain = startDomainFlag
	}

	resp := a.handler.Start(domain, name)
	if jsonOutput {
		return printJSON(resp)
	}
	if resp.Error != nil {
		return callFailed(resp.Error)
	}

	fmt.Printf("Started session %s for %q (domain: %s)\n", resp.SessionID, resp.ProjectName, resp.Domain)
	fmt.Printf("Current section: %s\n", resp.CurrentSection)
	printQuestion(resp.NextQuestion)
	return nil
}
