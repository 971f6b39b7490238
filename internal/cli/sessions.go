// sessions.go implements "llpm sessions" which lists recent sessions.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sessionsLimitFlag int

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List this project's elicitation sessions",
	Args:  cobra.NoArgs,
	RunE:  runSessions,
}

func init() {
	sessionsCmd.Flags().IntVar(&sessionsLimitFlag, "limit", 10, "Maximum number of sessions to list")
}

func runSessions(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	summaries, err := a.store.List(a.cfg.Project.ID, sessionsLimitFlag)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(summaries)
	}

	if len(summaries) == 0 {
		fmt.Println("No sessions yet. Run 'llpm start' to begin.")
		return nil
	}

	for _, sum := range summaries {
		fmt.Printf("%s  %-12s %d/%d sections, %d answer(s)  %s\n",
			sum.ID, sum.Status, sum.SectionsDone, sum.SectionsTotal,
			sum.AnswersRecorded, sum.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}
