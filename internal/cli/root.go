// Package cli defines Cobra command definitions for the llpm CLI.
// This file contains the root command, version flag, and help output.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/britt/llpm/internal/tui"
)

var (
	jsonOutput  bool
	sessionFlag string
	version     = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "llpm",
	Short: "Interactive requirement elicitation for software projects",
	Long: `llpm walks you through a structured, domain-aware questionnaire and
compiles your answers into a requirements document. Question sets adapt
to the project domain (web app, API, CLI, data pipeline, ...) and
follow-up questions appear based on what you answer.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// When no subcommand is provided, launch the interview TUI if TTY,
		// show help otherwise.
		if !tui.IsTTY() {
			return cmd.Help()
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		return tui.RunInterview(a.handler, a.cfg.Project)
	},
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print raw tool-call responses as JSON")
	rootCmd.PersistentFlags().StringVar(&sessionFlag, "session", "", "Session id (defaults to the project's active session)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(answerCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(advanceCmd)
	rootCmd.AddCommand(skipCmd)
	rootCmd.AddCommand(reopenCmd)
	rootCmd.AddCommand(docCmd)
	rootCmd.AddCommand(sessionsCmd)
}
