// init.go implements "llpm init" which creates .llpm/config.yaml.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/britt/llpm/internal/config"
	"github.com/britt/llpm/internal/questionbank"
)

var (
	initNameFlag   string
	initDomainFlag string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize llpm in the current directory",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().StringVar(&initNameFlag, "name", "", "Project name (default: directory name)")
	initCmd.Flags().StringVar(&initDomainFlag, "domain", "general", "Default project domain for new sessions")
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	if _, err := config.ReadConfig(root); err == nil {
		return fmt.Errorf(".llpm/config.yaml already exists")
	}

	bank, err := questionbank.Load()
	if err != nil {
		return fmt.Errorf("loading question banks: %w", err)
	}
	if bank.QuestionSet(questionbank.Domain(initDomainFlag)) == nil {
		return fmt.Errorf("unknown domain %q (known: %s)", initDomainFlag, domainList(bank))
	}

	name := initNameFlag
	if name == "" {
		name = filepath.Base(root)
	}

	cfg := config.DefaultConfig()
	cfg.Project.ID = uuid.New().String()
	cfg.Project.Name = name
	cfg.Project.Domain = initDomainFlag

	if err := config.WriteConfig(root, cfg); err != nil {
		return err
	}

	fmt.Printf("Initialized llpm project %q (domain: %s)\n", name, initDomainFlag)
	fmt.Println("Run 'llpm start' to begin an elicitation session.")
	return nil
}

func domainList(bank *questionbank.Registry) string {
	var out string
	for i, d := range bank.Domains() {
		if i > 0 {
			out += ", "
		}
		out += string(d)
	}
	return out
}
