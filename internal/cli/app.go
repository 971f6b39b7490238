// app.go wires the config, store, question bank, engine, and tool handler
// for CLI commands. One store per process, explicitly initialized here.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/britt/llpm/internal/config"
	"github.com/britt/llpm/internal/elicit"
	"github.com/britt/llpm/internal/log"
	"github.com/britt/llpm/internal/questionbank"
	"github.com/britt/llpm/internal/session"
	"github.com/britt/llpm/internal/tool"
)

type app struct {
	cfg     *config.Config
	store   *session.Store
	engine  *elicit.Engine
	handler *tool.Handler
	root    string
}

// newApp loads project config and wires the elicitation stack. Fails with a
// pointer to 'llpm init' when the project is not initialized.
func newApp() (*app, error) {
	root, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.ReadConfig(root)
	if err != nil {
		return nil, fmt.Errorf(".llpm/config.yaml not found. Run 'llpm init' first")
	}

	bank, err := questionbank.Load()
	if err != nil {
		return nil, fmt.Errorf("loading question banks: %w", err)
	}

	store, err := session.NewStore(cfg.StoragePath(root))
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}

	engine := elicit.New(store, bank)

	logger, err := log.NewLogger(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: event log disabled: %v\n", err)
		logger = nil
	}

	handler := tool.NewHandler(engine, store, bank, cfg.Project.ID, cfg.DocumentsDir(root), logger)

	return &app{
		cfg:     cfg,
		store:   store,
		engine:  engine,
		handler: handler,
		root:    root,
	}, nil
}

func (a *app) close() {
	_ = a.store.Close()
}

// resolveSession returns the explicit --session value, or the project's most
// recently updated in-progress session.
func (a *app) resolveSession() (string, error) {
	if sessionFlag != "" {
		return sessionFlag, nil
	}

	sess, err := a.store.LatestActive(a.cfg.Project.ID)
	if err != nil {
		return "", err
	}
	if sess == nil {
		return "", fmt.Errorf("no active session. Run 'llpm start' first")
	}
	return sess.ID, nil
}

// printJSON renders a tool response as indented JSON on stdout.
func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding response: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// callFailed converts an in-response tool error into a command error so the
// process exits non-zero.
func callFailed(e *tool.CallError) error {
	return fmt.Errorf("%s: %s", e.Code, e.Message)
}

// printQuestion renders the next question prompt, if any.
func printQuestion(q *tool.QuestionPayload) {
	if q == nil {
		return
	}
	fmt.Printf("\nNext question [%s]:\n  %s\n", q.ID, q.Text)
	if q.Description != "" {
		fmt.Printf("  (%s)\n", q.Description)
	}
	if q.Required {
		fmt.Println("  (required)")
	}
}
