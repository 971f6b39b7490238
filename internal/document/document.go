// Package document renders a session's captured answers into a markdown
// requirements document.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/britt/llpm/internal/session"
)

// Generate renders the session as markdown. The output is a pure function of
// the session record: sections appear in their fixed bank order regardless
// of the order they were worked, sections with no answers are omitted, and
// when a question was answered more than once the latest answer wins. A
// partial session renders a partial document.
func Generate(sess *session.Session) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Project Requirements: %s\n\n", sess.ProjectName)
	fmt.Fprintf(&b, "- Domain: %s\n", sess.Domain)
	fmt.Fprintf(&b, "- Status: %s\n", sess.Status)
	fmt.Fprintf(&b, "- Started: %s\n", sess.CreatedAt.UTC().Format("2006-01-02 15:04 MST"))

	for _, sec := range sess.Sections {
		if len(sec.Answers) == 0 {
			continue
		}

		fmt.Fprintf(&b, "\n## %s\n\n", sec.Name)

		// First-asked order, latest answer per question.
		seen := make(map[string]bool)
		for _, ans := range sec.Answers {
			if seen[ans.QuestionID] {
				continue
			}
			seen[ans.QuestionID] = true

			last, _ := sec.LastAnswer(ans.QuestionID)
			fmt.Fprintf(&b, "**%s**: %s\n\n", last.QuestionText, last.AnswerText)
		}
	}

	return b.String()
}

// Write renders the session and writes the document to path, creating parent
// directories as needed. Returns the rendered content.
func Write(sess *session.Session, path string) (string, error) {
	content := Generate(sess)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("creating document directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("writing document: %w", err)
	}

	return content, nil
}
