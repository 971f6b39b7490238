// Package session defines the elicitation session record and its
// SQLite-backed store.
package session

import (
	"time"

	"github.com/britt/llpm/internal/questionbank"
)

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

// Session statuses.
const (
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
	StatusAbandoned  SessionStatus = "abandoned"
)

// SectionStatus is the lifecycle state of one section within a session.
type SectionStatus string

// Section statuses.
const (
	SectionPending    SectionStatus = "pending"
	SectionInProgress SectionStatus = "in_progress"
	SectionCompleted  SectionStatus = "completed"
	SectionSkipped    SectionStatus = "skipped"
)

// Answer records one response to a question. Answers are append-only: a
// revised answer is a new record, and the latest record for a question id
// wins when rendering.
type Answer struct {
	QuestionID        string    `json:"question_id"`
	QuestionText      string    `json:"question_text"`
	AnswerText        string    `json:"answer_text"`
	Section           string    `json:"section"`
	Timestamp         time.Time `json:"timestamp"`
	FollowUpTriggered bool      `json:"follow_up_triggered"`
}

// Section tracks a session's progress through one question-bank section.
// CurrentQuestionIndex is a cursor into the section's effective queue, which
// grows as follow-ups are spliced in.
type Section struct {
	ID                   string        `json:"id"`
	Name                 string        `json:"name"`
	Status               SectionStatus `json:"status"`
	Answers              []Answer      `json:"answers"`
	CurrentQuestionIndex int           `json:"current_question_index"`
}

// Answered reports whether the section holds at least one answer for the
// given question id.
func (s *Section) Answered(questionID string) bool {
	for _, a := range s.Answers {
		if a.QuestionID == questionID {
			return true
		}
	}
	return false
}

// LastAnswer returns the most recent answer for the given question id.
func (s *Section) LastAnswer(questionID string) (*Answer, bool) {
	for i := len(s.Answers) - 1; i >= 0; i-- {
		if s.Answers[i].QuestionID == questionID {
			return &s.Answers[i], true
		}
	}
	return nil, false
}

// Session is one elicitation run for one project. Section order is fixed at
// creation time and matches the question bank's order for the domain.
type Session struct {
	ID               string              `json:"id"`
	ProjectID        string              `json:"project_id"`
	Domain           questionbank.Domain `json:"domain"`
	ProjectName      string              `json:"project_name"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
	Sections         []Section           `json:"sections"`
	CurrentSectionID string              `json:"current_section_id"`
	Status           SessionStatus       `json:"status"`
}

// Section returns the session's section with the given id.
func (s *Session) Section(id string) (*Section, bool) {
	for i := range s.Sections {
		if s.Sections[i].ID == id {
			return &s.Sections[i], true
		}
	}
	return nil, false
}

// CurrentSection resolves CurrentSectionID.
func (s *Session) CurrentSection() (*Section, bool) {
	return s.Section(s.CurrentSectionID)
}

// AllSectionsFinished reports whether every section is completed or skipped.
func (s *Session) AllSectionsFinished() bool {
	for _, sec := range s.Sections {
		if sec.Status != SectionCompleted && sec.Status != SectionSkipped {
			return false
		}
	}
	return true
}
