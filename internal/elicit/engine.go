// Package elicit implements the elicitation state machine: session creation,
// next-question resolution, answer recording, section transitions, and
// session completion. The question bank supplies what to ask; the session
// store is the single synchronization point for mutations.
package elicit

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/britt/llpm/internal/questionbank"
	"github.com/britt/llpm/internal/session"
)

// Engine drives elicitation sessions. It holds no per-session state of its
// own; every operation loads, mutates, and persists through the store.
type Engine struct {
	store *session.Store
	bank  questionbank.Provider
}

// New creates an Engine backed by the given store and question bank.
func New(store *session.Store, bank questionbank.Provider) *Engine {
	return &Engine{store: store, bank: bank}
}

// StartSession creates a session for the domain's question bank: one section
// per bank section in bank order, the first in progress and the rest
// pending.
func (e *Engine) StartSession(projectID string, domain questionbank.Domain, projectName string) (*session.Session, error) {
	set := e.bank.QuestionSet(domain)
	if set == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDomain, domain)
	}

	now := time.Now().UTC()
	sess := &session.Session{
		ID:          uuid.New().String(),
		ProjectID:   projectID,
		Domain:      domain,
		ProjectName: projectName,
		CreatedAt:   now,
		UpdatedAt:   now,
		Status:      session.StatusInProgress,
	}

	for i, sec := range set.Sections {
		status := session.SectionPending
		if i == 0 {
			status = session.SectionInProgress
			sess.CurrentSectionID = sec.ID
		}
		sess.Sections = append(sess.Sections, session.Section{
			ID:     sec.ID,
			Name:   sec.Name,
			Status: status,
		})
	}

	if err := e.store.Create(sess); err != nil {
		return nil, err
	}

	return sess, nil
}

// GetSession loads a session by id. Returns session.ErrNotFound (wrapped)
// for unknown ids.
func (e *Engine) GetSession(sessionID string) (*session.Session, error) {
	sess, err := e.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, session.ErrNotFound)
	}
	return sess, nil
}

// ActiveSession resolves the project's most recently updated in-progress
// session. Returns ErrNoActiveSession if there is none.
func (e *Engine) ActiveSession(projectID string) (*session.Session, error) {
	sess, err := e.store.LatestActive(projectID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("%w for project %s", ErrNoActiveSession, projectID)
	}
	return sess, nil
}

// GetNextQuestion returns the first question in the current section's
// effective queue that has not been answered, or nil when the section (or
// the whole session) has nothing left to ask. The caller treats nil as
// "section complete" and decides when to advance.
func (e *Engine) GetNextQuestion(sessionID string) (*questionbank.Question, error) {
	sess, err := e.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	return e.nextQuestion(sess)
}

// NextQuestion resolves the next unanswered question for an already-loaded
// session record without touching the store.
func (e *Engine) NextQuestion(sess *session.Session) (*questionbank.Question, error) {
	return e.nextQuestion(sess)
}

func (e *Engine) nextQuestion(sess *session.Session) (*questionbank.Question, error) {
	if sess.Status == session.StatusCompleted {
		return nil, nil
	}

	sec, bankSec, err := e.currentSection(sess)
	if err != nil {
		return nil, err
	}

	queue := EffectiveQueue(bankSec, sec.Answers)
	id := firstUnanswered(queue, sec)
	if id == "" {
		return nil, nil
	}

	q, ok := bankSec.Question(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuestion, id)
	}

	// Copy so callers can't mutate the bank.
	out := *q
	return &out, nil
}

// RecordAnswer appends an answer to the current section and advances the
// section cursor. The answer must target a question in the current section's
// effective queue. The record is flagged FollowUpTriggered when this answer's
// pattern match spliced new follow-ups into the queue. Sections never
// auto-advance here: the caller checks GetNextQuestion for nil and calls
// AdvanceSection when ready, so a closing message can be shown first.
func (e *Engine) RecordAnswer(sessionID, questionID, questionText, answerText string) (*session.Session, error) {
	return e.store.Mutate(sessionID, func(sess *session.Session) error {
		sec, bankSec, err := e.currentSection(sess)
		if err != nil {
			return err
		}

		before := EffectiveQueue(bankSec, sec.Answers)
		if !contains(before, questionID) {
			return fmt.Errorf("%w: %q in section %q", ErrUnknownQuestion, questionID, sec.ID)
		}

		triggered := false
		if q, ok := bankSec.Question(questionID); ok && q.FollowUp != nil && q.FollowUp.Matches(answerText) {
			for _, id := range q.FollowUp.FollowUpQuestionIDs {
				if !contains(before, id) {
					triggered = true
					break
				}
			}
		}

		sec.Answers = append(sec.Answers, session.Answer{
			QuestionID:        questionID,
			QuestionText:      questionText,
			AnswerText:        answerText,
			Section:           sec.ID,
			Timestamp:         time.Now().UTC(),
			FollowUpTriggered: triggered,
		})

		after := EffectiveQueue(bankSec, sec.Answers)
		sec.CurrentQuestionIndex = answeredIndex(after, sec)

		return nil
	})
}

// AdvanceSection marks the current section completed and moves to the first
// remaining pending section in bank order. Completeness of answers is the
// caller's call; only the transition is enforced here. When no pending
// section remains the session itself completes, with CurrentSectionID left
// on the last section worked.
func (e *Engine) AdvanceSection(sessionID string) (*session.Session, error) {
	return e.finishSection(sessionID, session.SectionCompleted)
}

// SkipSection is AdvanceSection with a skipped terminal status: the current
// section is set aside without any claim about its answers.
func (e *Engine) SkipSection(sessionID string) (*session.Session, error) {
	return e.finishSection(sessionID, session.SectionSkipped)
}

func (e *Engine) finishSection(sessionID string, terminal session.SectionStatus) (*session.Session, error) {
	return e.store.Mutate(sessionID, func(sess *session.Session) error {
		sec, ok := sess.CurrentSection()
		if !ok {
			return fmt.Errorf("%w: current section %q does not resolve", ErrNoActiveSession, sess.CurrentSectionID)
		}

		sec.Status = terminal

		for i := range sess.Sections {
			if sess.Sections[i].Status == session.SectionPending {
				sess.Sections[i].Status = session.SectionInProgress
				sess.CurrentSectionID = sess.Sections[i].ID
				return nil
			}
		}

		// Nothing pending: every section is terminal, so the session is done.
		sess.Status = session.StatusCompleted
		return nil
	})
}

// ReopenSection puts a previously completed or skipped section back in
// progress and makes it current. Existing answers are preserved as prior
// context, and the cursor is not reset: the effective queue re-derives from
// the answers, so the next question is the first unanswered item, whether
// that is a skipped question or a follow-up revealed by a revised answer.
// A completed session reverts to in progress.
func (e *Engine) ReopenSection(sessionID, sectionID string) (*session.Session, error) {
	return e.store.Mutate(sessionID, func(sess *session.Session) error {
		target, ok := sess.Section(sectionID)
		if !ok {
			return fmt.Errorf("%w: %q", ErrSectionNotFound, sectionID)
		}

		// Only one section may be in progress at a time.
		for i := range sess.Sections {
			if sess.Sections[i].Status == session.SectionInProgress && sess.Sections[i].ID != sectionID {
				sess.Sections[i].Status = session.SectionPending
			}
		}

		target.Status = session.SectionInProgress
		sess.CurrentSectionID = sectionID
		sess.Status = session.StatusInProgress
		return nil
	})
}

// Question resolves a question id within the session's current section,
// searching both static and follow-up lists.
func (e *Engine) Question(sess *session.Session, questionID string) (*questionbank.Question, error) {
	_, bankSec, err := e.currentSection(sess)
	if err != nil {
		return nil, err
	}
	q, ok := bankSec.Question(questionID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuestion, questionID)
	}
	out := *q
	return &out, nil
}

// currentSection resolves the session's current section alongside its bank
// definition.
func (e *Engine) currentSection(sess *session.Session) (*session.Section, *questionbank.Section, error) {
	sec, ok := sess.CurrentSection()
	if !ok {
		return nil, nil, fmt.Errorf("%w: current section %q does not resolve", ErrNoActiveSession, sess.CurrentSectionID)
	}

	set := e.bank.QuestionSet(sess.Domain)
	if set == nil {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownDomain, sess.Domain)
	}

	bankSec, ok := set.Section(sec.ID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q missing from bank", ErrSectionNotFound, sec.ID)
	}

	return sec, bankSec, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
