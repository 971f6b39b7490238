// Package tool exposes the elicitation engine as flat, JSON-serializable
// tool calls, one call per logical action. Failures never cross this
// boundary as Go errors or panics: every response carries an optional
// CallError with a machine code and a human-readable message, and the caller
// decides what to surface. Only store_error is possibly transient; every
// other code indicates caller misuse and should not be retried.
package tool

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/britt/llpm/internal/document"
	"github.com/britt/llpm/internal/elicit"
	"github.com/britt/llpm/internal/log"
	"github.com/britt/llpm/internal/questionbank"
	"github.com/britt/llpm/internal/session"
)

// Error codes.
const (
	CodeUnknownDomain   = "unknown_domain"
	CodeSessionNotFound = "session_not_found"
	CodeNoActiveSession = "no_active_session"
	CodeUnknownQuestion = "unknown_question"
	CodeSectionNotFound = "section_not_found"
	CodeStoreError      = "store_error"
	CodeInternal        = "internal_error"
)

// CallError is a failure result carried inside a tool response.
type CallError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Handler routes tool calls to the engine for one project.
type Handler struct {
	engine    *elicit.Engine
	store     *session.Store
	bank      questionbank.Provider
	projectID string
	docsDir   string
	logger    *log.Logger // optional; nil disables event logging
}

// NewHandler creates a Handler. logger may be nil.
func NewHandler(engine *elicit.Engine, store *session.Store, bank questionbank.Provider, projectID, docsDir string, logger *log.Logger) *Handler {
	return &Handler{
		engine:    engine,
		store:     store,
		bank:      bank,
		projectID: projectID,
		docsDir:   docsDir,
		logger:    logger,
	}
}

// QuestionPayload is the flat rendering of a bank question.
type QuestionPayload struct {
	ID          string `json:"id"`
	SectionID   string `json:"section_id"`
	Text        string `json:"text"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// AnswerPayload is the flat rendering of a recorded answer.
type AnswerPayload struct {
	QuestionID        string `json:"question_id"`
	Question          string `json:"question"`
	Answer            string `json:"answer"`
	Section           string `json:"section"`
	FollowUpTriggered bool   `json:"follow_up_triggered,omitempty"`
}

// SectionPayload summarizes one section's progress.
type SectionPayload struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Answered int    `json:"answered"`
}

// StartResponse is the result of Start.
type StartResponse struct {
	SessionID      string           `json:"session_id,omitempty"`
	Domain         string           `json:"domain,omitempty"`
	ProjectName    string           `json:"project_name,omitempty"`
	CurrentSection string           `json:"current_section,omitempty"`
	NextQuestion   *QuestionPayload `json:"next_question,omitempty"`
	Error          *CallError       `json:"error,omitempty"`
}

// Start creates a new session for the handler's project.
func (h *Handler) Start(domain, projectName string) StartResponse {
	sess, err := h.engine.StartSession(h.projectID, questionbank.Domain(domain), projectName)
	if err != nil {
		return StartResponse{Error: callError(err)}
	}

	next, err := h.engine.NextQuestion(sess)
	if err != nil {
		return StartResponse{Error: callError(err)}
	}

	h.logEvent(log.LogEvent{
		Event:     log.EventSessionStarted,
		SessionID: sess.ID,
		ProjectID: sess.ProjectID,
		Domain:    string(sess.Domain),
	})

	return StartResponse{
		SessionID:      sess.ID,
		Domain:         string(sess.Domain),
		ProjectName:    sess.ProjectName,
		CurrentSection: sess.CurrentSectionID,
		NextQuestion:   questionPayload(next),
	}
}

// AnswerResponse is the result of Answer. SectionComplete is true when the
// current section has no unanswered questions left; the caller should show a
// closing message and then call Advance.
type AnswerResponse struct {
	Recorded        bool             `json:"recorded"`
	SectionComplete bool             `json:"section_complete"`
	NextQuestion    *QuestionPayload `json:"next_question,omitempty"`
	Error           *CallError       `json:"error,omitempty"`
}

// Answer records an answer against the session's current section. The
// question text is resolved from the bank so callers only pass ids.
func (h *Handler) Answer(sessionID, questionID, answerText string) AnswerResponse {
	sess, err := h.engine.GetSession(sessionID)
	if err != nil {
		return AnswerResponse{Error: callError(err)}
	}

	q, err := h.engine.Question(sess, questionID)
	if err != nil {
		return AnswerResponse{Error: callError(err)}
	}

	sess, err = h.engine.RecordAnswer(sessionID, questionID, q.Text, answerText)
	if err != nil {
		return AnswerResponse{Error: callError(err)}
	}

	next, err := h.engine.NextQuestion(sess)
	if err != nil {
		return AnswerResponse{Error: callError(err)}
	}

	triggered := false
	answered := 0
	if sec, ok := sess.CurrentSection(); ok && len(sec.Answers) > 0 {
		triggered = sec.Answers[len(sec.Answers)-1].FollowUpTriggered
		answered = len(sec.Answers)
	}
	h.logEvent(log.LogEvent{
		Event:      log.EventAnswerRecorded,
		SessionID:  sess.ID,
		SectionID:  sess.CurrentSectionID,
		QuestionID: questionID,
		FollowUps:  triggered,
		Answers:    answered,
	})

	return AnswerResponse{
		Recorded:        true,
		SectionComplete: next == nil,
		NextQuestion:    questionPayload(next),
	}
}

// StateResponse is the result of State.
type StateResponse struct {
	SessionID       string           `json:"session_id,omitempty"`
	Domain          string           `json:"domain,omitempty"`
	Status          string           `json:"status,omitempty"`
	CurrentSection  string           `json:"current_section,omitempty"`
	Sections        []SectionPayload `json:"sections,omitempty"`
	CapturedAnswers []AnswerPayload  `json:"captured_answers,omitempty"`
	NextQuestion    *QuestionPayload `json:"next_question,omitempty"`
	Error           *CallError       `json:"error,omitempty"`
}

// State reports the full session state. An empty sessionID resolves to the
// project's most recently updated in-progress session.
func (h *Handler) State(sessionID string) StateResponse {
	var sess *session.Session
	var err error
	if sessionID == "" {
		sess, err = h.engine.ActiveSession(h.projectID)
	} else {
		sess, err = h.engine.GetSession(sessionID)
	}
	if err != nil {
		return StateResponse{Error: callError(err)}
	}

	next, err := h.engine.NextQuestion(sess)
	if err != nil {
		return StateResponse{Error: callError(err)}
	}

	resp := StateResponse{
		SessionID:      sess.ID,
		Domain:         string(sess.Domain),
		Status:         string(sess.Status),
		CurrentSection: sess.CurrentSectionID,
		NextQuestion:   questionPayload(next),
	}
	for _, sec := range sess.Sections {
		resp.Sections = append(resp.Sections, SectionPayload{
			ID:       sec.ID,
			Name:     sec.Name,
			Status:   string(sec.Status),
			Answered: len(sec.Answers),
		})
		for _, ans := range sec.Answers {
			resp.CapturedAnswers = append(resp.CapturedAnswers, answerPayload(ans))
		}
	}

	return resp
}

// AdvanceResponse is the result of Advance.
type AdvanceResponse struct {
	PreviousSection string           `json:"previous_section,omitempty"`
	CurrentSection  string           `json:"current_section,omitempty"`
	SessionComplete bool             `json:"session_complete"`
	NextQuestion    *QuestionPayload `json:"next_question,omitempty"`
	Error           *CallError       `json:"error,omitempty"`
}

// Advance marks the current section completed and moves to the next pending
// section, completing the session when none remain.
func (h *Handler) Advance(sessionID string) AdvanceResponse {
	previous := h.currentSectionID(sessionID)

	sess, err := h.engine.AdvanceSection(sessionID)
	if err != nil {
		return AdvanceResponse{Error: callError(err)}
	}

	next, err := h.engine.NextQuestion(sess)
	if err != nil {
		return AdvanceResponse{Error: callError(err)}
	}

	h.logEvent(log.LogEvent{
		Event:     log.EventSectionCompleted,
		SessionID: sess.ID,
		SectionID: previous,
	})
	if sess.Status == session.StatusCompleted {
		h.logEvent(log.LogEvent{
			Event:     log.EventSessionCompleted,
			SessionID: sess.ID,
		})
	}

	return AdvanceResponse{
		PreviousSection: previous,
		CurrentSection:  sess.CurrentSectionID,
		SessionComplete: sess.Status == session.StatusCompleted,
		NextQuestion:    questionPayload(next),
	}
}

// SkipResponse is the result of Skip.
type SkipResponse struct {
	SkippedSection string           `json:"skipped_section,omitempty"`
	CurrentSection string           `json:"current_section,omitempty"`
	NextQuestion   *QuestionPayload `json:"next_question,omitempty"`
	Error          *CallError       `json:"error,omitempty"`
}

// Skip marks the current section skipped and moves on.
func (h *Handler) Skip(sessionID string) SkipResponse {
	skipped := h.currentSectionID(sessionID)

	sess, err := h.engine.SkipSection(sessionID)
	if err != nil {
		return SkipResponse{Error: callError(err)}
	}

	next, err := h.engine.NextQuestion(sess)
	if err != nil {
		return SkipResponse{Error: callError(err)}
	}

	h.logEvent(log.LogEvent{
		Event:     log.EventSectionSkipped,
		SessionID: sess.ID,
		SectionID: skipped,
	})

	return SkipResponse{
		SkippedSection: skipped,
		CurrentSection: sess.CurrentSectionID,
		NextQuestion:   questionPayload(next),
	}
}

// ReopenResponse is the result of Reopen.
type ReopenResponse struct {
	CurrentSection  string           `json:"current_section,omitempty"`
	PreviousAnswers []AnswerPayload  `json:"previous_answers,omitempty"`
	NextQuestion    *QuestionPayload `json:"next_question,omitempty"`
	Error           *CallError       `json:"error,omitempty"`
}

// Reopen puts a finished section back in progress. Previously recorded
// answers are returned so the caller can show them as prior context.
func (h *Handler) Reopen(sessionID, sectionID string) ReopenResponse {
	sess, err := h.engine.ReopenSection(sessionID, sectionID)
	if err != nil {
		return ReopenResponse{Error: callError(err)}
	}

	next, err := h.engine.NextQuestion(sess)
	if err != nil {
		return ReopenResponse{Error: callError(err)}
	}

	resp := ReopenResponse{
		CurrentSection: sess.CurrentSectionID,
		NextQuestion:   questionPayload(next),
	}
	if sec, ok := sess.Section(sectionID); ok {
		for _, ans := range sec.Answers {
			resp.PreviousAnswers = append(resp.PreviousAnswers, answerPayload(ans))
		}
	}

	h.logEvent(log.LogEvent{
		Event:     log.EventSectionReopened,
		SessionID: sess.ID,
		SectionID: sectionID,
	})

	return resp
}

// DocumentResponse is the result of GenerateDocument.
type DocumentResponse struct {
	Document string     `json:"document,omitempty"`
	SavedTo  string     `json:"saved_to,omitempty"`
	Error    *CallError `json:"error,omitempty"`
}

// GenerateDocument renders the session's requirements document. When
// outputPath is empty the document is only returned; otherwise it is also
// written there (relative paths land under the handler's docs directory).
func (h *Handler) GenerateDocument(sessionID, outputPath string) DocumentResponse {
	sess, err := h.engine.GetSession(sessionID)
	if err != nil {
		return DocumentResponse{Error: callError(err)}
	}

	if outputPath == "" {
		return DocumentResponse{Document: document.Generate(sess)}
	}

	if !filepath.IsAbs(outputPath) {
		outputPath = filepath.Join(h.docsDir, outputPath)
	}
	content, err := document.Write(sess, outputPath)
	if err != nil {
		return DocumentResponse{Error: callError(err)}
	}

	h.logEvent(log.LogEvent{
		Event:     log.EventDocumentGenerated,
		SessionID: sess.ID,
		Path:      outputPath,
	})

	return DocumentResponse{Document: content, SavedTo: outputPath}
}

// currentSectionID is a best-effort read of the session's current section,
// used to report the section a transition left behind.
func (h *Handler) currentSectionID(sessionID string) string {
	sess, err := h.store.Get(sessionID)
	if err != nil || sess == nil {
		return ""
	}
	return sess.CurrentSectionID
}

func (h *Handler) logEvent(event log.LogEvent) {
	if h.logger == nil {
		return
	}
	if err := h.logger.Append(event); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to log %s: %v\n", event.Event, err)
	}
}

func questionPayload(q *questionbank.Question) *QuestionPayload {
	if q == nil {
		return nil
	}
	return &QuestionPayload{
		ID:          q.ID,
		SectionID:   q.SectionID,
		Text:        q.Text,
		Description: q.Description,
		Required:    q.Required,
	}
}

func answerPayload(ans session.Answer) AnswerPayload {
	return AnswerPayload{
		QuestionID:        ans.QuestionID,
		Question:          ans.QuestionText,
		Answer:            ans.AnswerText,
		Section:           ans.Section,
		FollowUpTriggered: ans.FollowUpTriggered,
	}
}

// callError maps engine and store failures onto the tool error taxonomy.
func callError(err error) *CallError {
	var storeErr *session.StoreError

	code := CodeInternal
	switch {
	case errors.Is(err, elicit.ErrUnknownDomain):
		code = CodeUnknownDomain
	case errors.Is(err, session.ErrNotFound):
		code = CodeSessionNotFound
	case errors.Is(err, elicit.ErrNoActiveSession):
		code = CodeNoActiveSession
	case errors.Is(err, elicit.ErrUnknownQuestion):
		code = CodeUnknownQuestion
	case errors.Is(err, elicit.ErrSectionNotFound):
		code = CodeSectionNotFound
	case errors.As(err, &storeErr):
		code = CodeStoreError
	}

	return &CallError{Code: code, Message: err.Error()}
}
