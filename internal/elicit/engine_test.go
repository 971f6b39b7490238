package elicit

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/britt/llpm/internal/questionbank"
	"github.com/britt/llpm/internal/session"
)

func newTestEngine(t *testing.T) (*Engine, *session.Store) {
	t.Helper()

	store, err := session.NewStore(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	bank, err := questionbank.Load()
	if err != nil {
		t.Fatalf("loading question banks: %v", err)
	}

	return New(store, bank), store
}

func mustAnswer(t *testing.T, e *Engine, sessionID, questionID, text string) *session.Session {
	t.Helper()
	sess, err := e.RecordAnswer(sessionID, questionID, "q: "+questionID, text)
	if err != nil {
		t.Fatalf("RecordAnswer(%s) failed: %v", questionID, err)
	}
	return sess
}

func TestStartSessionUnknownDomain(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.StartSession("proj", "haiku-generator", "X")
	if !errors.Is(err, ErrUnknownDomain) {
		t.Errorf("got %v, want ErrUnknownDomain", err)
	}
}

func TestStartSessionInitialState(t *testing.T) {
	e, _ := newTestEngine(t)

	sess, err := e.StartSession("proj", questionbank.DomainGeneral, "Test")
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	if sess.Status != session.StatusInProgress {
		t.Errorf("status: got %q, want in_progress", sess.Status)
	}
	if sess.CurrentSectionID != "overview" {
		t.Errorf("current section: got %q, want overview", sess.CurrentSectionID)
	}
	for i, sec := range sess.Sections {
		want := session.SectionPending
		if i == 0 {
			want = session.SectionInProgress
		}
		if sec.Status != want {
			t.Errorf("section %s status: got %q, want %q", sec.ID, sec.Status, want)
		}
	}
	if sess.UpdatedAt.Before(sess.CreatedAt) {
		t.Error("UpdatedAt before CreatedAt")
	}
}

// Walks domain general's overview section: four answers, section complete
// only after the fourth.
func TestGeneralOverviewWalkthrough(t *testing.T) {
	e, _ := newTestEngine(t)

	sess, err := e.StartSession("proj", questionbank.DomainGeneral, "Test")
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	order := []string{"project-name", "project-description", "success-criteria", "target-users"}
	for i, id := range order {
		q, err := e.GetNextQuestion(sess.ID)
		if err != nil {
			t.Fatalf("GetNextQuestion failed: %v", err)
		}
		if q == nil || q.ID != id {
			t.Fatalf("step %d: got question %+v, want id %q", i, q, id)
		}

		mustAnswer(t, e, sess.ID, id, "Test")

		q, err = e.GetNextQuestion(sess.ID)
		if err != nil {
			t.Fatalf("GetNextQuestion failed: %v", err)
		}
		if i < len(order)-1 && q == nil {
			t.Fatalf("step %d: section reported complete too early", i)
		}
		if i == len(order)-1 && q != nil {
			t.Fatalf("after final answer: got question %q, want none", q.ID)
		}
	}
}

func TestGetNextQuestionNeverRepeatsAnswered(t *testing.T) {
	e, _ := newTestEngine(t)

	sess, _ := e.StartSession("proj", questionbank.DomainAPI, "Svc")
	answered := make(map[string]bool)

	for {
		q, err := e.GetNextQuestion(sess.ID)
		if err != nil {
			t.Fatalf("GetNextQuestion failed: %v", err)
		}
		if q == nil {
			break
		}
		if answered[q.ID] {
			t.Fatalf("question %q asked twice", q.ID)
		}
		answered[q.ID] = true
		mustAnswer(t, e, sess.ID, q.ID, "OAuth everywhere yes")
	}
}

func TestRecordAnswerUnknownQuestion(t *testing.T) {
	e, _ := newTestEngine(t)

	sess, _ := e.StartSession("proj", questionbank.DomainGeneral, "Test")

	// timeline belongs to the constraints section, not the current one.
	_, err := e.RecordAnswer(sess.ID, "timeline", "q", "next week")
	if !errors.Is(err, ErrUnknownQuestion) {
		t.Errorf("got %v, want ErrUnknownQuestion", err)
	}
}

func TestRecordAnswerUnknownSessionWritesNothing(t *testing.T) {
	e, store := newTestEngine(t)

	_, err := e.RecordAnswer("no-such-id", "project-name", "q", "a")
	if !errors.Is(err, session.ErrNotFound) {
		t.Errorf("got %v, want session.ErrNotFound", err)
	}

	sess, err := store.Get("no-such-id")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if sess != nil {
		t.Error("failed RecordAnswer persisted a session")
	}
}

func TestFollowUpTriggeredFlagAndQueueInsertion(t *testing.T) {
	e, _ := newTestEngine(t)

	sess, _ := e.StartSession("proj", questionbank.DomainAPI, "Svc")

	// Finish the overview section first.
	for _, id := range []string{"project-name", "project-description", "success-criteria"} {
		mustAnswer(t, e, sess.ID, id, "Svc")
	}
	if _, err := e.AdvanceSection(sess.ID); err != nil {
		t.Fatalf("AdvanceSection failed: %v", err)
	}

	mustAnswer(t, e, sess.ID, "api-consumers", "internal services")
	updated := mustAnswer(t, e, sess.ID, "auth-method", "OAuth 2.0 client credentials")

	sec, _ := updated.CurrentSection()
	last := sec.Answers[len(sec.Answers)-1]
	if !last.FollowUpTriggered {
		t.Error("expected FollowUpTriggered on matching answer")
	}

	q, err := e.GetNextQuestion(sess.ID)
	if err != nil {
		t.Fatalf("GetNextQuestion failed: %v", err)
	}
	if q == nil || q.ID != "oauth-flows" {
		t.Errorf("next question: got %+v, want oauth-flows", q)
	}

	// Re-answering the trigger must not duplicate the follow-ups or
	// re-flag insertion.
	updated = mustAnswer(t, e, sess.ID, "auth-method", "oauth with PKCE")
	sec, _ = updated.CurrentSection()
	last = sec.Answers[len(sec.Answers)-1]
	if last.FollowUpTriggered {
		t.Error("re-answer flagged FollowUpTriggered despite no new insertions")
	}
}

func TestAdvanceThroughAllSectionsCompletesSession(t *testing.T) {
	e, _ := newTestEngine(t)

	sess, _ := e.StartSession("proj", questionbank.DomainGeneral, "Test")
	total := len(sess.Sections)

	for i := 0; i < total; i++ {
		updated, err := e.AdvanceSection(sess.ID)
		if err != nil {
			t.Fatalf("AdvanceSection %d failed: %v", i, err)
		}

		// Completion invariant: completed iff every section is terminal.
		finished := updated.AllSectionsFinished()
		if (updated.Status == session.StatusCompleted) != finished {
			t.Fatalf("after advance %d: status %q but AllSectionsFinished=%v", i, updated.Status, finished)
		}
	}

	final, err := e.GetSession(sess.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if final.Status != session.StatusCompleted {
		t.Errorf("status: got %q, want completed", final.Status)
	}

	q, err := e.GetNextQuestion(sess.ID)
	if err != nil {
		t.Fatalf("GetNextQuestion failed: %v", err)
	}
	if q != nil {
		t.Errorf("completed session returned question %q", q.ID)
	}
}

func TestSkipSectionMarksSkipped(t *testing.T) {
	e, _ := newTestEngine(t)

	sess, _ := e.StartSession("proj", questionbank.DomainCLI, "tool")
	updated, err := e.SkipSection(sess.ID)
	if err != nil {
		t.Fatalf("SkipSection failed: %v", err)
	}

	first, _ := updated.Section("overview")
	if first.Status != session.SectionSkipped {
		t.Errorf("skipped section status: got %q", first.Status)
	}
	if updated.CurrentSectionID == "overview" {
		t.Error("current section did not move on")
	}
}

func TestReopenSectionPreservesAnswersAndResumes(t *testing.T) {
	e, _ := newTestEngine(t)

	sess, _ := e.StartSession("proj", questionbank.DomainGeneral, "Test")
	mustAnswer(t, e, sess.ID, "project-name", "Test")
	mustAnswer(t, e, sess.ID, "project-description", "A test")

	// Advance with two questions still unanswered.
	if _, err := e.AdvanceSection(sess.ID); err != nil {
		t.Fatalf("AdvanceSection failed: %v", err)
	}

	updated, err := e.ReopenSection(sess.ID, "overview")
	if err != nil {
		t.Fatalf("ReopenSection failed: %v", err)
	}

	sec, _ := updated.Section("overview")
	if sec.Status != session.SectionInProgress {
		t.Errorf("reopened status: got %q", sec.Status)
	}
	if len(sec.Answers) != 2 {
		t.Errorf("answers after reopen: got %d, want 2", len(sec.Answers))
	}
	if updated.CurrentSectionID != "overview" {
		t.Errorf("current section: got %q", updated.CurrentSectionID)
	}

	// Only one section in progress at a time.
	inProgress := 0
	for _, s := range updated.Sections {
		if s.Status == session.SectionInProgress {
			inProgress++
		}
	}
	if inProgress != 1 {
		t.Errorf("in-progress sections: got %d, want 1", inProgress)
	}

	q, err := e.GetNextQuestion(sess.ID)
	if err != nil {
		t.Fatalf("GetNextQuestion failed: %v", err)
	}
	if q == nil || q.ID != "success-criteria" {
		t.Errorf("resume question: got %+v, want success-criteria", q)
	}
}

func TestReopenRevertsCompletedSession(t *testing.T) {
	e, _ := newTestEngine(t)

	sess, _ := e.StartSession("proj", questionbank.DomainLibrary, "lib")
	for range sess.Sections {
		if _, err := e.SkipSection(sess.ID); err != nil {
			t.Fatalf("SkipSection failed: %v", err)
		}
	}

	updated, err := e.ReopenSection(sess.ID, "api-design")
	if err != nil {
		t.Fatalf("ReopenSection failed: %v", err)
	}
	if updated.Status != session.StatusInProgress {
		t.Errorf("session status after reopen: got %q, want in_progress", updated.Status)
	}
}

func TestReopenUnknownSection(t *testing.T) {
	e, _ := newTestEngine(t)

	sess, _ := e.StartSession("proj", questionbank.DomainGeneral, "Test")
	_, err := e.ReopenSection(sess.ID, "nonexistent")
	if !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("got %v, want ErrSectionNotFound", err)
	}
}

func TestActiveSession(t *testing.T) {
	e, _ := newTestEngine(t)

	if _, err := e.ActiveSession("proj"); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("got %v, want ErrNoActiveSession", err)
	}

	sess, _ := e.StartSession("proj", questionbank.DomainGeneral, "Test")
	active, err := e.ActiveSession("proj")
	if err != nil {
		t.Fatalf("ActiveSession failed: %v", err)
	}
	if active.ID != sess.ID {
		t.Errorf("active session: got %s, want %s", active.ID, sess.ID)
	}
}
