package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a session id does not exist in the store.
var ErrNotFound = errors.New("session not found")

// StoreError wraps a persistence failure. Callers can treat it as possibly
// transient; everything else the store returns indicates misuse.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("session store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// Store provides SQLite-backed persistence for sessions. Each session is one
// row carrying the full JSON record plus indexable columns. Mutations on a
// given session id are serialized through a per-id mutex, so a losing writer
// observes the winner's persisted state rather than overwriting it.
type Store struct {
	db *sql.DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore opens the SQLite database at dbPath and creates tables if they
// don't exist.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, storeErr("open database", err)
	}

	if err := createTables(db); err != nil {
		_ = db.Close()
		return nil, storeErr("create tables", err)
	}

	return &Store{
		db:    db,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		status TEXT NOT NULL,
		record TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_project
		ON sessions (project_id, status, updated_at);
	`
	_, err := db.Exec(schema)
	return err
}

// lockFor returns the mutex guarding the given session id, creating it on
// first use. Lock entries are never removed; the set of session ids a
// process touches is small.
func (s *Store) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.locks[id]
	if !ok {
		m = &sync.Mutex{}
		s.locks[id] = m
	}
	return m
}

// Create inserts a new session record.
func (s *Store) Create(sess *Session) error {
	record, err := json.Marshal(sess)
	if err != nil {
		return storeErr("marshal session", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO sessions (id, project_id, status, record, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.ProjectID, string(sess.Status), record, sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return storeErr("insert session", err)
	}

	return nil
}

// Get retrieves a session by id. Returns (nil, nil) if the id is unknown.
func (s *Store) Get(id string) (*Session, error) {
	row := s.db.QueryRow(`SELECT record FROM sessions WHERE id = ?`, id)

	var record string
	err := row.Scan(&record)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("scan session", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(record), &sess); err != nil {
		return nil, storeErr("unmarshal session", err)
	}

	return &sess, nil
}

// Put persists the full session record, refreshing UpdatedAt.
func (s *Store) Put(sess *Session) error {
	sess.UpdatedAt = time.Now().UTC()

	record, err := json.Marshal(sess)
	if err != nil {
		return storeErr("marshal session", err)
	}

	result, err := s.db.Exec(
		`UPDATE sessions SET project_id = ?, status = ?, record = ?, updated_at = ?
		 WHERE id = ?`,
		sess.ProjectID, string(sess.Status), record, sess.UpdatedAt, sess.ID,
	)
	if err != nil {
		return storeErr("update session", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return storeErr("check rows affected", err)
	}
	if affected == 0 {
		return fmt.Errorf("put session %s: %w", sess.ID, ErrNotFound)
	}

	return nil
}

// LatestActive returns the most recently updated in-progress session for the
// given project, or nil if there is none.
func (s *Store) LatestActive(projectID string) (*Session, error) {
	row := s.db.QueryRow(
		`SELECT record FROM sessions
		 WHERE project_id = ? AND status = ?
		 ORDER BY updated_at DESC
		 LIMIT 1`,
		projectID, string(StatusInProgress),
	)

	var record string
	err := row.Scan(&record)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("scan session", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(record), &sess); err != nil {
		return nil, storeErr("unmarshal session", err)
	}

	return &sess, nil
}

// List returns summaries of the project's sessions, most recent first.
func (s *Store) List(projectID string, limit int) ([]Summary, error) {
	rows, err := s.db.Query(
		`SELECT record FROM sessions
		 WHERE project_id = ?
		 ORDER BY updated_at DESC
		 LIMIT ?`,
		projectID, limit,
	)
	if err != nil {
		return nil, storeErr("query sessions", err)
	}
	defer func() { _ = rows.Close() }()

	var summaries []Summary
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, storeErr("scan session", err)
		}
		var sess Session
		if err := json.Unmarshal([]byte(record), &sess); err != nil {
			return nil, storeErr("unmarshal session", err)
		}
		summaries = append(summaries, summarize(&sess))
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate rows", err)
	}

	return summaries, nil
}

// Mutate performs a serialized read-modify-write on one session: it loads
// the record under the session's lock, applies fn, and persists the result.
// If fn returns an error nothing is written and the previously persisted
// record is unchanged. Returns ErrNotFound (wrapped) for unknown ids.
func (s *Store) Mutate(id string, fn func(*Session) error) (*Session, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("mutate session %s: %w", id, ErrNotFound)
	}

	if err := fn(sess); err != nil {
		return nil, err
	}

	if err := s.Put(sess); err != nil {
		return nil, err
	}

	return sess, nil
}

// Summary is a listing view of one session.
type Summary struct {
	ID               string        `json:"id"`
	ProjectName      string        `json:"project_name"`
	Domain           string        `json:"domain"`
	Status           SessionStatus `json:"status"`
	SectionsDone     int           `json:"sections_done"`
	SectionsTotal    int           `json:"sections_total"`
	AnswersRecorded  int           `json:"answers_recorded"`
	UpdatedAt        time.Time     `json:"updated_at"`
	CurrentSectionID string        `json:"current_section_id"`
}

func summarize(sess *Session) Summary {
	sum := Summary{
		ID:               sess.ID,
		ProjectName:      sess.ProjectName,
		Domain:           string(sess.Domain),
		Status:           sess.Status,
		SectionsTotal:    len(sess.Sections),
		UpdatedAt:        sess.UpdatedAt,
		CurrentSectionID: sess.CurrentSectionID,
	}
	for _, sec := range sess.Sections {
		if sec.Status == SectionCompleted || sec.Status == SectionSkipped {
			sum.SectionsDone++
		}
		sum.AnswersRecorded += len(sec.Answers)
	}
	return sum
}
