package elicit

import "errors"

// Sentinel errors for caller misuse. Store failures surface separately as
// *session.StoreError and are the only class worth retrying.
var (
	// ErrUnknownDomain means no question bank exists for the requested domain.
	ErrUnknownDomain = errors.New("unknown project domain")

	// ErrNoActiveSession means the session's current section id does not
	// resolve, or no in-progress session exists for the project.
	ErrNoActiveSession = errors.New("no active session")

	// ErrUnknownQuestion means the question id is not in the current
	// section's effective queue.
	ErrUnknownQuestion = errors.New("question not in current section")

	// ErrSectionNotFound means the section id is not part of the session.
	ErrSectionNotFound = errors.New("section not found")
)
