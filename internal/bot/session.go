package bot

import (
	"sync"

	"github.com/eliseohh/voicecratebot/internal/store"
)

// state tags what kind of message the bot expects next from a user.
type state int

const (
	stateIdle state = iota
	stateAwaitingAttachment
	stateAwaitingAuthor
	stateAwaitingName
	stateAwaitingNewAuthor
	stateAwaitingNewName
)

// pending holds the pieces collected so far in an add or edit flow.
// It is transient and never persisted.
type pending struct {
	fileID string
	kind   store.Kind
	author string

	// editTarget is the file id of the record being edited.
	editTarget string
}

type session struct {
	state   state
	pending pending
}

// sessions keys conversation state by user id. The Telegram transport
// delivers one update at a time per conversation, so there is no
// intra-user race; the lock only guards cross-user map access.
type sessions struct {
	mu     sync.Mutex
	byUser map[int64]*session
}

func newSessions() *sessions {
	return &sessions{byUser: make(map[int64]*session)}
}

func (s *sessions) get(id int64) (state, pending) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byUser[id]
	if !ok {
		return stateIdle, pending{}
	}
	return sess.state, sess.pending
}

// beginAdd starts the add flow, clobbering any flow already in progress.
func (s *sessions) beginAdd(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[id] = &session{state: stateAwaitingAttachment}
}

// beginEdit starts the edit flow for the record with the given file id,
// clobbering any flow already in progress.
func (s *sessions) beginEdit(id int64, fileID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[id] = &session{
		state:   stateAwaitingNewAuthor,
		pending: pending{editTarget: fileID},
	}
}

// attach captures the received attachment and advances to the author step.
// It reports false when the user is not waiting for an attachment.
func (s *sessions) attach(id int64, fileID string, kind store.Kind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byUser[id]
	if !ok || sess.state != stateAwaitingAttachment {
		return false
	}
	sess.pending.fileID = fileID
	sess.pending.kind = kind
	sess.state = stateAwaitingAuthor
	return true
}

// setAuthor stores the author text and advances to the name step of
// whichever flow is active.
func (s *sessions) setAuthor(id int64, author string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byUser[id]
	if !ok {
		return false
	}
	switch sess.state {
	case stateAwaitingAuthor:
		sess.pending.author = author
		sess.state = stateAwaitingName
	case stateAwaitingNewAuthor:
		sess.pending.author = author
		sess.state = stateAwaitingNewName
	default:
		return false
	}
	return true
}

// reset forces the user back to idle and drops any pending entry.
func (s *sessions) reset(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byUser, id)
}
