package bot

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"

	"github.com/eliseohh/voicecratebot/internal/access"
	"github.com/eliseohh/voicecratebot/internal/store"
)

// MockContext definition for internal use
type MockContext struct {
	tele.Context
	user     *tele.User
	chat     *tele.Chat
	msg      *tele.Message
	query    *tele.Query
	data     string
	sent     []interface{}
	answered *tele.QueryResponse
}

func (m *MockContext) Sender() *tele.User     { return m.user }
func (m *MockContext) Chat() *tele.Chat       { return m.chat }
func (m *MockContext) Message() *tele.Message { return m.msg }
func (m *MockContext) Query() *tele.Query     { return m.query }
func (m *MockContext) Data() string           { return m.data }

func (m *MockContext) Text() string {
	if m.msg == nil {
		return ""
	}
	return m.msg.Text
}

func (m *MockContext) Send(what interface{}, opts ...interface{}) error {
	m.sent = append(m.sent, what)
	return nil
}

func (m *MockContext) Answer(resp *tele.QueryResponse) error {
	m.answered = resp
	return nil
}

func (m *MockContext) Respond(resp ...*tele.CallbackResponse) error { return nil }

func (m *MockContext) lastSent(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, m.sent, "handler sent nothing")
	s, ok := m.sent[len(m.sent)-1].(string)
	require.True(t, ok, "last sent item is not a string")
	return s
}

func cmdCtx(userID int64, payload string) *MockContext {
	return &MockContext{
		user: &tele.User{ID: userID},
		chat: &tele.Chat{ID: userID},
		msg:  &tele.Message{Payload: payload},
	}
}

func textCtx(userID int64, text string) *MockContext {
	return &MockContext{
		user: &tele.User{ID: userID},
		chat: &tele.Chat{ID: userID},
		msg:  &tele.Message{Text: text},
	}
}

func queryCtx(userID int64, text string) *MockContext {
	return &MockContext{
		user:  &tele.User{ID: userID},
		query: &tele.Query{Text: text},
	}
}

// fakeTransport records sends and deletes in place of *tele.Bot.
type fakeTransport struct {
	mu        sync.Mutex
	nextID    int
	sent      []sentItem
	deleted   []string
	failFiles map[string]bool
}

type sentItem struct {
	to   string
	what interface{}
	opts []interface{}
}

func (f *fakeTransport) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if id := sentFileID(what); id != "" && f.failFiles[id] {
		return nil, errors.New("stale file handle")
	}

	f.nextID++
	f.sent = append(f.sent, sentItem{to: to.Recipient(), what: what, opts: opts})
	return &tele.Message{ID: f.nextID}, nil
}

func (f *fakeTransport) Delete(msg tele.Editable) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	msgID, chatID := msg.MessageSig()
	f.deleted = append(f.deleted, fmt.Sprintf("%d:%s", chatID, msgID))
	return nil
}

func (f *fakeTransport) items() []sentItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentItem, len(f.sent))
	copy(out, f.sent)
	return out
}

func sentFileID(what interface{}) string {
	switch m := what.(type) {
	case *tele.Voice:
		return m.FileID
	case *tele.Audio:
		return m.FileID
	}
	return ""
}

func newTestBot(t *testing.T, admins ...int64) (*Bot, *fakeTransport) {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.InitSchema())

	ft := &fakeTransport{failFiles: make(map[string]bool)}
	b := &Bot{
		send:     ft,
		store:    store.Open(db),
		guard:    access.NewGuard(admins),
		sessions: newSessions(),
		pages:    newPageTracker(),
		pageSize: 3,
	}
	return b, ft
}

func seedRecords(t *testing.T, b *Bot, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		err := b.store.Append(store.Record{
			FileID: "file" + strconv.Itoa(i),
			Kind:   store.KindVoice,
			Name:   "Track" + strconv.Itoa(i),
			Author: "Author" + strconv.Itoa(i),
		})
		require.NoError(t, err)
	}
}
