package bot

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v3"

	"github.com/eliseohh/voicecratebot/internal/access"
	"github.com/eliseohh/voicecratebot/internal/store"
	"github.com/eliseohh/voicecratebot/internal/telemetry"
)

// inlineResultCap bounds an inline query answer; the Bot API rejects
// larger result sets anyway.
const inlineResultCap = 10

const defaultPageSize = 5

// transport is the slice of *tele.Bot the page renderer needs. Kept as an
// interface so handler tests can record sends and deletes.
type transport interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Delete(msg tele.Editable) error
}

type Bot struct {
	api      *tele.Bot
	send     transport
	store    *store.Store
	guard    *access.Guard
	sessions *sessions
	pages    *pageTracker
	pageSize int
}

type Config struct {
	Token    string
	Admins   []int64
	PageSize int
}

func New(cfg Config, st *store.Store) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, err
	}

	size := cfg.PageSize
	if size < 1 {
		size = defaultPageSize
	}

	bot := &Bot{
		api:      b,
		send:     b,
		store:    st,
		guard:    access.NewGuard(cfg.Admins),
		sessions: newSessions(),
		pages:    newPageTracker(),
		pageSize: size,
	}
	bot.register()
	return bot, nil
}

func (b *Bot) Start() {
	slog.Info("bot online", "username", b.api.Me.Username)
	b.api.Start()
}

func (b *Bot) Stop() {
	b.api.Stop()
}

func (b *Bot) register() {
	b.api.Use(countUpdates)

	b.api.Handle("/start", b.handleStart)
	b.api.Handle("/add", b.handleAdd)
	b.api.Handle("/cancel", b.handleCancel)
	b.api.Handle("/list", b.handleList)
	b.api.Handle("/search", b.handleSearch)
	b.api.Handle("/browse", b.handleBrowse)
	b.api.Handle("/delete", b.handleDelete)
	b.api.Handle("/move", b.handleMove)
	b.api.Handle("/edit", b.handleEdit)

	b.api.Handle(tele.OnVoice, func(c tele.Context) error {
		return b.onMedia(c, store.KindVoice, c.Message().Voice.FileID)
	})
	b.api.Handle(tele.OnAudio, func(c tele.Context) error {
		return b.onMedia(c, store.KindAudio, c.Message().Audio.FileID)
	})
	b.api.Handle(tele.OnText, b.onText)
	b.api.Handle(tele.OnQuery, b.onQuery)

	pageBtn := tele.Btn{Unique: "page"}
	b.api.Handle(&pageBtn, b.onPage)
}

func countUpdates(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		kind := "text"
		switch {
		case c.Callback() != nil:
			kind = "callback"
		case c.Query() != nil:
			kind = "inline"
		case c.Message() != nil && (c.Message().Voice != nil || c.Message().Audio != nil):
			kind = "media"
		}
		telemetry.CountUpdate(kind)
		return next(c)
	}
}

const msgUnauthorized = "⛔ You are not allowed to change the collection."
const msgSaveFailed = "⚠ Could not save that, please try again later."

func (b *Bot) handleStart(c tele.Context) error {
	return c.Send(`I keep voice and audio messages for you.

/add — store a new recording
/list [query] — list stored recordings
/search <query> — search by name or author
/browse — page through the collection
/delete <position> — delete a recording
/move <position> <new position> — reorder
/edit <position> — change author and name
/cancel — abort the current flow

You can also mention me inline in any chat to search.`)
}

func (b *Bot) handleAdd(c tele.Context) error {
	if !b.guard.IsAuthorized(c.Sender().ID) {
		return c.Send(msgUnauthorized)
	}
	b.sessions.beginAdd(c.Sender().ID)
	return c.Send("Send me the voice or audio message you want to store.")
}

func (b *Bot) handleCancel(c tele.Context) error {
	b.sessions.reset(c.Sender().ID)
	return c.Send("Cancelled.")
}

func (b *Bot) onMedia(c tele.Context, kind store.Kind, fileID string) error {
	userID := c.Sender().ID
	if b.sessions.attach(userID, fileID, kind) {
		return c.Send("Recording received. Who is the author?")
	}

	st, _ := b.sessions.get(userID)
	if st == stateIdle {
		return c.Send("Use /add first if you want me to store this one.")
	}
	return c.Send("I need text for this step, not a recording. /cancel to start over.")
}

func (b *Bot) onText(c tele.Context) error {
	userID := c.Sender().ID
	text := strings.TrimSpace(c.Text())

	st, p := b.sessions.get(userID)
	switch st {
	case stateIdle:
		slog.Debug("ignoring text outside any flow", "user", userID)
		return nil

	case stateAwaitingAttachment:
		return c.Send("I still need the voice or audio message first. /cancel to stop.")

	case stateAwaitingAuthor:
		if text == "" {
			return c.Send("The author can't be empty, try again.")
		}
		b.sessions.setAuthor(userID, text)
		return c.Send("Got it. Now send me a name for the recording.")

	case stateAwaitingName:
		if text == "" {
			return c.Send("The name can't be empty, try again.")
		}
		if p.fileID == "" || p.author == "" {
			// Pending entry lost half-way; nothing sane to save.
			slog.Error("incomplete pending entry at name step", "user", userID)
			b.sessions.reset(userID)
			return c.Send("Something went wrong on my side, please /add again.")
		}
		rec := store.Record{
			FileID:  p.fileID,
			Kind:    p.kind,
			Name:    text,
			Author:  p.author,
			OwnerID: userID,
		}
		if err := b.store.Append(rec); err != nil {
			slog.Error("append failed", "user", userID, "err", err)
			b.sessions.reset(userID)
			return c.Send(msgSaveFailed)
		}
		b.sessions.reset(userID)
		return c.Send(fmt.Sprintf("Saved %q by %s.", text, p.author))

	case stateAwaitingNewAuthor:
		if text == "" {
			return c.Send("The author can't be empty, try again.")
		}
		b.sessions.setAuthor(userID, text)
		return c.Send("Got it. Now send me the new name.")

	case stateAwaitingNewName:
		if text == "" {
			return c.Send("The name can't be empty, try again.")
		}
		err := b.store.Edit(p.editTarget, p.author, text)
		b.sessions.reset(userID)
		switch {
		case err == store.ErrNotFound:
			return c.Send("🔍 That recording is gone.")
		case err != nil:
			slog.Error("edit failed", "user", userID, "err", err)
			return c.Send(msgSaveFailed)
		}
		return c.Send(fmt.Sprintf("Updated: %s - %s.", p.author, text))
	}
	return nil
}

func (b *Bot) handleList(c tele.Context) error {
	query := strings.TrimSpace(c.Message().Payload)
	matches := b.store.Search(query)
	if len(matches) == 0 {
		if query == "" {
			return c.Send("Nothing stored yet.")
		}
		return c.Send("No matches.")
	}
	return c.Send(formatMatches(matches))
}

func (b *Bot) handleSearch(c tele.Context) error {
	query := strings.TrimSpace(c.Message().Payload)
	if query == "" {
		return c.Send("Usage: /search <query>")
	}
	matches := b.store.Search(query)
	if len(matches) == 0 {
		return c.Send("No matches.")
	}
	return c.Send(formatMatches(matches))
}

func formatMatches(matches []store.Record) string {
	var sb strings.Builder
	for i, r := range matches {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, r.Title())
	}
	return sb.String()
}

func (b *Bot) handleDelete(c tele.Context) error {
	if !b.guard.IsAuthorized(c.Sender().ID) {
		return c.Send(msgUnauthorized)
	}

	pos, err := strconv.Atoi(strings.TrimSpace(c.Message().Payload))
	if err != nil {
		return c.Send("Usage: /delete <position>")
	}

	rec, err := b.store.At(pos)
	if err != nil {
		return c.Send(fmt.Sprintf("🔍 No recording at position %d.", pos))
	}

	switch err := b.store.Delete(rec.FileID); {
	case err == store.ErrNotFound:
		return c.Send("🔍 That recording is gone.")
	case err != nil:
		slog.Error("delete failed", "user", c.Sender().ID, "err", err)
		return c.Send(msgSaveFailed)
	}
	return c.Send(fmt.Sprintf("Deleted %s.", rec.Title()))
}

func (b *Bot) handleMove(c tele.Context) error {
	if !b.guard.IsAuthorized(c.Sender().ID) {
		return c.Send(msgUnauthorized)
	}

	args := strings.Fields(c.Message().Payload)
	if len(args) != 2 {
		return c.Send("Usage: /move <position> <new position>")
	}
	from, err1 := strconv.Atoi(args[0])
	to, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		return c.Send("Usage: /move <position> <new position>")
	}

	rec, err := b.store.At(from)
	if err != nil {
		return c.Send(fmt.Sprintf("🔍 No recording at position %d.", from))
	}

	switch err := b.store.Move(rec.FileID, to); {
	case err == store.ErrInvalidPosition:
		return c.Send(fmt.Sprintf("Position must be between 1 and %d.", b.store.Len()))
	case err == store.ErrNotFound:
		return c.Send("🔍 That recording is gone.")
	case err != nil:
		slog.Error("move failed", "user", c.Sender().ID, "err", err)
		return c.Send(msgSaveFailed)
	}
	return c.Send(fmt.Sprintf("Moved %s to position %d.", rec.Title(), to))
}

func (b *Bot) handleEdit(c tele.Context) error {
	if !b.guard.IsAuthorized(c.Sender().ID) {
		return c.Send(msgUnauthorized)
	}

	pos, err := strconv.Atoi(strings.TrimSpace(c.Message().Payload))
	if err != nil {
		return c.Send("Usage: /edit <position>")
	}

	rec, err := b.store.At(pos)
	if err != nil {
		return c.Send(fmt.Sprintf("🔍 No recording at position %d.", pos))
	}

	b.sessions.beginEdit(c.Sender().ID, rec.FileID)
	return c.Send(fmt.Sprintf("Editing %s. Who is the author?", rec.Title()))
}

func (b *Bot) handleBrowse(c tele.Context) error {
	b.renderPageAsync(c.Chat().ID, 0)
	return nil
}

func (b *Bot) onPage(c tele.Context) error {
	idx, err := strconv.Atoi(strings.TrimSpace(c.Data()))
	if err == nil {
		b.renderPageAsync(c.Chat().ID, idx)
	}
	return c.Respond()
}

func (b *Bot) onQuery(c tele.Context) error {
	matches := b.store.Search(c.Query().Text)
	if len(matches) > inlineResultCap {
		matches = matches[:inlineResultCap]
	}

	results := make(tele.Results, 0, len(matches))
	for _, r := range matches {
		var result tele.Result
		if r.Kind == store.KindAudio {
			result = &tele.AudioResult{Title: r.Title(), Cache: r.FileID}
		} else {
			result = &tele.VoiceResult{Title: r.Title(), Cache: r.FileID}
		}
		result.SetResultID(uuid.NewString())
		results = append(results, result)
	}

	return c.Answer(&tele.QueryResponse{
		Results:   results,
		CacheTime: 30,
	})
}
