package bot

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	tele "gopkg.in/telebot.v3"

	"github.com/eliseohh/voicecratebot/internal/store"
)

// pageTracker remembers, per chat, the messages of the currently rendered
// browse page so they can be deleted when the page turns. Without this a
// chat accumulates one page worth of messages per button press.
type pageTracker struct {
	mu      sync.Mutex
	byChat  map[int64][]tele.StoredMessage
	renders map[int64]*sync.Mutex
}

func newPageTracker() *pageTracker {
	return &pageTracker{
		byChat:  make(map[int64][]tele.StoredMessage),
		renders: make(map[int64]*sync.Mutex),
	}
}

// lockRender serializes page renders within one chat. Two interleaved
// renders would otherwise both swap out the tracked page and the loser's
// messages would be orphaned in the chat. Returns the unlock func.
func (p *pageTracker) lockRender(chatID int64) func() {
	p.mu.Lock()
	l, ok := p.renders[chatID]
	if !ok {
		l = &sync.Mutex{}
		p.renders[chatID] = l
	}
	p.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (p *pageTracker) swap(chatID int64, msgs []tele.StoredMessage) []tele.StoredMessage {
	p.mu.Lock()
	defer p.mu.Unlock()

	old := p.byChat[chatID]
	if len(msgs) == 0 {
		delete(p.byChat, chatID)
	} else {
		p.byChat[chatID] = msgs
	}
	return old
}

// renderPageAsync renders in its own goroutine so a long page of sends
// does not hold up the poller loop.
func (b *Bot) renderPageAsync(chatID int64, idx int) {
	go func() {
		if err := b.renderPage(chatID, idx); err != nil {
			slog.Error("render page failed", "chat", chatID, "page", idx, "err", err)
		}
	}()
}

// renderPage replaces whatever page is currently shown in the chat with
// page idx: the old page's messages are deleted, each record of the new
// page is sent as a media message, and a navigation message closes the
// batch. A failed send or delete skips that one item and continues.
func (b *Bot) renderPage(chatID int64, idx int) error {
	defer b.pages.lockRender(chatID)()

	for _, old := range b.pages.swap(chatID, nil) {
		if err := b.send.Delete(old); err != nil {
			slog.Warn("could not delete page message", "chat", chatID, "msg", old.MessageID, "err", err)
		}
	}

	recs, page, total := b.store.Page(idx, b.pageSize)
	to := tele.ChatID(chatID)

	if total == 0 {
		_, err := b.send.Send(to, "Nothing stored yet.")
		return err
	}

	var sent []tele.StoredMessage
	for _, r := range recs {
		msg, err := b.send.Send(to, mediaFor(r))
		if err != nil {
			slog.Warn("could not send recording", "chat", chatID, "file", r.FileID, "err", err)
			continue
		}
		sent = append(sent, stored(chatID, msg))
	}

	nav := fmt.Sprintf("Page %d of %d", page+1, total)
	var err error
	var msg *tele.Message
	if markup := pageMarkup(page, total); markup != nil {
		msg, err = b.send.Send(to, nav, markup)
	} else {
		msg, err = b.send.Send(to, nav)
	}
	if err != nil {
		slog.Warn("could not send page navigation", "chat", chatID, "err", err)
	} else {
		sent = append(sent, stored(chatID, msg))
	}

	b.pages.swap(chatID, sent)
	return nil
}

func mediaFor(r store.Record) interface{} {
	if r.Kind == store.KindAudio {
		return &tele.Audio{
			File:    tele.File{FileID: r.FileID},
			Caption: r.Title(),
		}
	}
	return &tele.Voice{
		File:    tele.File{FileID: r.FileID},
		Caption: r.Title(),
	}
}

// pageMarkup returns the navigation buttons valid for the page, or nil
// when the whole store fits on one page.
func pageMarkup(page, total int) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	var row []tele.Btn
	if page > 0 {
		row = append(row, m.Data("‹ Prev", "page", strconv.Itoa(page-1)))
	}
	if page < total-1 {
		row = append(row, m.Data("Next ›", "page", strconv.Itoa(page+1)))
	}
	if len(row) == 0 {
		return nil
	}
	m.Inline(m.Row(row...))
	return m
}

func stored(chatID int64, msg *tele.Message) tele.StoredMessage {
	return tele.StoredMessage{
		MessageID: strconv.Itoa(msg.ID),
		ChatID:    chatID,
	}
}
