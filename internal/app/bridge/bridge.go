package bridge

import (
	"context"
	"fmt"
	"github.com/kotche/notebridge/internal/dispatch"
	"github.com/kotche/notebridge/internal/metrics"
	"github.com/kotche/notebridge/internal/model"
	"github.com/kotche/notebridge/internal/service/notes"
	"gopkg.in/telebot.v3"
	"log"
	"os"
	"strings"
	"time"
)

const (
	photoPattern = "notebridge-photo-*.jpg"
	pollTimeout  = 10 * time.Second
)

// Settings returns the bot settings the bridge expects. Updates are handled
// one at a time so replies to consecutive commands never interleave.
func Settings(token string) telebot.Settings {
	return telebot.Settings{
		Token:       token,
		Poller:      &telebot.LongPoller{Timeout: pollTimeout},
		Synchronous: true,
	}
}

type downloader interface {
	Download(file *telebot.File, localFilename string) error
}

type Bridge struct {
	bot     *telebot.Bot
	files   downloader
	notes   notes.Service
	tempDir string
}

func New(bot *telebot.Bot, notes notes.Service) *Bridge {
	return &Bridge{bot: bot, files: bot, notes: notes}
}

func (b *Bridge) Start() {
	b.register()

	log.Println("Bridge started...")
	b.bot.Start()
}

func (b *Bridge) register() {
	b.bot.Handle("/start", b.startHandler)
	b.bot.Handle("/search", b.searchHandler)
	b.bot.Handle("/read", b.readHandler)
	b.bot.Handle(telebot.OnText, b.textHandler)
	b.bot.Handle(telebot.OnPhoto, b.photoHandler)
}

func (b *Bridge) Stop() {
	b.bot.Stop()
}

func (b *Bridge) startHandler(c telebot.Context) error {
	return b.reply(c, dispatch.Dispatch(b.context(c), b.notes, dispatch.Start{}))
}

// textHandler saves free text; unknown commands are not notes.
func (b *Bridge) textHandler(c telebot.Context) error {
	text := c.Text()
	if strings.HasPrefix(text, "/") {
		return nil
	}
	return b.reply(c, dispatch.Dispatch(b.context(c), b.notes, dispatch.PlainText{Body: text}))
}

func (b *Bridge) photoHandler(c telebot.Context) error {
	photo := c.Message().Photo
	if photo == nil {
		return nil
	}

	var replies []string
	err := b.withPhoto(photo, func(path string) {
		replies = dispatch.Dispatch(b.context(c), b.notes, dispatch.Photo{Path: path})
	})
	if err != nil {
		log.Printf("failed to download photo '%s': %v", photo.FileID, err)
		replies = []string{dispatch.MsgSaveFailed}
	}

	return b.reply(c, replies)
}

func (b *Bridge) searchHandler(c telebot.Context) error {
	return b.reply(c, dispatch.Dispatch(b.context(c), b.notes, dispatch.SearchCommand{Args: c.Args()}))
}

func (b *Bridge) readHandler(c telebot.Context) error {
	return b.reply(c, dispatch.Dispatch(b.context(c), b.notes, dispatch.ReadCommand{Args: c.Args()}))
}

// withPhoto downloads photo into a fresh temporary file, hands its path to
// fn and removes the file afterwards, whatever happened in between.
func (b *Bridge) withPhoto(photo *telebot.Photo, fn func(path string)) error {
	f, err := os.CreateTemp(b.tempDir, photoPattern)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	path := f.Name()
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("failed to remove temp file '%s': %v", path, err)
		}
	}()

	if err = f.Close(); err != nil {
		return fmt.Errorf("failed to close temp file '%s': %w", path, err)
	}

	if err = b.files.Download(&photo.File, path); err != nil {
		return err
	}

	fn(path)
	return nil
}

// reply sends every message on its own. A failed send is logged and
// replaced by a short notice so the remaining messages still go out.
func (b *Bridge) reply(c telebot.Context, replies []string) error {
	for i, text := range replies {
		if err := c.Send(text); err != nil {
			metrics.ReplySendFailures.Inc()
			err = fmt.Errorf("%w: part %d of %d: %v", model.ErrSendFailed, i+1, len(replies), err)
			log.Printf("failed to send message to chat '%d': %v", chatID(c), err)

			if err = c.Send(dispatch.MsgChunkFailed); err != nil {
				log.Printf("failed to report send failure to chat '%d': %v", chatID(c), err)
			}
			continue
		}
		metrics.RepliesSent.Inc()
	}
	return nil
}

func (b *Bridge) context(c telebot.Context) context.Context {
	return model.WithChatID(context.Background(), chatID(c))
}

func chatID(c telebot.Context) model.ChatID {
	if chat := c.Chat(); chat != nil {
		return model.ChatID(chat.ID)
	}
	return 0
}
