package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kotche/notebridge/internal/dispatch"
	"github.com/kotche/notebridge/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
)

// MockContext implements tele.Context restricted to what the handlers use.
type MockContext struct {
	tele.Context
	MessageVal *tele.Message
	ArgsVal    []string
	Sent       []string
	// FailOn lists the send attempts, counted from 0, that return an error.
	FailOn   map[int]bool
	attempts int
}

func (m *MockContext) Message() *tele.Message { return m.MessageVal }
func (m *MockContext) Text() string           { return m.MessageVal.Text }
func (m *MockContext) Args() []string         { return m.ArgsVal }
func (m *MockContext) Chat() *tele.Chat       { return &tele.Chat{ID: 99} }

func (m *MockContext) Send(what interface{}, opts ...interface{}) error {
	attempt := m.attempts
	m.attempts++
	if m.FailOn[attempt] {
		return errors.New("telegram: bad gateway")
	}
	m.Sent = append(m.Sent, what.(string))
	return nil
}

type fakeService struct {
	createErr error
	body      string
	fetchErr  error

	chats    []model.ChatID
	bodies   []string
	onCreate func()
}

func (f *fakeService) CreateNote(ctx context.Context, _, body string) (model.Confirmation, error) {
	f.chats = append(f.chats, model.ChatIDFrom(ctx))
	f.bodies = append(f.bodies, body)
	if f.onCreate != nil {
		f.onCreate()
	}
	return model.Confirmation{}, f.createErr
}

func (f *fakeService) SearchNotes(context.Context, string) ([]model.NoteSummary, error) {
	return nil, model.ErrNoResults
}

func (f *fakeService) FetchNoteBody(context.Context, model.NoteID) (string, error) {
	return f.body, f.fetchErr
}

type fakeDownloader struct {
	err   error
	paths []string
}

func (f *fakeDownloader) Download(_ *tele.File, localFilename string) error {
	f.paths = append(f.paths, localFilename)
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(localFilename, []byte("jpeg"), 0o644)
}

func newTestBridge(t *testing.T, svc *fakeService, files *fakeDownloader) *Bridge {
	t.Helper()
	return &Bridge{files: files, notes: svc, tempDir: t.TempDir()}
}

func photoMessage() *tele.Message {
	return &tele.Message{Photo: &tele.Photo{File: tele.File{FileID: "AgAD-large"}}}
}

func TestStartHandler(t *testing.T) {
	b := newTestBridge(t, &fakeService{}, &fakeDownloader{})
	c := &MockContext{MessageVal: &tele.Message{Text: "/start"}}

	require.NoError(t, b.startHandler(c))
	assert.Equal(t, []string{dispatch.MsgGreeting}, c.Sent)
}

func TestTextHandler(t *testing.T) {
	svc := &fakeService{}
	b := newTestBridge(t, svc, &fakeDownloader{})
	c := &MockContext{MessageVal: &tele.Message{Text: "call mom"}}

	require.NoError(t, b.textHandler(c))
	assert.Equal(t, []string{dispatch.MsgSaved}, c.Sent)
	assert.Equal(t, []string{"call mom"}, svc.bodies)
	assert.Equal(t, []model.ChatID{99}, svc.chats)
}

func TestTextHandlerIgnoresUnknownCommands(t *testing.T) {
	svc := &fakeService{}
	b := newTestBridge(t, svc, &fakeDownloader{})
	c := &MockContext{MessageVal: &tele.Message{Text: "/unknown arg"}}

	require.NoError(t, b.textHandler(c))
	assert.Empty(t, c.Sent)
	assert.Empty(t, svc.bodies)
}

func TestPhotoHandlerRemovesTempFile(t *testing.T) {
	tests := map[string]struct {
		createErr error
		reply     string
	}{
		"saved":  {reply: dispatch.MsgSaved},
		"failed": {createErr: model.ErrRequestFailed, reply: dispatch.MsgSaveFailed},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			files := &fakeDownloader{}
			svc := &fakeService{createErr: tt.createErr}
			svc.onCreate = func() {
				require.Len(t, files.paths, 1)
				assert.FileExists(t, files.paths[0])
			}
			b := newTestBridge(t, svc, files)
			c := &MockContext{MessageVal: photoMessage()}

			require.NoError(t, b.photoHandler(c))

			assert.Equal(t, []string{tt.reply}, c.Sent)
			require.Len(t, files.paths, 1)
			assert.NoFileExists(t, files.paths[0])
			assert.True(t, filepath.IsAbs(files.paths[0]))
			require.Len(t, svc.bodies, 1)
			assert.Equal(t, dispatch.ImageLink(files.paths[0]), svc.bodies[0])
		})
	}
}

func TestPhotoHandlerDownloadFailure(t *testing.T) {
	files := &fakeDownloader{err: errors.New("file is too big")}
	svc := &fakeService{}
	b := newTestBridge(t, svc, files)
	c := &MockContext{MessageVal: photoMessage()}

	require.NoError(t, b.photoHandler(c))

	assert.Equal(t, []string{dispatch.MsgSaveFailed}, c.Sent)
	assert.Empty(t, svc.bodies)
	require.Len(t, files.paths, 1)
	assert.NoFileExists(t, files.paths[0])
}

func TestReadHandlerMissingNoteSendsNoChunks(t *testing.T) {
	b := newTestBridge(t, &fakeService{fetchErr: model.ErrNotFound}, &fakeDownloader{})
	c := &MockContext{ArgsVal: []string{"deadbeef"}}

	require.NoError(t, b.readHandler(c))
	assert.Equal(t, []string{"Failed to fetch the note or note not found."}, c.Sent)
}

func TestReadHandlerSendsEveryChunk(t *testing.T) {
	body := strings.Repeat("a", 4096) + strings.Repeat("b", 4096) + "c"
	b := newTestBridge(t, &fakeService{body: body}, &fakeDownloader{})
	c := &MockContext{ArgsVal: []string{"n1"}}

	require.NoError(t, b.readHandler(c))
	assert.Equal(t, []string{strings.Repeat("a", 4096), strings.Repeat("b", 4096), "c"}, c.Sent)
}

func TestReadHandlerIsolatesSendFailures(t *testing.T) {
	body := strings.Repeat("a", 4096) + strings.Repeat("b", 4096) + "c"
	b := newTestBridge(t, &fakeService{body: body}, &fakeDownloader{})
	// attempt 0: chunk a, 1: chunk b fails, 2: notice, 3: chunk c
	c := &MockContext{ArgsVal: []string{"n1"}, FailOn: map[int]bool{1: true}}

	require.NoError(t, b.readHandler(c))
	assert.Equal(t, []string{strings.Repeat("a", 4096), dispatch.MsgChunkFailed, "c"}, c.Sent)
}

func TestSearchHandlerUsage(t *testing.T) {
	b := newTestBridge(t, &fakeService{}, &fakeDownloader{})
	c := &MockContext{}

	require.NoError(t, b.searchHandler(c))
	assert.Equal(t, []string{dispatch.MsgSearchUsage}, c.Sent)
}

// slowService counts how many CreateNote calls overlap.
type slowService struct {
	fakeService
	active  atomic.Int32
	maxSeen atomic.Int32
	done    atomic.Int32
}

func (s *slowService) CreateNote(ctx context.Context, title, body string) (model.Confirmation, error) {
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		seen := s.maxSeen.Load()
		if n <= seen || s.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	time.Sleep(50 * time.Millisecond)
	s.done.Add(1)
	return model.Confirmation{}, nil
}

// fakeTelegram answers sendMessage calls and records their text.
type fakeTelegram struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var params map[string]interface{}
	_ = json.NewDecoder(r.Body).Decode(&params)
	if text, ok := params["text"].(string); ok {
		f.mu.Lock()
		f.sent = append(f.sent, text)
		f.mu.Unlock()
	}
	_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":99,"type":"private"}}}`))
}

func TestSettingsHandleUpdatesSequentially(t *testing.T) {
	api := &fakeTelegram{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	settings := Settings("123:test")
	settings.URL = srv.URL
	settings.Offline = true
	bot, err := tele.NewBot(settings)
	require.NoError(t, err)

	svc := &slowService{}
	b := New(bot, svc)
	b.register()

	for i, text := range []string{"first", "second"} {
		bot.ProcessUpdate(tele.Update{ID: i + 1, Message: &tele.Message{
			ID:   i + 1,
			Text: text,
			Chat: &tele.Chat{ID: 99, Type: tele.ChatPrivate},
		}})
		assert.Equal(t, int32(i+1), svc.done.Load(), "update %d still running after ProcessUpdate returned", i+1)
	}

	assert.Equal(t, int32(1), svc.maxSeen.Load())
	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Equal(t, []string{dispatch.MsgSaved, dispatch.MsgSaved}, api.sent)
}
