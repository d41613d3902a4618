// Package dispatch maps one inbound chat event to the replies it produces.
// Nothing here talks to the chat platform; sending is left to the caller.
package dispatch

import (
	"context"
	"fmt"
	"github.com/kotche/notebridge/internal/model"
	"github.com/kotche/notebridge/internal/paginator"
	"github.com/kotche/notebridge/internal/service/notes"
	"log"
	"path/filepath"
	"strings"
)

const (
	TextNoteTitle  = "Telegram Note"
	PhotoNoteTitle = "Photo from Telegram"

	MsgGreeting      = "Hello! Send me a note, photo, or file to save to Joplin."
	MsgSaved         = "Successfully saved in Joplin!"
	MsgSaveFailed    = "Failed to save."
	MsgSearchUsage   = "Please provide a search query after the /search command."
	MsgSearchHeader  = "Here are the notes I found:"
	MsgSearchMissing = "No notes found or failed to search."
	MsgReadUsage     = "Please provide a note ID after the /read command."
	MsgReadMissing   = "Failed to fetch the note or note not found."
	MsgReadEmpty     = "Note is empty or too large to process."
	MsgChunkFailed   = "Error sending part of the note."
)

type (
	Event interface {
		event()
	}

	Start struct{}

	PlainText struct {
		Body string
	}

	// Photo points at a local copy of the uploaded picture. The caller owns
	// the file and removes it once Dispatch returns.
	Photo struct {
		Path string
	}

	SearchCommand struct {
		Args []string
	}

	ReadCommand struct {
		Args []string
	}
)

func (Start) event()         {}
func (PlainText) event()     {}
func (Photo) event()         {}
func (SearchCommand) event() {}
func (ReadCommand) event()   {}

// Dispatch returns the replies for ev, in sending order.
func Dispatch(ctx context.Context, svc notes.Service, ev Event) []string {
	switch ev := ev.(type) {
	case Start:
		return []string{MsgGreeting}
	case PlainText:
		return HandleText(ctx, svc, ev)
	case Photo:
		return HandlePhoto(ctx, svc, ev)
	case SearchCommand:
		return HandleSearch(ctx, svc, ev)
	case ReadCommand:
		return HandleRead(ctx, svc, ev)
	default:
		log.Printf("unsupported event %T", ev)
		return nil
	}
}

func HandleText(ctx context.Context, svc notes.Service, ev PlainText) []string {
	return []string{saveNote(ctx, svc, TextNoteTitle, ev.Body)}
}

func HandlePhoto(ctx context.Context, svc notes.Service, ev Photo) []string {
	path, err := filepath.Abs(ev.Path)
	if err != nil {
		log.Printf("failed to resolve photo path '%s': %v", ev.Path, err)
		return []string{MsgSaveFailed}
	}

	return []string{saveNote(ctx, svc, PhotoNoteTitle, ImageLink(path))}
}

// ImageLink renders a markdown image pointing at an absolute local file.
func ImageLink(absPath string) string {
	p := filepath.ToSlash(absPath)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return fmt.Sprintf("![Image](file://%s)", p)
}

func HandleSearch(ctx context.Context, svc notes.Service, ev SearchCommand) []string {
	query := strings.Join(ev.Args, " ")
	if strings.TrimSpace(query) == "" {
		return []string{MsgSearchUsage}
	}

	found, err := svc.SearchNotes(ctx, query)
	if err != nil {
		log.Printf("failed to search notes '%s': %v", query, err)
		return []string{MsgSearchMissing}
	}

	lines := make([]string, 0, len(found)+1)
	lines = append(lines, MsgSearchHeader)
	for _, note := range found {
		lines = append(lines, fmt.Sprintf("- %s: %s", note.Title, note.ID))
	}

	return []string{strings.Join(lines, "\n")}
}

// HandleRead returns the note body split into deliverable chunks.
func HandleRead(ctx context.Context, svc notes.Service, ev ReadCommand) []string {
	if len(ev.Args) != 1 {
		return []string{MsgReadUsage}
	}
	noteID := model.NoteID(ev.Args[0])

	body, err := svc.FetchNoteBody(ctx, noteID)
	if err != nil {
		log.Printf("failed to fetch note '%s': %v", noteID, err)
		return []string{MsgReadMissing}
	}

	chunks := paginator.Paginate(body, paginator.DefaultLimit)
	if len(chunks) == 0 {
		return []string{MsgReadEmpty}
	}

	return chunks
}

func saveNote(ctx context.Context, svc notes.Service, title, body string) string {
	if _, err := svc.CreateNote(ctx, title, body); err != nil {
		log.Printf("failed to save note '%s': %v", title, err)
		return MsgSaveFailed
	}
	return MsgSaved
}
