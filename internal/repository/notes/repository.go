package notes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/kotche/notebridge/infrastructure/tracing"
	"github.com/kotche/notebridge/internal/model"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	noteFields = "id,title,body"

	// maxErrorBody bounds how much of a failed response ends up in an error.
	maxErrorBody = 512
)

// DefaultRepository talks to the Joplin Web Clipper REST API.
type DefaultRepository struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewDefaultRepository builds a repository for the service listening at
// baseURL. A nil client means http.DefaultClient.
func NewDefaultRepository(client *http.Client, baseURL, token string) *DefaultRepository {
	if client == nil {
		client = http.DefaultClient
	}
	return &DefaultRepository{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

type (
	noteRequest struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}

	noteResponse struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Body  string `json:"body"`
	}

	searchResponse struct {
		Items []noteResponse `json:"items"`
	}
)

func (d *DefaultRepository) CreateNote(ctx context.Context, title, body string) (_ model.Confirmation, err error) {
	ctx, span := tracing.StartSpan(ctx, "CreateNote_repo", tracing.AttrNoteTitle.String(title))
	defer func() { tracing.EndSpan(span, err) }()

	payload, err := json.Marshal(noteRequest{Title: title, Body: body})
	if err != nil {
		return model.Confirmation{}, fmt.Errorf("failed to encode note '%s': %w", title, err)
	}

	resp, err := d.do(ctx, http.MethodPost, d.endpoint("/notes", nil), bytes.NewReader(payload))
	if err != nil {
		return model.Confirmation{}, fmt.Errorf("failed to create note '%s': %w", title, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Confirmation{}, fmt.Errorf("failed to create note '%s': %w", title, statusError(resp))
	}

	// Success is decided by the status alone; the echoed entity only adds the id.
	var created noteResponse
	if err = json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return model.Confirmation{}, nil
	}

	span.SetAttributes(tracing.AttrNoteID.String(created.ID))
	return model.Confirmation{ID: model.NoteID(created.ID)}, nil
}

func (d *DefaultRepository) SearchNotes(ctx context.Context, query string) (_ []model.NoteSummary, err error) {
	ctx, span := tracing.StartSpan(ctx, "SearchNotes_repo", tracing.AttrQuery.String(query))
	defer func() { tracing.EndSpan(span, err) }()

	resp, err := d.do(ctx, http.MethodGet, d.endpoint("/search", url.Values{"query": {query}}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to search notes '%s': %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to search notes '%s': %w", query, statusError(resp))
	}

	var found searchResponse
	if err = json.NewDecoder(resp.Body).Decode(&found); err != nil {
		return nil, fmt.Errorf("failed to decode search result for '%s': %w", query, err)
	}

	summaries := make([]model.NoteSummary, 0, len(found.Items))
	for _, item := range found.Items {
		summaries = append(summaries, model.NoteSummary{
			ID:    model.NoteID(item.ID),
			Title: item.Title,
		})
	}

	return summaries, nil
}

func (d *DefaultRepository) GetNote(ctx context.Context, noteID model.NoteID) (_ *model.Note, err error) {
	ctx, span := tracing.StartSpan(ctx, "GetNote_repo", tracing.AttrNoteID.String(string(noteID)))
	defer func() { tracing.EndSpan(span, err) }()

	path := "/notes/" + url.PathEscape(string(noteID))
	resp, err := d.do(ctx, http.MethodGet, d.endpoint(path, url.Values{"fields": {noteFields}}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get note '%s': %w", noteID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get note '%s': %w", noteID, statusError(resp))
	}

	var note noteResponse
	if err = json.NewDecoder(resp.Body).Decode(&note); err != nil {
		return nil, fmt.Errorf("failed to decode note '%s': %w", noteID, err)
	}

	return &model.Note{
		ID:    model.NoteID(note.ID),
		Title: note.Title,
		Body:  note.Body,
	}, nil
}

func (d *DefaultRepository) endpoint(path string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("token", d.token)
	return d.baseURL + path + "?" + query.Encode()
}

func (d *DefaultRepository) do(ctx context.Context, method, target string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return d.client.Do(req)
}

func statusError(resp *http.Response) error {
	text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(text)))
}
