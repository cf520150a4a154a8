package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/seu-repo/vox-assistant/internal/domain"
)

const notePreviewLength = 100

func (s *Service) CreateNote(ctx context.Context, userID string, p domain.CreateNoteParams) domain.ExecutionOutcome {
	now := s.now()
	note := &domain.Note{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     p.Title,
		Content:   p.Content,
		Folder:    p.Folder,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := run(ctx, s, "note store", func(ctx context.Context) error {
		return s.deps.Notes.Save(ctx, note)
	})
	if err != nil {
		return s.fail(domain.IntentCreateNote, userID, "Failed to save note", err)
	}

	display := fmt.Sprintf("📝 Note saved: %s (in %s)", note.Title, note.Folder)
	spoken := fmt.Sprintf("I saved your note in %s.", note.Folder)
	return domain.Succeeded(display, spoken).WithData("note_id", note.ID)
}

func (s *Service) GetNotes(ctx context.Context, userID string, p domain.GetNotesParams) domain.ExecutionOutcome {
	notes, err := within(ctx, s, "note store", func(ctx context.Context) ([]domain.Note, error) {
		return s.deps.Notes.FindByUser(ctx, userID)
	})
	if err != nil {
		return s.fail(domain.IntentGetNotes, userID, "Failed to load notes", err)
	}
	if len(notes) == 0 {
		return domain.Succeeded("📝 You don't have any notes yet.", "You don't have any notes yet.")
	}

	matched := filterNotes(notes, p.Folder, p.Query)
	if len(matched) == 0 {
		msg := "No notes found" + describeNoteFilter(p) + "."
		return domain.Succeeded("📝 "+msg, msg)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📝 Your notes%s:", describeNoteFilter(p))
	for _, n := range matched {
		fmt.Fprintf(&b, "\n\n**%s** [%s]\n%s", n.Title, n.Folder, domain.Truncate(n.Content, notePreviewLength))
	}
	spoken := fmt.Sprintf("You have %d %s%s.", len(matched), plural(len(matched), "note", "notes"), describeNoteFilter(p))
	return domain.Succeeded(b.String(), spoken).WithData("count", len(matched))
}

// filterNotes applies the folder filter first, then the text query against
// title or content. Both are case-insensitive substring matches.
func filterNotes(notes []domain.Note, folder, query string) []domain.Note {
	folder = strings.ToLower(folder)
	query = strings.ToLower(query)

	var out []domain.Note
	for _, n := range notes {
		if folder != "" && !strings.Contains(strings.ToLower(n.Folder), folder) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(n.Title), query) &&
			!strings.Contains(strings.ToLower(n.Content), query) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func describeNoteFilter(p domain.GetNotesParams) string {
	var out string
	if p.Folder != "" {
		out += fmt.Sprintf(" in %s", p.Folder)
	}
	if p.Query != "" {
		out += fmt.Sprintf(" matching %q", p.Query)
	}
	return out
}
