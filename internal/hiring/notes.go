package hiring

import (
	"context"
	"strings"
)

// AddNote appends an employer note to the application. With replyToNoteID
// set, the text is appended as a reply to that top-level note instead and
// the top-level list is left as is. Replies cannot be replied to.
//
// The author's name and avatar are copied onto the entry at write time.
func (s *Service) AddNote(ctx context.Context, actor Actor, id, text, replyToNoteID string) (*Application, error) {
	if strings.TrimSpace(text) == "" {
		return nil, invalid("note text is required")
	}
	if _, err := s.authorizeManage(ctx, actor, id); err != nil {
		return nil, err
	}
	author, err := s.author(ctx, actor)
	if err != nil {
		return nil, err
	}
	now := s.now()

	if replyToNoteID != "" {
		return s.store.AppendReply(ctx, id, replyToNoteID, Reply{
			ID:      s.newID(),
			Text:    text,
			Author:  author,
			AddedAt: now,
		})
	}
	return s.store.AppendNote(ctx, id, Note{
		ID:      s.newID(),
		Text:    text,
		Author:  author,
		AddedAt: now,
		Replies: []Reply{},
	})
}
