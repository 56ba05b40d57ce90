package hiring_test

import (
	"fmt"
	"sync"
	"testing"

	"jobmate/hiring-service/internal/hiring"
)

func TestAddNote_TopLevelAndReply(t *testing.T) {
	e := newEnv(t, hiring.Policy{})
	app := e.apply(t, "job")

	got, err := e.svc.AddNote(e.ctx, employer, app.ID, "Strong portfolio", "")
	if err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if len(got.Notes) != 1 {
		t.Fatalf("len(Notes) = %d, want 1", len(got.Notes))
	}
	note := got.Notes[0]
	if note.ID == "" || note.AuthorName != "Erin Employer" || note.AuthorAvatar != "erin.png" || note.AddedBy != "emp" {
		t.Errorf("note = %+v", note)
	}
	if note.Replies == nil || len(note.Replies) != 0 {
		t.Errorf("Replies = %#v, want empty", note.Replies)
	}

	got, err = e.svc.AddNote(e.ctx, admin, app.ID, "Agreed, move forward", note.ID)
	if err != nil {
		t.Fatalf("AddNote(reply): %v", err)
	}
	if len(got.Notes) != 1 {
		t.Errorf("reply changed the top-level list: len = %d", len(got.Notes))
	}
	replies := got.Notes[0].Replies
	if len(replies) != 1 || replies[0].Text != "Agreed, move forward" || replies[0].AuthorName != "Ada Admin" {
		t.Errorf("replies = %+v", replies)
	}
}

// Renaming the author afterwards does not touch existing entries.
func TestAddNote_AuthorStampIsFrozen(t *testing.T) {
	e := newEnv(t, hiring.Policy{})
	app := e.apply(t, "job")
	if _, err := e.svc.AddNote(e.ctx, employer, app.ID, "first", ""); err != nil {
		t.Fatal(err)
	}
	e.store.PutUser(hiring.User{ID: "emp", Name: "Erin Renamed", Role: hiring.RoleEmployer})
	got, err := e.svc.AddNote(e.ctx, employer, app.ID, "second", "")
	if err != nil {
		t.Fatal(err)
	}
	if got.Notes[0].AuthorName != "Erin Employer" || got.Notes[1].AuthorName != "Erin Renamed" {
		t.Errorf("author names = %q, %q", got.Notes[0].AuthorName, got.Notes[1].AuthorName)
	}
}

func TestAddNote_Rejects(t *testing.T) {
	e := newEnv(t, hiring.Policy{})
	app := e.apply(t, "job")
	if _, err := e.svc.AddNote(e.ctx, employer, app.ID, "kept", ""); err != nil {
		t.Fatal(err)
	}

	_, err := e.svc.AddNote(e.ctx, employer, app.ID, "   ", "")
	wantValidation(t, err)
	_, err = e.svc.AddNote(e.ctx, employer, app.ID, "orphan", "no-such-note")
	wantIs(t, err, hiring.ErrNotFound)
	_, err = e.svc.AddNote(e.ctx, candidate, app.ID, "let me in", "")
	wantIs(t, err, hiring.ErrForbidden)
	_, err = e.svc.AddNote(e.ctx, outsider, app.ID, "peek", "")
	wantIs(t, err, hiring.ErrForbidden)
	_, err = e.svc.AddNote(e.ctx, employer, "missing", "hello", "")
	wantIs(t, err, hiring.ErrNotFound)

	got := e.reload(t, app.ID)
	if len(got.Notes) != 1 || len(got.Notes[0].Replies) != 0 {
		t.Errorf("notes mutated by rejected calls: %+v", got.Notes)
	}
}

// Replies are one level deep: a reply id is not a valid parent.
func TestAddNote_ReplyToReplyIsNotFound(t *testing.T) {
	e := newEnv(t, hiring.Policy{})
	app := e.apply(t, "job")
	got, err := e.svc.AddNote(e.ctx, employer, app.ID, "root", "")
	if err != nil {
		t.Fatal(err)
	}
	got, err = e.svc.AddNote(e.ctx, employer, app.ID, "child", got.Notes[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	_, err = e.svc.AddNote(e.ctx, employer, app.ID, "grandchild", got.Notes[0].Replies[0].ID)
	wantIs(t, err, hiring.ErrNotFound)
}

func TestAddNote_ConcurrentAppendsAreAllKept(t *testing.T) {
	e := newEnv(t, hiring.Policy{})
	app := e.apply(t, "job")
	root, err := e.svc.AddNote(e.ctx, employer, app.ID, "root", "")
	if err != nil {
		t.Fatal(err)
	}
	parent := root.Notes[0].ID

	const n = 30
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if _, err := e.svc.AddNote(e.ctx, employer, app.ID, fmt.Sprintf("note %d", i), ""); err != nil {
				t.Errorf("AddNote: %v", err)
			}
		}(i)
		go func(i int) {
			defer wg.Done()
			if _, err := e.svc.AddNote(e.ctx, admin, app.ID, fmt.Sprintf("reply %d", i), parent); err != nil {
				t.Errorf("AddNote(reply): %v", err)
			}
		}(i)
	}
	wg.Wait()

	got := e.reload(t, app.ID)
	if len(got.Notes) != n+1 {
		t.Errorf("len(Notes) = %d, want %d", len(got.Notes), n+1)
	}
	if r := got.Note(parent).Replies; len(r) != n {
		t.Errorf("len(Replies) = %d, want %d", len(r), n)
	}
	ids := make(map[string]bool)
	for _, note := range got.Notes {
		if ids[note.ID] {
			t.Errorf("duplicate note id %s", note.ID)
		}
		ids[note.ID] = true
	}
}
