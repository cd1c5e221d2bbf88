package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/subcue/subcue-agent/internal/caption"
	"github.com/subcue/subcue-agent/internal/db"
	"github.com/subcue/subcue-agent/internal/media"
	"github.com/subcue/subcue-agent/internal/snapshot"
)

func newTestManager(t *testing.T, delay time.Duration) (*db.DB, Repository, *Manager) {
	database, repo := setupTestDB(t)
	m := NewManager(repo, media.NewStubProber(nil), delay, nil)
	return database, repo, m
}

func TestManager_CreateAndGet(t *testing.T) {
	database, _, m := newTestManager(t, time.Hour)
	defer database.Close()
	ctx := context.Background()

	sess, err := m.Create(ctx, "Demo reel")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if sess.ID == "" {
		t.Error("session ID is empty")
	}

	got, err := m.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "Demo reel" {
		t.Errorf("Name = %s, want Demo reel", got.Name)
	}

	sessions, err := m.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("len(sessions) = %d, want 1", len(sessions))
	}
}

func TestManager_Get_Missing(t *testing.T) {
	database, _, m := newTestManager(t, time.Hour)
	defer database.Close()

	_, err := m.Get(context.Background(), "no-such-session")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestManager_Create_DefaultName(t *testing.T) {
	database, _, m := newTestManager(t, time.Hour)
	defer database.Close()

	sess, err := m.Create(context.Background(), "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if sess.Name != "Untitled session" {
		t.Errorf("Name = %s, want Untitled session", sess.Name)
	}
}

func TestManager_LoadVideo_BoundsCaptions(t *testing.T) {
	database, _, m := newTestManager(t, time.Hour)
	defer database.Close()
	ctx := context.Background()

	sess, _ := m.Create(ctx, "edit")

	got, err := m.LoadVideo(ctx, sess.ID, "https://example.com/clip.mp4", 60)
	if err != nil {
		t.Fatalf("LoadVideo() error = %v", err)
	}
	if got.Duration != 60 {
		t.Errorf("Duration = %v, want 60", got.Duration)
	}

	_, _, err = m.AddCaption(ctx, sess.ID, caption.Draft{
		StartTime: "00:00:05", EndTime: "00:00:08", Text: "fits",
	})
	if err != nil {
		t.Fatalf("AddCaption() error = %v", err)
	}

	_, _, err = m.AddCaption(ctx, sess.ID, caption.Draft{
		StartTime: "00:00:50", EndTime: "00:02:00", Text: "past the end",
	})
	if !errors.Is(err, caption.ErrInvalidInterval) {
		t.Errorf("AddCaption() past duration error = %v, want ErrInvalidInterval", err)
	}
}

func TestManager_AddCaption_NoVideoLoaded(t *testing.T) {
	database, _, m := newTestManager(t, time.Hour)
	defer database.Close()
	ctx := context.Background()

	sess, _ := m.Create(ctx, "edit")

	_, _, err := m.AddCaption(ctx, sess.ID, caption.Draft{
		StartTime: "00:00:05", EndTime: "00:00:08", Text: "no video yet",
	})
	if !errors.Is(err, caption.ErrInvalidInterval) {
		t.Errorf("AddCaption() without video error = %v, want ErrInvalidInterval", err)
	}
}

func TestManager_AutosaveRestoresAcrossRestart(t *testing.T) {
	database, repo, m := newTestManager(t, 50*time.Millisecond)
	defer database.Close()
	ctx := context.Background()

	sess, _ := m.Create(ctx, "edit")
	if _, err := m.LoadVideo(ctx, sess.ID, "https://example.com/clip.mp4", 60); err != nil {
		t.Fatalf("LoadVideo() error = %v", err)
	}

	if _, _, err := m.AddCaption(ctx, sess.ID, caption.Draft{
		StartTime: "00:00:10", EndTime: "00:00:12", Text: "second",
	}); err != nil {
		t.Fatalf("AddCaption() error = %v", err)
	}
	if _, _, err := m.AddCaption(ctx, sess.ID, caption.Draft{
		StartTime: "00:00:01", EndTime: "00:00:03", Text: "first",
	}); err != nil {
		t.Fatalf("AddCaption() error = %v", err)
	}

	time.Sleep(400 * time.Millisecond)
	m.Close()

	m2 := NewManager(repo, media.NewStubProber(nil), time.Hour, nil)
	caps, err := m2.Captions(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Captions() after restart error = %v", err)
	}
	if len(caps) != 2 {
		t.Fatalf("len(captions) = %d, want 2", len(caps))
	}
	if caps[0].Text != "first" || caps[1].Text != "second" {
		t.Errorf("restored order = %s, %s; want first, second", caps[0].Text, caps[1].Text)
	}
}

func TestManager_Save_Immediate(t *testing.T) {
	database, repo, m := newTestManager(t, time.Hour)
	defer database.Close()
	ctx := context.Background()

	sess, _ := m.Create(ctx, "edit")
	m.LoadVideo(ctx, sess.ID, "https://example.com/clip.mp4", 60)
	m.AddCaption(ctx, sess.ID, caption.Draft{
		StartTime: "00:00:05", EndTime: "00:00:08", Text: "needle",
	})

	data, _ := repo.GetSnapshot(ctx, sess.ID)
	if data != nil {
		t.Fatal("snapshot written before Save despite long debounce")
	}

	if err := m.Save(ctx, sess.ID); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := repo.GetSnapshot(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if data == nil {
		t.Fatal("snapshot missing after Save")
	}
	if !strings.Contains(string(data), "needle") {
		t.Errorf("snapshot does not contain caption text: %s", data)
	}
}

func TestManager_Close_FlushesPending(t *testing.T) {
	database, repo, m := newTestManager(t, time.Hour)
	defer database.Close()
	ctx := context.Background()

	sess, _ := m.Create(ctx, "edit")
	m.LoadVideo(ctx, sess.ID, "https://example.com/clip.mp4", 60)
	m.AddCaption(ctx, sess.ID, caption.Draft{
		StartTime: "00:00:05", EndTime: "00:00:08", Text: "pending edit",
	})

	m.Close()

	data, err := repo.GetSnapshot(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if data == nil {
		t.Fatal("snapshot missing after Close")
	}
}

func TestManager_Delete(t *testing.T) {
	database, repo, m := newTestManager(t, time.Hour)
	defer database.Close()
	ctx := context.Background()

	sess, _ := m.Create(ctx, "edit")
	m.LoadVideo(ctx, sess.ID, "https://example.com/clip.mp4", 60)
	m.AddCaption(ctx, sess.ID, caption.Draft{
		StartTime: "00:00:05", EndTime: "00:00:08", Text: "gone soon",
	})
	m.Save(ctx, sess.ID)

	if err := m.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := m.Get(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}

	data, _ := repo.GetSnapshot(ctx, sess.ID)
	if data != nil {
		t.Error("snapshot survived delete")
	}

	if _, _, err := m.AddCaption(ctx, sess.ID, caption.Draft{
		StartTime: "00:00:01", EndTime: "00:00:02", Text: "late",
	}); !errors.Is(err, ErrNotFound) {
		t.Errorf("AddCaption() after delete error = %v, want ErrNotFound", err)
	}
}

func TestManager_Delete_Missing(t *testing.T) {
	database, _, m := newTestManager(t, time.Hour)
	defer database.Close()

	if err := m.Delete(context.Background(), "no-such-session"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestManager_Import_ReplacesCaptions(t *testing.T) {
	database, _, m := newTestManager(t, time.Hour)
	defer database.Close()
	ctx := context.Background()

	sess, _ := m.Create(ctx, "edit")
	m.LoadVideo(ctx, sess.ID, "https://example.com/clip.mp4", 60)
	m.AddCaption(ctx, sess.ID, caption.Draft{
		StartTime: "00:00:20", EndTime: "00:00:25", Text: "old caption",
	})

	doc := snapshot.Document{
		Captions: []snapshot.Entry{
			{StartTime: "00:00:01", EndTime: "00:00:03", Text: "one"},
			{StartTime: "00:00:05", EndTime: "00:00:07", Text: "two"},
		},
	}

	_, count, err := m.Import(ctx, sess.ID, doc)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if count != 2 {
		t.Errorf("imported count = %d, want 2", count)
	}

	caps, _ := m.Captions(ctx, sess.ID)
	if len(caps) != 2 {
		t.Fatalf("len(captions) = %d, want 2", len(caps))
	}
	if caps[0].Text != "one" || caps[1].Text != "two" {
		t.Errorf("captions after import = %s, %s; want one, two", caps[0].Text, caps[1].Text)
	}
}

func TestManager_Import_BadDocument(t *testing.T) {
	database, _, m := newTestManager(t, time.Hour)
	defer database.Close()
	ctx := context.Background()

	sess, _ := m.Create(ctx, "edit")
	m.LoadVideo(ctx, sess.ID, "https://example.com/clip.mp4", 60)
	m.AddCaption(ctx, sess.ID, caption.Draft{
		StartTime: "00:00:20", EndTime: "00:00:25", Text: "survivor",
	})

	doc := snapshot.Document{
		Captions: []snapshot.Entry{
			{StartTime: "00:00:10", EndTime: "00:00:05", Text: "inverted"},
		},
	}

	if _, _, err := m.Import(ctx, sess.ID, doc); !errors.Is(err, snapshot.ErrFormat) {
		t.Fatalf("Import() error = %v, want ErrFormat", err)
	}

	caps, _ := m.Captions(ctx, sess.ID)
	if len(caps) != 1 || caps[0].Text != "survivor" {
		t.Errorf("captions after failed import changed: %+v", caps)
	}
}

func TestManager_Restore_CorruptSnapshot(t *testing.T) {
	database, repo, m := newTestManager(t, time.Hour)
	defer database.Close()
	ctx := context.Background()

	sess, _ := m.Create(ctx, "edit")
	if err := repo.SaveSnapshot(ctx, sess.ID, []byte("not a document"), time.Now()); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	caps, err := m.Captions(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Captions() with corrupt snapshot error = %v", err)
	}
	if len(caps) != 0 {
		t.Errorf("len(captions) = %d, want 0 (corrupt snapshot starts empty)", len(caps))
	}
}

func TestManager_ActiveCaption(t *testing.T) {
	database, _, m := newTestManager(t, time.Hour)
	defer database.Close()
	ctx := context.Background()

	sess, _ := m.Create(ctx, "edit")
	m.LoadVideo(ctx, sess.ID, "https://example.com/clip.mp4", 60)
	m.AddCaption(ctx, sess.ID, caption.Draft{
		StartTime: "00:00:05", EndTime: "00:00:08", Text: "active one",
	})

	c, err := m.ActiveCaption(ctx, sess.ID, 6)
	if err != nil {
		t.Fatalf("ActiveCaption() error = %v", err)
	}
	if c == nil || c.Text != "active one" {
		t.Errorf("ActiveCaption(6) = %+v, want active one", c)
	}

	c, err = m.ActiveCaption(ctx, sess.ID, 20)
	if err != nil {
		t.Fatalf("ActiveCaption() error = %v", err)
	}
	if c != nil {
		t.Errorf("ActiveCaption(20) = %+v, want nil", c)
	}
}

func TestManager_ListCaptions_SearchAndSort(t *testing.T) {
	database, _, m := newTestManager(t, time.Hour)
	defer database.Close()
	ctx := context.Background()

	sess, _ := m.Create(ctx, "edit")
	m.LoadVideo(ctx, sess.ID, "https://example.com/clip.mp4", 60)
	m.AddCaption(ctx, sess.ID, caption.Draft{
		StartTime: "00:00:01", EndTime: "00:00:03", Text: "Hello World",
	})
	m.AddCaption(ctx, sess.ID, caption.Draft{
		StartTime: "00:00:05", EndTime: "00:00:07", Text: "goodbye",
	})

	caps, err := m.ListCaptions(ctx, sess.ID, "hello", "")
	if err != nil {
		t.Fatalf("ListCaptions() error = %v", err)
	}
	if len(caps) != 1 || caps[0].Text != "Hello World" {
		t.Errorf("search results = %+v, want Hello World only", caps)
	}

	caps, err = m.ListCaptions(ctx, sess.ID, "", caption.SortDescending)
	if err != nil {
		t.Fatalf("ListCaptions() error = %v", err)
	}
	if len(caps) != 2 || caps[0].Text != "goodbye" {
		t.Errorf("descending list starts with %s, want goodbye", caps[0].Text)
	}
}
