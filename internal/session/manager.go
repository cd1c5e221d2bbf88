package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/subcue/subcue-agent/internal/caption"
	"github.com/subcue/subcue-agent/internal/media"
	"github.com/subcue/subcue-agent/internal/snapshot"
)

type Service interface {
	Create(ctx context.Context, name string) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	List(ctx context.Context) ([]*Session, error)
	Delete(ctx context.Context, id string) error
	LoadVideo(ctx context.Context, id, videoURL string, duration float64) (*Session, error)

	AddCaption(ctx context.Context, id string, d caption.Draft) (*caption.Caption, bool, error)
	UpdateCaption(ctx context.Context, id, captionID string, p caption.Patch) (*caption.Caption, bool, error)
	RemoveCaption(ctx context.Context, id, captionID string) error
	GetCaption(ctx context.Context, id, captionID string) (*caption.Caption, error)
	ListCaptions(ctx context.Context, id, query string, dir caption.SortDirection) ([]caption.Caption, error)
	Captions(ctx context.Context, id string) ([]caption.Caption, error)
	ActiveCaption(ctx context.Context, id string, currentTime float64) (*caption.Caption, error)

	Save(ctx context.Context, id string) error
	Snapshot(ctx context.Context, id string) (snapshot.Document, error)
	Import(ctx context.Context, id string, doc snapshot.Document) (*Session, int, error)
}

// liveSession is a session with its caption store materialized in memory.
// Every store mutation arms the autosaver through the store's change hook.
type liveSession struct {
	sess  *Session
	store *caption.Store
	saver *Autosaver
}

// Manager owns the live sessions. Sessions are materialized lazily on first
// touch, restored from their stored snapshot, and flushed back on a debounce
// after every edit.
type Manager struct {
	mu     sync.Mutex
	repo   Repository
	prober media.Prober
	logger *slog.Logger
	delay  time.Duration
	live   map[string]*liveSession
}

func NewManager(repo Repository, prober media.Prober, delay time.Duration, logger *slog.Logger) *Manager {
	return &Manager{
		repo:   repo,
		prober: prober,
		logger: logger,
		delay:  delay,
		live:   make(map[string]*liveSession),
	}
}

func (m *Manager) Create(ctx context.Context, name string) (*Session, error) {
	if name == "" {
		name = "Untitled session"
	}

	now := time.Now()
	sess := &Session{
		ID:        NewID(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := m.repo.CreateSession(ctx, sess); err != nil {
		return nil, err
	}

	if m.logger != nil {
		m.logger.Info("session created", "session_id", sess.ID, "name", name)
	}
	return sess, nil
}

func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	if ls, ok := m.live[id]; ok {
		out := *ls.sess
		m.mu.Unlock()
		return &out, nil
	}
	m.mu.Unlock()

	sess, err := m.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sess, nil
}

func (m *Manager) List(ctx context.Context) ([]*Session, error) {
	return m.repo.ListSessions(ctx)
}

// Delete drops the session's rows and abandons any save still pending; a
// deleted session must not resurrect its snapshot.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	ls := m.live[id]
	delete(m.live, id)
	m.mu.Unlock()

	if ls != nil {
		ls.saver.Cancel()
	}

	sess, err := m.repo.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if sess == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := m.repo.DeleteSnapshot(ctx, id); err != nil {
		return err
	}
	if err := m.repo.DeleteSession(ctx, id); err != nil {
		return err
	}

	if m.logger != nil {
		m.logger.Info("session deleted", "session_id", id)
	}
	return nil
}

// LoadVideo swaps the session's video reference. A missing duration is
// probed for local files; captions already admitted are never re-validated
// against the new duration.
func (m *Manager) LoadVideo(ctx context.Context, id, videoURL string, duration float64) (*Session, error) {
	ls, err := m.ensureLive(ctx, id)
	if err != nil {
		return nil, err
	}

	if duration <= 0 && media.IsLocalPath(videoURL) {
		probed, perr := m.prober.Probe(ctx, videoURL)
		if perr != nil {
			if m.logger != nil {
				m.logger.Warn("video probe failed", "session_id", id, "path", videoURL, "error", perr)
			}
		} else {
			duration = probed
		}
	}

	m.mu.Lock()
	ls.sess.VideoURL = videoURL
	ls.sess.Duration = duration
	ls.sess.UpdatedAt = time.Now()
	out := *ls.sess
	m.mu.Unlock()

	ls.store.SetDuration(duration)

	if err := m.repo.UpdateSession(ctx, &out); err != nil {
		return nil, err
	}
	ls.saver.Touch()

	if m.logger != nil {
		m.logger.Info("video loaded", "session_id", id, "video_url", videoURL, "duration_s", duration)
	}
	return &out, nil
}

func (m *Manager) AddCaption(ctx context.Context, id string, d caption.Draft) (*caption.Caption, bool, error) {
	ls, err := m.ensureLive(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return ls.store.Add(d)
}

func (m *Manager) UpdateCaption(ctx context.Context, id, captionID string, p caption.Patch) (*caption.Caption, bool, error) {
	ls, err := m.ensureLive(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return ls.store.Update(captionID, p)
}

func (m *Manager) RemoveCaption(ctx context.Context, id, captionID string) error {
	ls, err := m.ensureLive(ctx, id)
	if err != nil {
		return err
	}
	ls.store.Remove(captionID)
	return nil
}

func (m *Manager) GetCaption(ctx context.Context, id, captionID string) (*caption.Caption, error) {
	ls, err := m.ensureLive(ctx, id)
	if err != nil {
		return nil, err
	}
	c, ok := ls.store.Get(captionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", caption.ErrNotFound, captionID)
	}
	return c, nil
}

// ListCaptions returns captions in presentation order, filtered by query.
// A non-empty dir switches the session's presentation direction first.
func (m *Manager) ListCaptions(ctx context.Context, id, query string, dir caption.SortDirection) ([]caption.Caption, error) {
	ls, err := m.ensureLive(ctx, id)
	if err != nil {
		return nil, err
	}
	if dir != "" {
		ls.store.SetSortDirection(dir)
	}
	return ls.store.Search(query), nil
}

// Captions returns the session's captions in canonical ascending order.
func (m *Manager) Captions(ctx context.Context, id string) ([]caption.Caption, error) {
	ls, err := m.ensureLive(ctx, id)
	if err != nil {
		return nil, err
	}
	return ls.store.Captions(), nil
}

func (m *Manager) ActiveCaption(ctx context.Context, id string, currentTime float64) (*caption.Caption, error) {
	ls, err := m.ensureLive(ctx, id)
	if err != nil {
		return nil, err
	}
	return ls.store.FindActive(currentTime), nil
}

// Save persists the session immediately, outside the debounce window.
func (m *Manager) Save(ctx context.Context, id string) error {
	ls, err := m.ensureLive(ctx, id)
	if err != nil {
		return err
	}
	ls.saver.Cancel()
	return m.persist(ctx, ls)
}

// Snapshot captures the session's current state as an interchange document.
func (m *Manager) Snapshot(ctx context.Context, id string) (snapshot.Document, error) {
	ls, err := m.ensureLive(ctx, id)
	if err != nil {
		return snapshot.Document{}, err
	}

	m.mu.Lock()
	videoURL := ls.sess.VideoURL
	m.mu.Unlock()

	return snapshot.Serialize(videoURL, ls.store.Captions(), time.Now()), nil
}

// Import replaces the session's captions with the document's contents and
// adopts its video reference. The returned count is the number of captions
// admitted. A document that fails to deserialize changes nothing.
func (m *Manager) Import(ctx context.Context, id string, doc snapshot.Document) (*Session, int, error) {
	ls, err := m.ensureLive(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	videoURL, captions, err := snapshot.Deserialize(doc)
	if err != nil {
		return nil, 0, err
	}

	m.mu.Lock()
	sameVideo := videoURL == "" || videoURL == ls.sess.VideoURL
	m.mu.Unlock()

	if !sameVideo {
		duration := 0.0
		if media.IsLocalPath(videoURL) {
			probed, perr := m.prober.Probe(ctx, videoURL)
			if perr != nil {
				if m.logger != nil {
					m.logger.Warn("video probe failed on import", "session_id", id, "path", videoURL, "error", perr)
				}
			} else {
				duration = probed
			}
		}
		m.mu.Lock()
		ls.sess.VideoURL = videoURL
		ls.sess.Duration = duration
		m.mu.Unlock()
		ls.store.SetDuration(duration)
	}

	ls.store.ReplaceAll(captions)

	m.mu.Lock()
	out := *ls.sess
	m.mu.Unlock()

	if m.logger != nil {
		m.logger.Info("snapshot imported", "session_id", id, "captions", len(captions))
	}
	return &out, len(captions), nil
}

// Close flushes every live session. Used at shutdown so a pending debounce
// is not lost.
func (m *Manager) Close() error {
	m.mu.Lock()
	live := make([]*liveSession, 0, len(m.live))
	for _, ls := range m.live {
		live = append(live, ls)
	}
	m.live = make(map[string]*liveSession)
	m.mu.Unlock()

	for _, ls := range live {
		ls.saver.Close()
	}
	return nil
}

// ensureLive returns the materialized session, restoring its caption store
// from the stored snapshot on first touch. The restore happens before the
// store's change hook is attached, so restoring never triggers a save.
func (m *Manager) ensureLive(ctx context.Context, id string) (*liveSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ls, ok := m.live[id]; ok {
		return ls, nil
	}

	sess, err := m.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	store := caption.NewStore()
	store.SetDuration(sess.Duration)

	data, err := m.repo.GetSnapshot(ctx, id)
	if err != nil {
		if m.logger != nil {
			m.logger.Warn("failed to read stored snapshot", "session_id", id, "error", err)
		}
	} else if data != nil {
		doc, derr := snapshot.Decode(data)
		var captions []caption.Caption
		if derr == nil {
			_, captions, derr = snapshot.Deserialize(doc)
		}
		if derr != nil {
			if m.logger != nil {
				m.logger.Warn("stored snapshot unreadable, starting empty", "session_id", id, "error", derr)
			}
		} else {
			store.ReplaceAll(captions)
		}
	}

	ls := &liveSession{sess: sess, store: store}
	sid := sess.ID
	ls.saver = NewAutosaver(m.delay, func() {
		if err := m.persist(context.Background(), ls); err != nil && m.logger != nil {
			m.logger.Error("autosave failed", "session_id", sid, "error", err)
		}
	})
	store.OnChange(ls.saver.Touch)

	m.live[id] = ls
	if m.logger != nil {
		m.logger.Info("session restored", "session_id", id, "captions", store.Len())
	}
	return ls, nil
}

// persist writes the session's snapshot document and row. It runs on the
// autosave timer goroutine as well as on explicit saves.
func (m *Manager) persist(ctx context.Context, ls *liveSession) error {
	m.mu.Lock()
	ls.sess.UpdatedAt = time.Now()
	sess := *ls.sess
	m.mu.Unlock()

	doc := snapshot.Serialize(sess.VideoURL, ls.store.Captions(), sess.UpdatedAt)
	data, err := snapshot.Encode(doc)
	if err != nil {
		return err
	}

	if err := m.repo.SaveSnapshot(ctx, sess.ID, data, sess.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	if err := m.repo.UpdateSession(ctx, &sess); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	if m.logger != nil {
		m.logger.Debug("session saved", "session_id", sess.ID, "captions", ls.store.Len())
	}
	return nil
}
