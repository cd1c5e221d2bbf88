package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/getlantern/systray"

	"github.com/subcue/subcue-agent/internal/session"
)

type Tray struct {
	sessions session.Service
	logger   *slog.Logger

	statusItem   *systray.MenuItem
	sessionsItem *systray.MenuItem

	mu sync.Mutex

	onQuit func()
}

type TrayConfig struct {
	Sessions session.Service
	Logger   *slog.Logger
	OnQuit   func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		sessions: cfg.Sessions,
		logger:   cfg.Logger,
		onQuit:   cfg.OnQuit,
	}
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("Subcue")
	systray.SetTooltip("Subcue Agent")

	t.statusItem = systray.AddMenuItem("Status: Idle", "Current agent status")
	t.statusItem.Disable()

	t.sessionsItem = systray.AddMenuItem("Sessions: 0", "Caption sessions on this machine")
	t.sessionsItem.Disable()

	systray.AddSeparator()

	refreshItem := systray.AddMenuItem("Refresh", "Refresh session count")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit Subcue Agent")

	t.refreshSessions()

	go func() {
		for {
			select {
			case <-refreshItem.ClickedCh:
				t.refreshSessions()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	t.logger.Info("system tray exiting")
}

func (t *Tray) refreshSessions() {
	sessions, err := t.sessions.List(context.Background())
	if err != nil {
		t.logger.Error("failed to list sessions for tray", "error", err)
		return
	}
	t.UpdateSessionsCount(len(sessions))
}

func (t *Tray) UpdateStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statusItem.SetTitle("Status: " + status)
}

func (t *Tray) UpdateSessionsCount(count int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessionsItem.SetTitle(fmt.Sprintf("Sessions: %d", count))
}

func (t *Tray) Quit() {
	systray.Quit()
}
